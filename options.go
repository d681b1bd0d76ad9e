package caseload

// Option configures an Engine with optional dependencies.
type Option func(*engineOptions)

// engineOptions holds optional Engine configuration.
type engineOptions struct {
	logger   Logger
	metrics  MetricsCollector
	hooks    *Hooks
	sink     HistorySink
	strategy RankStrategy
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (see internal slog adapter via NewSlogLogger)
//
// Returns:
//   - Option: Functional option for NewEngine
//
// Example:
//
//	eng, err := caseload.NewEngine(&cfg, rules, directory,
//	    caseload.WithLogger(caseload.NewSlogLogger(slog.Default())),
//	)
func WithLogger(logger Logger) Option {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewEngine
//
// Example:
//
//	collector := caseload.NewPrometheusMetrics(prometheus.DefaultRegisterer, "caseload")
//	eng, err := caseload.NewEngine(&cfg, rules, directory, caseload.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *engineOptions) {
		o.metrics = metrics
	}
}

// WithHooks sets lifecycle event hooks.
//
// Parameters:
//   - hooks: Hooks structure with callback functions
//
// Returns:
//   - Option: Functional option for NewEngine
//
// Example:
//
//	hooks := &caseload.Hooks{
//	    OnAssigned: func(ctx context.Context, asgn caseload.Assignment) error {
//	        return notify(ctx, asgn)
//	    },
//	}
//	eng, err := caseload.NewEngine(&cfg, rules, directory, caseload.WithHooks(hooks))
func WithHooks(hooks *Hooks) Option {
	return func(o *engineOptions) {
		o.hooks = hooks
	}
}

// WithHistorySink sets the external audit feed. Every assignment mutation
// produces one HistoryEntry delivered to the sink after the mutation commits;
// sink failures are logged and counted but never roll the mutation back.
//
// Parameters:
//   - sink: HistorySink implementation (see the history JetStream publisher)
//
// Returns:
//   - Option: Functional option for NewEngine
func WithHistorySink(sink HistorySink) Option {
	return func(o *engineOptions) {
		o.sink = sink
	}
}

// WithStrategy sets the auto-assignment ranking strategy.
// Default: strategy.NewLeastLoaded().
//
// Parameters:
//   - s: RankStrategy implementation
//
// Returns:
//   - Option: Functional option for NewEngine
func WithStrategy(s RankStrategy) Option {
	return func(o *engineOptions) {
		o.strategy = s
	}
}
