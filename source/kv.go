package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/legalops/caseload/internal/kvutil"
	"github.com/legalops/caseload/types"
)

// KVConfig configures a KV-backed feed.
type KVConfig struct {
	// Bucket is the KV bucket name. Each implementation has its own default.
	Bucket string

	// Logger for watch and decode diagnostics. Optional.
	Logger types.Logger
}

// kvFeed is a cached KV-backed collection with watch-based invalidation.
//
// Reads serve the cached snapshot; any KV change invalidates it and the next
// read refetches. When a refetch fails and an earlier snapshot exists, the
// feed serves the stale snapshot instead of failing the read.
type kvFeed[T any] struct {
	kv      jetstream.KeyValue
	logger  types.Logger
	decode  func(key string, data []byte) (T, error)
	watcher jetstream.KeyWatcher

	mu     sync.RWMutex
	cached []T
	valid  bool
	primed bool
}

func newKVFeed[T any](ctx context.Context, kv jetstream.KeyValue, logger types.Logger,
	decode func(string, []byte) (T, error),
) (*kvFeed[T], error) {
	if logger == nil {
		logger = nopLogger{}
	}
	f := &kvFeed[T]{kv: kv, logger: logger, decode: decode}

	watcher, err := kv.WatchAll(ctx, jetstream.UpdatesOnly())
	if err != nil {
		return nil, fmt.Errorf("watch bucket %s: %w", kv.Bucket(), err)
	}
	f.watcher = watcher
	go f.watch()

	return f, nil
}

// watch invalidates the cache on every KV change until the watcher stops.
func (f *kvFeed[T]) watch() {
	for entry := range f.watcher.Updates() {
		if entry == nil {
			continue
		}
		f.logger.Debug("feed entry changed, invalidating cache",
			"bucket", f.kv.Bucket(), "key", entry.Key(), "operation", entry.Operation().String())
		f.Invalidate()
	}
}

// Invalidate marks the cached snapshot stale; the next read refetches.
func (f *kvFeed[T]) Invalidate() {
	f.mu.Lock()
	f.valid = false
	f.mu.Unlock()
}

// Close stops the watcher. The feed keeps serving its last snapshot.
func (f *kvFeed[T]) Close() error {
	return f.watcher.Stop()
}

func (f *kvFeed[T]) snapshot(ctx context.Context) ([]T, error) {
	f.mu.RLock()
	if f.valid {
		out := make([]T, len(f.cached))
		copy(out, f.cached)
		f.mu.RUnlock()
		return out, nil
	}
	f.mu.RUnlock()

	fresh, err := f.fetch(ctx)
	if err != nil {
		f.mu.RLock()
		defer f.mu.RUnlock()
		if f.primed {
			f.logger.Warn("feed refresh failed, serving stale snapshot",
				"bucket", f.kv.Bucket(), "entries", len(f.cached), "error", err)
			out := make([]T, len(f.cached))
			copy(out, f.cached)
			return out, nil
		}
		return nil, err
	}

	f.mu.Lock()
	f.cached = fresh
	f.valid = true
	f.primed = true
	f.mu.Unlock()

	out := make([]T, len(fresh))
	copy(out, fresh)
	return out, nil
}

func (f *kvFeed[T]) fetch(ctx context.Context) ([]T, error) {
	keys, err := f.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list bucket %s: %w", f.kv.Bucket(), err)
	}

	out := make([]T, 0, len(keys))
	for _, key := range keys {
		entry, err := f.kv.Get(ctx, key)
		if err != nil {
			// Deleted between Keys and Get; the watcher already invalidated.
			f.logger.Debug("feed key vanished during fetch", "bucket", f.kv.Bucket(), "key", key, "error", err)
			continue
		}
		v, err := f.decode(key, entry.Value())
		if err != nil {
			f.logger.Warn("skipping malformed feed entry", "bucket", f.kv.Bucket(), "key", key, "error", err)
			continue
		}
		out = append(out, v)
	}

	return out, nil
}

// KVRules is a RuleSource backed by a NATS JetStream KV bucket.
//
// Each key holds one JSON-encoded types.AssignmentRule; the rule-management
// API writes them, the engine only reads. The rule list is cached and
// invalidated on watch events, so the hot path never touches NATS.
type KVRules struct {
	feed *kvFeed[types.AssignmentRule]
}

var _ types.RuleSource = (*KVRules)(nil)

// DefaultRulesBucket is the KV bucket NewKVRules uses when none is configured.
const DefaultRulesBucket = "caseload-rules"

// NewKVRules creates a KV-backed rule source, ensuring its bucket exists and
// starting the invalidation watcher.
//
// Parameters:
//   - ctx: Context for bucket creation and the watcher's lifetime
//   - js: JetStream context
//   - cfg: Feed configuration (zero value usable)
//
// Returns:
//   - *KVRules: A ready rule source
//   - error: Nil on success, error when the bucket or watcher cannot be set up
func NewKVRules(ctx context.Context, js jetstream.JetStream, cfg KVConfig) (*KVRules, error) {
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultRulesBucket
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{Bucket: cfg.Bucket}, 0)
	if err != nil {
		return nil, err
	}

	feed, err := newKVFeed(ctx, kv, cfg.Logger, func(key string, data []byte) (types.AssignmentRule, error) {
		var rule types.AssignmentRule
		if err := json.Unmarshal(data, &rule); err != nil {
			return types.AssignmentRule{}, err
		}
		if rule.ID == "" {
			rule.ID = key
		}
		return rule, nil
	})
	if err != nil {
		return nil, err
	}

	return &KVRules{feed: feed}, nil
}

// ActiveRules returns the active rules from the cached snapshot.
func (s *KVRules) ActiveRules(ctx context.Context) ([]types.AssignmentRule, error) {
	all, err := s.feed.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]types.AssignmentRule, 0, len(all))
	for _, r := range all {
		if r.Active {
			active = append(active, r)
		}
	}
	return active, nil
}

// Invalidate forces the next read to refetch from KV.
func (s *KVRules) Invalidate() { s.feed.Invalidate() }

// Close stops the invalidation watcher.
func (s *KVRules) Close() error { return s.feed.Close() }

// KVDirectory is a WorkerDirectory backed by a NATS JetStream KV bucket.
//
// Each key holds one JSON-encoded types.Worker. Like KVRules, the roster is
// cached with watch-based invalidation.
type KVDirectory struct {
	feed *kvFeed[types.Worker]
}

var _ types.WorkerDirectory = (*KVDirectory)(nil)

// DefaultWorkersBucket is the KV bucket NewKVDirectory uses when none is
// configured.
const DefaultWorkersBucket = "caseload-workers"

// NewKVDirectory creates a KV-backed worker directory, ensuring its bucket
// exists and starting the invalidation watcher.
func NewKVDirectory(ctx context.Context, js jetstream.JetStream, cfg KVConfig) (*KVDirectory, error) {
	if cfg.Bucket == "" {
		cfg.Bucket = DefaultWorkersBucket
	}

	kv, err := kvutil.EnsureBucket(ctx, js, jetstream.KeyValueConfig{Bucket: cfg.Bucket}, 0)
	if err != nil {
		return nil, err
	}

	feed, err := newKVFeed(ctx, kv, cfg.Logger, func(key string, data []byte) (types.Worker, error) {
		var w types.Worker
		if err := json.Unmarshal(data, &w); err != nil {
			return types.Worker{}, err
		}
		if w.ID == "" {
			w.ID = key
		}
		return w, nil
	})
	if err != nil {
		return nil, err
	}

	return &KVDirectory{feed: feed}, nil
}

// Worker returns the record for the given worker ID.
// Returns ErrWorkerNotFound when no record exists.
func (d *KVDirectory) Worker(ctx context.Context, id string) (types.Worker, error) {
	all, err := d.feed.snapshot(ctx)
	if err != nil {
		return types.Worker{}, err
	}

	for _, w := range all {
		if w.ID == id {
			return w, nil
		}
	}
	return types.Worker{}, fmt.Errorf("worker %s: %w", id, types.ErrWorkerNotFound)
}

// ListWorkers returns all known workers.
func (d *KVDirectory) ListWorkers(ctx context.Context) ([]types.Worker, error) {
	return d.feed.snapshot(ctx)
}

// Invalidate forces the next read to refetch from KV.
func (d *KVDirectory) Invalidate() { d.feed.Invalidate() }

// Close stops the invalidation watcher.
func (d *KVDirectory) Close() error { return d.feed.Close() }

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (nopLogger) Fatal(string, ...any) {}
