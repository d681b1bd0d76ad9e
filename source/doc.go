// Package source provides RuleSource and WorkerDirectory implementations.
//
// Two families are available:
//
//   - Static: fixed in-memory feeds, mutable via Update. Useful for tests and
//     deployments where rules and rosters are known at startup.
//   - KV: NATS JetStream KeyValue backed feeds that cache their contents and
//     invalidate the cache on KV watch events, so reads stay cheap and a NATS
//     outage degrades to serving the last known snapshot.
package source
