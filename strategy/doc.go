// Package strategy provides built-in candidate ranking implementations.
//
// Ranking strategies pick the worker that receives the PRIMARY assignment
// from a capacity-filtered candidate pool. The package includes two built-in
// strategies:
//
//   - LeastLoaded: picks the lowest weighted load with a deterministic
//     three-level tie-break (recommended)
//   - RoundRobin: spreads cases across the pool by hashing the case ID
//
// # Strategy Selection Guide
//
// LeastLoaded:
//   - Use when balanced workload is the goal
//   - Fully deterministic: same pool and loads always pick the same worker
//   - Tie-break order: live weighted load, persisted baseline load, worker ID
//
// RoundRobin:
//   - Use when assignment spread matters more than load accuracy
//   - Stateless: the pick is a pure function of case ID and pool
//
// Custom strategies can be implemented by satisfying the types.RankStrategy
// interface.
package strategy
