// Package sim provides the discrete-time lottery scheduling engine
// (Waldspurger & Weihl, 1994).
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - process.go: Process lifecycle (new → ready ↔ running → terminated)
//   - lottery.go: ticket ranges, direct and global-pool draws
//   - simulator.go: the per-cycle loop (aging, dispatch, execution, completion, history)
//
// # Architecture
//
// The sim package owns all mutable state; helpers live in sub-packages:
//   - sim/trace/: draw, transfer and per-cycle records (pure data)
//   - sim/workload/: YAML and CSV process specs, random processes, pool distribution
//   - sim/analysis/: numeric explanations of draws and finishing order, fairness tests
//   - sim/runner/: paced, mutex-serialized stepping for interactive callers
//
// # Key Interfaces
//
//   - UniformSource: the random integers the lottery draws from (inject for determinism)
//   - TicketPolicy: recomputes ticket counts before each draw (automatic or manual)
package sim
