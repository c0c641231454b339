// Package dataflow provides an incremental, iterative dataflow engine over
// multisets of records (collections) whose membership evolves over
// (partially ordered) logical versions.
//
// # Architecture
//
// The engine is built around four layers:
//
//   - [Version] and [Antichain]: a product-ordered time domain and the
//     minimal antichains ("frontiers") used as progress boundaries.
//   - [Collection]: a multiset with signed-integer multiplicities, and the
//     map/filter/negate/concat/join/reduce operators that preserve
//     differential semantics.
//   - [Index]: a per-key, per-version store of value/multiplicity changes,
//     supporting bilinear join and difference-based reduce, with
//     frontier-driven compaction.
//   - [Builder] and the operators it wires together: a directed graph of
//     operators exchanging typed [Message] values (data, frontier) through
//     single-producer/multi-consumer [Stream] queues, stepped one tick at a
//     time by [Graph.Step].
//
// # Execution model
//
// Scheduling is single-threaded and cooperative: one "tick" is exactly one
// pass over every operator in insertion order ([Graph.Step]). No operator
// blocks, yields, or is re-entrant. Messages are not snapshotted at the
// start of a tick: each operator drains whatever is queued when its own turn
// comes, so output that an earlier operator in the list produced during the
// same tick is seen in that tick, while output of a later operator is seen
// on the next tick. There is no fairness guarantee beyond
// insertion order, and no preemption.
//
// # Usage
//
//	b := dataflow.NewBuilder(dataflow.Frontier(dataflow.V(0)))
//	in, w := dataflow.NewInput[int](b)
//	out := dataflow.Filter(dataflow.Map(in, func(x int) int { return x + 1 }), func(x int) bool { return x%2 == 0 })
//	r := out.Output().NewReader()
//	g := b.Build()
//
//	w.SendData(dataflow.V(0), dataflow.FromEntries(dataflow.E(1, 1)))
//	w.SendFrontier(dataflow.Frontier(dataflow.V(1)))
//	g.Step()
//	_ = r.Drain()
//
// # Error Types
//
// Contract violations (dimension mismatch, frontier regression, data sent
// below the writer's last frontier, compaction regression, negative
// multiplicity where forbidden) are programmer errors: they fail fast via
// panic or a sentinel error, per the package's error-handling policy — see
// the Err* values in errors.go. There is no recovery path; callers that hit
// one have a bug to fix, not a runtime condition to handle.
package dataflow
