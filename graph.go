package dataflow

import "golang.org/x/exp/constraints"

// Builder accumulates operators as a dataflow is assembled, then produces a
// Graph that the caller drives with repeated calls to Step. Streams are
// wired together as they are built (see NewInput and the operator
// constructors below); a Builder never itself holds typed stream state,
// since Go forbids attaching new type parameters to methods of a concrete
// type — every operator constructor is instead a free generic function
// taking a *Builder (or a StreamHandle carrying one) as its first argument.
//
// Builder also holds a frontier stack: frontierStack's top is the initial
// frontier of the scope currently being built. NewBuilder pushes the
// caller-supplied initial antichain as the base of the stack; Iterate pushes
// current.Extend() before building a loop body and pops it again once the
// body returns. Every stream a constructor below allocates is seeded (via
// newSeededStream) with the current top of this stack, so a freshly built
// operator's inputs and output start out with a real, known frontier rather
// than the ambiguous empty Antichain{} a bare NewStream leaves them with.
type Builder struct {
	operators         []Operator
	frontierStack     []Antichain
	feedbackTolerance int64
	iterationLimit    int64
	logger            DebugSink
}

// NewBuilder constructs an empty Builder whose top-level scope's initial
// frontier is initial (the antichain below which no external data will ever
// be sent — typically Frontier(V(0)) for a single-dimensional top level).
func NewBuilder(initial Antichain, opts ...BuilderOption) *Builder {
	b := &Builder{feedbackTolerance: 3, frontierStack: []Antichain{initial}}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Builder) addOperator(op Operator) { b.operators = append(b.operators, op) }

// currentFrontier returns the initial frontier of the scope currently being
// built: the top of the frontier stack.
func (b *Builder) currentFrontier() Antichain { return b.frontierStack[len(b.frontierStack)-1] }

// pushScope enters a nested scope (see Iterate) whose initial frontier is f.
func (b *Builder) pushScope(f Antichain) { b.frontierStack = append(b.frontierStack, f) }

// popScope leaves the scope most recently pushed by pushScope.
func (b *Builder) popScope() { b.frontierStack = b.frontierStack[:len(b.frontierStack)-1] }

// Build finalizes the accumulated operators into a runnable Graph. The
// Builder may continue to be used to add more operators afterward; Build
// may be called again to get a Graph reflecting the operators added since.
func (b *Builder) Build() *Graph {
	ops := make([]Operator, len(b.operators))
	copy(ops, b.operators)
	return &Graph{operators: ops}
}

// Graph is a finalized dataflow: a flat list of operators the scheduler
// polls once per Step call, in registration order. There is no implicit
// concurrency and no operator ever blocks; a single-threaded caller is
// expected to drive Step (directly, or via Run) until the inputs it feeds
// are exhausted and the graph quiesces.
type Graph struct {
	operators []Operator
}

// Step polls every operator exactly once, in registration order, and
// reports whether any of them made progress. Operators that depend on
// output from a later operator in the list simply see that output on the
// following Step call; this is what lets cyclic (iterative) dataflows work
// without any special-cased scheduling.
func (g *Graph) Step() bool {
	progressed := false
	for _, op := range g.operators {
		if op.Step() {
			progressed = true
		}
	}
	return progressed
}

// Run calls Step until a call makes no progress, i.e. until the graph has
// drained everything reachable from its current inputs.
func (g *Graph) Run() {
	for g.Step() {
	}
}

// StreamHandle is the builder-side handle to one stream in a
// (not-yet-finalized) Graph: its wrapped *Stream accepts readers as more
// operators are attached downstream.
type StreamHandle[T any] struct {
	b *Builder
	s *Stream[T]
}

// NewInput registers a new external input with b and returns both the
// builder-side handle (for wiring downstream operators) and the underlying
// *Stream, which the caller drives directly with SendData/SendFrontier.
func NewInput[T any](b *Builder) (StreamHandle[T], *Stream[T]) {
	s := newSeededStream[T](b.currentFrontier())
	return StreamHandle[T]{b: b, s: s}, s
}

// Output returns the underlying *Stream backing h, so a caller can attach a
// reader to observe a graph's final output directly.
func (h StreamHandle[T]) Output() *Stream[T] { return h.s }

// Map applies f to every record flowing through in, preserving multiplicity.
func Map[A, B any](in StreamHandle[A], f func(A) B) StreamHandle[B] {
	out := newSeededStream[B](in.b.currentFrontier())
	in.b.addOperator(newMapOperator(in.s.NewReader(), out, f))
	return StreamHandle[B]{b: in.b, s: out}
}

// Filter retains only records of in satisfying p.
func Filter[T any](in StreamHandle[T], p func(T) bool) StreamHandle[T] {
	out := newSeededStream[T](in.b.currentFrontier())
	in.b.addOperator(newFilterOperator(in.s.NewReader(), out, p))
	return StreamHandle[T]{b: in.b, s: out}
}

// Negate negates every multiplicity flowing through in.
func Negate[T any](in StreamHandle[T]) StreamHandle[T] {
	out := newSeededStream[T](in.b.currentFrontier())
	in.b.addOperator(newNegateOperator(in.s.NewReader(), out))
	return StreamHandle[T]{b: in.b, s: out}
}

// Concat returns the bag union of a and b as a new stream.
func Concat[T any](a, b StreamHandle[T]) StreamHandle[T] {
	out := newSeededStream[T](a.b.currentFrontier())
	a.b.addOperator(newConcatOperator(a.s.NewReader(), b.s.NewReader(), out))
	return StreamHandle[T]{b: a.b, s: out}
}

// Consolidate groups in by record, version by version, summing
// multiplicities and dropping zeros, emitting each version's result sorted
// by less once that version closes.
func Consolidate[T comparable](in StreamHandle[T], less func(a, b T) bool) StreamHandle[T] {
	out := newSeededStream[T](in.b.currentFrontier())
	in.b.addOperator(newConsolidateOperator(in.s.NewReader(), out, less))
	return StreamHandle[T]{b: in.b, s: out}
}

// Debug forwards in unchanged, reporting every data batch and frontier
// update it observes to the Builder's configured logger (see WithLogger).
func Debug[T any](in StreamHandle[T], label string) StreamHandle[T] {
	out := newSeededStream[T](in.b.currentFrontier())
	in.b.addOperator(newDebugOperator(label, in.s.NewReader(), out, in.b.logger))
	return StreamHandle[T]{b: in.b, s: out}
}

// Join is the incremental bilinear join: for matching keys, the Cartesian
// product of a's and b's values, with multiplicities multiplied.
func Join[K comparable, V1, V2 comparable](a StreamHandle[Pair[K, V1]], b StreamHandle[Pair[K, V2]]) StreamHandle[Pair[K, Pair[V1, V2]]] {
	out := newSeededStream[Pair[K, Pair[V1, V2]]](a.b.currentFrontier())
	a.b.addOperator(newJoinOperator(a.s.NewReader(), b.s.NewReader(), out))
	return StreamHandle[Pair[K, Pair[V1, V2]]]{b: a.b, s: out}
}

// Reduce applies g to each key's accumulated (value, multiplicity) group as
// of every closed version, incrementally: only the difference against what
// was previously emitted for that key is sent downstream.
func Reduce[K comparable, V comparable, R comparable](in StreamHandle[Pair[K, V]], g func(K, []ValMult[V]) []ValMult[R]) StreamHandle[Pair[K, R]] {
	out := newSeededStream[Pair[K, R]](in.b.currentFrontier())
	in.b.addOperator(newReduceOperator(in.s.NewReader(), out, g))
	return StreamHandle[Pair[K, R]]{b: in.b, s: out}
}

// Count is Reduce specialized to the sum of multiplicities per key.
func Count[K comparable, V comparable](in StreamHandle[Pair[K, V]]) StreamHandle[Pair[K, int64]] {
	return Reduce(in, func(_ K, vs []ValMult[V]) []ValMult[int64] {
		var sum int64
		for _, v := range vs {
			sum += v.Mult
		}
		return []ValMult[int64]{{Value: sum, Mult: 1}}
	})
}

// Distinct is Reduce specialized to the set of values with positive
// multiplicity per key, each emitted once. Panics with
// ErrNegativeMultiplicity on a negative consolidated multiplicity.
func Distinct[K comparable, V comparable](in StreamHandle[Pair[K, V]]) StreamHandle[Pair[K, V]] {
	return Reduce(in, func(_ K, vs []ValMult[V]) []ValMult[V] {
		totals := consolidateValMult(vs)
		out := make([]ValMult[V], 0, len(totals))
		for v, m := range totals {
			if m < 0 {
				panic(ErrNegativeMultiplicity)
			}
			if m > 0 {
				out = append(out, ValMult[V]{Value: v, Mult: 1})
			}
		}
		return out
	})
}

// Sum is Reduce specialized to the sum of value*multiplicity per key.
func Sum[K comparable, V constraints.Integer | constraints.Float](in StreamHandle[Pair[K, V]]) StreamHandle[Pair[K, V]] {
	return Reduce(in, func(_ K, vs []ValMult[V]) []ValMult[V] {
		var sum V
		for _, v := range vs {
			sum += v.Value * V(v.Mult)
		}
		return []ValMult[V]{{Value: sum, Mult: 1}}
	})
}

// Min is Reduce specialized to the smallest positive-multiplicity value per
// key. Panics with ErrNegativeMultiplicity on a negative consolidated
// multiplicity.
func Min[K comparable, V constraints.Ordered](in StreamHandle[Pair[K, V]]) StreamHandle[Pair[K, V]] {
	return Reduce(in, func(_ K, vs []ValMult[V]) []ValMult[V] {
		totals := consolidateValMult(vs)
		var min V
		found := false
		for v, m := range totals {
			if m < 0 {
				panic(ErrNegativeMultiplicity)
			}
			if m > 0 && (!found || v < min) {
				min, found = v, true
			}
		}
		if !found {
			return nil
		}
		return []ValMult[V]{{Value: min, Mult: 1}}
	})
}

// Max is Min's dual: the largest positive-multiplicity value per key.
func Max[K comparable, V constraints.Ordered](in StreamHandle[Pair[K, V]]) StreamHandle[Pair[K, V]] {
	return Reduce(in, func(_ K, vs []ValMult[V]) []ValMult[V] {
		totals := consolidateValMult(vs)
		var mx V
		found := false
		for v, m := range totals {
			if m < 0 {
				panic(ErrNegativeMultiplicity)
			}
			if m > 0 && (!found || v > mx) {
				mx, found = v, true
			}
		}
		if !found {
			return nil
		}
		return []ValMult[V]{{Value: mx, Mult: 1}}
	})
}

// Ingress extends in's versions by one dimension, the first step in
// entering an iteration scope; see Iterate.
func Ingress[T any](in StreamHandle[T]) StreamHandle[T] {
	out := newSeededStream[T](in.b.currentFrontier())
	in.b.addOperator(newIngressOperator(in.s.NewReader(), out))
	return StreamHandle[T]{b: in.b, s: out}
}

// Egress truncates in's versions by one dimension, the last step in
// leaving an iteration scope; see Iterate.
func Egress[T any](in StreamHandle[T]) StreamHandle[T] {
	out := newSeededStream[T](in.b.currentFrontier())
	in.b.addOperator(newEgressOperator(in.s.NewReader(), out))
	return StreamHandle[T]{b: in.b, s: out}
}

// Iterate builds a fixed-point iteration scope: in is ingressed into
// a deeper scope, concatenated with feedback from the previous iteration of
// body's output, passed through body, and the result is both fed back
// (incrementing the iteration coordinate) and egressed as Iterate's result.
//
// Per the Builder's frontier stack (see currentFrontier), Iterate pushes
// current.Extend() before building anything inside the scope, so Ingress's
// output and the feedback stream both start out seeded with the same real
// initial frontier — the scope's own — rather than the ambiguous zero-value
// Antichain{} a bare NewStream would leave them with. Without that shared
// real seed, the loop variable's Concat would have to wait for an explicit
// frontier message from both the ingress side and the feedback side before
// it could compute anything, but the feedback side's first message depends
// on data having already flowed once around the loop body — a cycle with no
// seed. The scope is popped again once body returns, before Egress runs,
// since Egress's output belongs to the outer scope.
//
// The feedback stream is allocated before body runs and wired into the
// Concat immediately, with no writer yet attached; body is then free to
// build an arbitrary subgraph (including further iterations) reading from
// the combined loop variable, and only once body returns is the feedback
// operator itself created, bound to body's result as its source and the
// pre-allocated stream as its destination. This is what lets a cyclic
// dataflow be expressed with the same flat, acyclic-looking operator list
// as everything else.
func Iterate[T any](in StreamHandle[T], body func(StreamHandle[T]) StreamHandle[T]) StreamHandle[T] {
	b := in.b
	b.pushScope(b.currentFrontier().Extend())

	ingress := Ingress(in)

	feedbackStream := newSeededStream[T](b.currentFrontier())
	feedbackHandle := StreamHandle[T]{b: b, s: feedbackStream}

	loopVar := Concat(ingress, feedbackHandle)

	result := body(loopVar)

	b.addOperator(newFeedbackOperator(result.s.NewReader(), feedbackStream, b.feedbackTolerance, b.iterationLimit))

	b.popScope()

	return Egress(result)
}
