package dataflow

// ingressOperator extends every version it sees by one dimension, entering
// an iteration scope. Each incoming batch c at v is emitted twice:
// once at v.Extend() and again, negated, at v.Extend().ApplyStep(1) — so
// that c is only visible to the scope at iteration 0; the negation at
// iteration 1 cancels it out, bounding its lifetime inside the scope to a
// single iteration.
type ingressOperator[T any] struct {
	in  StreamReader[T]
	out *Stream[T]
}

func newIngressOperator[T any](in StreamReader[T], out *Stream[T]) *ingressOperator[T] {
	return &ingressOperator[T]{in: in, out: out}
}

func (op *ingressOperator[T]) Step() bool {
	msgs := op.in.Drain()
	if len(msgs) == 0 {
		return false
	}
	for _, m := range msgs {
		switch m.Kind {
		case MessageData:
			entered := m.Version.Extend()
			op.out.SendData(entered, m.Batch)
			op.out.SendData(entered.ApplyStep(1), NegateRaw(m.Batch))
		case MessageFrontier:
			op.out.SendFrontier(m.FrontierUpdate.Extend())
		}
	}
	return true
}

// egressOperator truncates every version it sees by one dimension:
// leaving an iteration scope. Distinct inner versions may truncate to the
// same outer version; this operator does not merge them, leaving that to a
// downstream Consolidate if the caller needs it.
type egressOperator[T any] struct {
	in  StreamReader[T]
	out *Stream[T]
}

func newEgressOperator[T any](in StreamReader[T], out *Stream[T]) *egressOperator[T] {
	return &egressOperator[T]{in: in, out: out}
}

func (op *egressOperator[T]) Step() bool {
	msgs := op.in.Drain()
	if len(msgs) == 0 {
		return false
	}
	for _, m := range msgs {
		switch m.Kind {
		case MessageData:
			op.out.SendData(m.Version.Truncate(), m.Batch)
		case MessageFrontier:
			op.out.SendFrontier(m.FrontierUpdate.Truncate())
		}
	}
	return true
}

// feedbackOperator closes an iteration's loop: it applies a +1 step to the
// trailing coordinate of every version flowing through it, so that output
// produced by iteration k is reintroduced to the loop body as input at
// iteration k+1.
//
// Its output frontier cannot simply be its input frontier stepped forward
// unconditionally: the Concat feeding the loop body reads from this
// operator's output, so a naively-advancing frontier would let the scope
// claim progress it cannot back up, and an unconditionally-frozen one would
// never let the scope converge at all. Instead the operator tracks, per
// top-level version (the antichain element's coordinates with the loop's own
// trailing coordinate truncated off), which iterations of that family it has
// forwarded data for but not yet seen close. A candidate frontier element
// for a family is retained as-is once it closes out at least one such
// in-flight version (any in-flight version strictly below it); short of that, it is still retained for up to tolerance rounds
// (an "empty update" budget, see WithFeedbackTolerance) to give genuine
// further iterations a chance to appear, and only past that budget is the
// family retired — dropped from the operator's own bookkeeping and
// reinserted as the join of the retired element with each surviving kept
// element, so the output antichain never loses coverage of a family that is
// still open. limit, if positive, is a separate hard ceiling on the
// iteration coordinate itself (see WithIterationLimit), causing a panic with
// ErrIterationLimitExceeded if ever exceeded, since a runaway loop is a
// programmer error in the body, not a convergence question.
type feedbackOperator[T any] struct {
	in        StreamReader[T]
	out       *Stream[T]
	tolerance int64
	limit     int64

	started      bool
	lastFrontier Antichain

	sentOnce bool
	sent     Antichain

	inFlight map[string][]Version
	idle     map[string]int64
}

func newFeedbackOperator[T any](in StreamReader[T], out *Stream[T], tolerance, limit int64) *feedbackOperator[T] {
	return &feedbackOperator[T]{
		in:           in,
		out:          out,
		tolerance:    tolerance,
		limit:        limit,
		started:      in.FrontierKnown(),
		lastFrontier: in.Frontier(),
		sentOnce:     in.FrontierKnown(),
		sent:         in.Frontier(),
		inFlight:     make(map[string][]Version),
		idle:         make(map[string]int64),
	}
}

func (op *feedbackOperator[T]) Step() bool {
	msgs := op.in.Drain()
	if len(msgs) == 0 {
		// The tolerance budget counts updates received without matching
		// data, not idle scheduler ticks: a long loop body takes many ticks
		// per circuit, and burning the budget while a circuit is still in
		// flight would retire a family whose data is about to arrive.
		return false
	}
	for _, m := range msgs {
		switch m.Kind {
		case MessageData:
			next := m.Version.ApplyStep(1)
			op.checkLimit(next)
			top := next.Truncate().key()
			op.inFlight[top] = append(op.inFlight[top], next)
			op.out.SendData(next, m.Batch)
		case MessageFrontier:
			op.lastFrontier = m.FrontierUpdate
			op.started = true
		}
	}
	if !op.started {
		return true
	}

	candidate := op.retain(op.lastFrontier.ApplyStep(1))
	if !op.sentOnce || op.sent.Less(candidate) {
		op.sent = candidate
		op.sentOnce = true
		op.out.SendFrontier(candidate)
	}
	return true
}

func (op *feedbackOperator[T]) checkLimit(v Version) {
	if op.limit <= 0 || v.Dim() == 0 {
		return
	}
	if v.At(v.Dim()-1) > op.limit {
		panic(ErrIterationLimitExceeded)
	}
}

// retain decides, element by element, which parts of candidate the operator
// can actually stand behind yet: see the type doc for the per-family
// in-flight/tolerance/retirement rule this implements.
func (op *feedbackOperator[T]) retain(candidate Antichain) Antichain {
	var kept, retired []Version
	for _, e := range candidate.Elements() {
		top := e.Truncate().key()
		if op.closesInFlight(top, e) {
			op.idle[top] = 0
			kept = append(kept, e)
			continue
		}
		if op.tolerance <= 0 || op.idle[top] >= op.tolerance {
			delete(op.idle, top)
			delete(op.inFlight, top)
			retired = append(retired, e)
			continue
		}
		op.idle[top]++
		kept = append(kept, e)
	}

	var out Antichain
	for _, e := range kept {
		out.Insert(e)
	}
	for _, r := range retired {
		if len(kept) == 0 {
			continue
		}
		for _, k := range kept {
			out.Insert(r.Join(k))
		}
	}
	return out
}

// closesInFlight reports whether any version still tracked as in-flight for
// top is strictly below candidate (meaning that iteration's data has been
// fully accounted for), removing it from the tracked set either way: a
// version at or above candidate is still genuinely pending.
func (op *feedbackOperator[T]) closesInFlight(top string, candidate Version) bool {
	pending := op.inFlight[top]
	if len(pending) == 0 {
		return false
	}
	var remaining []Version
	closed := false
	for _, v := range pending {
		if v.LessThan(candidate) {
			closed = true
			continue
		}
		remaining = append(remaining, v)
	}
	if len(remaining) == 0 {
		delete(op.inFlight, top)
	} else {
		op.inFlight[top] = remaining
	}
	return closed
}
