package dataflow

// mapOperator applies f to every record of every batch it sees, forwarding
// data and frontier messages unchanged otherwise. Linear: one input, one
// output, no buffering.
type mapOperator[A, B any] struct {
	in  StreamReader[A]
	out *Stream[B]
	f   func(A) B
}

func newMapOperator[A, B any](in StreamReader[A], out *Stream[B], f func(A) B) *mapOperator[A, B] {
	return &mapOperator[A, B]{in: in, out: out, f: f}
}

func (op *mapOperator[A, B]) Step() bool {
	msgs := op.in.Drain()
	if len(msgs) == 0 {
		return false
	}
	for _, m := range msgs {
		switch m.Kind {
		case MessageData:
			op.out.SendData(m.Version, MapRaw(m.Batch, op.f))
		case MessageFrontier:
			op.out.SendFrontier(m.FrontierUpdate)
		}
	}
	return true
}

// filterOperator retains only records satisfying p.
type filterOperator[T any] struct {
	in  StreamReader[T]
	out *Stream[T]
	p   func(T) bool
}

func newFilterOperator[T any](in StreamReader[T], out *Stream[T], p func(T) bool) *filterOperator[T] {
	return &filterOperator[T]{in: in, out: out, p: p}
}

func (op *filterOperator[T]) Step() bool {
	msgs := op.in.Drain()
	if len(msgs) == 0 {
		return false
	}
	for _, m := range msgs {
		switch m.Kind {
		case MessageData:
			op.out.SendData(m.Version, FilterRaw(m.Batch, op.p))
		case MessageFrontier:
			op.out.SendFrontier(m.FrontierUpdate)
		}
	}
	return true
}

// negateOperator negates every multiplicity it sees.
type negateOperator[T any] struct {
	in  StreamReader[T]
	out *Stream[T]
}

func newNegateOperator[T any](in StreamReader[T], out *Stream[T]) *negateOperator[T] {
	return &negateOperator[T]{in: in, out: out}
}

func (op *negateOperator[T]) Step() bool {
	msgs := op.in.Drain()
	if len(msgs) == 0 {
		return false
	}
	for _, m := range msgs {
		switch m.Kind {
		case MessageData:
			op.out.SendData(m.Version, NegateRaw(m.Batch))
		case MessageFrontier:
			op.out.SendFrontier(m.FrontierUpdate)
		}
	}
	return true
}

// concatOperator forwards data from both inputs unchanged, and advances its
// output frontier to the meet of the two inputs' frontiers as they advance.
type concatOperator[T any] struct {
	in1, in2       StreamReader[T]
	out            *Stream[T]
	f1, f2         Antichain
	f1Seen, f2Seen bool
	sent           Antichain
	started        bool
}

func newConcatOperator[T any](in1, in2 StreamReader[T], out *Stream[T]) *concatOperator[T] {
	return &concatOperator[T]{
		in1: in1, in2: in2, out: out,
		f1: in1.Frontier(), f1Seen: in1.FrontierKnown(),
		f2: in2.Frontier(), f2Seen: in2.FrontierKnown(),
	}
}

func (op *concatOperator[T]) Step() bool {
	m1 := op.in1.Drain()
	m2 := op.in2.Drain()
	if len(m1) == 0 && len(m2) == 0 {
		return false
	}
	for _, m := range m1 {
		switch m.Kind {
		case MessageData:
			op.out.SendData(m.Version, m.Batch)
		case MessageFrontier:
			op.f1, op.f1Seen = m.FrontierUpdate, true
		}
	}
	for _, m := range m2 {
		switch m.Kind {
		case MessageData:
			op.out.SendData(m.Version, m.Batch)
		case MessageFrontier:
			op.f2, op.f2Seen = m.FrontierUpdate, true
		}
	}
	// Neither side's default zero-value Antichain (empty, meaning "fully
	// closed") is a real frontier until that side has actually reported
	// one; emitting their meet before both have reported would send a
	// bogus closed frontier downstream that this operator could then never
	// correct, since a sent frontier may never regress.
	if op.f1Seen && op.f2Seen {
		next := meetFrontiers(op.f1, op.f2)
		if !op.started || op.sent.Less(next) {
			op.sent = next
			op.started = true
			op.out.SendFrontier(next)
		}
	}
	return true
}

// consolidateOperator buffers incoming data by version until its input
// frontier has passed that version (no further data for it can arrive),
// then emits the consolidated (summed, zero-dropped, sorted) batch.
type consolidateOperator[T comparable] struct {
	in       StreamReader[T]
	out      *Stream[T]
	less     func(a, b T) bool
	pending  map[string]Collection[T]
	versions map[string]Version
	order    []string
	frontier Antichain
	started  bool
}

func newConsolidateOperator[T comparable](in StreamReader[T], out *Stream[T], less func(a, b T) bool) *consolidateOperator[T] {
	return &consolidateOperator[T]{
		in:       in,
		out:      out,
		less:     less,
		pending:  make(map[string]Collection[T]),
		versions: make(map[string]Version),
		frontier: in.Frontier(),
		started:  in.FrontierKnown(),
	}
}

func (op *consolidateOperator[T]) Step() bool {
	msgs := op.in.Drain()
	if len(msgs) == 0 {
		return false
	}
	var sawFrontier bool
	var newFrontier Antichain
	for _, m := range msgs {
		switch m.Kind {
		case MessageData:
			vk := m.Version.key()
			if _, ok := op.versions[vk]; !ok {
				op.versions[vk] = m.Version
				op.order = append(op.order, vk)
			}
			op.pending[vk] = ConcatRaw(op.pending[vk], m.Batch)
		case MessageFrontier:
			newFrontier = m.FrontierUpdate
			sawFrontier = true
		}
	}
	if sawFrontier {
		op.frontier = newFrontier
		op.started = true
	}
	if !op.started {
		return true
	}
	remaining := op.order[:0]
	for _, vk := range op.order {
		v := op.versions[vk]
		if op.frontier.LessEqualVersion(v) {
			remaining = append(remaining, vk)
			continue
		}
		if batch := op.pending[vk]; len(batch) > 0 {
			op.out.SendData(v, ConsolidateRaw(batch, op.less))
		}
		delete(op.pending, vk)
		delete(op.versions, vk)
	}
	op.order = remaining
	if sawFrontier {
		op.out.SendFrontier(newFrontier)
	}
	return true
}

// DebugSink receives a human-readable notification for every data batch and
// frontier update a Debug operator observes; see NewLogger for the
// structured-logging implementation, and WithLogger for installing a sink
// on a Builder (a Builder has no sink unless one is installed).
type DebugSink interface {
	LogData(label string, version Version, size int)
	LogFrontier(label string, f Antichain)
}

// debugOperator forwards every message unchanged, reporting each one to a
// sink as a side effect (used for tracing a dataflow under development).
type debugOperator[T any] struct {
	label string
	in    StreamReader[T]
	out   *Stream[T]
	sink  DebugSink
}

func newDebugOperator[T any](label string, in StreamReader[T], out *Stream[T], sink DebugSink) *debugOperator[T] {
	return &debugOperator[T]{label: label, in: in, out: out, sink: sink}
}

func (op *debugOperator[T]) Step() bool {
	msgs := op.in.Drain()
	if len(msgs) == 0 {
		return false
	}
	for _, m := range msgs {
		switch m.Kind {
		case MessageData:
			if op.sink != nil {
				op.sink.LogData(op.label, m.Version, len(m.Batch))
			}
			op.out.SendData(m.Version, m.Batch)
		case MessageFrontier:
			if op.sink != nil {
				op.sink.LogFrontier(op.label, m.FrontierUpdate)
			}
			op.out.SendFrontier(m.FrontierUpdate)
		}
	}
	return true
}
