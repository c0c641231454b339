package dataflow

// joinOperator is the incremental bilinear join: it maintains
// an Index per input, and on each new batch computes only the cross terms
// involving that batch (a delta-join), so the work done per batch is
// proportional to the batch size times the size of the *other* side's
// index, never to the full history of both sides.
type joinOperator[K comparable, V1, V2 comparable] struct {
	in1            StreamReader[Pair[K, V1]]
	in2            StreamReader[Pair[K, V2]]
	out            *Stream[Pair[K, Pair[V1, V2]]]
	indexA         *Index[K, V1]
	indexB         *Index[K, V2]
	f1, f2         Antichain
	f1Seen, f2Seen bool
	sentFrontier   Antichain
	started        bool
}

func newJoinOperator[K comparable, V1, V2 comparable](
	in1 StreamReader[Pair[K, V1]],
	in2 StreamReader[Pair[K, V2]],
	out *Stream[Pair[K, Pair[V1, V2]]],
) *joinOperator[K, V1, V2] {
	return &joinOperator[K, V1, V2]{
		in1:    in1,
		in2:    in2,
		out:    out,
		indexA: NewIndex[K, V1](),
		indexB: NewIndex[K, V2](),
		f1:     in1.Frontier(), f1Seen: in1.FrontierKnown(),
		f2: in2.Frontier(), f2Seen: in2.FrontierKnown(),
	}
}

func (op *joinOperator[K, V1, V2]) Step() bool {
	m1 := op.in1.Drain()
	m2 := op.in2.Drain()
	if len(m1) == 0 && len(m2) == 0 {
		return false
	}

	for _, m := range m1 {
		switch m.Kind {
		case MessageData:
			delta := NewIndex[K, V1]()
			for _, e := range m.Batch {
				delta.AddValue(e.Record.Key, m.Version, ValMult[V1]{Value: e.Record.Value, Mult: e.Mult})
			}
			for _, b := range IndexJoin(delta, op.indexB) {
				op.out.SendData(b.Version, b.Data)
			}
			op.indexA.Append(delta)
		case MessageFrontier:
			op.f1, op.f1Seen = m.FrontierUpdate, true
		}
	}

	for _, m := range m2 {
		switch m.Kind {
		case MessageData:
			delta := NewIndex[K, V2]()
			for _, e := range m.Batch {
				delta.AddValue(e.Record.Key, m.Version, ValMult[V2]{Value: e.Record.Value, Mult: e.Mult})
			}
			for _, b := range IndexJoin(op.indexA, delta) {
				op.out.SendData(b.Version, b.Data)
			}
			op.indexB.Append(delta)
		case MessageFrontier:
			op.f2, op.f2Seen = m.FrontierUpdate, true
		}
	}

	// See concatOperator.Step: don't synthesize a frontier from one real
	// side and one never-yet-reported (zero-value, i.e. falsely "closed")
	// side, since that bogus value could then never be corrected once a
	// real one arrives.
	if op.f1Seen && op.f2Seen {
		next := meetFrontiers(op.f1, op.f2)
		if !op.started || op.sentFrontier.Less(next) {
			op.sentFrontier = next
			op.started = true
			op.out.SendFrontier(next)
			op.indexA.Compact(next)
			op.indexB.Compact(next)
		}
	}
	return true
}
