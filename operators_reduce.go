package dataflow

// reduceOperator is the incremental per-key reduction. It
// maintains an Index of accumulated input per key and a second Index of
// what it has already emitted per key, so that when a version closes it
// only needs to recompute g for the keys that actually changed at that
// version, and only emits the difference against what was previously
// reported for that key.
//
// keysTodo orders the set of (not yet processed) closed versions with a
// versionHeap, so that versions are finalized in an order consistent with
// the partial order: a version is never finalized before one it depends on.
type reduceOperator[K comparable, V comparable, R comparable] struct {
	in  StreamReader[Pair[K, V]]
	out *Stream[Pair[K, R]]
	g   func(K, []ValMult[V]) []ValMult[R]

	index    *Index[K, V]
	indexOut *Index[K, R]

	dirty    map[string]map[K]struct{}
	versions map[string]Version
	keysTodo *versionHeap

	frontier Antichain
	started  bool
}

func newReduceOperator[K comparable, V comparable, R comparable](
	in StreamReader[Pair[K, V]],
	out *Stream[Pair[K, R]],
	g func(K, []ValMult[V]) []ValMult[R],
) *reduceOperator[K, V, R] {
	return &reduceOperator[K, V, R]{
		in:       in,
		out:      out,
		g:        g,
		index:    NewIndex[K, V](),
		indexOut: NewIndex[K, R](),
		dirty:    make(map[string]map[K]struct{}),
		versions: make(map[string]Version),
		keysTodo: newVersionHeap(),
		frontier: in.Frontier(),
		started:  in.FrontierKnown(),
	}
}

func (op *reduceOperator[K, V, R]) markDirty(version Version, key K) {
	vk := version.key()
	if _, ok := op.versions[vk]; !ok {
		op.versions[vk] = version
	}
	set, ok := op.dirty[vk]
	if !ok {
		set = make(map[K]struct{})
		op.dirty[vk] = set
	}
	set[key] = struct{}{}
	op.keysTodo.Add(version)
}

func (op *reduceOperator[K, V, R]) Step() bool {
	msgs := op.in.Drain()
	var sawFrontier bool
	var newFrontier Antichain
	for _, m := range msgs {
		switch m.Kind {
		case MessageData:
			for _, e := range m.Batch {
				key := e.Record.Key
				// Every version already holding data for key may now
				// reconstruct differently at the join of its version and
				// this new entry's version, even though neither version is
				// itself closing yet: record that join as dirty too, not
				// just the incoming version, so a later-closing version is
				// never finalized against stale input.
				existing := op.index.Versions(key)
				op.index.AddValue(key, m.Version, ValMult[V]{Value: e.Record.Value, Mult: e.Mult})
				op.markDirty(m.Version, key)
				for _, v2 := range existing {
					op.markDirty(m.Version.Join(v2), key)
				}
			}
		case MessageFrontier:
			newFrontier = m.FrontierUpdate
			sawFrontier = true
		}
	}
	if len(msgs) == 0 {
		return false
	}
	if sawFrontier {
		op.frontier = newFrontier
		op.started = true
	}
	if !op.started {
		return true
	}

	progressed := false
	for {
		v, closed := op.keysTodo.PeekIsClosed(op.frontier)
		if !closed {
			break
		}
		op.keysTodo.PopMin()
		progressed = true
		vk := v.key()
		keys := op.dirty[vk]
		delete(op.dirty, vk)
		delete(op.versions, vk)

		var out Collection[Pair[K, R]]
		for key := range keys {
			oldTotals := consolidateValMult(op.indexOut.ReconstructAt(key, v))
			current := consolidateValMult(op.index.ReconstructAt(key, v))
			var currentVM []ValMult[V]
			for val, m := range current {
				currentVM = append(currentVM, ValMult[V]{Value: val, Mult: m})
			}
			newVM := op.g(key, currentVM)
			newTotals := make(map[R]int64, len(newVM))
			for _, rv := range newVM {
				newTotals[rv.Value] += rv.Mult
			}
			for r, m := range newTotals {
				if d := m - oldTotals[r]; d != 0 {
					out = append(out, Entry[Pair[K, R]]{Record: P(key, r), Mult: d})
					op.indexOut.AddValue(key, v, ValMult[R]{Value: r, Mult: d})
				}
			}
			for r, m := range oldTotals {
				if _, seen := newTotals[r]; !seen && m != 0 {
					out = append(out, Entry[Pair[K, R]]{Record: P(key, r), Mult: -m})
					op.indexOut.AddValue(key, v, ValMult[R]{Value: r, Mult: -m})
				}
			}
		}
		if len(out) > 0 {
			op.out.SendData(v, out)
		}
	}

	if sawFrontier {
		op.out.SendFrontier(newFrontier)
		op.index.Compact(newFrontier)
		op.indexOut.Compact(newFrontier)
	}
	return progressed || sawFrontier
}
