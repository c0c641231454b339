package dataflow

import "golang.org/x/exp/slices"

// Entry is one (record, multiplicity) pair in a Collection.
type Entry[T any] struct {
	Record T
	Mult   int64
}

// E constructs an Entry.
func E[T any](record T, mult int64) Entry[T] {
	return Entry[T]{Record: record, Mult: mult}
}

// Collection is a multiset: an unordered bag of (record, multiplicity)
// entries. Two collections are logically equal if, after Consolidate, they
// are identical. Every operation below returns a new Collection; inputs are
// never mutated.
type Collection[T any] []Entry[T]

// FromEntries builds a Collection from a list of entries.
func FromEntries[T any](entries ...Entry[T]) Collection[T] {
	out := make(Collection[T], len(entries))
	copy(out, entries)
	return out
}

// Pair is a keyed record: (key, value).
type Pair[K, V any] struct {
	Key   K
	Value V
}

// P constructs a Pair.
func P[K, V any](key K, value V) Pair[K, V] {
	return Pair[K, V]{Key: key, Value: value}
}

// ConcatRaw returns the bag union of a and b. Multiplicities are only
// summed by a later ConsolidateRaw. This is the pure-algebra form;
// see Concat for the incremental operator over a Stream.
func ConcatRaw[T any](a, b Collection[T]) Collection[T] {
	out := make(Collection[T], 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// NegateRaw returns a copy of c with every multiplicity negated.
func NegateRaw[T any](c Collection[T]) Collection[T] {
	out := make(Collection[T], len(c))
	for i, e := range c {
		out[i] = Entry[T]{Record: e.Record, Mult: -e.Mult}
	}
	return out
}

// MapRaw applies f to every record, preserving multiplicity. f must not be
// used to change multiplicities; use a reducer for that.
func MapRaw[A, B any](c Collection[A], f func(A) B) Collection[B] {
	out := make(Collection[B], len(c))
	for i, e := range c {
		out[i] = Entry[B]{Record: f(e.Record), Mult: e.Mult}
	}
	return out
}

// FilterRaw retains only entries for which p(record) is true.
func FilterRaw[T any](c Collection[T], p func(T) bool) Collection[T] {
	out := make(Collection[T], 0, len(c))
	for _, e := range c {
		if p(e.Record) {
			out = append(out, e)
		}
	}
	return out
}

// ConsolidateRaw groups c by record, sums multiplicities, drops zeros, and
// emits the result sorted by less (the host's total order on records,
// supplied by the caller since an arbitrary T has no intrinsic order).
func ConsolidateRaw[T comparable](c Collection[T], less func(a, b T) bool) Collection[T] {
	totals := make(map[T]int64, len(c))
	order := make([]T, 0, len(c))
	for _, e := range c {
		if _, seen := totals[e.Record]; !seen {
			order = append(order, e.Record)
		}
		totals[e.Record] += e.Mult
	}
	out := make(Collection[T], 0, len(order))
	for _, r := range order {
		if m := totals[r]; m != 0 {
			out = append(out, Entry[T]{Record: r, Mult: m})
		}
	}
	slices.SortFunc(out, func(a, b Entry[T]) int {
		switch {
		case less(a.Record, b.Record):
			return -1
		case less(b.Record, a.Record):
			return 1
		default:
			return 0
		}
	})
	return out
}

// JoinRaw implements the bilinear join contract directly over collections:
// for every pair ((k,v1),m1) in a, ((k,v2),m2) in b with equal keys, emit
// ((k,(v1,v2)), m1*m2). The result is not consolidated.
func JoinRaw[K comparable, V1, V2 any](a Collection[Pair[K, V1]], b Collection[Pair[K, V2]]) Collection[Pair[K, Pair[V1, V2]]] {
	byKeyB := make(map[K][]Entry[V2])
	for _, e := range b {
		byKeyB[e.Record.Key] = append(byKeyB[e.Record.Key], Entry[V2]{Record: e.Record.Value, Mult: e.Mult})
	}
	var out Collection[Pair[K, Pair[V1, V2]]]
	for _, ea := range a {
		for _, eb := range byKeyB[ea.Record.Key] {
			out = append(out, Entry[Pair[K, Pair[V1, V2]]]{
				Record: P(ea.Record.Key, P(ea.Record.Value, eb.Record)),
				Mult:   ea.Mult * eb.Mult,
			})
		}
	}
	return out
}

// ValMult is a (value, multiplicity) pair, the unit Reduce's user function
// operates on: a per-key group of values is passed in, and a new per-key
// group of (possibly different type) values/multiplicities comes back out.
type ValMult[V any] struct {
	Value V
	Mult  int64
}

// ReduceRaw groups c by key and passes each key's (value, multiplicity)
// list to g, wrapping the result as (key, value'), mult' entries. This is
// the pure-algebra form; the incremental [Reduce] operator computes
// the same function but as a difference against previously emitted output.
func ReduceRaw[K comparable, V, R any](c Collection[Pair[K, V]], g func(K, []ValMult[V]) []ValMult[R]) Collection[Pair[K, R]] {
	byKey := make(map[K][]ValMult[V])
	var order []K
	for _, e := range c {
		if _, seen := byKey[e.Record.Key]; !seen {
			order = append(order, e.Record.Key)
		}
		byKey[e.Record.Key] = append(byKey[e.Record.Key], ValMult[V]{Value: e.Record.Value, Mult: e.Mult})
	}
	var out Collection[Pair[K, R]]
	for _, k := range order {
		for _, rv := range g(k, byKey[k]) {
			out = append(out, Entry[Pair[K, R]]{Record: P(k, rv.Value), Mult: rv.Mult})
		}
	}
	return out
}

// consolidateValMult is a helper shared by the derived reducers: it sums
// multiplicities per distinct value and drops zeros, without requiring a
// total order (map iteration order does not matter for these reducers,
// since each only cares about aggregate properties of the resulting set).
func consolidateValMult[V comparable](vs []ValMult[V]) map[V]int64 {
	totals := make(map[V]int64, len(vs))
	for _, v := range vs {
		totals[v.Value] += v.Mult
	}
	for v, m := range totals {
		if m == 0 {
			delete(totals, v)
		}
	}
	return totals
}

// consolidateValueEntries sums multiplicities per distinct value and drops
// zeros, the same as consolidateValMult, but returns a slice: the form
// Index.Compact needs, since a versionGroup's entries are stored as a slice
// rather than a map.
func consolidateValueEntries[V comparable](entries []ValMult[V]) []ValMult[V] {
	totals := consolidateValMult(entries)
	out := make([]ValMult[V], 0, len(totals))
	for _, e := range entries {
		if _, ok := totals[e.Value]; ok {
			out = append(out, ValMult[V]{Value: e.Value, Mult: totals[e.Value]})
			delete(totals, e.Value)
		}
	}
	return out
}
