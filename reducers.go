package dataflow

import "golang.org/x/exp/constraints"

// CountRaw returns, for each key, a single entry (sum of multiplicities, 1).
// This is the pure-algebra form; see Count for the incremental
// operator computing the same function over a Stream.
func CountRaw[K comparable, V any](c Collection[Pair[K, V]]) Collection[Pair[K, int64]] {
	return ReduceRaw(c, func(_ K, vs []ValMult[V]) []ValMult[int64] {
		var sum int64
		for _, v := range vs {
			sum += v.Mult
		}
		return []ValMult[int64]{{Value: sum, Mult: 1}}
	})
}

// DistinctRaw asserts that, after consolidation, no value for a key has
// negative multiplicity, then returns one entry (value, 1) per value with
// positive multiplicity. Panics with ErrNegativeMultiplicity otherwise.
func DistinctRaw[K comparable, V comparable](c Collection[Pair[K, V]]) Collection[Pair[K, V]] {
	return ReduceRaw(c, func(_ K, vs []ValMult[V]) []ValMult[V] {
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

// SumRaw returns, for each key, a single entry whose value is the sum of
// value*multiplicity over the key's consolidated group, with multiplicity 1.
func SumRaw[K comparable, V constraints.Integer | constraints.Float](c Collection[Pair[K, V]]) Collection[Pair[K, V]] {
	return ReduceRaw(c, func(_ K, vs []ValMult[V]) []ValMult[V] {
		var sum V
		for _, v := range vs {
			sum += v.Value * V(v.Mult)
		}
		return []ValMult[V]{{Value: sum, Mult: 1}}
	})
}

// MinRaw requires the consolidated per-key group to be positive (no
// negative multiplicities) and returns the single smallest value, with
// multiplicity 1. Panics with ErrNegativeMultiplicity on a negative
// consolidated multiplicity, and returns no entry for a key whose group is
// empty.
func MinRaw[K comparable, V constraints.Ordered](c Collection[Pair[K, V]]) Collection[Pair[K, V]] {
	return ReduceRaw(c, func(_ K, vs []ValMult[V]) []ValMult[V] {
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

// MaxRaw is MinRaw's dual: the single largest positive-multiplicity value.
func MaxRaw[K comparable, V constraints.Ordered](c Collection[Pair[K, V]]) Collection[Pair[K, V]] {
	return ReduceRaw(c, func(_ K, vs []ValMult[V]) []ValMult[V] {
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
