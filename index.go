package dataflow

// versionGroup holds every (value, multiplicity) entry recorded for one key
// at one version. Pre-compaction, the same (key, version, value) may appear
// more than once; compaction consolidates.
type versionGroup[V comparable] struct {
	version Version
	entries []ValMult[V]
}

// Index is a per-key, per-version store of (value, multiplicity) changes:
// the engine's "arrangement". It is the shared implementation behind the
// incremental Join and Reduce operators, supporting the delta-join
// primitive and frontier-driven compaction.
//
// An Index is not safe for concurrent use; per the engine's single-threaded
// scheduling model, each operator exclusively owns its own Index instances.
type Index[K comparable, V comparable] struct {
	byKey              map[K][]*versionGroup[V]
	compactionFrontier Antichain
}

// NewIndex constructs an empty Index.
func NewIndex[K comparable, V comparable]() *Index[K, V] {
	return &Index[K, V]{byKey: make(map[K][]*versionGroup[V])}
}

func versionBelowFrontier(v Version, f Antichain) bool {
	for _, e := range f.elems {
		if v.LessThan(e) {
			return true
		}
	}
	return false
}

// AddValue appends one (value, multiplicity) entry for key at version. It
// panics with ErrVersionBelowCompactionFrontier if version is strictly
// below the index's current compaction frontier.
func (idx *Index[K, V]) AddValue(key K, version Version, vm ValMult[V]) {
	if versionBelowFrontier(version, idx.compactionFrontier) {
		panic(ErrVersionBelowCompactionFrontier)
	}
	idx.addValueUnchecked(key, version, vm)
}

func (idx *Index[K, V]) addValueUnchecked(key K, version Version, vm ValMult[V]) {
	groups := idx.byKey[key]
	for _, g := range groups {
		if g.version.Equal(version) {
			g.entries = append(g.entries, vm)
			return
		}
	}
	idx.byKey[key] = append(groups, &versionGroup[V]{version: version, entries: []ValMult[V]{vm}})
}

// Append merges other's entries into idx, key by key, version by version.
// It bypasses the compaction-frontier check: merging in another index's
// (already-valid) history does not introduce a new write.
func (idx *Index[K, V]) Append(other *Index[K, V]) {
	for k, groups := range other.byKey {
		for _, g := range groups {
			for _, vm := range g.entries {
				idx.addValueUnchecked(k, g.version, vm)
			}
		}
	}
}

// Versions returns the list of versions currently holding any entry for key.
func (idx *Index[K, V]) Versions(key K) []Version {
	groups := idx.byKey[key]
	out := make([]Version, len(groups))
	for i, g := range groups {
		out[i] = g.version
	}
	return out
}

// ReconstructAt accumulates (value, multiplicity) entries from every stored
// version <= q, for key. No consolidation is performed: callers that need
// per-value totals should consolidate the result themselves. An unknown key
// yields an empty (nil) result.
func (idx *Index[K, V]) ReconstructAt(key K, q Version) []ValMult[V] {
	var out []ValMult[V]
	for _, g := range idx.byKey[key] {
		if g.version.LessEqual(q) {
			out = append(out, g.entries...)
		}
	}
	return out
}

// VersionedBatch is one (version, collection) pair produced by Index.Join.
type VersionedBatch[T any] struct {
	Version Version
	Data    Collection[T]
}

// joinBatchKey identifies one (key, resulting version) group while IndexJoin
// accumulates the Cartesian product below, before it is flattened into the
// returned, order-preserving slice of VersionedBatch.
type joinBatchKey[K comparable] struct {
	key     K
	version string
}

// IndexJoin is the delta-join primitive: for each key present in
// both a and b, and for each (v1, data1) group of a and (v2, data2) group of
// b, it emits a batch at version v1.Join(v2) containing the Cartesian
// product of data1 and data2, with multiplicities multiplied.
//
// This is a free function, not a method on Index, because a is generic over
// V1 and b over a second, independent value type V2: Go does not allow a
// method to introduce a type parameter beyond those bound by its receiver,
// so the second value type must be a function-level parameter here instead.
//
// A join operator calls this with (delta_a, indexB) and (indexA, delta_b) —
// never (delta_a, delta_b) after appending deltas into the main indexes — so
// that every pair is counted exactly once; see the Join operator.
func IndexJoin[K comparable, V1, V2 comparable](a *Index[K, V1], b *Index[K, V2]) []VersionedBatch[Pair[K, Pair[V1, V2]]] {
	byVersion := make(map[joinBatchKey[K]]*VersionedBatch[Pair[K, Pair[V1, V2]]])
	var order []joinBatchKey[K]
	for k, groupsA := range a.byKey {
		groupsB, ok := b.byKey[k]
		if !ok {
			continue
		}
		for _, ga := range groupsA {
			for _, gb := range groupsB {
				rv := ga.version.Join(gb.version)
				mk := joinBatchKey[K]{key: k, version: rv.key()}
				vb, ok := byVersion[mk]
				if !ok {
					vb = &VersionedBatch[Pair[K, Pair[V1, V2]]]{Version: rv}
					byVersion[mk] = vb
					order = append(order, mk)
				}
				for _, ea := range ga.entries {
					for _, eb := range gb.entries {
						vb.Data = append(vb.Data, Entry[Pair[K, Pair[V1, V2]]]{
							Record: P(k, P(ea.Value, eb.Value)),
							Mult:   ea.Mult * eb.Mult,
						})
					}
				}
			}
		}
	}
	out := make([]VersionedBatch[Pair[K, Pair[V1, V2]]], 0, len(order))
	for _, mk := range order {
		out = append(out, *byVersion[mk])
	}
	return out
}

// CompactionFrontier returns the index's current compaction frontier.
func (idx *Index[K, V]) CompactionFrontier() Antichain { return idx.compactionFrontier }

// Compact rewrites, for each of the given keys (or every key holding data,
// if keys is empty), the version of every stored group not already >= frontier
// to version.AdvanceBy(frontier), then consolidates the resulting group
// (summing per-value multiplicities, dropping zeros). It panics with
// ErrCompactionRegression if frontier is not >= the index's current
// compaction frontier. A fresh index has no compaction frontier yet (its
// compaction frontier is empty), so its first Compact accepts any frontier.
func (idx *Index[K, V]) Compact(frontier Antichain, keys ...K) {
	if !idx.compactionFrontier.IsEmpty() && !idx.compactionFrontier.LessEqual(frontier) {
		panic(ErrCompactionRegression)
	}
	idx.compactionFrontier = frontier

	targets := keys
	if len(targets) == 0 {
		targets = make([]K, 0, len(idx.byKey))
		for k := range idx.byKey {
			targets = append(targets, k)
		}
	}
	for _, k := range targets {
		groups := idx.byKey[k]
		if len(groups) == 0 {
			continue
		}
		byVersion := make(map[string]*versionGroup[V])
		var order []string
		for _, g := range groups {
			v := g.version
			if !frontier.LessEqualVersion(v) && !frontier.IsEmpty() {
				v = AdvanceBy(g.version, frontier)
			}
			vk := v.key()
			ng, ok := byVersion[vk]
			if !ok {
				ng = &versionGroup[V]{version: v}
				byVersion[vk] = ng
				order = append(order, vk)
			}
			ng.entries = append(ng.entries, g.entries...)
		}
		newGroups := make([]*versionGroup[V], 0, len(order))
		for _, vk := range order {
			g := byVersion[vk]
			g.entries = consolidateValueEntries(g.entries)
			newGroups = append(newGroups, g)
		}
		idx.byKey[k] = newGroups
	}
}
