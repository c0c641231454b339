package dataflow

import "container/heap"

// versionHeap is a min-heap of distinct, pending Versions, ordered by a
// linear extension of the product partial order (sum of coordinates, then
// lexicographic) so that popping the heap always yields a version no later,
// under the partial order, than any version still pending that it could
// possibly depend on — a timerHeap-style ordering, the same shape used for
// pending-deadline ordering in an event loop's timer queue.
type versionHeap struct {
	versions []Version
	present  map[string]bool
}

func newVersionHeap() *versionHeap {
	return &versionHeap{present: make(map[string]bool)}
}

func versionRank(v Version) (sum int64, lex string) {
	for _, c := range v.coords {
		sum += c
	}
	return sum, v.key()
}

func (h *versionHeap) Len() int { return len(h.versions) }

func (h *versionHeap) Less(i, j int) bool {
	si, li := versionRank(h.versions[i])
	sj, lj := versionRank(h.versions[j])
	if si != sj {
		return si < sj
	}
	return li < lj
}

func (h *versionHeap) Swap(i, j int) {
	h.versions[i], h.versions[j] = h.versions[j], h.versions[i]
}

func (h *versionHeap) Push(x any) {
	h.versions = append(h.versions, x.(Version))
}

func (h *versionHeap) Pop() any {
	old := h.versions
	n := len(old)
	v := old[n-1]
	h.versions = old[:n-1]
	return v
}

// Add pushes v onto the heap unless an equal version is already pending.
func (h *versionHeap) Add(v Version) {
	if h.present[v.key()] {
		return
	}
	h.present[v.key()] = true
	heap.Push(h, v)
}

// PeekIsClosed reports whether the heap is non-empty and its minimum
// version is closed with respect to frontier (no further data for it can
// arrive).
func (h *versionHeap) PeekIsClosed(frontier Antichain) (Version, bool) {
	if h.Len() == 0 {
		return Version{}, false
	}
	top := h.versions[0]
	if frontier.LessEqualVersion(top) {
		return Version{}, false
	}
	return top, true
}

// PopMin removes and returns the minimum version, clearing its presence flag.
func (h *versionHeap) PopMin() Version {
	v := heap.Pop(h).(Version)
	delete(h.present, v.key())
	return v
}
