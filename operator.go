package dataflow

// Operator is the scheduler's view of one dataflow vertex: a unit of work
// that is polled once per scheduler tick via Step. Step does whatever work
// is currently possible (draining ready input, emitting output, advancing
// its output frontier) and reports whether it did anything, so the
// scheduler can tell when the graph has quiesced.
type Operator interface {
	// Step performs one unit of work and reports whether it made progress.
	// A false return does not mean the operator is finished forever: new
	// input arriving on a later tick may make it runnable again.
	Step() bool
}

// meetFrontiers returns the meet (coarsest common antichain at or below
// every argument) of the given frontiers: an operator's output frontier can
// never promise more than the meet of its inputs' frontiers, since data
// below any one of them may still arrive.
func meetFrontiers(frontiers ...Antichain) Antichain {
	if len(frontiers) == 0 {
		return Antichain{}
	}
	out := frontiers[0]
	for _, f := range frontiers[1:] {
		out = out.Meet(f)
	}
	return out
}
