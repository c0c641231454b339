package dataflow

import (
	"errors"
	"fmt"
)

// Standard errors. All of these signal a contract violation by the caller
// (or, for ErrIterationLimitExceeded, by a non-converging iterate body);
// none are recoverable runtime conditions.
var (
	// None of the writer/graph operations recover from these; the host is
	// expected to restart. Each is raised as the value of a panic, never
	// returned.

	// ErrFrontierRegression is the panic value when a writer attempts to
	// send a frontier that is not >= its previously sent frontier.
	ErrFrontierRegression = errors.New("dataflow: frontier regression")

	// ErrDataBelowFrontier is the panic value when a writer attempts to send
	// data at a version not covered by its last sent frontier.
	ErrDataBelowFrontier = errors.New("dataflow: data sent below writer frontier")

	// ErrCompactionRegression is the panic value when Index.Compact is
	// called with a frontier that is not >= the index's current compaction
	// frontier.
	ErrCompactionRegression = errors.New("dataflow: compaction frontier regression")

	// ErrNegativeMultiplicity is the panic value of Min, Max, and Distinct
	// when the consolidated input contains a negative multiplicity.
	ErrNegativeMultiplicity = errors.New("dataflow: negative multiplicity where forbidden")

	// ErrVersionBelowCompactionFrontier is the panic value when a value is
	// added to an Index at a version strictly below the index's compaction
	// frontier.
	ErrVersionBelowCompactionFrontier = errors.New("dataflow: version strictly below compaction frontier")

	// ErrIterationLimitExceeded is the panic value (unwrapped) when a
	// Feedback operator would advance a version past a configured iteration
	// limit (see WithIterationLimit).
	ErrIterationLimitExceeded = errors.New("dataflow: iteration limit exceeded")
)

// dimensionMismatch panics: comparing or joining two versions (or
// antichains) of different dimension is always a programmer error, there is
// no sensible recovery, so it is not modeled as a returned error, matching
// the engine's broader policy of panicking on invalid construction/usage
// rather than threading an error return through every hot-path comparison.
func dimensionMismatch(a, b int) {
	panic(fmt.Sprintf("dataflow: dimension mismatch: %d != %d", a, b))
}
