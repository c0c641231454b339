package dataflow

// BuilderOption configures a Builder at construction time, following the
// functional-options shape.
type BuilderOption func(*Builder)

// WithFeedbackTolerance sets how many consecutive empty updates a Feedback
// operator waits, per top-level loop version, before concluding that
// version has converged and retiring its contribution to the operator's
// output frontier — the mechanism that lets an Iterate scope ever report
// itself closed. The default is 3.
func WithFeedbackTolerance(n int64) BuilderOption {
	return func(b *Builder) { b.feedbackTolerance = n }
}

// WithIterationLimit sets a hard ceiling on an iteration's loop coordinate;
// exceeding it panics with ErrIterationLimitExceeded. Zero (the default)
// means no limit.
func WithIterationLimit(n int64) BuilderOption {
	return func(b *Builder) { b.iterationLimit = n }
}

// WithLogger installs the sink that Debug operators built by this Builder
// report to; see the logiface-backed implementation in logging.go.
func WithLogger(sink DebugSink) BuilderOption {
	return func(b *Builder) { b.logger = sink }
}
