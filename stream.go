package dataflow

// Message is the unit of transport between operators: either a batch of
// data at a single version, or a frontier update. Exactly one of Data/
// Frontier is meaningful, selected by Kind.
type Message[T any] struct {
	Kind MessageKind

	// Version and Batch are meaningful when Kind == MessageData.
	Version Version
	Batch   Collection[T]

	// FrontierUpdate is meaningful when Kind == MessageFrontier.
	FrontierUpdate Antichain
}

// MessageKind distinguishes the two Message variants.
type MessageKind int

const (
	MessageData MessageKind = iota
	MessageFrontier
)

// DataMessage constructs a data message.
func DataMessage[T any](version Version, batch Collection[T]) Message[T] {
	return Message[T]{Kind: MessageData, Version: version, Batch: batch}
}

// FrontierMessage constructs a frontier message.
func FrontierMessage[T any](f Antichain) Message[T] {
	return Message[T]{Kind: MessageFrontier, FrontierUpdate: f}
}

// reader is one consumer-side queue of a Stream: a FIFO of messages plus the
// reader's own view of the writer's frontier (the minimal antichain of
// versions at which more data may yet arrive on this edge).
type reader[T any] struct {
	queue         []Message[T]
	frontier      Antichain
	frontierKnown bool
}

// StreamReader is the operator-facing handle to one input edge. Each reader
// owns an independent queue (the writer fans out to every reader of the
// stream), so one operator draining slowly never blocks another.
type StreamReader[T any] struct {
	r *reader[T]
}

// Drain removes and returns every currently queued message, in send order.
func (sr StreamReader[T]) Drain() []Message[T] {
	if len(sr.r.queue) == 0 {
		return nil
	}
	out := sr.r.queue
	sr.r.queue = nil
	return out
}

// IsEmpty reports whether the reader's queue currently holds no messages.
func (sr StreamReader[T]) IsEmpty() bool { return len(sr.r.queue) == 0 }

// Frontier returns the reader's current view of the writer's frontier: the
// bound below which no further data will arrive on this edge.
func (sr StreamReader[T]) Frontier() Antichain { return sr.r.frontier }

// FrontierKnown reports whether Frontier reflects a real value: either the
// writer has explicitly sent at least one frontier, or the stream was
// constructed already seeded with one (see the Builder's frontier stack in
// graph.go). Until then, Frontier's zero-value empty Antichain is
// ambiguous — it reads identically to "fully closed" even though nothing is
// actually known yet — so operators with more than one input gate their own
// first frontier computation on this rather than risk synthesizing a bogus
// closed frontier from an unseeded side.
func (sr StreamReader[T]) FrontierKnown() bool { return sr.r.frontierKnown }

// ProbeFrontierLessThan reports whether the reader's frontier is strictly
// below f (i.e. some further data below f may still arrive on this edge).
// Operators poll this to decide whether they may safely close out a version.
func (sr StreamReader[T]) ProbeFrontierLessThan(f Antichain) bool {
	return sr.r.frontier.Less(f)
}

// Stream is a single-producer, multi-consumer edge in the dataflow graph: a
// writer sends data and frontier messages, and every reader created from
// NewReader receives an independent copy of each.
//
// A Stream enforces the two monotonicity contracts from the design: a sent
// frontier must never regress, and data must never be sent at a version not
// covered by the writer's last sent frontier (ErrFrontierRegression,
// ErrDataBelowFrontier).
type Stream[T any] struct {
	readers      []*reader[T]
	sentFrontier Antichain
	started      bool
}

// NewStream constructs an empty stream with no known frontier yet (see
// StreamReader.FrontierKnown). Readers must be attached with NewReader
// before any data is sent; readers attached afterward would miss prior
// messages, so attaching late is a programmer error the graph builder
// avoids by wiring every reader before the dataflow is stepped.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{}
}

// newSeededStream constructs a stream whose frontier is already known to be
// initial, without waiting for an explicit SendFrontier call. The graph
// Builder uses this for every stream it wires up, seeding it with the
// current scope's frontier (see Builder.currentFrontier in graph.go), so
// that an operator with more than one input never has to treat a
// freshly-built edge as ambiguously "maybe nothing sent yet, maybe really
// closed" the way a bare NewStream does.
func newSeededStream[T any](initial Antichain) *Stream[T] {
	return &Stream[T]{sentFrontier: initial, started: true}
}

// NewReader attaches a new reader to the stream, seeded with the stream's
// current frontier (for an unseeded stream that has not sent a frontier
// yet, the empty antichain, with FrontierKnown reporting false).
func (s *Stream[T]) NewReader() StreamReader[T] {
	r := &reader[T]{frontier: s.sentFrontier, frontierKnown: s.started}
	s.readers = append(s.readers, r)
	return StreamReader[T]{r: r}
}

// SendData sends a batch of data at version to every reader. It panics with
// ErrDataBelowFrontier if version is not covered by the stream's last sent
// frontier (i.e. if the frontier has already advanced past it).
func (s *Stream[T]) SendData(version Version, batch Collection[T]) {
	if s.started && !s.sentFrontier.LessEqualVersion(version) {
		panic(ErrDataBelowFrontier)
	}
	if len(batch) == 0 {
		return
	}
	msg := DataMessage(version, batch)
	for _, r := range s.readers {
		r.queue = append(r.queue, msg)
	}
}

// SendFrontier advances the stream's frontier to f, notifying every reader.
// It panics with ErrFrontierRegression if f is not >= the stream's
// previously sent frontier.
func (s *Stream[T]) SendFrontier(f Antichain) {
	if s.started && !s.sentFrontier.LessEqual(f) {
		panic(ErrFrontierRegression)
	}
	s.started = true
	s.sentFrontier = f
	msg := FrontierMessage[T](f)
	for _, r := range s.readers {
		r.queue = append(r.queue, msg)
		r.frontier = f
		r.frontierKnown = true
	}
}

// Frontier returns the stream's last sent frontier (its seed, for a stream
// built by newSeededStream that has not sent one yet; otherwise the empty
// antichain if none has been sent yet).
func (s *Stream[T]) Frontier() Antichain { return s.sentFrontier }
