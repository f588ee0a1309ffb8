// Package event defines the data unit that flows through a streamforge graph.
//
// An Event is immutable once constructed and is intended to be consumed at
// most once per downstream edge: an operator that needs to hand the same
// logical event to more than one output should let EmitContext clone it
// (see the operator package), not mutate and forward a single value.
package event

import "time"

// Meta carries the out-of-band attributes of an Event. All fields are
// optional; a zero Meta is valid and means "none of this was set".
type Meta struct {
	// Key partitions related events for schedulers or windowing operators
	// that key on it. Only meaningful when HasKey is set.
	Key uint64
	// HasKey distinguishes an explicit zero key from "no key set".
	HasKey bool
	// Sequence is a monotonically increasing number a Source may assign to
	// its own output for downstream ordering checks.
	Sequence uint64
	// HasSequence distinguishes an explicit zero sequence from "unset".
	HasSequence bool
	// Timestamp is when the event was produced. Defaults to time.Now() at
	// construction if not supplied via an Option.
	Timestamp time.Time
	// Source names the operator that produced the event, for diagnostics.
	Source string
}

// Event is the immutable unit of data flowing between operators.
type Event struct {
	payload Payload
	meta    Meta
}

// Option configures an Event at construction time.
type Option func(*Event)

// WithKey sets an explicit partition key.
func WithKey(key uint64) Option {
	return func(e *Event) {
		e.meta.Key = key
		e.meta.HasKey = true
	}
}

// WithSequence sets an explicit sequence number.
func WithSequence(seq uint64) Option {
	return func(e *Event) {
		e.meta.Sequence = seq
		e.meta.HasSequence = true
	}
}

// WithTimestamp overrides the default construction-time timestamp.
func WithTimestamp(t time.Time) Option {
	return func(e *Event) { e.meta.Timestamp = t }
}

// WithSource records the name of the producing operator.
func WithSource(name string) Option {
	return func(e *Event) { e.meta.Source = name }
}

// New constructs an Event carrying payload, applying any Options.
func New(payload Payload, opts ...Option) Event {
	e := Event{payload: payload, meta: Meta{Timestamp: time.Now()}}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// Payload returns the event's payload.
func (e Event) Payload() Payload { return e.payload }

// Meta returns the event's metadata.
func (e Event) Meta() Meta { return e.meta }

// WithPayload returns a copy of e carrying a new payload and the same
// metadata. Operators that transform an event's value without touching its
// provenance should use this rather than constructing a fresh Event.
func (e Event) WithPayload(p Payload) Event {
	e.payload = p
	return e
}

// Clone returns a deep-enough copy of e suitable for handing to a second
// output edge. Value payloads copy trivially; Bytes payloads get a
// defensive copy (see Payload).
func (e Event) Clone() Event {
	e.payload = e.payload.cloned()
	return e
}
