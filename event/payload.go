package event

// Kind identifies which variant of Payload is populated.
type Kind int

const (
	// KindEmpty carries no value; used for signal-only events.
	KindEmpty Kind = iota
	KindInt64
	KindFloat64
	KindString
	KindBytes
)

// String returns a human-readable name for the Kind.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindInt64:
		return "Int64"
	case KindFloat64:
		return "Float64"
	case KindString:
		return "String"
	case KindBytes:
		return "Bytes"
	default:
		return "Unknown"
	}
}

// Payload is the tagged-union value an Event carries. Only the field
// matching Kind is meaningful; zero Payload is a valid Empty payload.
//
// Bytes is the one variant whose clone is not free: Event.Clone (used by
// EmitContext fan-out for every output but the last) copies the byte
// slice, so two downstream operators never share a backing array. The
// last output receives the original slice uncopied.
type Payload struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
}

// Empty returns the zero payload.
func Empty() Payload { return Payload{kind: KindEmpty} }

// Int64 wraps an int64 value.
func Int64(v int64) Payload { return Payload{kind: KindInt64, i: v} }

// Float64 wraps a float64 value.
func Float64(v float64) Payload { return Payload{kind: KindFloat64, f: v} }

// String wraps a string value.
func String(v string) Payload { return Payload{kind: KindString, s: v} }

// Bytes wraps a byte slice. The slice is not copied; callers that hand
// ownership of a mutable slice to an Event must not modify it afterward.
func Bytes(v []byte) Payload { return Payload{kind: KindBytes, b: v} }

// Kind reports which variant is populated.
func (p Payload) Kind() Kind { return p.kind }

// AsInt64 returns the wrapped value and whether Kind is KindInt64.
func (p Payload) AsInt64() (int64, bool) { return p.i, p.kind == KindInt64 }

// AsFloat64 returns the wrapped value and whether Kind is KindFloat64.
func (p Payload) AsFloat64() (float64, bool) { return p.f, p.kind == KindFloat64 }

// AsString returns the wrapped value and whether Kind is KindString.
func (p Payload) AsString() (string, bool) { return p.s, p.kind == KindString }

// AsBytes returns the wrapped value and whether Kind is KindBytes.
func (p Payload) AsBytes() ([]byte, bool) { return p.b, p.kind == KindBytes }

// cloned returns a Payload safe to hand to a second output edge. Value
// variants are already immutable; Bytes gets a defensive copy so two
// downstream operators can't observe each other's mutations.
func (p Payload) cloned() Payload {
	if p.kind != KindBytes || p.b == nil {
		return p
	}
	cp := make([]byte, len(p.b))
	copy(cp, p.b)
	return Payload{kind: KindBytes, b: cp}
}
