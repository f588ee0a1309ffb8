package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsTimestamp(t *testing.T) {
	before := time.Now()
	e := New(Int64(42))
	after := time.Now()

	ts := e.Meta().Timestamp
	assert.False(t, ts.Before(before) || ts.After(after), "Timestamp %v not within [%v, %v]", ts, before, after)
}

func TestOptionsApply(t *testing.T) {
	e := New(String("hello"), WithKey(7), WithSequence(3), WithSource("gen"))

	m := e.Meta()
	assert.True(t, m.HasKey)
	assert.Equal(t, uint64(7), m.Key)
	assert.True(t, m.HasSequence)
	assert.Equal(t, uint64(3), m.Sequence)
	assert.Equal(t, "gen", m.Source)
}

func TestWithPayloadPreservesMeta(t *testing.T) {
	e := New(Int64(1), WithKey(9))
	e2 := e.WithPayload(Int64(2))

	v, ok := e2.Payload().AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(2), v)
	assert.Equal(t, uint64(9), e2.Meta().Key)
}

func TestCloneBytesIsDefensive(t *testing.T) {
	original := []byte{1, 2, 3}
	e := New(Bytes(original))
	clone := e.Clone()

	original[0] = 99

	b, ok := clone.Payload().AsBytes()
	require.True(t, ok, "expected Bytes payload")
	assert.Equal(t, byte(1), b[0], "clone observed mutation of source slice")
}

func TestEmptyPayload(t *testing.T) {
	p := Empty()
	assert.Equal(t, KindEmpty, p.Kind())
}
