package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforge/streamforge/event"
	"github.com/streamforge/streamforge/operator"
)

func TestOperatorRegistryRejectsDuplicateAndUnknownType(t *testing.T) {
	reg := NewOperatorRegistry()
	noop := func(map[string]string) (operator.Operator, error) {
		return operator.FromEmitFunc("noop", func(event.Event, *operator.EmitContext) {}), nil
	}

	require.NoError(t, reg.Register("noop", noop))
	assert.Error(t, reg.Register("noop", noop), "expected duplicate registration to fail")

	_, err := reg.Build("missing", nil)
	assert.Error(t, err, "expected Build of unregistered type to fail")
}

func TestBuildGraphFromSpecWiresNodesAndEdges(t *testing.T) {
	reg := NewOperatorRegistry()

	require.NoError(t, reg.Register("sequence", func(params map[string]string) (operator.Operator, error) {
		return sequenceSource("feed", 1, 5), nil
	}))
	require.NoError(t, reg.Register("square", func(params map[string]string) (operator.Operator, error) {
		return squareOperator("square"), nil
	}))
	require.NoError(t, reg.Register("sum", func(params map[string]string) (operator.Operator, error) {
		return (&countingSum{}).sink("sum"), nil
	}))

	spec := GraphSpec{
		Nodes: []NodeSpec{
			{Name: "feed", Kind: "source", Type: "sequence"},
			{Name: "square", Kind: "operator", Type: "square"},
			{Name: "sum", Kind: "sink", Type: "sum"},
		},
		Edges: []EdgeSpec{
			{From: "feed", To: "square"},
			{From: "square", To: "sum"},
		},
	}

	g, err := BuildGraph(spec, reg, 16)
	require.NoError(t, err)
	require.NoError(t, g.validate())
	assert.Len(t, g.order, 3)
}

func TestBuildGraphFromSpecRejectsRoleMismatch(t *testing.T) {
	reg := NewOperatorRegistry()
	require.NoError(t, reg.Register("square", func(params map[string]string) (operator.Operator, error) {
		return squareOperator("square"), nil
	}))

	spec := GraphSpec{
		Nodes: []NodeSpec{
			{Name: "feed", Kind: "source", Type: "square"},
		},
	}

	_, err := BuildGraph(spec, reg, 16)
	assert.Error(t, err, "expected BuildGraph to reject a non-Source factory used as a source node")
}
