package runtime

import (
	"github.com/streamforge/streamforge/errors"
	"github.com/streamforge/streamforge/operator"
)

// nodeKind distinguishes the three roles a graph node can play; a source
// has no input edge, a sink has no output edge, everything else has both.
type nodeKind int

const (
	kindSource nodeKind = iota
	kindOperator
	kindSink
)

type node struct {
	name string
	kind nodeKind
	op   operator.Operator
}

// edge is a named connection between two nodes, materialized into a Queue
// by Runtime.Init.
type edge struct {
	from, to string
	capacity int
}

// GraphBuilder assembles a processing graph from named nodes and edges,
// grounded on the reference platform's FlowGraph: named nodes, directed
// edges between named ports, and a validation pass before anything is
// allowed to run. Unlike FlowGraph, edges here connect directly to
// in-process queues instead of NATS subjects.
type GraphBuilder struct {
	nodes map[string]*node
	order []string // construction order, for deterministic instance ordering
	edges []edge

	defaultQueueCapacity int
}

// NewGraphBuilder constructs an empty GraphBuilder. defaultQueueCapacity
// is used for any Connect call that doesn't specify one explicitly via
// ConnectWithCapacity.
func NewGraphBuilder(defaultQueueCapacity int) *GraphBuilder {
	return &GraphBuilder{
		nodes:                make(map[string]*node),
		defaultQueueCapacity: defaultQueueCapacity,
	}
}

func (g *GraphBuilder) addNode(name string, kind nodeKind, op operator.Operator) error {
	if _, exists := g.nodes[name]; exists {
		return errors.WrapInvalid(errors.ErrDuplicateName, "runtime", "GraphBuilder", name)
	}
	g.nodes[name] = &node{name: name, kind: kind, op: op}
	g.order = append(g.order, name)
	return nil
}

// AddSource registers a Source node under name.
func (g *GraphBuilder) AddSource(name string, src operator.Source) error {
	return g.addNode(name, kindSource, src)
}

// AddOperator registers a general Operator node under name.
func (g *GraphBuilder) AddOperator(name string, op operator.Operator) error {
	return g.addNode(name, kindOperator, op)
}

// AddSink registers a Sink node under name.
func (g *GraphBuilder) AddSink(name string, sink operator.Sink) error {
	return g.addNode(name, kindSink, sink)
}

// Connect adds a directed edge from -> to, using the builder's default
// queue capacity.
func (g *GraphBuilder) Connect(from, to string) error {
	return g.ConnectWithCapacity(from, to, g.defaultQueueCapacity)
}

// ConnectWithCapacity adds a directed edge from -> to backed by a queue of
// the given capacity.
func (g *GraphBuilder) ConnectWithCapacity(from, to string, capacity int) error {
	g.edges = append(g.edges, edge{from: from, to: to, capacity: capacity})
	return nil
}

// validate checks the graph invariants: every edge endpoint exists, no
// source has an input edge, and no sink has an output edge.
func (g *GraphBuilder) validate() error {
	if len(g.nodes) == 0 {
		return errors.ErrEmptyGraph
	}

	hasInput := map[string]bool{}
	hasOutput := map[string]bool{}

	for _, e := range g.edges {
		fromNode, ok := g.nodes[e.from]
		if !ok {
			return errors.WrapInvalid(errors.ErrUnknownEndpoint, "runtime", "validate", e.from)
		}
		toNode, ok := g.nodes[e.to]
		if !ok {
			return errors.WrapInvalid(errors.ErrUnknownEndpoint, "runtime", "validate", e.to)
		}
		if toNode.kind == kindSource {
			return errors.WrapInvalid(errors.ErrSourceHasInput, "runtime", "validate", e.to)
		}
		if fromNode.kind == kindSink {
			return errors.WrapInvalid(errors.ErrSinkHasOutput, "runtime", "validate", e.from)
		}
		hasOutput[e.from] = true
		hasInput[e.to] = true
	}

	return nil
}
