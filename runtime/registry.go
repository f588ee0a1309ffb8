package runtime

import (
	"sync"

	"github.com/streamforge/streamforge/errors"
	"github.com/streamforge/streamforge/operator"
)

// Factory builds an Operator from the string parameters a GraphSpec node
// carries. It never performs I/O itself; anything a factory needs to dial
// out to belongs in the Operator's own Init.
type Factory func(params map[string]string) (operator.Operator, error)

// OperatorRegistry maps a node type name to the Factory that builds it, so
// a graph can be assembled from a GraphSpec instead of hand-written
// GraphBuilder calls. Grounded on the reference platform's
// component.Registry factory map, narrowed to the single
// name-to-constructor responsibility: no instance bookkeeping, no
// dependency injection, no resource-conflict tracking, since streamforge
// nodes don't claim exclusive external resources the way a network input
// component does.
type OperatorRegistry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewOperatorRegistry constructs an empty OperatorRegistry.
func NewOperatorRegistry() *OperatorRegistry {
	return &OperatorRegistry{factories: make(map[string]Factory)}
}

// Register adds a Factory under typeName. It returns an error if typeName
// is empty or already registered.
func (r *OperatorRegistry) Register(typeName string, f Factory) error {
	if typeName == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "runtime", "OperatorRegistry.Register", "empty type name")
	}
	if f == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "runtime", "OperatorRegistry.Register", "nil factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[typeName]; exists {
		return errors.WrapInvalid(errors.ErrDuplicateName, "runtime", "OperatorRegistry.Register", typeName)
	}
	r.factories[typeName] = f
	return nil
}

// Build looks up typeName and invokes its Factory with params.
func (r *OperatorRegistry) Build(typeName string, params map[string]string) (operator.Operator, error) {
	r.mu.RLock()
	f, ok := r.factories[typeName]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrUnknownEndpoint, "runtime", "OperatorRegistry.Build", "unregistered type "+typeName)
	}
	return f(params)
}

// Types returns every registered type name, for diagnostics.
func (r *OperatorRegistry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

// NodeSpec is one node of a declaratively-assembled graph: a name, a role
// (source/operator/sink), a registry type to build it from, and whatever
// string parameters that Factory needs.
type NodeSpec struct {
	Name   string            `yaml:"name"`
	Kind   string            `yaml:"kind"`
	Type   string            `yaml:"type"`
	Params map[string]string `yaml:"params"`
}

// EdgeSpec is one directed edge of a declaratively-assembled graph. A
// Capacity of 0 means "use the graph's default queue capacity".
type EdgeSpec struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Capacity int    `yaml:"capacity"`
}

// GraphSpec is the declarative, YAML-friendly counterpart to building a
// graph through GraphBuilder calls directly. It exists for the demo binary
// and for any caller that wants to describe a graph in a config file
// instead of Go code; the programmatic GraphBuilder API is unaffected and
// remains the primary way to assemble a graph.
type GraphSpec struct {
	Nodes []NodeSpec `yaml:"nodes"`
	Edges []EdgeSpec `yaml:"edges"`
}

// BuildGraph resolves every NodeSpec against registry and assembles the
// result into a GraphBuilder, wiring every EdgeSpec in declaration order.
// It returns an error on an unknown kind, an unregistered type, a Factory
// that returns an Operator not satisfying the role its Kind demands (a
// source node whose Factory returns something that isn't an
// operator.Source, for instance), or any error GraphBuilder itself would
// return.
func BuildGraph(spec GraphSpec, registry *OperatorRegistry, defaultQueueCapacity int) (*GraphBuilder, error) {
	g := NewGraphBuilder(defaultQueueCapacity)

	for _, n := range spec.Nodes {
		op, err := registry.Build(n.Type, n.Params)
		if err != nil {
			return nil, errors.Wrap(err, "runtime", "BuildGraph", "node "+n.Name)
		}

		switch n.Kind {
		case "source":
			src, ok := op.(operator.Source)
			if !ok {
				return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "runtime", "BuildGraph", "type "+n.Type+" does not implement Source, required by node "+n.Name)
			}
			err = g.AddSource(n.Name, src)
		case "sink":
			sink, ok := op.(operator.Sink)
			if !ok {
				return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "runtime", "BuildGraph", "type "+n.Type+" does not implement Sink, required by node "+n.Name)
			}
			err = g.AddSink(n.Name, sink)
		case "operator":
			err = g.AddOperator(n.Name, op)
		default:
			return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "runtime", "BuildGraph", "unknown kind "+n.Kind+" for node "+n.Name)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, e := range spec.Edges {
		var err error
		if e.Capacity > 0 {
			err = g.ConnectWithCapacity(e.From, e.To, e.Capacity)
		} else {
			err = g.Connect(e.From, e.To)
		}
		if err != nil {
			return nil, err
		}
	}

	return g, nil
}
