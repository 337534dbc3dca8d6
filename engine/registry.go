package engine

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-deband/graph"
)

// Request carries everything an OpFunc needs to render one output frame:
// the node being evaluated, the frame index and the rendered frames of the
// node's inputs, in input order.
//
// Rendered frames are shared between all consumers of a node; OpFuncs must
// treat the input frames as read-only and return a freshly allocated frame.
type Request struct {
	Clip   graph.Clip
	Index  int
	Inputs []*graph.Frame
}

// OpFunc renders the output frame of one node. The returned frame must
// match the node's declared dimensions and format.
type OpFunc func(req Request) (*graph.Frame, error)

// Registry maps op names to their frame renderers.
type Registry struct {
	ops map[string]OpFunc
}

var errDuplicateOp = errors.New("duplicate op")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]OpFunc)}
}

// Register adds a renderer for the given op name.
func (r *Registry) Register(op string, fn OpFunc) error {
	if op == "" {
		return errors.New("empty op name")
	}

	if fn == nil {
		return errors.New("nil op func")
	}

	if _, exists := r.ops[op]; exists {
		return fmt.Errorf("%w: %s", errDuplicateOp, op)
	}

	r.ops[op] = fn

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(op string, fn OpFunc) {
	err := r.Register(op, fn)
	if err != nil {
		panic("engine registry: " + err.Error())
	}
}

// Lookup returns the renderer for the given op name, or nil.
func (r *Registry) Lookup(op string) OpFunc {
	return r.ops[op]
}
