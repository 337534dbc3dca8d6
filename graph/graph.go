package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped) by clip constructors and the filter
// packages built on top of them.
var (
	ErrBadClip           = errors.New("graph: zero clip")
	ErrVariableFormat    = errors.New("graph: clip has variable format")
	ErrVariableSize      = errors.New("graph: clip has variable size")
	ErrFormatMismatch    = errors.New("graph: input formats differ")
	ErrDimensionMismatch = errors.New("graph: input dimensions differ")
	ErrGraphMismatch     = errors.New("graph: clips belong to different graphs")
	ErrPlaneIndex        = errors.New("graph: plane index out of range")
	ErrBadArgument       = errors.New("graph: bad argument")
)

// Op names of the source nodes constructed by this package.
const (
	OpBlankClip = "std.BlankClip"
	OpSource    = "std.Source"
	OpVariable  = "std.Variable"
)

// FrameFunc produces the frame at index n for a Source clip.
type FrameFunc func(n int) (*Frame, error)

// Graph is an arena of filter nodes. Clips handed out by constructors are
// lightweight references into their graph; combining clips from different
// graphs is an error. A Graph is not safe for concurrent construction.
type Graph struct {
	nodes []*node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// NodeCount returns the number of nodes created in the graph so far.
// Constructors that fail leave the count unchanged, which makes it a
// convenient probe for "no partial work on error" tests.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

type node struct {
	graph  *Graph
	id     int
	op     string
	args   Args
	inputs []Clip

	width  int
	height int
	format Format
	length int

	frameFn FrameFunc
}

func (g *Graph) append(n *node) Clip {
	n.graph = g
	n.id = len(g.nodes)
	g.nodes = append(g.nodes, n)
	return Clip{node: n}
}

// Clip is an immutable handle to one node of a graph. The zero Clip is
// invalid; every filter constructor returns a fresh Clip and never mutates
// existing nodes.
type Clip struct {
	node *node
}

// IsZero reports whether the clip is the invalid zero value.
func (c Clip) IsZero() bool { return c.node == nil }

// Graph returns the graph the clip belongs to, or nil for a zero clip.
func (c Clip) Graph() *Graph {
	if c.node == nil {
		return nil
	}
	return c.node.graph
}

// ID returns the creation index of the clip's node within its graph.
func (c Clip) ID() int { return c.node.id }

// Op returns the operation name of the clip's node.
func (c Clip) Op() string { return c.node.op }

// Width returns the clip width in pixels, 0 when variable.
func (c Clip) Width() int { return c.node.width }

// Height returns the clip height in pixels, 0 when variable.
func (c Clip) Height() int { return c.node.height }

// Format returns the clip format; the zero Format means variable.
func (c Clip) Format() Format { return c.node.format }

// Length returns the number of frames in the clip.
func (c Clip) Length() int { return c.node.length }

// Args returns a copy of the node's arguments.
func (c Clip) Args() Args { return c.node.args.clone() }

// Inputs returns a copy of the node's input clips in order.
func (c Clip) Inputs() []Clip {
	if len(c.node.inputs) == 0 {
		return nil
	}
	out := make([]Clip, len(c.node.inputs))
	copy(out, c.node.inputs)
	return out
}

// SourceFunc returns the frame callback of a Source node, nil otherwise.
func (c Clip) SourceFunc() FrameFunc { return c.node.frameFn }

// Props overrides output properties of a node created with InvokeAs.
// Zero-valued fields inherit from the first input.
type Props struct {
	Width  int
	Height int
	Format Format
	Length int
}

// Invoke appends a node running op over the clip and any extra inputs.
// The output inherits geometry, format and length from c. Invoke performs
// only structural validation; format and geometry compatibility between
// inputs is the business of the filter constructors.
func (c Clip) Invoke(op string, args Args, extra ...Clip) (Clip, error) {
	return c.InvokeAs(op, args, Props{}, extra...)
}

// InvokeAs appends a node like Invoke but with output properties overridden
// by the non-zero fields of props. It is the single point through which
// every filter package creates nodes.
func (c Clip) InvokeAs(op string, args Args, props Props, extra ...Clip) (Clip, error) {
	if c.IsZero() {
		return Clip{}, fmt.Errorf("invoke %s: %w", op, ErrBadClip)
	}
	if op == "" {
		return Clip{}, fmt.Errorf("invoke: empty op name: %w", ErrBadArgument)
	}
	inputs := make([]Clip, 0, 1+len(extra))
	inputs = append(inputs, c)
	for _, in := range extra {
		if in.IsZero() {
			return Clip{}, fmt.Errorf("invoke %s: %w", op, ErrBadClip)
		}
		if in.Graph() != c.Graph() {
			return Clip{}, fmt.Errorf("invoke %s: %w", op, ErrGraphMismatch)
		}
		inputs = append(inputs, in)
	}

	n := &node{
		op:     op,
		args:   args.clone(),
		inputs: inputs,
		width:  c.Width(),
		height: c.Height(),
		format: c.Format(),
		length: c.Length(),
	}
	if props.Width != 0 {
		n.width = props.Width
	}
	if props.Height != 0 {
		n.height = props.Height
	}
	if !props.Format.IsVariable() {
		n.format = props.Format
	}
	if props.Length != 0 {
		n.length = props.Length
	}
	return c.Graph().append(n), nil
}

// BlankOption mutates blank clip construction parameters.
type BlankOption func(*blankConfig) error

type blankConfig struct {
	color []float64
}

// WithColor sets the per-plane fill values of a blank clip. Values are in
// the clip format's own scale. Fewer values than planes repeat the last one.
func WithColor(values ...float64) BlankOption {
	return func(cfg *blankConfig) error {
		if len(values) == 0 {
			return fmt.Errorf("blank clip color needs at least one value: %w", ErrBadArgument)
		}
		cfg.color = append([]float64(nil), values...)
		return nil
	}
}

// BlankClip creates a uniform-color source clip. The default color is black:
// zero on intensity planes and the neutral value on chroma planes.
func BlankClip(g *Graph, width, height int, format Format, length int, opts ...BlankOption) (Clip, error) {
	if g == nil {
		return Clip{}, fmt.Errorf("blank clip: nil graph: %w", ErrBadArgument)
	}
	if !format.IsValid() {
		return Clip{}, fmt.Errorf("blank clip: invalid format %s: %w", format, ErrBadArgument)
	}
	if width <= 0 || height <= 0 {
		return Clip{}, fmt.Errorf("blank clip: dimensions must be positive: %dx%d: %w", width, height, ErrBadArgument)
	}
	if width>>format.SubW<<format.SubW != width || height>>format.SubH<<format.SubH != height {
		return Clip{}, fmt.Errorf("blank clip: %dx%d not divisible by subsampling of %s: %w",
			width, height, format, ErrBadArgument)
	}
	if length <= 0 {
		return Clip{}, fmt.Errorf("blank clip: length must be positive: %d: %w", length, ErrBadArgument)
	}

	var cfg blankConfig
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return Clip{}, err
		}
	}

	color := make([]float64, format.NumPlanes())
	for p := range color {
		if format.IsChromaPlane(p) {
			color[p] = format.NeutralValue(p)
		}
	}
	for p := range color {
		if len(cfg.color) > 0 {
			if p < len(cfg.color) {
				color[p] = cfg.color[p]
			} else {
				color[p] = cfg.color[len(cfg.color)-1]
			}
		}
	}
	for p, v := range color {
		lo, hi := format.ValueRange(p)
		if v < lo || v > hi {
			return Clip{}, fmt.Errorf("blank clip: color %g out of range [%g, %g] for plane %d of %s: %w",
				v, lo, hi, p, format, ErrBadArgument)
		}
	}

	return g.append(&node{
		op:     OpBlankClip,
		args:   Args{"color": color},
		width:  width,
		height: height,
		format: format,
		length: length,
	}), nil
}

// Source creates a clip whose frames are pulled from fn. It is the bridge
// for tests and embedders that feed real pixel data into a graph.
func Source(g *Graph, width, height int, format Format, length int, fn FrameFunc) (Clip, error) {
	if g == nil {
		return Clip{}, fmt.Errorf("source: nil graph: %w", ErrBadArgument)
	}
	if !format.IsValid() {
		return Clip{}, fmt.Errorf("source: invalid format %s: %w", format, ErrBadArgument)
	}
	if width <= 0 || height <= 0 {
		return Clip{}, fmt.Errorf("source: dimensions must be positive: %dx%d: %w", width, height, ErrBadArgument)
	}
	if length <= 0 {
		return Clip{}, fmt.Errorf("source: length must be positive: %d: %w", length, ErrBadArgument)
	}
	if fn == nil {
		return Clip{}, fmt.Errorf("source: nil frame func: %w", ErrBadArgument)
	}
	return g.append(&node{
		op:      OpSource,
		width:   width,
		height:  height,
		format:  format,
		length:  length,
		frameFn: fn,
	}), nil
}

// NewVariableClip creates a clip with no statically known format or size.
// Filters reject such clips; the constructor exists so that rejection paths
// can be exercised.
func NewVariableClip(g *Graph, length int) Clip {
	return g.append(&node{
		op:     OpVariable,
		length: length,
	})
}

// CheckFixed verifies that the clip has a fixed format and size, returning
// an error that names the calling filter otherwise. Filter constructors call
// it before creating any node.
func CheckFixed(c Clip, name string) error {
	if c.IsZero() {
		return fmt.Errorf("%s: %w", name, ErrBadClip)
	}
	if c.Format().IsVariable() {
		return fmt.Errorf("%s: %w", name, ErrVariableFormat)
	}
	if c.Width() <= 0 || c.Height() <= 0 {
		return fmt.Errorf("%s: %w", name, ErrVariableSize)
	}
	return nil
}

// CheckCompatible verifies that b lives in the same graph as a and matches
// its format and dimensions. Both clips must already be fixed.
func CheckCompatible(a, b Clip, name string) error {
	if err := CheckFixed(a, name); err != nil {
		return err
	}
	if err := CheckFixed(b, name); err != nil {
		return err
	}
	if a.Graph() != b.Graph() {
		return fmt.Errorf("%s: %w", name, ErrGraphMismatch)
	}
	if a.Format() != b.Format() {
		return fmt.Errorf("%s: %s vs %s: %w", name, a.Format(), b.Format(), ErrFormatMismatch)
	}
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return fmt.Errorf("%s: %dx%d vs %dx%d: %w",
			name, a.Width(), a.Height(), b.Width(), b.Height(), ErrDimensionMismatch)
	}
	return nil
}
