// Package engine renders frame graphs. It walks a clip's node tree depth
// first, evaluates every node at most once per frame index and hands each
// node to the OpFunc registered for its op name. The Builtin registry covers
// the generic std, rgvs and resize ops; external plugin ops such as
// f3kdb.Deband or placebo.Deband are not implemented here and must be
// registered by the embedder.
//
// Plane values flow through the engine as exact float64 math in the frame
// format's own scale. Integer formats are not re-quantized between nodes;
// whole code values are produced only where the op semantics demand it:
// source nodes, Binarize, and the resize ops, which quantize through the
// dither package. Expression and filter intermediates may therefore carry
// fractional or out-of-range values, which is what lets integer pipelines
// compute variance maps and merge weights without precision loss.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-deband/graph"
)

// Render failures.
var (
	// ErrUnknownOp marks a node whose op has no registered renderer.
	ErrUnknownOp = errors.New("engine: unknown op")
	// ErrFrameMismatch marks an OpFunc result that does not match its
	// node's declared dimensions or format.
	ErrFrameMismatch = errors.New("engine: frame does not match node properties")
)

const maxParallelism = 256

// Option mutates engine construction parameters.
type Option func(*Engine) error

// WithRegistry replaces the Builtin op registry.
func WithRegistry(reg *Registry) Option {
	return func(e *Engine) error {
		if reg == nil {
			return errors.New("engine: nil registry")
		}
		e.reg = reg
		return nil
	}
}

// WithLogger sets the logger for per-node evaluation traces. The default
// logger discards everything.
func WithLogger(log *logrus.Logger) Option {
	return func(e *Engine) error {
		if log == nil {
			return errors.New("engine: nil logger")
		}
		e.log = log
		return nil
	}
}

// WithParallelism bounds the number of frames RenderRange evaluates
// concurrently. The default is the machine's CPU count.
func WithParallelism(n int) Option {
	return func(e *Engine) error {
		if n < 1 || n > maxParallelism {
			return fmt.Errorf("engine: parallelism must be in [1, %d]: %d", maxParallelism, n)
		}
		e.parallel = n
		return nil
	}
}

// Engine evaluates clip graphs into frames. An Engine is safe for
// concurrent use once constructed.
type Engine struct {
	reg      *Registry
	log      *logrus.Logger
	parallel int
}

// New creates an engine. Without options it renders with the Builtin
// registry, a silent logger and one render worker per CPU.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{parallel: runtime.NumCPU()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.reg == nil {
		e.reg = Builtin()
	}
	if e.log == nil {
		log := logrus.New()
		log.SetOutput(io.Discard)
		e.log = log
	}
	if e.parallel < 1 {
		e.parallel = 1
	}
	return e, nil
}

// RenderFrame evaluates the clip's graph for frame n. Nodes shared by
// several paths are evaluated once; the returned frame and all intermediate
// frames are owned by the caller's render and must not be mutated if the
// clip is rendered again.
func (e *Engine) RenderFrame(ctx context.Context, clip graph.Clip, n int) (*graph.Frame, error) {
	if err := graph.CheckFixed(clip, "engine: render frame"); err != nil {
		return nil, err
	}
	if n < 0 || n >= clip.Length() {
		return nil, fmt.Errorf("engine: render frame: index %d out of range [0, %d): %w",
			n, clip.Length(), graph.ErrBadArgument)
	}

	r := &render{engine: e, index: n, memo: make(map[int]*graph.Frame)}
	return r.eval(ctx, clip)
}

// RenderRange evaluates frames first through last inclusive, fanning out
// over the configured number of workers. The first error cancels the
// remaining work and is returned.
func (e *Engine) RenderRange(ctx context.Context, clip graph.Clip, first, last int) ([]*graph.Frame, error) {
	if err := graph.CheckFixed(clip, "engine: render range"); err != nil {
		return nil, err
	}
	if first < 0 || last < first || last >= clip.Length() {
		return nil, fmt.Errorf("engine: render range: [%d, %d] out of range [0, %d): %w",
			first, last, clip.Length(), graph.ErrBadArgument)
	}

	count := last - first + 1
	frames := make([]*graph.Frame, count)

	workers := e.parallel
	if workers > count {
		workers = count
	}
	if workers == 1 {
		for n := first; n <= last; n++ {
			f, err := e.RenderFrame(ctx, clip, n)
			if err != nil {
				return nil, err
			}
			frames[n-first] = f
		}
		return frames, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				f, err := e.RenderFrame(ctx, clip, n)
				if err != nil {
					fail(err)
					return
				}
				frames[n-first] = f
			}
		}()
	}

feed:
	for n := first; n <= last; n++ {
		select {
		case jobs <- n:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	// A cancelled feed leaves holes in frames without any worker failing.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

// render is the per-frame evaluation state. The memo caches each node's
// frame by node ID so diamonds in the graph render once.
type render struct {
	engine *Engine
	index  int
	memo   map[int]*graph.Frame
}

func (r *render) eval(ctx context.Context, clip graph.Clip) (*graph.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f, ok := r.memo[clip.ID()]; ok {
		return f, nil
	}

	fn := r.engine.reg.Lookup(clip.Op())
	if fn == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOp, clip.Op())
	}

	inputs := clip.Inputs()
	frames := make([]*graph.Frame, len(inputs))
	for i, in := range inputs {
		f, err := r.eval(ctx, in)
		if err != nil {
			return nil, err
		}
		frames[i] = f
	}

	out, err := fn(Request{Clip: clip, Index: r.index, Inputs: frames})
	if err != nil {
		return nil, fmt.Errorf("engine: %s (node %d): %w", clip.Op(), clip.ID(), err)
	}
	if err := r.checkFrame(clip, out); err != nil {
		return nil, err
	}

	r.engine.log.WithFields(logrus.Fields{
		"op":    clip.Op(),
		"node":  clip.ID(),
		"frame": r.index,
	}).Debug("evaluated node")

	r.memo[clip.ID()] = out
	return out, nil
}

// checkFrame guards the render memo: a frame that disagrees with its node's
// declared properties would poison every downstream consumer.
func (r *render) checkFrame(clip graph.Clip, f *graph.Frame) error {
	if f == nil {
		r.engine.log.WithFields(logrus.Fields{
			"op":   clip.Op(),
			"node": clip.ID(),
		}).Warn("op returned nil frame")
		return fmt.Errorf("%w: %s (node %d): nil frame", ErrFrameMismatch, clip.Op(), clip.ID())
	}
	if f.Width != clip.Width() || f.Height != clip.Height() || f.Format != clip.Format() {
		r.engine.log.WithFields(logrus.Fields{
			"op":   clip.Op(),
			"node": clip.ID(),
			"got":  fmt.Sprintf("%dx%d %s", f.Width, f.Height, f.Format),
			"want": fmt.Sprintf("%dx%d %s", clip.Width(), clip.Height(), clip.Format()),
		}).Warn("op returned mismatched frame")
		return fmt.Errorf("%w: %s (node %d): got %dx%d %s, want %dx%d %s",
			ErrFrameMismatch, clip.Op(), clip.ID(),
			f.Width, f.Height, f.Format, clip.Width(), clip.Height(), clip.Format())
	}
	return nil
}
