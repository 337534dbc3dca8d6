package std

import (
	"fmt"

	"github.com/cwbudde/algo-deband/graph"
	"github.com/cwbudde/algo-deband/graph/expr"
)

// Op names of the nodes this package constructs.
const (
	OpExpr        = "std.Expr"
	OpConvolution = "std.Convolution"
	OpBoxBlur     = "std.BoxBlur"
	OpMakeDiff    = "std.MakeDiff"
	OpMergeDiff   = "std.MergeDiff"
	OpMaskedMerge = "std.MaskedMerge"
	OpBinarize    = "std.Binarize"
	OpMaximum     = "std.Maximum"
	OpMinimum     = "std.Minimum"
)

// Expr applies reverse-polish per-pixel expressions over one or more clips.
// One expression per plane; a single expression is broadened to all planes
// and an empty string copies the plane from the first clip. Expressions are
// compiled and validated here, before any node is created; see the
// graph/expr package for the language.
func Expr(clips []graph.Clip, exprs ...string) (graph.Clip, error) {
	if len(clips) == 0 {
		return graph.Clip{}, fmt.Errorf("std: expr: no input clips: %w", graph.ErrBadArgument)
	}
	if len(clips) > expr.MaxInputs {
		return graph.Clip{}, fmt.Errorf("std: expr: %d input clips, limit %d: %w",
			len(clips), expr.MaxInputs, graph.ErrBadArgument)
	}
	first := clips[0]
	if err := graph.CheckFixed(first, "std: expr"); err != nil {
		return graph.Clip{}, err
	}
	for _, c := range clips[1:] {
		if err := graph.CheckCompatible(first, c, "std: expr"); err != nil {
			return graph.Clip{}, err
		}
	}

	if len(exprs) == 0 {
		return graph.Clip{}, fmt.Errorf("std: expr: no expressions: %w", graph.ErrBadArgument)
	}
	normalized, err := graph.NormalizeSeq(exprs, first.Format().NumPlanes())
	if err != nil {
		return graph.Clip{}, fmt.Errorf("std: expr: %w", err)
	}
	for _, src := range normalized {
		if src == "" {
			continue
		}
		if _, err := expr.Parse(src, len(clips)); err != nil {
			return graph.Clip{}, fmt.Errorf("std: expr: %w", err)
		}
	}

	return first.Invoke(OpExpr, graph.Args{"expr": normalized}, clips[1:]...)
}
