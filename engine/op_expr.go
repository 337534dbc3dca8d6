package engine

import (
	"errors"

	"github.com/cwbudde/algo-deband/graph"
	"github.com/cwbudde/algo-deband/graph/expr"
)

// opExpr evaluates one reverse-polish program per plane. An empty program
// copies the first input's plane. Results are written back raw; integer
// formats are not rounded, so downstream nodes see the exact arithmetic.
func opExpr(req Request) (*graph.Frame, error) {
	if len(req.Inputs) == 0 {
		return nil, errors.New("expr: no inputs")
	}
	exprs := req.Clip.Args().Strings("expr")
	src := req.Inputs[0]

	out, err := newFrame(req.Clip)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, len(req.Inputs))
	for p, dst := range out.Planes {
		if p >= len(exprs) || exprs[p] == "" {
			copy(dst, src.Planes[p])
			continue
		}
		prog, err := expr.Parse(exprs[p], len(req.Inputs))
		if err != nil {
			return nil, err
		}
		ev := prog.Evaluator()
		for i := range dst {
			for k, in := range req.Inputs {
				vals[k] = in.Planes[p][i]
			}
			dst[i] = ev.Eval(vals)
		}
	}
	return out, nil
}
