package engine

import (
	"errors"

	"github.com/cwbudde/algo-deband/graph"
)

func opBlankClip(req Request) (*graph.Frame, error) {
	color := req.Clip.Args().Floats("color")
	f, err := newFrame(req.Clip)
	if err != nil {
		return nil, err
	}
	for p, plane := range f.Planes {
		v := 0.0
		switch {
		case p < len(color):
			v = color[p]
		case len(color) > 0:
			v = color[len(color)-1]
		}
		if v == 0 {
			continue
		}
		for i := range plane {
			plane[i] = v
		}
	}
	return f, nil
}

func opSource(req Request) (*graph.Frame, error) {
	fn := req.Clip.SourceFunc()
	if fn == nil {
		return nil, errors.New("source node has no frame callback")
	}
	return fn(req.Index)
}
