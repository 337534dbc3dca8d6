package graph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Dump renders the subgraph reachable from c as stable, canonical text, one
// node per line in creation order. Argument keys are sorted, so two clips
// built from identical parameters over fresh graphs dump identically. The
// output is meant for tests and debugging, not for machine consumption.
func Dump(c Clip) string {
	if c.IsZero() {
		return "<zero clip>\n"
	}

	reach := map[int]*node{}
	var walk func(n *node)
	walk = func(n *node) {
		if _, ok := reach[n.id]; ok {
			return
		}
		reach[n.id] = n
		for _, in := range n.inputs {
			walk(in.node)
		}
	}
	walk(c.node)

	ids := make([]int, 0, len(reach))
	for id := range reach {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var b strings.Builder
	for _, id := range ids {
		n := reach[id]
		fmt.Fprintf(&b, "#%d %s %dx%d %s len=%d", n.id, n.op, n.width, n.height, n.format, n.length)
		if len(n.inputs) > 0 {
			b.WriteString(" <- [")
			for i, in := range n.inputs {
				if i > 0 {
					b.WriteByte(' ')
				}
				fmt.Fprintf(&b, "#%d", in.ID())
			}
			b.WriteByte(']')
		}
		if len(n.args) > 0 {
			b.WriteString(" {")
			keys := make([]string, 0, len(n.args))
			for k := range n.args {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for i, k := range keys {
				if i > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(k)
				b.WriteByte('=')
				b.WriteString(formatArgValue(n.args[k]))
			}
			b.WriteByte('}')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatArgValue(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case string:
		return strconv.Quote(t)
	case []float64:
		parts := make([]string, len(t))
		for i, f := range t {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case []int:
		parts := make([]string, len(t))
		for i, n := range t {
			parts[i] = strconv.Itoa(n)
		}
		return "[" + strings.Join(parts, " ") + "]"
	case []string:
		parts := make([]string, len(t))
		for i, s := range t {
			parts[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}
