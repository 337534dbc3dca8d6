// Package expr implements the reverse-polish pixel expression language used
// by the Expr filter. Expressions are parsed and validated at graph
// construction time and evaluated per pixel by an executor.
//
// Operands are numeric literals and the input variables x, y, z, a, b, c, d
// (one per input clip, in order). Operators:
//
//	arithmetic  + - * / neg abs sqrt pow exp log floor round
//	selection   min max
//	comparison  > < >= <= =   (yield 1.0 or 0.0)
//	logic       and or not    (operands > 0 are true)
//	ternary     cond t f ?    (t when cond > 0, f otherwise)
//
// Division by zero and domain errors follow IEEE float semantics.
package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrParse wraps all expression parse failures.
var ErrParse = errors.New("expr: parse error")

// MaxInputs is the number of input variables the language can address.
const MaxInputs = 7

var varNames = [MaxInputs]string{"x", "y", "z", "a", "b", "c", "d"}

type opcode int

const (
	opPush opcode = iota
	opLoad
	opAdd
	opSub
	opMul
	opDiv
	opMin
	opMax
	opAbs
	opSqrt
	opNeg
	opFloor
	opRound
	opPow
	opExp
	opLog
	opGT
	opLT
	opGE
	opLE
	opEQ
	opAnd
	opOr
	opNot
	opTernary
)

// arity by opcode; opPush and opLoad consume nothing.
var opArity = map[string]struct {
	code  opcode
	arity int
}{
	"+":     {opAdd, 2},
	"-":     {opSub, 2},
	"*":     {opMul, 2},
	"/":     {opDiv, 2},
	"min":   {opMin, 2},
	"max":   {opMax, 2},
	"pow":   {opPow, 2},
	"abs":   {opAbs, 1},
	"sqrt":  {opSqrt, 1},
	"neg":   {opNeg, 1},
	"floor": {opFloor, 1},
	"round": {opRound, 1},
	"exp":   {opExp, 1},
	"log":   {opLog, 1},
	">":     {opGT, 2},
	"<":     {opLT, 2},
	">=":    {opGE, 2},
	"<=":    {opLE, 2},
	"=":     {opEQ, 2},
	"and":   {opAnd, 2},
	"or":    {opOr, 2},
	"not":   {opNot, 1},
	"?":     {opTernary, 3},
}

type instr struct {
	code opcode
	val  float64
	idx  int
}

// Program is a validated, compiled expression.
type Program struct {
	src      string
	instrs   []instr
	nInputs  int
	maxStack int
}

// Parse compiles an expression for the given number of input clips,
// validating tokens and stack discipline. The expression must leave exactly
// one value on the stack.
func Parse(src string, nInputs int) (*Program, error) {
	if nInputs < 1 || nInputs > MaxInputs {
		return nil, fmt.Errorf("%w: input count must be in [1, %d]: %d", ErrParse, MaxInputs, nInputs)
	}
	fields := strings.Fields(src)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty expression", ErrParse)
	}

	p := &Program{
		src:     src,
		nInputs: nInputs,
		instrs:  make([]instr, 0, len(fields)),
	}
	depth := 0
	for _, tok := range fields {
		if idx := varIndex(tok); idx >= 0 {
			if idx >= nInputs {
				return nil, fmt.Errorf("%w: variable %q needs input %d but only %d inputs given",
					ErrParse, tok, idx+1, nInputs)
			}
			p.instrs = append(p.instrs, instr{code: opLoad, idx: idx})
			depth++
		} else if op, ok := opArity[tok]; ok {
			if depth < op.arity {
				return nil, fmt.Errorf("%w: operator %q needs %d operands, stack has %d",
					ErrParse, tok, op.arity, depth)
			}
			p.instrs = append(p.instrs, instr{code: op.code})
			depth -= op.arity - 1
		} else if v, err := strconv.ParseFloat(tok, 64); err == nil {
			p.instrs = append(p.instrs, instr{code: opPush, val: v})
			depth++
		} else {
			return nil, fmt.Errorf("%w: unknown token %q", ErrParse, tok)
		}
		if depth > p.maxStack {
			p.maxStack = depth
		}
	}
	if depth != 1 {
		return nil, fmt.Errorf("%w: expression leaves %d values on the stack, want 1", ErrParse, depth)
	}
	return p, nil
}

func varIndex(tok string) int {
	for i, name := range varNames {
		if tok == name {
			return i
		}
	}
	return -1
}

// Source returns the original expression text.
func (p *Program) Source() string { return p.src }

// NumInputs returns the input count the program was compiled for.
func (p *Program) NumInputs() int { return p.nInputs }

// MaxStack returns the peak evaluation stack depth.
func (p *Program) MaxStack() int { return p.maxStack }

// Eval evaluates the program over one set of input values. It is a
// convenience wrapper; use an [Evaluator] in pixel loops to avoid the
// per-call stack allocation.
func (p *Program) Eval(vals []float64) float64 {
	return p.Evaluator().Eval(vals)
}

// Evaluator carries a reusable evaluation stack for one goroutine.
type Evaluator struct {
	prog  *Program
	stack []float64
}

// Evaluator returns a fresh evaluator for the program. Evaluators are not
// safe for concurrent use; create one per goroutine.
func (p *Program) Evaluator() *Evaluator {
	return &Evaluator{prog: p, stack: make([]float64, p.maxStack)}
}

// Eval evaluates the program over one set of input values, one per input
// clip. Missing trailing values read as 0.
func (e *Evaluator) Eval(vals []float64) float64 {
	st := e.stack
	sp := 0
	for _, in := range e.prog.instrs {
		switch in.code {
		case opPush:
			st[sp] = in.val
			sp++
		case opLoad:
			if in.idx < len(vals) {
				st[sp] = vals[in.idx]
			} else {
				st[sp] = 0
			}
			sp++
		case opAdd:
			st[sp-2] += st[sp-1]
			sp--
		case opSub:
			st[sp-2] -= st[sp-1]
			sp--
		case opMul:
			st[sp-2] *= st[sp-1]
			sp--
		case opDiv:
			st[sp-2] /= st[sp-1]
			sp--
		case opMin:
			st[sp-2] = math.Min(st[sp-2], st[sp-1])
			sp--
		case opMax:
			st[sp-2] = math.Max(st[sp-2], st[sp-1])
			sp--
		case opPow:
			st[sp-2] = math.Pow(st[sp-2], st[sp-1])
			sp--
		case opAbs:
			st[sp-1] = math.Abs(st[sp-1])
		case opSqrt:
			st[sp-1] = math.Sqrt(st[sp-1])
		case opNeg:
			st[sp-1] = -st[sp-1]
		case opFloor:
			st[sp-1] = math.Floor(st[sp-1])
		case opRound:
			st[sp-1] = math.Round(st[sp-1])
		case opExp:
			st[sp-1] = math.Exp(st[sp-1])
		case opLog:
			st[sp-1] = math.Log(st[sp-1])
		case opGT:
			st[sp-2] = b2f(st[sp-2] > st[sp-1])
			sp--
		case opLT:
			st[sp-2] = b2f(st[sp-2] < st[sp-1])
			sp--
		case opGE:
			st[sp-2] = b2f(st[sp-2] >= st[sp-1])
			sp--
		case opLE:
			st[sp-2] = b2f(st[sp-2] <= st[sp-1])
			sp--
		case opEQ:
			st[sp-2] = b2f(st[sp-2] == st[sp-1])
			sp--
		case opAnd:
			st[sp-2] = b2f(st[sp-2] > 0 && st[sp-1] > 0)
			sp--
		case opOr:
			st[sp-2] = b2f(st[sp-2] > 0 || st[sp-1] > 0)
			sp--
		case opNot:
			st[sp-1] = b2f(st[sp-1] <= 0)
		case opTernary:
			if st[sp-3] > 0 {
				st[sp-3] = st[sp-2]
			} else {
				st[sp-3] = st[sp-1]
			}
			sp -= 2
		}
	}
	return st[0]
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
