package tplparser

import (
	"fmt"
	"strings"
)

// Execute renders the template against ctx. The context is only read.
// On failure the returned string is empty and the error is a *RenderError.
func (t *Template) Execute(ctx Context) (string, error) {
	s := &execState{tmpl: t, ctx: ctx}
	if err := s.walk(t.root); err != nil {
		return "", err
	}
	return s.out.String(), nil
}

type execState struct {
	tmpl   *Template
	ctx    Context
	scopes []map[string]any
	out    strings.Builder
}

func (s *execState) errorf(line int, format string, args ...any) error {
	return &RenderError{Template: s.tmpl.name, Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (s *execState) walk(nodes []Node) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case *textNode:
			s.out.WriteString(n.text)
		case *outputNode:
			v, err := s.eval(n.expr, n.line)
			if err != nil {
				return err
			}
			text, ok := toText(v)
			if !ok {
				return s.errorf(n.line, "cannot render %s value", kindOf(v))
			}
			s.out.WriteString(text)
		case *forNode:
			if err := s.execFor(n); err != nil {
				return err
			}
		case *ifNode:
			if err := s.execIf(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *execState) execFor(n *forNode) error {
	v, err := s.eval(n.seq, n.line)
	if err != nil {
		return err
	}
	items, ok := v.([]any)
	if !ok {
		return s.errorf(n.line, "cannot iterate over %s value", kindOf(v))
	}
	for i, item := range items {
		s.scopes = append(s.scopes, map[string]any{
			n.varName: item,
			"loop":    loopValue(i, len(items)),
		})
		err := s.walk(n.body)
		s.scopes = s.scopes[:len(s.scopes)-1]
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *execState) execIf(n *ifNode) error {
	for _, br := range n.branches {
		v, err := s.eval(br.cond, br.line)
		if err != nil {
			return err
		}
		if truthy(v) {
			return s.walk(br.body)
		}
	}
	return s.walk(n.elseBody)
}

func (s *execState) lookup(name string, line int) (any, error) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i][name]; ok {
			return v, nil
		}
	}
	if v, ok := s.ctx[name]; ok {
		return v, nil
	}
	return nil, s.errorf(line, "undefined variable %q", name)
}

func (s *execState) eval(e Expr, line int) (any, error) {
	switch e := e.(type) {
	case *literalExpr:
		return e.value, nil
	case *nameExpr:
		return s.lookup(e.name, line)
	case *attrExpr:
		target, err := s.eval(e.target, line)
		if err != nil {
			return nil, err
		}
		return s.member(target, e.name, line)
	case *indexExpr:
		target, err := s.eval(e.target, line)
		if err != nil {
			return nil, err
		}
		idx, err := s.eval(e.index, line)
		if err != nil {
			return nil, err
		}
		switch idx := idx.(type) {
		case string:
			return s.member(target, idx, line)
		case int:
			return s.item(target, idx, line)
		default:
			return nil, s.errorf(line, "cannot subscript with %s value", kindOf(idx))
		}
	case *sliceExpr:
		return s.slice(e, line)
	case *notExpr:
		v, err := s.eval(e.operand, line)
		if err != nil {
			return nil, err
		}
		return !truthy(v), nil
	case *binaryExpr:
		return s.binary(e, line)
	default:
		return nil, s.errorf(line, "unsupported expression %T", e)
	}
}

func (s *execState) binary(e *binaryExpr, line int) (any, error) {
	left, err := s.eval(e.left, line)
	if err != nil {
		return nil, err
	}
	switch e.op {
	case "and":
		if !truthy(left) {
			return false, nil
		}
	case "or":
		if truthy(left) {
			return true, nil
		}
	}
	right, err := s.eval(e.right, line)
	if err != nil {
		return nil, err
	}

	switch e.op {
	case "and", "or":
		return truthy(right), nil
	case "==", "!=":
		eq, err := s.equal(left, right, line)
		if err != nil {
			return nil, err
		}
		return eq == (e.op == "=="), nil
	case "+":
		ls, lok := left.(string)
		rs, rok := right.(string)
		if !lok || !rok {
			return nil, s.errorf(line, "cannot concatenate %s and %s", kindOf(left), kindOf(right))
		}
		return ls + rs, nil
	default:
		return nil, s.errorf(line, "unsupported operator %q", e.op)
	}
}

// equal compares two scalars of the same kind.
func (s *execState) equal(a, b any, line int) (bool, error) {
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return false, s.errorf(line, "cannot compare %s with %s", ka, kb)
	}
	switch ka {
	case kindNone:
		return true, nil
	case kindBool, kindInt, kindString:
		return a == b, nil
	default:
		return false, s.errorf(line, "cannot compare %s values", ka)
	}
}

func (s *execState) member(target any, name string, line int) (any, error) {
	m, ok := target.(map[string]any)
	if !ok {
		return nil, s.errorf(line, "cannot access attribute %q of %s value", name, kindOf(target))
	}
	v, ok := m[name]
	if !ok {
		return nil, s.errorf(line, "undefined attribute %q", name)
	}
	return v, nil
}

func (s *execState) item(target any, idx, line int) (any, error) {
	seq, ok := target.([]any)
	if !ok {
		return nil, s.errorf(line, "cannot index %s value", kindOf(target))
	}
	i := idx
	if i < 0 {
		i += len(seq)
	}
	if i < 0 || i >= len(seq) {
		return nil, s.errorf(line, "index %d out of range for sequence of length %d", idx, len(seq))
	}
	return seq[i], nil
}

// slice follows Python semantics for negative bounds. A bound beyond the
// sequence length in either direction is an error.
func (s *execState) slice(e *sliceExpr, line int) (any, error) {
	target, err := s.eval(e.target, line)
	if err != nil {
		return nil, err
	}
	seq, ok := target.([]any)
	if !ok {
		return nil, s.errorf(line, "cannot slice %s value", kindOf(target))
	}
	n := len(seq)
	bound := func(b Expr, def int) (int, error) {
		if b == nil {
			return def, nil
		}
		v, err := s.eval(b, line)
		if err != nil {
			return 0, err
		}
		switch v := v.(type) {
		case nil:
			return def, nil
		case int:
			if v < -n || v > n {
				return 0, s.errorf(line, "slice bound %d out of range for sequence of length %d", v, n)
			}
			if v < 0 {
				v += n
			}
			return v, nil
		default:
			return 0, s.errorf(line, "slice bound must be int, got %s", kindOf(v))
		}
	}
	lo, err := bound(e.start, 0)
	if err != nil {
		return nil, err
	}
	hi, err := bound(e.end, n)
	if err != nil {
		return nil, err
	}
	if hi < lo {
		hi = lo
	}
	return seq[lo:hi:hi], nil
}
