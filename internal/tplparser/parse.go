package tplparser

import (
	"fmt"
	"strings"
)

// Template is a parsed, immutable template. It is safe for concurrent use.
type Template struct {
	name string
	root []Node
}

// Name returns the name the template was parsed under.
func (t *Template) Name() string {
	return t.name
}

// Parse compiles template source. Errors are *SyntaxError.
func Parse(name, source string) (*Template, error) {
	segs, err := scanSegments(name, source)
	if err != nil {
		return nil, err
	}
	p := &parser{name: name, segs: segs}
	root, _, err := p.parseBody()
	if err != nil {
		return nil, err
	}
	return &Template{name: name, root: root}, nil
}

type parser struct {
	name string
	segs []segment
	pos  int
}

// statement is a tokenized {% %} tag.
type statement struct {
	keyword string
	args    *exprParser
	line    int
}

func (p *parser) errorf(line int, format string, args ...any) error {
	return &SyntaxError{Template: p.name, Line: line, Msg: fmt.Sprintf(format, args...)}
}

// parseBody consumes nodes until one of the stop keywords or the end of
// input. It returns the stop statement, or nil at end of input.
func (p *parser) parseBody(stop ...string) ([]Node, *statement, error) {
	var nodes []Node
	for p.pos < len(p.segs) {
		seg := p.segs[p.pos]
		p.pos++

		switch seg.kind {
		case segText:
			nodes = append(nodes, &textNode{text: seg.text})
		case segOutput:
			ep, err := p.exprParser(seg)
			if err != nil {
				return nil, nil, err
			}
			e, err := ep.parseFull()
			if err != nil {
				return nil, nil, p.errorf(seg.line, "%v", err)
			}
			nodes = append(nodes, &outputNode{expr: e, line: seg.line})
		case segStatement:
			st, err := p.statement(seg)
			if err != nil {
				return nil, nil, err
			}
			for _, kw := range stop {
				if st.keyword == kw {
					return nodes, st, nil
				}
			}
			var n Node
			switch st.keyword {
			case "for":
				n, err = p.parseFor(st)
			case "if":
				n, err = p.parseIf(st)
			default:
				err = p.errorf(st.line, "unexpected %q", st.keyword)
			}
			if err != nil {
				return nil, nil, err
			}
			nodes = append(nodes, n)
		}
	}
	if len(stop) > 0 {
		return nil, nil, p.errorf(p.lastLine(), "unexpected end of template, expected %s", strings.Join(stop, " or "))
	}
	return nodes, nil, nil
}

func (p *parser) lastLine() int {
	if len(p.segs) == 0 {
		return 1
	}
	last := p.segs[len(p.segs)-1]
	return last.line + strings.Count(last.text, "\n")
}

func (p *parser) exprParser(seg segment) (*exprParser, error) {
	toks, err := tokenize(seg.text)
	if err != nil {
		return nil, p.errorf(seg.line, "%v", err)
	}
	return &exprParser{toks: toks}, nil
}

// statement splits off the keyword before tokenizing, so an unknown
// statement is reported as such rather than as a bad character.
func (p *parser) statement(seg segment) (*statement, error) {
	body := strings.TrimLeft(seg.text, tagSpace)
	n := 0
	for n < len(body) && isNamePart(body[n]) {
		n++
	}
	keyword := body[:n]
	switch keyword {
	case "for", "endfor", "if", "elif", "else", "endif":
	case "":
		return nil, p.errorf(seg.line, "expected statement keyword")
	default:
		return nil, p.errorf(seg.line, "unknown statement %q", keyword)
	}
	ep, err := p.exprParser(segment{text: body[n:], line: seg.line})
	if err != nil {
		return nil, err
	}
	return &statement{keyword: keyword, args: ep, line: seg.line}, nil
}

func (p *parser) expectEnd(st *statement) error {
	if t := st.args.peek(); t.kind != tokEOF {
		return p.errorf(st.line, "unexpected %s after %q", t, st.keyword)
	}
	return nil
}

func (p *parser) parseFor(st *statement) (Node, error) {
	target := st.args.next()
	if target.kind != tokName || isReserved(target.val) || target.val == "loop" {
		return nil, p.errorf(st.line, "invalid loop variable %s", target)
	}
	if in := st.args.next(); !in.is(tokName, "in") {
		return nil, p.errorf(st.line, "expected \"in\", got %s", in)
	}
	seq, err := st.args.parseFull()
	if err != nil {
		return nil, p.errorf(st.line, "%v", err)
	}

	body, end, err := p.parseBody("endfor")
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(end); err != nil {
		return nil, err
	}
	return &forNode{varName: target.val, seq: seq, body: body, line: st.line}, nil
}

func (p *parser) parseIf(st *statement) (Node, error) {
	n := &ifNode{}
	head := st
	for {
		cond, err := head.args.parseFull()
		if err != nil {
			return nil, p.errorf(head.line, "%v", err)
		}
		body, end, err := p.parseBody("elif", "else", "endif")
		if err != nil {
			return nil, err
		}
		n.branches = append(n.branches, ifBranch{cond: cond, body: body, line: head.line})

		switch end.keyword {
		case "elif":
			head = end
			continue
		case "else":
			if err := p.expectEnd(end); err != nil {
				return nil, err
			}
			body, end, err = p.parseBody("endif")
			if err != nil {
				return nil, err
			}
			n.elseBody = body
		}
		if err := p.expectEnd(end); err != nil {
			return nil, err
		}
		return n, nil
	}
}

// exprParser is a recursive descent parser over one tag's tokens.
//
//	or      = and { "or" and }
//	and     = not { "and" not }
//	not     = "not" not | compare
//	compare = concat [ ("==" | "!=") concat ]
//	concat  = postfix { "+" postfix }
//	postfix = primary { "." name | "[" subscript "]" }
//	primary = string | int | name | "(" or ")"
type exprParser struct {
	toks []token
	pos  int
}

func (ep *exprParser) peek() token {
	return ep.toks[ep.pos]
}

func (ep *exprParser) next() token {
	t := ep.toks[ep.pos]
	if t.kind != tokEOF {
		ep.pos++
	}
	return t
}

func (ep *exprParser) expectOp(op string) error {
	if t := ep.next(); !t.is(tokOp, op) {
		return fmt.Errorf("expected %q, got %s", op, t)
	}
	return nil
}

// parseFull parses one expression that must span the rest of the tag.
func (ep *exprParser) parseFull() (Expr, error) {
	if ep.peek().kind == tokEOF {
		return nil, fmt.Errorf("expected expression")
	}
	e, err := ep.parseOr()
	if err != nil {
		return nil, err
	}
	if t := ep.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected %s", t)
	}
	return e, nil
}

func (ep *exprParser) parseOr() (Expr, error) {
	left, err := ep.parseAnd()
	if err != nil {
		return nil, err
	}
	for ep.peek().is(tokName, "or") {
		ep.next()
		right, err := ep.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: "or", left: left, right: right}
	}
	return left, nil
}

func (ep *exprParser) parseAnd() (Expr, error) {
	left, err := ep.parseNot()
	if err != nil {
		return nil, err
	}
	for ep.peek().is(tokName, "and") {
		ep.next()
		right, err := ep.parseNot()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: "and", left: left, right: right}
	}
	return left, nil
}

func (ep *exprParser) parseNot() (Expr, error) {
	if ep.peek().is(tokName, "not") {
		ep.next()
		operand, err := ep.parseNot()
		if err != nil {
			return nil, err
		}
		return &notExpr{operand: operand}, nil
	}
	return ep.parseCompare()
}

func (ep *exprParser) parseCompare() (Expr, error) {
	left, err := ep.parseConcat()
	if err != nil {
		return nil, err
	}
	t := ep.peek()
	if !t.is(tokOp, "==") && !t.is(tokOp, "!=") {
		return left, nil
	}
	ep.next()
	right, err := ep.parseConcat()
	if err != nil {
		return nil, err
	}
	if n := ep.peek(); n.is(tokOp, "==") || n.is(tokOp, "!=") {
		return nil, fmt.Errorf("chained comparisons are not supported")
	}
	return &binaryExpr{op: t.val, left: left, right: right}, nil
}

func (ep *exprParser) parseConcat() (Expr, error) {
	left, err := ep.parsePostfix()
	if err != nil {
		return nil, err
	}
	for ep.peek().is(tokOp, "+") {
		ep.next()
		right, err := ep.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{op: "+", left: left, right: right}
	}
	return left, nil
}

func (ep *exprParser) parsePostfix() (Expr, error) {
	e, err := ep.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		t := ep.peek()
		switch {
		case t.is(tokOp, "."):
			ep.next()
			name := ep.next()
			if name.kind != tokName {
				return nil, fmt.Errorf("expected attribute name after \".\", got %s", name)
			}
			e = &attrExpr{target: e, name: name.val}
		case t.is(tokOp, "["):
			ep.next()
			e, err = ep.parseSubscript(e)
			if err != nil {
				return nil, err
			}
		default:
			return e, nil
		}
	}
}

// parseSubscript parses the part after "[": key, index or slice.
func (ep *exprParser) parseSubscript(target Expr) (Expr, error) {
	var start Expr
	if !ep.peek().is(tokOp, ":") {
		idx, err := ep.parseOr()
		if err != nil {
			return nil, err
		}
		if !ep.peek().is(tokOp, ":") {
			if err := ep.expectOp("]"); err != nil {
				return nil, err
			}
			if lit, ok := idx.(*literalExpr); ok {
				if key, ok := lit.value.(string); ok {
					return &attrExpr{target: target, name: key}, nil
				}
			}
			return &indexExpr{target: target, index: idx}, nil
		}
		start = idx
	}
	ep.next() // ":"
	var end Expr
	if !ep.peek().is(tokOp, "]") {
		var err error
		if end, err = ep.parseOr(); err != nil {
			return nil, err
		}
	}
	if err := ep.expectOp("]"); err != nil {
		return nil, err
	}
	return &sliceExpr{target: target, start: start, end: end}, nil
}

func (ep *exprParser) parsePrimary() (Expr, error) {
	t := ep.next()
	switch t.kind {
	case tokString:
		return &literalExpr{value: t.val}, nil
	case tokInt:
		return &literalExpr{value: t.num}, nil
	case tokName:
		switch t.val {
		case "true", "True":
			return &literalExpr{value: true}, nil
		case "false", "False":
			return &literalExpr{value: false}, nil
		case "none", "None":
			return &literalExpr{value: nil}, nil
		}
		if isReserved(t.val) {
			return nil, fmt.Errorf("unexpected %s", t)
		}
		return &nameExpr{name: t.val}, nil
	case tokOp:
		if t.val == "(" {
			e, err := ep.parseOr()
			if err != nil {
				return nil, err
			}
			if err := ep.expectOp(")"); err != nil {
				return nil, err
			}
			return e, nil
		}
	case tokEOF:
		return nil, fmt.Errorf("unexpected end of expression")
	}
	return nil, fmt.Errorf("unexpected %s", t)
}

func isReserved(name string) bool {
	switch name {
	case "and", "or", "not", "in", "true", "false", "none", "True", "False", "None":
		return true
	}
	return false
}
