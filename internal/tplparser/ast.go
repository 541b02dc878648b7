package tplparser

// Node is one element of a parsed template body.
type Node interface {
	node()
}

type textNode struct {
	text string
}

type outputNode struct {
	expr Expr
	line int
}

type forNode struct {
	varName string
	seq     Expr
	body    []Node
	line    int
}

type ifBranch struct {
	cond Expr
	body []Node
	line int
}

type ifNode struct {
	branches []ifBranch
	elseBody []Node
}

func (*textNode) node()   {}
func (*outputNode) node() {}
func (*forNode) node()    {}
func (*ifNode) node()     {}

// Expr is a parsed expression inside a tag.
type Expr interface {
	expr()
}

type literalExpr struct {
	value any
}

type nameExpr struct {
	name string
}

// attrExpr covers both a.b and a['b'].
type attrExpr struct {
	target Expr
	name   string
}

type indexExpr struct {
	target Expr
	index  Expr
}

// sliceExpr bounds are nil when omitted.
type sliceExpr struct {
	target Expr
	start  Expr
	end    Expr
}

type binaryExpr struct {
	op    string
	left  Expr
	right Expr
}

type notExpr struct {
	operand Expr
}

func (*literalExpr) expr() {}
func (*nameExpr) expr()    {}
func (*attrExpr) expr()    {}
func (*indexExpr) expr()   {}
func (*sliceExpr) expr()   {}
func (*binaryExpr) expr()  {}
func (*notExpr) expr()     {}
