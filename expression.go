package expression

import "math"

// Expression is a parsed, evaluatable formula. Evaluation never panics on
// domain errors; following IEEE-754 it yields NaN or Inf instead.
type Expression interface {
	Eval(s *Solver) (float64, error)
}

type nodeKind int

const (
	kindConstant nodeKind = iota
	kindVariable
	// unary, operand in right
	kindNegation
	kindCosine
	kindSine
	kindTangent
	kindNatLog
	kindRound
	kindCeiling
	kindFloor
	// binary
	kindAddition
	kindSubtraction
	kindMultiplication
	kindDivision
	kindExponentiation
	kindRoot
	kindLogarithm
	kindMax
	kindMin
)

// Precedence classes, highest binds tightest. Leaves carry 0.
const (
	precLeaf   = 0
	precMinMax = 1
	precAddSub = 2
	precMulDiv = 3
	precPower  = 4
	precUnary  = 5
)

// node is the single tree element for all expression kinds. val is set for
// constants, name for variables. Unary kinds keep their operand in right.
// parent is a non-owning back-reference maintained by setLeft/setRight.
type node struct {
	kind        nodeKind
	val         float64
	name        string
	left, right *node
	parent      *node
	optimized   bool
}

func newConstant(v float64) *node {
	return &node{kind: kindConstant, val: v}
}

func newVariable(name string) *node {
	return &node{kind: kindVariable, name: name}
}

func newNode(kind nodeKind) *node {
	return &node{kind: kind}
}

func (n *node) isLeaf() bool {
	return n.kind == kindConstant || n.kind == kindVariable
}

func (n *node) isUnary() bool {
	return n.kind >= kindNegation && n.kind <= kindFloor
}

func (n *node) isBinary() bool {
	return n.kind >= kindAddition
}

func (n *node) precedence() int {
	switch {
	case n.isLeaf():
		return precLeaf
	case n.isUnary():
		return precUnary
	}
	switch n.kind {
	case kindMax, kindMin:
		return precMinMax
	case kindAddition, kindSubtraction:
		return precAddSub
	case kindMultiplication, kindDivision:
		return precMulDiv
	default:
		return precPower
	}
}

// usable reports whether the node is a complete value: a leaf, or an operator
// with all of its operand slots filled.
func (n *node) usable() bool {
	if n.isLeaf() {
		return true
	}
	if n.right == nil {
		return false
	}
	return n.isUnary() || n.left != nil
}

func (n *node) setLeft(child *node) {
	n.left = child
	if child != nil {
		child.parent = n
	}
	n.invalidate()
}

func (n *node) setRight(child *node) {
	n.right = child
	if child != nil {
		child.parent = n
	}
	n.invalidate()
}

// invalidate clears the optimization mark on n and every ancestor, so a later
// pass revisits the mutated region.
func (n *node) invalidate() {
	for p := n; p != nil; p = p.parent {
		p.optimized = false
	}
}

// equals compares two trees structurally. Operators must match in kind,
// variables in name; constants are equal within eps.
func (n *node) equals(o *node, eps float64) bool {
	if o == nil || n.kind != o.kind {
		return false
	}
	switch n.kind {
	case kindConstant:
		return n.val+eps > o.val && o.val+eps > n.val
	case kindVariable:
		return n.name == o.name
	}
	if n.left != nil || o.left != nil {
		if n.left == nil || !n.left.equals(o.left, eps) {
			return false
		}
	}
	if n.right == nil {
		return o.right == nil
	}
	return n.right.equals(o.right, eps)
}

func (n *node) Eval(s *Solver) (float64, error) {
	switch n.kind {
	case kindConstant:
		return n.val, nil
	case kindVariable:
		return s.Get(n.name)
	}

	rhs, err := n.right.Eval(s)
	if err != nil {
		return math.NaN(), err
	}

	switch n.kind {
	case kindNegation:
		return -rhs, nil
	case kindCosine:
		return math.Cos(rhs), nil
	case kindSine:
		return math.Sin(rhs), nil
	case kindTangent:
		return math.Tan(rhs), nil
	case kindNatLog:
		return math.Log(rhs), nil
	case kindRound:
		return math.Round(rhs), nil
	case kindCeiling:
		return math.Ceil(rhs), nil
	case kindFloor:
		return math.Floor(rhs), nil
	}

	lhs, err := n.left.Eval(s)
	if err != nil {
		return math.NaN(), err
	}

	switch n.kind {
	case kindAddition:
		return lhs + rhs, nil
	case kindSubtraction:
		return lhs - rhs, nil
	case kindMultiplication:
		return lhs * rhs, nil
	case kindDivision:
		return lhs / rhs, nil
	case kindExponentiation:
		return math.Pow(lhs, rhs), nil
	case kindRoot:
		// a r x is the a-th root of x
		return math.Pow(rhs, 1/lhs), nil
	case kindLogarithm:
		return math.Log(rhs) / math.Log(lhs), nil
	case kindMax:
		return math.Max(lhs, rhs), nil
	default:
		return math.Min(lhs, rhs), nil
	}
}
