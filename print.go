package expression

import (
	"fmt"
	"strconv"
	"strings"
)

var kindNames = [...]string{
	"Constant",
	"Variable",
	"Negation",
	"Cosine",
	"Sine",
	"Tangent",
	"NaturalLog",
	"Round",
	"Ceiling",
	"Floor",
	"Addition",
	"Subtraction",
	"Multiplication",
	"Division",
	"Exponentiation",
	"Root",
	"Logarithm",
	"Max",
	"Min",
}

func (k nodeKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("nodeKind(%d)", int(k))
}

var binarySpell = map[nodeKind]string{
	kindAddition:       "+",
	kindSubtraction:    "-",
	kindMultiplication: "*",
	kindDivision:       "/",
	kindExponentiation: "^",
	kindRoot:           "r",
	kindLogarithm:      "log",
	kindMax:            "max",
	kindMin:            "min",
}

var unarySpell = map[nodeKind]string{
	kindNegation: "-",
	kindCosine:   "cos ",
	kindSine:     "sin ",
	kindTangent:  "tan ",
	kindNatLog:   "ln ",
	kindRound:    "round ",
	kindCeiling:  "ceil ",
	kindFloor:    "floor ",
}

// String renders the tree as an infix expression in the input language.
// Operands are always parenthesized, so the output re-parses to the same
// tree. Missing operands print as "_".
func (n *node) String() string {
	switch n.kind {
	case kindConstant:
		return strconv.FormatFloat(n.val, 'g', -1, 64)
	case kindVariable:
		return n.name
	}
	if n.isUnary() {
		return unarySpell[n.kind] + operandString(n.right)
	}
	var b strings.Builder
	b.WriteString(operandString(n.left))
	b.WriteString(" ")
	b.WriteString(binarySpell[n.kind])
	b.WriteString(" ")
	b.WriteString(operandString(n.right))
	return b.String()
}

func operandString(n *node) string {
	if n == nil {
		return "_"
	}
	if n.isLeaf() {
		return n.String()
	}
	return "(" + n.String() + ")"
}
