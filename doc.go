// Package expression parses, optimizes and evaluates algebraic expressions
// over float64 values.
//
// The input language supports the binary operators
//
//	^    exponentiation      2 ^ 3 is 8
//	r    root                3 r 27 is 3, the cube root of 27
//	log  logarithm           2 log 8 is 3, the base-2 logarithm of 8
//	*    multiplication
//	/    division
//	+    addition
//	-    subtraction
//	max  larger operand
//	min  smaller operand
//
// and the unary operators - (negation), cos, sin, tan, ln, round, ceil and
// floor. Parentheses group; precedence from tightest to loosest is the unary
// operators, then ^ r log, then * /, then + -, then max min. Operators of
// equal precedence associate to the left.
//
// Multiplication may be left implicit before a number, a variable or a
// parenthesized group: "(3)4" is 12, and "7x" is -14 when x is bound to -2.
//
// Variables are bound through a Solver:
//
//	solve := expression.NewSolver([]string{"x"})
//	solve.SetValues([]float64{-2})
//	v, err := solve.EvalString("7x + 1")
//
// Solver.ParseString returns a reusable Expression, optionally run through
// the tree optimizer, which folds constant subtrees and applies algebraic
// identities such as x+0, x*1, x^0, combining constants, logarithms and
// exponents across chains of like operators.
package expression
