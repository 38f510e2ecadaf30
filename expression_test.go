package expression

import (
	"math"

	. "gopkg.in/check.v1"
)

type ExpressionSuite struct{}

var _ = Suite(&ExpressionSuite{})

func (s *ExpressionSuite) TestEvalOperators(c *C) {
	empty := NewSolver(nil)
	cases := []struct {
		tree *node
		want float64
	}{
		{bin(kindAddition, num(2), num(3)), 5},
		{bin(kindSubtraction, num(2), num(3)), -1},
		{bin(kindMultiplication, num(2), num(3)), 6},
		{bin(kindDivision, num(3), num(2)), 1.5},
		{bin(kindExponentiation, num(2), num(10)), 1024},
		{bin(kindRoot, num(3), num(27)), 3},
		{bin(kindLogarithm, num(2), num(8)), 3},
		{bin(kindMax, num(2), num(3)), 3},
		{bin(kindMin, num(2), num(3)), 2},
		{un(kindNegation, num(2)), -2},
		{un(kindCosine, num(0)), 1},
		{un(kindSine, num(0)), 0},
		{un(kindTangent, num(0)), 0},
		{un(kindNatLog, num(math.E)), 1},
		{un(kindRound, num(2.5)), 3},
		{un(kindRound, num(-2.5)), -3},
		{un(kindCeiling, num(2.1)), 3},
		{un(kindFloor, num(2.9)), 2},
	}
	for _, t := range cases {
		got, err := t.tree.Eval(empty)
		c.Assert(err, IsNil, Commentf("evaluating %s", t.tree))
		c.Check(math.Abs(got-t.want) < 1e-9, Equals, true,
			Commentf("%s: got %v, want %v", t.tree, got, t.want))
	}
}

func (s *ExpressionSuite) TestEvalFollowsIEEE(c *C) {
	empty := NewSolver(nil)

	v, err := bin(kindDivision, num(1), num(0)).Eval(empty)
	c.Assert(err, IsNil)
	c.Check(math.IsInf(v, 1), Equals, true)

	v, err = un(kindNatLog, num(-1)).Eval(empty)
	c.Assert(err, IsNil)
	c.Check(math.IsNaN(v), Equals, true)
}

func (s *ExpressionSuite) TestEquals(c *C) {
	add := bin(kindAddition, vr("x"), num(1))
	c.Check(add.equals(bin(kindAddition, vr("x"), num(1)), 1e-4), Equals, true)
	c.Check(add.equals(bin(kindSubtraction, vr("x"), num(1)), 1e-4), Equals, false)
	c.Check(add.equals(bin(kindAddition, vr("y"), num(1)), 1e-4), Equals, false)
	c.Check(add.equals(bin(kindAddition, vr("x"), num(2)), 1e-4), Equals, false)

	c.Check(num(1).equals(num(1.00005), 1e-4), Equals, true)
	c.Check(num(1).equals(num(1.001), 1e-4), Equals, false)

	c.Check(un(kindNegation, vr("x")).equals(un(kindNegation, vr("x")), 1e-4), Equals, true)
	c.Check(un(kindNegation, vr("x")).equals(vr("x"), 1e-4), Equals, false)
}

func (s *ExpressionSuite) TestUsable(c *C) {
	c.Check(num(1).usable(), Equals, true)
	c.Check(vr("x").usable(), Equals, true)

	add := newNode(kindAddition)
	c.Check(add.usable(), Equals, false)
	add.setRight(num(1))
	c.Check(add.usable(), Equals, false)
	add.setLeft(num(2))
	c.Check(add.usable(), Equals, true)

	neg := newNode(kindNegation)
	c.Check(neg.usable(), Equals, false)
	neg.setRight(num(1))
	c.Check(neg.usable(), Equals, true)
}

func (s *ExpressionSuite) TestInvalidate(c *C) {
	tree := bin(kindAddition, bin(kindMultiplication, vr("x"), num(2)), num(3))
	tree.optimized = true
	tree.left.optimized = true
	tree.left.left.optimized = true

	tree.left.left.invalidate()
	c.Check(tree.left.left.optimized, Equals, false)
	c.Check(tree.left.optimized, Equals, false)
	c.Check(tree.optimized, Equals, false)
}

func (s *ExpressionSuite) TestString(c *C) {
	c.Check(bin(kindAddition, num(1), vr("x")).String(), Equals, "1 + x")
	c.Check(un(kindNegation, vr("x")).String(), Equals, "-x")
	c.Check(bin(kindRoot, num(3), vr("x")).String(), Equals, "3 r x")
	c.Check(
		bin(kindDivision,
			bin(kindMultiplication, num(2), vr("x")),
			un(kindSine, vr("y"))).String(),
		Equals, "(2 * x) / (sin y)")
	c.Check(newNode(kindAddition).String(), Equals, "_ + _")
}
