package expression

import (
	. "gopkg.in/check.v1"
)

type OptSuite struct{}

var _ = Suite(&OptSuite{})

func optParse(c *C, input string) *node {
	tokens, err := LexExpression(input)
	c.Assert(err, IsNil)
	e, err := NewParser().Parse(tokens, nil)
	c.Assert(err, IsNil, Commentf("parsing %q", input))
	return e.(*node)
}

func (s *OptSuite) TestConstantFolding(c *C) {
	checkTree(c, optParse(c, "3 * (4 + 2)"), num(18))
	checkTree(c, optParse(c, "2 ^ 3 ^ 2"), num(64))
	checkTree(c, optParse(c, "cos 0"), num(1))
	checkTree(c, optParse(c, "floor 2.7 + ceil 2.2"), num(5))
	checkTree(c, optParse(c, "2 log 8"), num(3))
	checkTree(c, optParse(c, "3 r 27"), num(3))
}

func (s *OptSuite) TestIdentityElimination(c *C) {
	cases := []struct {
		input string
		want  *node
	}{
		{"x + 0", vr("x")},
		{"0 + x", vr("x")},
		{"x - 0", vr("x")},
		{"x - x", num(0)},
		{"x / x", num(1)},
		{"x * 1", vr("x")},
		{"1 * x", vr("x")},
		{"x / 1", vr("x")},
		{"x ^ 1", vr("x")},
		{"x ^ 0", num(1)},
		{"x * 0", num(0)},
		{"0 * x", num(0)},
		{"--x", vr("x")},
	}
	for _, t := range cases {
		got := optParse(c, t.input)
		c.Check(got.equals(t.want, 1e-4), Equals, true,
			Commentf("%q: got %s, want %s", t.input, got, t.want))
	}
}

func (s *OptSuite) TestSubtractionTransform(c *C) {
	// the constants 7 and 3 collapse through the whole chain, and the
	// subtraction is kept in its additive form since the rewrite fired
	got := optParse(c, "(7 + x) - (z + (3 + y))")
	want := bin(kindAddition,
		vr("x"),
		un(kindNegation,
			bin(kindAddition,
				vr("z"),
				bin(kindAddition, num(-4), vr("y")))))
	checkTree(c, got, want)

	// parent links must survive the splicing
	c.Check(got.parent, IsNil)
	c.Check(got.left.parent, Equals, got)
	c.Check(got.right.parent, Equals, got)
	inner := got.right.right
	c.Check(inner.parent, Equals, got.right)
	c.Check(inner.right.parent, Equals, inner)
}

func (s *OptSuite) TestSubtractionRollback(c *C) {
	// nothing to combine, so the subtraction keeps its original shape
	got := optParse(c, "x - y")
	want := bin(kindSubtraction, vr("x"), vr("y"))
	checkTree(c, got, want)
	c.Check(got.left.parent, Equals, got)
	c.Check(got.right.parent, Equals, got)
}

func (s *OptSuite) TestCollapseAddConstants(c *C) {
	checkTree(c, optParse(c, "x + 2 + 3"), bin(kindAddition, vr("x"), num(5)))
	checkTree(c, optParse(c, "2 + x + 3"), bin(kindAddition, vr("x"), num(5)))
	checkTree(c, optParse(c, "x + 1 - 2"),
		bin(kindAddition, vr("x"), un(kindNegation, num(1))))
}

func (s *OptSuite) TestCollapseMulConstants(c *C) {
	checkTree(c, optParse(c, "2 * x * 3"), bin(kindMultiplication, vr("x"), num(6)))
	checkTree(c, optParse(c, "x * 2 * 4"), bin(kindMultiplication, vr("x"), num(8)))
}

func (s *OptSuite) TestNegationAbsorption(c *C) {
	checkTree(c, optParse(c, "-(x * -3)"),
		bin(kindMultiplication, vr("x"), num(3)))
	checkTree(c, optParse(c, "-(x / 2)"),
		bin(kindDivision, vr("x"), num(-2)))
	checkTree(c, optParse(c, "-(x * y)"),
		bin(kindMultiplication, un(kindNegation, vr("x")), vr("y")))
}

func (s *OptSuite) TestLogCombination(c *C) {
	got := optParse(c, "y log x + y log y + ln x + ln y")
	want := bin(kindAddition,
		bin(kindLogarithm, vr("y"),
			bin(kindMultiplication, vr("x"), vr("y"))),
		un(kindNatLog,
			bin(kindMultiplication, vr("x"), vr("y"))))
	checkTree(c, got, want)

	checkTree(c, optParse(c, "2 log x - 2 log y"),
		bin(kindLogarithm, num(2), bin(kindDivision, vr("x"), vr("y"))))
}

func (s *OptSuite) TestExponentCombination(c *C) {
	checkTree(c, optParse(c, "x^a * x^b"),
		bin(kindExponentiation, vr("x"), bin(kindAddition, vr("a"), vr("b"))))
	checkTree(c, optParse(c, "x^y / x^z"),
		bin(kindExponentiation, vr("x"), bin(kindSubtraction, vr("y"), vr("z"))))
	// the bare x folds into the root's entry: x^(1/2) * x = x^1.5
	checkTree(c, optParse(c, "2 r x * x"),
		bin(kindExponentiation, vr("x"), num(1.5)))
}

func (s *OptSuite) TestPowerNormalization(c *C) {
	checkTree(c, optParse(c, "(x^y)^z"),
		bin(kindExponentiation, vr("x"),
			bin(kindMultiplication, vr("y"), vr("z"))))
	checkTree(c, optParse(c, "(2 r x)^y"),
		bin(kindExponentiation, vr("x"), bin(kindDivision, vr("y"), num(2))))
	checkTree(c, optParse(c, "3 r (x^y)"),
		bin(kindExponentiation, vr("x"), bin(kindDivision, vr("y"), num(3))))
}

func (s *OptSuite) TestLogOfPower(c *C) {
	checkTree(c, optParse(c, "x log (x ^ y)"), vr("y"))
	checkTree(c, optParse(c, "x log (2 r x)"), num(0.5))
}

func (s *OptSuite) TestDivisionNormalization(c *C) {
	checkTree(c, optParse(c, "x / (y / z)"),
		bin(kindDivision, bin(kindMultiplication, vr("x"), vr("z")), vr("y")))
	checkTree(c, optParse(c, "x * (1 / y)"),
		bin(kindDivision, vr("x"), vr("y")))
}

func (s *OptSuite) TestFractionProduct(c *C) {
	// kept because the denominator folds
	checkTree(c, optParse(c, "(x/2) * (y/3)"),
		bin(kindDivision,
			bin(kindMultiplication, vr("x"), vr("y")),
			num(6)))
	// nothing simplifies, so the product of fractions is left alone
	checkTree(c, optParse(c, "(x/a) * (y/b)"),
		bin(kindMultiplication,
			bin(kindDivision, vr("x"), vr("a")),
			bin(kindDivision, vr("y"), vr("b"))))
}

func (s *OptSuite) TestRationalDisabled(c *C) {
	p := NewParser()
	p.Rational = false
	parse := func(input string) *node {
		tokens, err := LexExpression(input)
		c.Assert(err, IsNil)
		e, err := p.Parse(tokens, nil)
		c.Assert(err, IsNil)
		return e.(*node)
	}

	checkTree(c, parse("x * 0"), bin(kindMultiplication, vr("x"), num(0)))
	checkTree(c, parse("x + 0"), bin(kindAddition, vr("x"), num(0)))
	// identities that hold for Inf and NaN too stay enabled
	checkTree(c, parse("x * 1"), vr("x"))
	checkTree(c, parse("x - 0"), vr("x"))
}

func clearMarks(n *node) {
	if n == nil {
		return
	}
	n.optimized = false
	clearMarks(n.left)
	clearMarks(n.right)
}

func (s *OptSuite) TestIdempotence(c *C) {
	inputs := []string{
		"x + y",
		"2 * x * 3",
		"x^a * x^b",
		"x / (y / z)",
		"(7 + x) - (z + (3 + y))",
	}
	for _, input := range inputs {
		root := optParse(c, input)
		clearMarks(root)
		o := &optimizer{probe: NewSolver(nil), rational: true, eps: 1e-4}
		c.Check(o.optimizeNode(root), IsNil, Commentf("%q changed on a second pass", input))
	}
}

func (s *OptSuite) TestOptimizedValueUnchanged(c *C) {
	vars := []string{"x", "y", "z", "a", "b"}
	values := []float64{2.5, 3, -1.5, 2, 4}

	inputs := []string{
		"(7 + x) - (z + (3 + y))",
		"x + 2 + 3",
		"2 * x * 3",
		"y log x + y log y + ln x + ln y",
		"x^a * x^b",
		"x^y / x^z",
		"2 r x * x",
		"(x^y)^z",
		"(2 r x)^y",
		"x / (y / z)",
		"x * (1 / y)",
		"(x/2) * (y/3)",
		"-(x * -3)",
		"x - y",
		"sin -10 r (2 + 4 * 3 + 1)",
	}
	for _, input := range inputs {
		solve := NewSolver(vars)
		c.Assert(solve.SetValues(values), IsNil)

		plain, err := solve.ParseString(input, false)
		c.Assert(err, IsNil, Commentf("parsing %q", input))
		opt, err := solve.ParseString(input, true)
		c.Assert(err, IsNil, Commentf("parsing %q", input))

		pv, err := solve.Eval(plain)
		c.Assert(err, IsNil)
		ov, err := solve.Eval(opt)
		c.Assert(err, IsNil)
		c.Check(solve.Parser().Equals(pv, ov), Equals, true,
			Commentf("%q: plain %v, optimized %v (%s)", input, pv, ov, opt))
	}
}
