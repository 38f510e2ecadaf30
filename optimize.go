package expression

import "math"

// optimizer rewrites a tree into a cheaper equivalent. It works bottom-up:
// operands first, then the kind-specific rules, then an attempt to fold the
// whole subtree into a constant by evaluating it against an empty probe
// solver. Hitting an undefined variable during the probe marks the subtree
// as non-constant.
type optimizer struct {
	probe    *Solver
	rational bool
	eps      float64
}

// optimizeNode returns a replacement for n, or nil when n keeps its place.
// In-place rewrites below n also return nil. The caller installs any
// replacement into n's former slot.
func (o *optimizer) optimizeNode(n *node) *node {
	if n.optimized {
		return nil
	}
	if n.isLeaf() {
		n.optimized = true
		return nil
	}
	if n.left != nil {
		if rep := o.optimizeNode(n.left); rep != nil {
			n.setLeft(rep)
		}
	}
	if rep := o.optimizeNode(n.right); rep != nil {
		n.setRight(rep)
	}

	var rep *node
	switch n.kind {
	case kindNegation:
		rep = o.pushNegation(n)
	case kindAddition:
		rep = o.reduceAddition(n)
	case kindSubtraction:
		rep = o.reduceSubtraction(n)
	case kindMultiplication:
		rep, _ = o.reduceMultiplication(n)
	case kindDivision:
		rep = o.reduceDivision(n)
	case kindExponentiation:
		rep = o.reducePower(n)
	case kindRoot:
		rep = o.reduceRoot(n)
	case kindLogarithm:
		rep = o.reduceLogarithm(n)
	}

	result := n
	if rep != nil {
		result = rep
	}
	if !result.isLeaf() {
		if v, ok := o.constValue(result); ok {
			c := newConstant(v)
			c.optimized = true
			return c
		}
	}
	result.optimized = true
	return rep
}

// constValue evaluates n against the empty probe solver. Any evaluation
// error, an undefined variable in particular, means n is not constant.
func (o *optimizer) constValue(n *node) (float64, bool) {
	v, err := n.Eval(o.probe)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (o *optimizer) eq(a, b float64) bool {
	return a+o.eps > b && b+o.eps > a
}

func asConstant(n *node) (float64, bool) {
	if n.kind == kindConstant {
		return n.val, true
	}
	return 0, false
}

// reduced optimizes a freshly built node and returns whichever of the node
// or its replacement survives.
func (o *optimizer) reduced(n *node) *node {
	if rep := o.optimizeNode(n); rep != nil {
		return rep
	}
	return n
}

// spliceChild replaces n with child in n's parent slot.
func spliceChild(n, child *node) {
	p := n.parent
	if p == nil {
		child.parent = nil
		return
	}
	if p.left == n {
		p.setLeft(child)
	} else {
		p.setRight(child)
	}
}

// removeTerm drops t from the additive or multiplicative chain rooted at
// top. The sibling takes over t's parent slot; a subtraction losing its left
// child re-wraps the sibling in a negation, and a division losing its
// numerator keeps a 1/x form instead. Returns the new chain root when top
// itself was consumed, nil otherwise.
func removeTerm(top, t *node) *node {
	p := t.parent
	if p.kind == kindNegation {
		return removeTerm(top, p)
	}
	var survivor *node
	if p.left == t {
		survivor = p.right
		switch p.kind {
		case kindSubtraction:
			neg := newNode(kindNegation)
			neg.setRight(survivor)
			survivor = neg
		case kindDivision:
			p.setLeft(newConstant(1))
			return nil
		}
	} else {
		survivor = p.left
	}
	if p == top {
		survivor.parent = nil
		return survivor
	}
	spliceChild(p, survivor)
	return nil
}

// Negation

// reduceNegation cancels a double negation or absorbs the sign into a
// product or quotient below. It never creates new structure.
func (o *optimizer) reduceNegation(n *node) *node {
	operand := n.right
	if operand.kind == kindNegation {
		return operand.right
	}
	if operand.kind == kindMultiplication || operand.kind == kindDivision {
		if o.absorbSign(operand) {
			return operand
		}
	}
	return nil
}

// absorbSign negates the first constant, or cancels the first negation,
// reachable through a mul/div chain. Reports whether a sink was found.
func (o *optimizer) absorbSign(n *node) bool {
	switch n.kind {
	case kindConstant:
		n.val = -n.val
		n.invalidate()
		return true
	case kindNegation:
		spliceChild(n, n.right)
		return true
	case kindMultiplication, kindDivision:
		return o.absorbSign(n.left) || o.absorbSign(n.right)
	}
	return false
}

// pushNegation reduces a negation, or failing that pushes it onto the left
// operand of a product or quotient to expose further folding.
func (o *optimizer) pushNegation(n *node) *node {
	if rep := o.reduceNegation(n); rep != nil {
		return rep
	}
	operand := n.right
	if operand.kind == kindMultiplication || operand.kind == kindDivision {
		neg := newNode(kindNegation)
		neg.setRight(operand.left)
		operand.setLeft(neg)
		return operand
	}
	return nil
}

// Addition and subtraction

func (o *optimizer) reduceAddition(n *node) *node {
	if o.rational {
		if v, ok := asConstant(n.left); ok && o.eq(v, 0) {
			return n.right
		}
		if v, ok := asConstant(n.right); ok && o.eq(v, 0) {
			return n.left
		}
	}
	rep, _ := o.combineAdditive(n)
	return rep
}

func (o *optimizer) reduceSubtraction(n *node) *node {
	if v, ok := asConstant(n.right); ok && o.eq(v, 0) {
		return n.left
	}
	if n.left.equals(n.right, o.eps) {
		return newConstant(0)
	}

	// rewrite as lhs + (-rhs) so the addition rules apply, but keep the
	// rewrite only if one of them fires
	lhs, rhs := n.left, n.right
	neg := newNode(kindNegation)
	neg.setRight(rhs)
	add := newNode(kindAddition)
	add.setLeft(lhs)
	add.setRight(neg)

	changed := false
	if rep := o.reduceNegation(neg); rep != nil {
		add.setRight(rep)
		changed = true
	}
	rep, c := o.combineAdditive(add)
	if changed || c {
		if rep != nil {
			return rep
		}
		return add
	}
	n.setLeft(lhs)
	n.setRight(rhs)
	return nil
}

// combineAdditive runs constant collapsing and logarithm combination on an
// additive chain. Returns a replacement for n (or nil) and whether anything
// changed at all.
func (o *optimizer) combineAdditive(n *node) (*node, bool) {
	top := n
	changed := false
	if rep, c := o.collapseAddConstants(top); c {
		changed = true
		if rep != nil {
			top = rep
		}
	}
	if top.kind == kindAddition || top.kind == kindSubtraction {
		if rep, c := o.combineLogTerms(top); c {
			changed = true
			if rep != nil {
				top = rep
			}
		}
	}
	if top != n {
		return top, changed
	}
	return nil, changed
}

type chainTerm struct {
	n   *node
	neg bool
}

// findAddConstant locates the first constant reachable through an additive
// chain, tracking the accumulated sign.
func findAddConstant(n *node, neg bool) *chainTerm {
	switch n.kind {
	case kindConstant:
		return &chainTerm{n: n, neg: neg}
	case kindNegation:
		return findAddConstant(n.right, !neg)
	case kindAddition:
		if t := findAddConstant(n.left, neg); t != nil {
			return t
		}
		return findAddConstant(n.right, neg)
	case kindSubtraction:
		if t := findAddConstant(n.left, neg); t != nil {
			return t
		}
		return findAddConstant(n.right, !neg)
	}
	return nil
}

func signed(v float64, neg bool) float64 {
	if neg {
		return -v
	}
	return v
}

// collapseAddConstants merges one constant found on each side of n into a
// single constant. The sum lands in the right-hand constant, expressed in
// its own sign context; the left-hand one is spliced out.
func (o *optimizer) collapseAddConstants(n *node) (*node, bool) {
	lt := findAddConstant(n.left, false)
	if lt == nil {
		return nil, false
	}
	rt := findAddConstant(n.right, false)
	if rt == nil {
		return nil, false
	}
	sum := signed(lt.n.val, lt.neg) + signed(rt.n.val, rt.neg)
	rt.n.val = signed(sum, rt.neg)
	rt.n.invalidate()
	return removeTerm(n, lt.n), true
}

// findLogTerms collects the logarithm nodes reachable through an additive
// chain, with their accumulated signs.
func findLogTerms(n *node, neg bool, terms []chainTerm) []chainTerm {
	switch n.kind {
	case kindLogarithm, kindNatLog:
		return append(terms, chainTerm{n: n, neg: neg})
	case kindNegation:
		return findLogTerms(n.right, !neg, terms)
	case kindAddition:
		terms = findLogTerms(n.left, neg, terms)
		return findLogTerms(n.right, neg, terms)
	case kindSubtraction:
		terms = findLogTerms(n.left, neg, terms)
		return findLogTerms(n.right, !neg, terms)
	}
	return terms
}

func logBase(n *node) *node {
	if n.kind == kindNatLog {
		return newConstant(math.E)
	}
	return n.left
}

// combineLogTerms merges pairs of logarithms with structurally equal bases:
// same-sign arguments multiply, opposite-sign arguments divide.
func (o *optimizer) combineLogTerms(top *node) (*node, bool) {
	terms := findLogTerms(top, false, nil)
	changed := false
	for i := 0; i < len(terms); i++ {
		for j := i + 1; j < len(terms); j++ {
			if !logBase(terms[i].n).equals(logBase(terms[j].n), o.eps) {
				continue
			}
			kind := kindMultiplication
			if terms[i].neg != terms[j].neg {
				kind = kindDivision
			}
			merged := newNode(kind)
			merged.setLeft(terms[i].n.right)
			merged.setRight(terms[j].n.right)
			terms[i].n.setRight(o.reduced(merged))
			changed = true
			if rep := removeTerm(top, terms[j].n); rep != nil {
				return rep, true
			}
			terms = append(terms[:j], terms[j+1:]...)
			j--
		}
	}
	return nil, changed
}

// Multiplication and division

func (o *optimizer) reduceMultiplication(n *node) (*node, bool) {
	if v, ok := asConstant(n.left); ok && o.eq(v, 1) {
		return n.right, true
	}
	if v, ok := asConstant(n.right); ok && o.eq(v, 1) {
		return n.left, true
	}
	if o.rational {
		if v, ok := asConstant(n.left); ok && o.eq(v, 0) {
			return newConstant(0), true
		}
		if v, ok := asConstant(n.right); ok && o.eq(v, 0) {
			return newConstant(0), true
		}
	}
	if n.left.kind == kindDivision && n.right.kind == kindDivision {
		if rep := o.combineFractions(n); rep != nil {
			return rep, true
		}
	}
	if rep := o.mulByInverse(n); rep != nil {
		return rep, true
	}
	return o.combineMultiplicative(n)
}

// combineFractions merges (a/b)*(c/d) into (ac)/(bd), kept only when one of
// the new sides actually simplifies; otherwise the original links are
// restored exactly.
func (o *optimizer) combineFractions(n *node) *node {
	ld, rd := n.left, n.right
	a, b := ld.left, ld.right
	c, d := rd.left, rd.right

	num := newNode(kindMultiplication)
	num.setLeft(a)
	num.setRight(c)
	den := newNode(kindMultiplication)
	den.setLeft(b)
	den.setRight(d)

	numRep, numChanged := o.reducedProduct(num)
	denRep, denChanged := o.reducedProduct(den)
	if !numChanged && !denChanged {
		ld.setLeft(a)
		ld.setRight(b)
		rd.setLeft(c)
		rd.setRight(d)
		return nil
	}
	if numRep == nil {
		numRep = num
	}
	if denRep == nil {
		denRep = den
	}
	div := newNode(kindDivision)
	div.setLeft(numRep)
	div.setRight(denRep)
	return div
}

// reducedProduct applies the multiplication rules and the constant-fold
// attempt to a freshly built product, reporting whether anything changed.
func (o *optimizer) reducedProduct(n *node) (*node, bool) {
	rep, changed := o.reduceMultiplication(n)
	result := n
	if rep != nil {
		result = rep
		changed = true
	}
	if !result.isLeaf() {
		if v, ok := o.constValue(result); ok {
			c := newConstant(v)
			c.optimized = true
			return c, true
		}
	}
	result.optimized = true
	if rep != nil {
		return rep, true
	}
	return nil, changed
}

// mulByInverse turns x*(1/y) into x/y.
func (o *optimizer) mulByInverse(n *node) *node {
	for _, side := range [2]*node{n.left, n.right} {
		if side.kind != kindDivision {
			continue
		}
		v, ok := asConstant(side.left)
		if !ok || !o.eq(v, 1) {
			continue
		}
		other := n.right
		if side == n.right {
			other = n.left
		}
		div := newNode(kindDivision)
		div.setLeft(other)
		div.setRight(side.right)
		return o.reduced(div)
	}
	return nil
}

func (o *optimizer) reduceDivision(n *node) *node {
	if v, ok := asConstant(n.right); ok && o.eq(v, 1) {
		return n.left
	}
	if n.left.equals(n.right, o.eps) {
		return newConstant(1)
	}
	if n.right.kind == kindDivision {
		// x/(y/z) = xz/y
		inner := n.right
		num := newNode(kindMultiplication)
		num.setLeft(n.left)
		num.setRight(inner.right)
		div := newNode(kindDivision)
		div.setLeft(o.reduced(num))
		div.setRight(inner.left)
		return div
	}
	rep, _ := o.combineMultiplicative(n)
	return rep
}

// combineMultiplicative runs constant collapsing and exponent combination on
// a multiplicative chain.
func (o *optimizer) combineMultiplicative(n *node) (*node, bool) {
	top := n
	changed := false
	if rep, c := o.collapseMulConstants(top); c {
		changed = true
		if rep != nil {
			top = rep
		}
	}
	if top.kind == kindMultiplication || top.kind == kindDivision {
		if rep, c := o.combineExpTerms(top); c {
			changed = true
			if rep != nil {
				top = rep
			}
		}
	}
	if top != n {
		return top, changed
	}
	return nil, changed
}

type mulTerm struct {
	n        *node
	neg, inv bool
}

// findMulConstant locates the first constant reachable through a
// multiplicative chain, tracking accumulated sign and inversion.
func findMulConstant(n *node, neg, inv bool) *mulTerm {
	switch n.kind {
	case kindConstant:
		return &mulTerm{n: n, neg: neg, inv: inv}
	case kindNegation:
		return findMulConstant(n.right, !neg, inv)
	case kindMultiplication:
		if t := findMulConstant(n.left, neg, inv); t != nil {
			return t
		}
		return findMulConstant(n.right, neg, inv)
	case kindDivision:
		if t := findMulConstant(n.left, neg, inv); t != nil {
			return t
		}
		return findMulConstant(n.right, neg, !inv)
	}
	return nil
}

func mulEffective(t *mulTerm) float64 {
	v := t.n.val
	if t.inv {
		v = 1 / v
	}
	if t.neg {
		v = -v
	}
	return v
}

// collapseMulConstants merges one constant found on each side of n into a
// single constant, accounting for division and negation between them. The
// product lands in the right-hand constant, re-expressed in its own context.
func (o *optimizer) collapseMulConstants(n *node) (*node, bool) {
	lt := findMulConstant(n.left, false, false)
	if lt == nil {
		return nil, false
	}
	rt := findMulConstant(n.right, false, n.kind == kindDivision)
	if rt == nil {
		return nil, false
	}
	product := mulEffective(lt) * mulEffective(rt)
	v := product
	if rt.neg {
		v = -v
	}
	if rt.inv {
		v = 1 / v
	}
	rt.n.val = v
	rt.n.invalidate()
	return removeTerm(n, lt.n), true
}

type expTerm struct {
	n   *node
	inv bool
}

// findExpTerms collects the factors of a multiplicative chain with their
// inversion flags. Unlike the constant and log searches it does not cross
// negations; every non-mul non-div node is a factor.
func findExpTerms(n *node, inv bool, terms []expTerm) []expTerm {
	switch n.kind {
	case kindMultiplication:
		terms = findExpTerms(n.left, inv, terms)
		return findExpTerms(n.right, inv, terms)
	case kindDivision:
		terms = findExpTerms(n.left, inv, terms)
		return findExpTerms(n.right, !inv, terms)
	}
	return append(terms, expTerm{n: n, inv: inv})
}

func termBase(n *node) *node {
	switch n.kind {
	case kindExponentiation:
		return n.left
	case kindRoot:
		return n.right
	}
	return n
}

// termExponent is the factor's exponent over termBase: a root a r x reads as
// x^(1/a), anything that is not a power or root as base^1.
func (o *optimizer) termExponent(n *node) *node {
	switch n.kind {
	case kindExponentiation:
		return n.right
	case kindRoot:
		div := newNode(kindDivision)
		div.setLeft(newConstant(1))
		div.setRight(n.left)
		return div
	}
	return newConstant(1)
}

// combineExpTerms merges factors sharing a structurally equal base into one
// power, adding exponents (subtracting across a division). Powers and roots
// open an entry for their base; a bare base folds into an existing entry but
// never opens one.
func (o *optimizer) combineExpTerms(top *node) (*node, bool) {
	terms := findExpTerms(top, false, nil)
	var entries []int
	changed := false
	for i := 0; i < len(terms); i++ {
		t := terms[i]
		powerLike := t.n.kind == kindExponentiation || t.n.kind == kindRoot
		match := -1
		for _, e := range entries {
			if termBase(terms[e].n).equals(termBase(t.n), o.eps) {
				match = e
				break
			}
		}
		if match < 0 {
			if powerLike {
				entries = append(entries, i)
			}
			continue
		}

		entry := &terms[match]
		kind := kindAddition
		if entry.inv != t.inv {
			kind = kindSubtraction
		}
		comb := newNode(kind)
		comb.setLeft(o.termExponent(entry.n))
		comb.setRight(o.termExponent(t.n))
		combined := o.reduced(comb)
		if entry.n.kind == kindExponentiation {
			entry.n.setRight(combined)
		} else {
			exp := newNode(kindExponentiation)
			exp.setLeft(entry.n.right)
			exp.setRight(combined)
			spliceChild(entry.n, exp)
			entry.n = exp
		}
		changed = true
		if rep := removeTerm(top, t.n); rep != nil {
			return rep, true
		}
	}
	return nil, changed
}

// Powers, roots and logarithms

func (o *optimizer) reducePower(n *node) *node {
	if v, ok := asConstant(n.right); ok {
		if o.eq(v, 1) {
			return n.left
		}
		if o.eq(v, 0) {
			return newConstant(1)
		}
	}
	switch n.left.kind {
	case kindExponentiation:
		// (x^a)^b = x^(ab)
		inner := n.left
		mul := newNode(kindMultiplication)
		mul.setLeft(inner.right)
		mul.setRight(n.right)
		exp := newNode(kindExponentiation)
		exp.setLeft(inner.left)
		exp.setRight(o.reduced(mul))
		return exp
	case kindRoot:
		// (a r x)^b = x^(b/a)
		inner := n.left
		div := newNode(kindDivision)
		div.setLeft(n.right)
		div.setRight(inner.left)
		exp := newNode(kindExponentiation)
		exp.setLeft(inner.right)
		exp.setRight(o.reduced(div))
		return exp
	}
	return nil
}

func (o *optimizer) reduceRoot(n *node) *node {
	if inner := n.right; inner.kind == kindExponentiation {
		// a r (x^b) = x^(b/a)
		div := newNode(kindDivision)
		div.setLeft(inner.right)
		div.setRight(n.left)
		exp := newNode(kindExponentiation)
		exp.setLeft(inner.left)
		exp.setRight(o.reduced(div))
		return exp
	}
	return nil
}

func (o *optimizer) reduceLogarithm(n *node) *node {
	base := n.left
	inner := n.right
	switch inner.kind {
	case kindExponentiation:
		// log_b(b^x) = x
		if inner.left.equals(base, o.eps) {
			return inner.right
		}
	case kindRoot:
		// log_b(a r b) = 1/a
		if inner.right.equals(base, o.eps) {
			div := newNode(kindDivision)
			div.setLeft(newConstant(1))
			div.setRight(inner.left)
			return o.reduced(div)
		}
	}
	return nil
}
