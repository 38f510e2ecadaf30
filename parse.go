package expression

import (
	"strconv"
	"strings"
)

// Parser turns a token stream into an Expression. The zero value is usable
// but NewParser gives the intended defaults: optimization on, rational
// simplifications on, comparison tolerance of 1e-4.
type Parser struct {
	// Optimize runs the tree optimizer on the parse result.
	Optimize bool
	// Rational enables the simplifications that assume all values are
	// finite: x*0 -> 0 and x+0 -> x would be wrong for Inf or NaN operands.
	Rational bool
	// MaxErr is the tolerance used when comparing constants.
	MaxErr float64
}

func NewParser() *Parser {
	return &Parser{Optimize: true, Rational: true, MaxErr: 1e-4}
}

// Equals compares two values within the parser's tolerance.
func (p *Parser) Equals(a, b float64) bool {
	return a+p.MaxErr > b && b+p.MaxErr > a
}

var tokenNodeKinds = map[TokenType]nodeKind{
	TokPlus:   kindAddition,
	TokMult:   kindMultiplication,
	TokDivide: kindDivision,
	TokPower:  kindExponentiation,
	TokRoot:   kindRoot,
	TokCos:    kindCosine,
	TokSin:    kindSine,
	TokTan:    kindTangent,
	TokLog:    kindLogarithm,
	TokLn:     kindNatLog,
	TokMax:    kindMax,
	TokMin:    kindMin,
	TokRound:  kindRound,
	TokCeil:   kindCeiling,
	TokFloor:  kindFloor,
}

type tokenIterator struct {
	tokens []Token
	index  int
}

// Parse builds an expression tree from tokens. When vars is non-nil, any
// identifier outside it is a *ParseError; a nil vars accepts everything.
func (p *Parser) Parse(tokens []Token, vars []string) (Expression, error) {
	it := &tokenIterator{tokens: tokens}
	root, err := parseScope(it, vars)
	if err != nil {
		return nil, err
	}
	if it.index < len(tokens) {
		return nil, &ParseError{Cause: "unmatched closing parenthesis"}
	}
	if p.Optimize {
		o := &optimizer{probe: NewSolver(nil), rational: p.Rational, eps: p.MaxErr}
		if rep := o.optimizeNode(root); rep != nil {
			rep.parent = nil
			root = rep
		}
	}
	return root, nil
}

// parseScope consumes tokens up to the next unopened closing parenthesis or
// the end of input, and resolves them into a single tree. Each parenthesized
// group recurses into a fresh scope.
func parseScope(it *tokenIterator, vars []string) (*node, error) {
	var segments []*node
	prevNumber := false

	prevValue := func() bool {
		return len(segments) > 0 && segments[len(segments)-1].usable()
	}
	implicitMult := func() {
		if prevValue() {
			segments = append(segments, newNode(kindMultiplication))
		}
	}

scan:
	for it.index < len(it.tokens) {
		tok := it.tokens[it.index]
		wasNumber := false
		switch tok.Type {
		case TokNumber:
			if prevNumber {
				return nil, &ParseError{Cause: "adjacent numeric literals " + tok.Value}
			}
			v, err := strconv.ParseFloat(tok.Value, 64)
			if err != nil {
				return nil, &ParseError{Cause: "bad numeric literal " + tok.Value}
			}
			implicitMult()
			segments = append(segments, newConstant(v))
			wasNumber = true
		case TokIdent:
			if vars != nil && !containsName(vars, tok.Value) {
				return nil, &ParseError{Cause: "unknown variable " + tok.Value}
			}
			implicitMult()
			segments = append(segments, newVariable(tok.Value))
		case TokOParen:
			implicitMult()
			it.index++
			group, err := parseScope(it, vars)
			if err != nil {
				return nil, err
			}
			if it.index >= len(it.tokens) || it.tokens[it.index].Type != TokCParen {
				return nil, &ParseError{Cause: "unterminated parenthesis"}
			}
			segments = append(segments, group)
		case TokCParen:
			break scan
		case TokMinus:
			// minus is negation unless it follows a completed value
			if prevValue() {
				segments = append(segments, newNode(kindSubtraction))
			} else {
				segments = append(segments, newNode(kindNegation))
			}
		default:
			segments = append(segments, newNode(tokenNodeKinds[tok.Type]))
		}
		prevNumber = wasNumber
		it.index++
	}

	if len(segments) == 0 {
		return nil, &ParseError{Cause: "empty parentheses"}
	}
	return resolve(segments)
}

// resolve connects the scope's segments, one precedence class at a time from
// tightest to loosest. The unary class is applied right to left so prefix
// chains bind innermost first; binary classes are applied left to right,
// which makes them left-associative.
func resolve(segments []*node) (*node, error) {
	for prec := precUnary; prec >= precMinMax; prec-- {
		present := false
		for _, s := range segments {
			if !s.usable() && s.precedence() == prec {
				present = true
				break
			}
		}
		if !present {
			continue
		}
		var err error
		if prec == precUnary {
			segments, err = applyUnary(segments)
		} else {
			segments, err = applyBinary(segments, prec)
		}
		if err != nil {
			return nil, err
		}
	}

	if len(segments) > 1 {
		return nil, &ParseError{Cause: "multiple unconnected segments: " + segmentList(segments)}
	}
	if !segments[0].usable() {
		return nil, &ParseError{Cause: "missing arguments for " + segments[0].kind.String()}
	}
	return segments[0], nil
}

func applyUnary(segments []*node) ([]*node, error) {
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg.usable() || seg.precedence() != precUnary {
			continue
		}
		if i+1 >= len(segments) || !segments[i+1].usable() {
			return nil, &ParseError{Cause: "missing argument for " + seg.kind.String()}
		}
		seg.setRight(segments[i+1])
		segments = append(segments[:i+1], segments[i+2:]...)
	}
	return segments, nil
}

func applyBinary(segments []*node, prec int) ([]*node, error) {
	for i := 0; i < len(segments); i++ {
		seg := segments[i]
		if seg.usable() || seg.precedence() != prec {
			continue
		}
		if i+1 >= len(segments) || !segments[i+1].usable() {
			return nil, &ParseError{Cause: "missing right argument for " + seg.kind.String()}
		}
		if i == 0 || !segments[i-1].usable() {
			return nil, &ParseError{Cause: "missing left argument for " + seg.kind.String()}
		}
		seg.setRight(segments[i+1])
		seg.setLeft(segments[i-1])
		segments[i-1] = seg
		segments = append(segments[:i], segments[i+2:]...)
		i--
	}
	return segments, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func segmentList(segments []*node) string {
	parts := make([]string, len(segments))
	for i, s := range segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, ", ")
}
