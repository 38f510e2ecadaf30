package expression

import (
	"fmt"
	"math"
)

// Solver binds an ordered list of variable names to values and evaluates
// expressions against those bindings.
type Solver struct {
	variables []string
	values    []float64
	parser    *Parser
}

func NewSolver(variables []string) *Solver {
	return &Solver{
		variables: variables,
		parser:    NewParser(),
	}
}

// Parser exposes the solver's parser so its Optimize, Rational and MaxErr
// settings can be adjusted.
func (s *Solver) Parser() *Parser {
	return s.parser
}

// SetVariables replaces the variable list. Any previously bound values are
// discarded.
func (s *Solver) SetVariables(variables []string) {
	s.variables = variables
	s.values = nil
}

// SetValues binds one value per variable, in variable order. A length
// mismatch is an error and leaves the previous bindings untouched. The
// slice is retained, so the caller may update values in place.
func (s *Solver) SetValues(values []float64) error {
	if len(values) != len(s.variables) {
		return fmt.Errorf("expected %d values, got %d", len(s.variables), len(values))
	}
	s.values = values
	return nil
}

// Get returns the value bound to name, or an *UndefinedVarError when the
// name is unknown or no values have been bound yet.
func (s *Solver) Get(name string) (float64, error) {
	if s.values != nil {
		for i, v := range s.variables {
			if v == name {
				return s.values[i], nil
			}
		}
	}
	return math.NaN(), &UndefinedVarError{Name: name}
}

// ParseString lexes and parses expr, with identifiers restricted to the
// solver's variable names.
func (s *Solver) ParseString(expr string, optimize bool) (Expression, error) {
	tokens, err := LexExpression(expr)
	if err != nil {
		return nil, err
	}
	vars := s.variables
	if vars == nil {
		vars = []string{}
	}
	p := *s.parser
	p.Optimize = optimize
	return p.Parse(tokens, vars)
}

func (s *Solver) Eval(e Expression) (float64, error) {
	if s.values == nil && len(s.variables) > 0 {
		return math.NaN(), fmt.Errorf("values not initialized, call SetValues first")
	}
	return e.Eval(s)
}

// EvalString parses expr without optimization and evaluates it once.
func (s *Solver) EvalString(expr string) (float64, error) {
	e, err := s.ParseString(expr, false)
	if err != nil {
		return math.NaN(), err
	}
	return s.Eval(e)
}
