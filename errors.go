package expression

import "fmt"

// LexError reports an unrecognized character or a malformed token, such as a
// numeric literal with more than one decimal point.
type LexError struct {
	// Text is the offending rune or literal.
	Text string
	// Kind is the type of token being scanned, "number" or the empty string
	// when no token kind had been decided yet.
	Kind string
	// Pos is the byte offset of the token start in the input.
	Pos int
}

func (e *LexError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("invalid token %q at offset %d", e.Text, e.Pos)
	}
	return fmt.Sprintf("invalid %s token %q at offset %d", e.Kind, e.Text, e.Pos)
}

// ParseError reports a structurally malformed expression: empty parentheses,
// operators missing an operand, adjacent numeric literals, unbalanced
// parentheses, or identifiers outside the allowed variable set.
type ParseError struct {
	Cause string
}

func (e *ParseError) Error() string {
	return "malformed expression: " + e.Cause
}

// UndefinedVarError is returned when evaluation reaches a variable that is
// absent from the solver's bindings. The optimizer also relies on it
// internally: probing a subtree against an empty solver and hitting this
// error is the signal that the subtree is not constant.
type UndefinedVarError struct {
	Name string
}

func (e *UndefinedVarError) Error() string {
	return fmt.Sprintf("undefined variable %q in expression", e.Name)
}
