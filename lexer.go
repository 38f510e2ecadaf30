package expression

import (
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType identifies the lexical class of a Token.
type TokenType int

const (
	TokNumber TokenType = iota
	TokIdent
	TokPlus
	TokMinus
	TokMult
	TokDivide
	TokPower
	TokOParen
	TokCParen
	TokRoot
	TokCos
	TokSin
	TokTan
	TokLog
	TokLn
	TokMax
	TokMin
	TokRound
	TokCeil
	TokFloor
)

// Token is one lexical element of an expression string. Value carries the
// original text, which is meaningful for numbers and identifiers.
type Token struct {
	Type  TokenType
	Value string
}

func NewToken(t TokenType, value string) Token {
	return Token{Type: t, Value: value}
}

// keywords maps reserved identifiers to their operator tokens. Matching is
// case-sensitive and whole-token: "mine" or "cost" are plain identifiers.
var keywords = map[string]TokenType{
	"r":     TokRoot,
	"cos":   TokCos,
	"sin":   TokSin,
	"tan":   TokTan,
	"log":   TokLog,
	"ln":    TokLn,
	"max":   TokMax,
	"min":   TokMin,
	"round": TokRound,
	"ceil":  TokCeil,
	"floor": TokFloor,
}

type Lexer struct {
	input      string
	tokens     chan Token
	errors     chan error
	action     lexActionFn
	start, pos int
	width      int
}

type lexActionFn func(l *Lexer) lexActionFn

func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		errors: make(chan error, 2),
		tokens: make(chan Token, 2),
		action: lexWS,
	}
}

// Next returns the next token in the input. After the last token it returns
// io.EOF; malformed input yields a *LexError.
func (l *Lexer) Next() (Token, error) {
	for {
		select {
		case err := <-l.errors:
			if err != io.EOF {
				return Token{}, err
			}
		case t := <-l.tokens:
			return t, nil
		default:
			if l.action == nil {
				return Token{}, io.EOF
			}
			l.action = l.action(l)
		}
	}
}

// LexExpression tokenizes the whole input at once, for the parser.
func LexExpression(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		t, err := l.Next()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
}

const eof rune = 0

// Actions

func lexWS(l *Lexer) lexActionFn {
	var ru rune
	for {
		ru = l.next()
		if !unicode.IsSpace(ru) {
			break
		}
	}
	//we peek the last char
	l.backup()

	//drop the whitespace
	l.ignore()

	if ru == eof {
		return nil
	}

	if l.accept(numeric + ".") {
		return lexNumber
	}

	if unicode.IsLetter(ru) {
		return lexIdentifier
	}

	ru = l.next() //we know it is not eof
	if action, ok := runeToken[ru]; ok {
		return action
	}

	return l.error(&LexError{Text: string(ru), Pos: l.start})
}

func lexNumber(l *Lexer) lexActionFn {
	l.acceptRun(numeric + ".")
	if strings.Count(l.current(), ".") > 1 {
		return l.error(&LexError{Text: l.current(), Kind: "number", Pos: l.start})
	}
	l.emit(TokNumber)
	return lexWS
}

func lexIdentifier(l *Lexer) lexActionFn {
	// Identifiers begin with a letter; after that digits, dots and
	// underscores may extend them, which permits names like x2 or foo3.8.
	for {
		ru := l.next()
		if ru == '.' || ru == '_' || unicode.IsLetter(ru) || unicode.IsDigit(ru) {
			continue
		}
		l.backup()
		break
	}
	if t, ok := keywords[l.current()]; ok {
		l.emit(t)
	} else {
		l.emit(TokIdent)
	}
	return lexWS
}

// static data

const numeric = "0123456789"

var runeToken = make(map[rune]lexActionFn)

func registerRuneToken(ru rune, t TokenType) {
	runeToken[ru] = func(l *Lexer) lexActionFn {
		l.emit(t)
		return lexWS
	}
}

func init() {
	registerRuneToken('+', TokPlus)
	registerRuneToken('-', TokMinus)
	registerRuneToken('*', TokMult)
	registerRuneToken('/', TokDivide)
	registerRuneToken('^', TokPower)
	registerRuneToken('(', TokOParen)
	registerRuneToken(')', TokCParen)
}

// helpers

func (l *Lexer) current() string {
	return l.input[l.start:l.pos]
}

func (l *Lexer) emit(t TokenType) {
	l.tokens <- NewToken(t, l.current())
	l.ignore()
}

func (l *Lexer) error(err error) lexActionFn {
	if len(l.errors) == 0 {
		l.errors <- err
	}
	return nil
}

func (l *Lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	var ru rune
	ru, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	return ru
}

func (l *Lexer) backup() {
	l.pos -= l.width
}

func (l *Lexer) ignore() {
	l.start = l.pos
}

func (l *Lexer) accept(valid string) bool {
	if strings.IndexRune(valid, l.next()) >= 0 {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptRun(valid string) {
	for strings.IndexRune(valid, l.next()) >= 0 {
	}
	l.backup()
}
