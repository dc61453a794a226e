// Package parser turns one source line into a macro definition, a command,
// or an expression. The grammar is small enough (four productions, no infix
// operator table) that straightforward recursive descent over the lexer
// does the job.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rm-dr/lamb/lexer"
	"github.com/rm-dr/lamb/term"
	"github.com/rm-dr/lamb/token"
)

// SyntaxError reports unparseable input. Loc is the zero-based rune offset
// of the offending token.
type SyntaxError struct {
	Loc int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at column %d", e.Loc)
}

// LineKind classifies what a parsed line turned out to be.
type LineKind int

const (
	LineExpression LineKind = iota
	LineDefinition
	LineCommand
)

// Line is the parser's output for one input line.
type Line struct {
	Kind LineKind

	// Valid when Kind == LineDefinition.
	DefName string
	// Valid when Kind == LineExpression or LineDefinition.
	Expr term.Node

	// Valid when Kind == LineCommand.
	Command string
	Args    []string
}

// ParseLine parses a single source line. Every identifier without a `'`
// marker — bound-looking or not — comes out as a term.Macro; the preparer
// is what later decides which are bound, which name a live abbreviation,
// and which are free. A `'`-marked identifier comes out as a term.Free.
func ParseLine(raw string) (*Line, error) {
	lx := lexer.New(raw)

	if lx.Peek().Kind == token.COLON {
		return parseCommand(lx)
	}

	p := &parser{lx: lx}
	p.advance()

	if p.cur.Kind == token.MACRO && p.cur.Col == 0 && p.lx.Peek().Kind == token.EQUALS {
		name := p.cur.Literal
		p.advance() // consume the name; cur is now '='
		p.advance() // consume '='; cur is now the body's first token

		body, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.cur.Kind != token.EOF {
			return nil, &SyntaxError{Loc: p.cur.Col}
		}
		return &Line{Kind: LineDefinition, DefName: name, Expr: body}, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.EOF {
		return nil, &SyntaxError{Loc: p.cur.Col}
	}
	return &Line{Kind: LineExpression, Expr: expr}, nil
}

func parseCommand(lx *lexer.Lexer) (*Line, error) {
	colon := lx.Next()
	rest, _ := lx.Rest()
	words := strings.Fields(rest)
	if len(words) == 0 {
		return nil, &SyntaxError{Loc: colon.Col}
	}
	return &Line{Kind: LineCommand, Command: words[0], Args: words[1:]}, nil
}

// parser holds one token of lookahead over a lexer.Lexer.
type parser struct {
	lx  *lexer.Lexer
	cur lexer.Lexeme
}

func (p *parser) advance() { p.cur = p.lx.Next() }

// parseExpression parses a left-associative, juxtaposition-based
// application: one atom followed by zero or more further atoms, each
// folded in as Call(left, next).
func (p *parser) parseExpression() (term.Node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for startsAtom(p.cur.Kind) {
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = term.NewCall(left, right)
	}
	return left, nil
}

func startsAtom(k token.Kind) bool {
	switch k {
	case token.BOUND, token.MACRO, token.FREE, token.CHURCH, token.HISTORY, token.LAMBDA, token.LPAREN:
		return true
	default:
		return false
	}
}

func (p *parser) parseAtom() (term.Node, error) {
	switch p.cur.Kind {
	case token.BOUND, token.MACRO:
		name := p.cur.Literal
		p.advance()
		return term.NewMacro(name), nil

	case token.FREE:
		// A `'`-marked identifier was produced by the printer's export of a
		// free variable; re-admit it as Free directly, skipping the
		// preparer's is-it-defined lookup.
		name := p.cur.Literal
		p.advance()
		return term.NewFree(name), nil

	case token.CHURCH:
		n, err := strconv.Atoi(p.cur.Literal)
		if err != nil {
			return nil, &SyntaxError{Loc: p.cur.Col}
		}
		p.advance()
		return term.NewChurch(n), nil

	case token.HISTORY:
		p.advance()
		return term.NewHistory(), nil

	case token.LAMBDA:
		return p.parseAbstraction()

	case token.LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.cur.Kind != token.RPAREN {
			return nil, &SyntaxError{Loc: p.cur.Col}
		}
		p.advance()
		return expr, nil

	default:
		return nil, &SyntaxError{Loc: p.cur.Col}
	}
}

// parseAbstraction parses 'λ' bound+ '.' expression (or '\' in place of
// 'λ'), desugaring right-associatively into nested Funcs.
//
// Adjacent single-letter parameters need no whitespace, so "λab.a" reaches
// us as one MACRO token "ab"; splitBounds re-reads such a token as the run
// of bound names the grammar means there.
func (p *parser) parseAbstraction() (term.Node, error) {
	p.advance() // consume 'λ' or '\'

	var params []string
	for {
		if p.cur.Kind == token.BOUND {
			params = append(params, p.cur.Literal)
			p.advance()
			continue
		}
		if p.cur.Kind == token.MACRO {
			split, ok := splitBounds(p.cur.Literal)
			if !ok {
				return nil, &SyntaxError{Loc: p.cur.Col}
			}
			params = append(params, split...)
			p.advance()
			continue
		}
		break
	}
	if len(params) == 0 {
		return nil, &SyntaxError{Loc: p.cur.Col}
	}
	if p.cur.Kind != token.DOT {
		return nil, &SyntaxError{Loc: p.cur.Col}
	}
	p.advance()

	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	for i := len(params) - 1; i >= 0; i-- {
		body = term.NewFunc(params[i], body)
	}
	return body, nil
}

// splitBounds splits a run of juxtaposed bound names ("ab", "nfa") into its
// single-letter parameters. Reports false if any rune is not a lowercase
// letter or a subscript digit, meaning the token genuinely is a macro name
// and cannot introduce abstraction parameters.
func splitBounds(lit string) ([]string, bool) {
	var out []string
	for _, r := range lit {
		switch {
		case r >= 'a' && r <= 'z':
			out = append(out, string(r))
		case isSubscript(r):
			if len(out) == 0 {
				return nil, false
			}
			out[len(out)-1] += string(r)
		default:
			return nil, false
		}
	}
	return out, len(out) > 0
}

func isSubscript(r rune) bool {
	return r >= '₀' && r <= '₉'
}
