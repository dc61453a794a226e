// Package lexer tokenizes a single input line of the λ-calculus surface
// grammar. One Lexer is built per line.
package lexer

import (
	"unicode"

	"github.com/rm-dr/lamb/token"
)

// subscriptDigits is the set of Unicode subscript digits accepted as part
// of a bound-variable name.
var subscriptDigits = map[rune]bool{
	'₀': true, '₁': true, '₂': true, '₃': true, '₄': true,
	'₅': true, '₆': true, '₇': true, '₈': true, '₉': true,
}

// Lexeme is a single lexed token, carrying the column (rune offset, zero
// based) at which it starts in the source line, for syntax-error
// diagnostics.
type Lexeme struct {
	Kind    token.Kind
	Literal string
	Col     int
}

// Lexer tokenizes one source line on demand: a line is scanned
// token-by-token rather than eagerly, since the grammar has no
// look-behind constructs that would reward an up-front scan.
type Lexer struct {
	runes []rune
	pos   int // rune index of the next unconsumed character

	peeked    *Lexeme
	hasPeeked bool
}

// New returns a Lexer over a single source line.
func New(line string) *Lexer {
	return &Lexer{runes: []rune(line)}
}

// Next consumes and returns the next Lexeme. Once the line is exhausted it
// returns an EOF Lexeme forever.
func (l *Lexer) Next() Lexeme {
	if l.hasPeeked {
		l.hasPeeked = false
		return *l.peeked
	}
	return l.scan()
}

// Peek returns the next Lexeme without consuming it.
func (l *Lexer) Peek() Lexeme {
	if !l.hasPeeked {
		lx := l.scan()
		l.peeked = &lx
		l.hasPeeked = true
	}
	return *l.peeked
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.runes) && unicode.IsSpace(l.runes[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) scan() Lexeme {
	l.skipSpace()

	if l.pos >= len(l.runes) {
		return Lexeme{Kind: token.EOF, Col: l.pos}
	}

	start := l.pos
	ch := l.runes[l.pos]

	switch ch {
	case '(':
		l.pos++
		return Lexeme{Kind: token.LPAREN, Literal: "(", Col: start}
	case ')':
		l.pos++
		return Lexeme{Kind: token.RPAREN, Literal: ")", Col: start}
	case '.':
		l.pos++
		return Lexeme{Kind: token.DOT, Literal: ".", Col: start}
	case '=':
		l.pos++
		return Lexeme{Kind: token.EQUALS, Literal: "=", Col: start}
	case ':':
		l.pos++
		return Lexeme{Kind: token.COLON, Literal: ":", Col: start}
	case '$':
		l.pos++
		return Lexeme{Kind: token.HISTORY, Literal: "$", Col: start}
	case 'λ', '\\':
		l.pos++
		return Lexeme{Kind: token.LAMBDA, Literal: string(ch), Col: start}
	}

	if unicode.IsDigit(ch) {
		return l.scanChurch(start)
	}

	if isBoundStart(ch) {
		return l.scanBoundOrMacro(start)
	}

	if unicode.IsLetter(ch) || ch == '_' {
		return l.scanMacro(start)
	}

	l.pos++
	return Lexeme{Kind: token.ILLEGAL, Literal: string(ch), Col: start}
}

func isBoundStart(ch rune) bool {
	return ch >= 'a' && ch <= 'z'
}

// scanBoundOrMacro reads a lowercase-letter-led identifier. If it is exactly
// one letter followed only by subscript digits, it is BOUND; if more
// letters follow it is a MACRO name ("notx" is a
// macro, not a bound variable, since bound names are exactly one letter). A
// plain decimal digit after the letter does NOT extend the identifier: "x1"
// is the bound variable x applied to the Church literal 1.
func (l *Lexer) scanBoundOrMacro(start int) Lexeme {
	letterEnd := start + 1
	l.pos = letterEnd

	subEnd := l.pos
	for subEnd < len(l.runes) && subscriptDigits[l.runes[subEnd]] {
		subEnd++
	}

	if subEnd < len(l.runes) && isMacroCont(l.runes[subEnd]) {
		return l.scanMacro(start)
	}

	l.pos = subEnd
	return l.finishIdent(token.BOUND, start, subEnd)
}

// isMacroCont reports whether ch may continue an identifier beyond its first
// rune. Subscript digits are included so a juxtaposed-parameter run like
// "ab₁" survives as one token for the parser to split; plain decimal digits
// are excluded (they start a Church literal instead).
func isMacroCont(ch rune) bool {
	return unicode.IsLetter(ch) || subscriptDigits[ch] || ch == '_'
}

func (l *Lexer) scanMacro(start int) Lexeme {
	end := start + 1
	for end < len(l.runes) && isMacroCont(l.runes[end]) {
		end++
	}
	l.pos = end
	return l.finishIdent(token.MACRO, start, end)
}

// finishIdent wraps up a BOUND or MACRO identifier, turning either into a
// FREE token when a trailing `'` marker follows — the rendering the printer
// gives free variables, accepted back so export output re-parses with
// free/bound status intact.
func (l *Lexer) finishIdent(kind token.Kind, start, end int) Lexeme {
	lit := string(l.runes[start:end])
	if l.pos < len(l.runes) && l.runes[l.pos] == '\'' {
		l.pos++
		return Lexeme{Kind: token.FREE, Literal: lit, Col: start}
	}
	return Lexeme{Kind: kind, Literal: lit, Col: start}
}

func (l *Lexer) scanChurch(start int) Lexeme {
	end := start
	for end < len(l.runes) && unicode.IsDigit(l.runes[end]) {
		end++
	}
	l.pos = end
	return Lexeme{Kind: token.CHURCH, Literal: string(l.runes[start:end]), Col: start}
}

// Rest returns everything left unconsumed on the line, with leading
// whitespace trimmed, and its starting column. Used by the command scanner
// (`: word arg*`) to split whitespace-delimited words without re-lexing them
// as expression tokens.
func (l *Lexer) Rest() (string, int) {
	l.skipSpace()
	start := l.pos
	l.pos = len(l.runes)
	return string(l.runes[start:]), start
}

// RuneCount returns the number of runes in the underlying line.
func (l *Lexer) RuneCount() int {
	return len(l.runes)
}
