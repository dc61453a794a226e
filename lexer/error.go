package lexer

import "strings"

// Callout renders a line of input with a caret marking the rune column at
// which a syntax error was detected, for the repl to print under the echoed
// line:
//
//	(λx.x x
//	       ^
func Callout(line string, col int) string {
	runes := []rune(line)
	if col < 0 {
		col = 0
	}
	if col > len(runes) {
		col = len(runes)
	}
	return line + "\n" + strings.Repeat(" ", col) + "^"
}
