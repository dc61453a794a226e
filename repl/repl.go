// Package repl reads lines, feeds them through a driver, and renders the
// results. It is the minimum real implementation of the interactive surface:
// a bufio-scanner loop with a plain prompt, yes/no confirmation for the
// commands that ask, and a step-mode pause between reductions. Syntax
// highlighting, key rebinding, and fancier rendering stay out of scope.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rm-dr/lamb/driver"
	"github.com/rm-dr/lamb/lexer"
	"github.com/rm-dr/lamb/parser"
	"github.com/rm-dr/lamb/term"
	"github.com/rm-dr/lamb/u"
)

// Prompt is shown when waiting for input.
var Prompt = "==> "

// Banner is printed after a :clear command. The entrypoint sets it to the
// same greeting it prints at startup.
var Banner = ""

// REPL drives one interactive session over a driver.
type REPL struct {
	driver  *driver.Driver
	scanner *bufio.Scanner
	out     io.Writer
	errOut  io.Writer
}

// New builds a REPL reading from in and writing to out/errout.
func New(d *driver.Driver, in io.Reader, out, errOut io.Writer) *REPL {
	return &REPL{
		driver:  d,
		scanner: bufio.NewScanner(in),
		out:     out,
		errOut:  errOut,
	}
}

// Start begins reading lines. Stops when no more input (ctrl-D, or the
// reader draining). A ctrl-C while reducing interrupts only that line; at
// the prompt itself it ends the session per the surrounding process's signal
// disposition.
func Start(d *driver.Driver, in io.Reader, out, errOut io.Writer) {
	r := New(d, in, out, errOut)
	for {
		fmt.Fprint(out, Prompt)
		if !r.scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimRight(r.scanner.Text(), " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		r.RunOnce(line)
	}
}

// RunOnce executes a single line against the driver and renders the
// outcome. Reduction runs under a context cancelled by SIGINT, so ctrl-C is
// the checkpoint-level interrupt the engine expects rather than a session
// teardown.
func (r *REPL) RunOnce(line string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := r.driver.RunLine(ctx, r, r.confirm, line)
	if err != nil {
		r.renderError(line, err)
		return
	}
	r.render(report)
}

// RunScript feeds every line of a script through the driver in order,
// without prompts or step-mode pauses, reporting errors with their line
// number. Used for piped stdin and file arguments.
func RunScript(d *driver.Driver, lines []string, out, errOut io.Writer) error {
	r := New(d, strings.NewReader(""), out, errOut)
	var firstErr error
	for i, line := range lines {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		report, err := d.RunLine(context.Background(), nil, nil, line)
		if err != nil {
			fmt.Fprintf(errOut, "line %d: %s\n", i+1, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if report.Kind == driver.ReportExpression {
			r.render(report)
		}
	}
	return firstErr
}

// Await implements driver.Stepper: print the step, wait for enter. A closed
// input or a cancelled context (ctrl-C) switches the rest of the line to
// skip-to-end.
func (r *REPL) Await(ctx context.Context, step int, kind term.ReduceKind, current string) bool {
	fmt.Fprintf(r.out, "[%s:%03d] %s\n", kind, step, current)
	if ctx.Err() != nil {
		fmt.Fprintln(r.out, "Skipping to end.")
		return true
	}
	if !r.scanner.Scan() {
		return true
	}
	if ctx.Err() != nil {
		fmt.Fprintln(r.out, "Skipping to end.")
		return true
	}
	return false
}

// confirm asks a yes/no question on behalf of a command (delmac, the save
// overwrite check). Anything but an explicit yes is a no.
func (r *REPL) confirm(prompt string) bool {
	fmt.Fprintf(r.out, "%s [y/N] ", prompt)
	if !r.scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(r.scanner.Text()))
	return u.StringIn(answer, []string{"y", "yes"})
}

func (r *REPL) render(report *driver.LineReport) {
	for _, msg := range report.Messages {
		fmt.Fprintf(r.errOut, "warning: %s\n", msg)
	}

	switch report.Kind {
	case driver.ReportDefinition:
		fmt.Fprintf(r.out, "Set %s\n", report.DefinedName)

	case driver.ReportCommand:
		if report.ClearScreen {
			fmt.Fprint(r.out, "\x1b[2J\x1b[H")
			if Banner != "" {
				fmt.Fprintln(r.out, Banner)
			}
		}
		if report.CommandOutput != "" {
			fmt.Fprintln(r.out, report.CommandOutput)
		}

	case driver.ReportExpression:
		r.renderExpression(report)
	}
}

func (r *REPL) renderExpression(report *driver.LineReport) {
	if report.StopReason == driver.StopShowMacro {
		fmt.Fprintf(r.out, "Displaying macro content\n\n    => %s\n", report.Result)
		return
	}

	if !r.driver.StepMode() {
		fmt.Fprintf(r.out, "Runtime: %.3f seconds\n", report.Duration.Seconds())
	}
	fmt.Fprintf(r.out, "Exit reason: %s\n", report.StopReason)
	fmt.Fprintf(r.out, "Reductions: %d (β: %d)\n", report.Steps, report.FunctionApplies)
	fmt.Fprintf(r.out, "\n    => %s\n", report.Result)
}

// renderError reports one failed line: the error, plus a caret under the
// offending column for syntax errors.
func (r *REPL) renderError(line string, err error) {
	var syn *parser.SyntaxError
	if errors.As(err, &syn) {
		fmt.Fprintf(r.errOut, "%s\n%s\n", err, lexer.Callout(line, syn.Loc))
		return
	}
	fmt.Fprintf(r.errOut, "%s\n", err)
}
