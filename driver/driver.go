// Package driver holds the interactive engine's mutable state and runs the
// per-line algorithm: it owns the macro table, the history ring, the
// reduction-limit/step-mode/full-expansion toggles, and dispatches each
// parsed line to the preparer, reducer, or command table. Everything
// terminal-shaped (prompting, rendering, step-mode keypresses) belongs to
// the repl package.
package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rm-dr/lamb/command"
	"github.com/rm-dr/lamb/parser"
	"github.com/rm-dr/lamb/term"
)

// Unlimited is the --rlimit flag value that means "no limit". The driver
// itself records "no limit" through SetReductionLimit's unlimited argument.
const Unlimited = 0

// DefaultReductionLimit is the limit a freshly constructed Driver starts
// with.
const DefaultReductionLimit = 1_000_000

// StopReason is why a reduction loop stopped.
type StopReason int

const (
	StopBetaNormal StopReason = iota
	StopMaxExceeded
	StopInterrupt
	StopShowMacro
)

func (s StopReason) String() string {
	switch s {
	case StopBetaNormal:
		return "BETA_NORMAL"
	case StopMaxExceeded:
		return "MAX_EXCEEDED"
	case StopInterrupt:
		return "INTERRUPT"
	case StopShowMacro:
		return "SHOW_MACRO"
	default:
		return "UNKNOWN"
	}
}

// ReportKind distinguishes what kind of line a LineReport describes.
type ReportKind int

const (
	ReportExpression ReportKind = iota
	ReportDefinition
	ReportCommand
)

// LineReport is everything the driver has to say about one executed line,
// for the repl to render: timing, stop reason, counts, and the final term.
type LineReport struct {
	Kind ReportKind

	Messages []string // free-variable/history/overwrite notices

	// Valid for ReportDefinition.
	DefinedName string

	// Valid for ReportExpression.
	StopReason      StopReason
	Steps           int
	FunctionApplies int
	Result          string
	Duration        time.Duration

	// Valid for ReportCommand.
	CommandOutput string
	ClearScreen   bool
}

// Stepper lets the repl control step mode: after every reduction the
// driver emits the kind tag and current term and waits. Await is called
// once per reduction step while step mode is on; returning true switches
// the rest of the current line to skip-to-end.
type Stepper interface {
	Await(ctx context.Context, step int, kind term.ReduceKind, current string) (skipToEnd bool)
}

// Driver is the engine's single owner of mutable state.
type Driver struct {
	macros  *macroTable
	history *historyRing
	ids     *term.IDGen

	reductionLimit int
	unlimited      bool
	stepMode       bool
	fullExpansion  bool

	logger    *zap.Logger
	sessionID uuid.UUID
}

// New builds a Driver with default toggles. A nil logger installs zap's
// no-op logger so callers that don't care about structured logs don't have
// to construct one.
func New(logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		macros:         newMacroTable(),
		history:        newHistoryRing(),
		ids:            &term.IDGen{},
		reductionLimit: DefaultReductionLimit,
		logger:         logger,
		sessionID:      uuid.New(),
	}
}

// SessionID identifies this Driver instance in logs, the way a request id
// threads through a server's log lines.
func (d *Driver) SessionID() uuid.UUID { return d.sessionID }

// RunLine executes one input line: parse, then dispatch to the
// definition, command, or expression path. stepper may be
// nil; it is only consulted while step mode is enabled and an expression is
// being reduced. confirm answers yes/no prompts raised by commands (delmac,
// save-overwrite); it may be nil if those commands are never expected to be
// invoked non-interactively (an attempt to use them will then behave as a
// "no").
func (d *Driver) RunLine(ctx context.Context, stepper Stepper, confirm func(string) bool, raw string) (*LineReport, error) {
	line, err := parser.ParseLine(raw)
	if err != nil {
		d.logger.Debug("syntax error", zap.Error(err), zap.String("session", d.sessionID.String()))
		return nil, err
	}

	switch line.Kind {
	case parser.LineDefinition:
		return d.runDefinition(line)
	case parser.LineCommand:
		return d.runCommand(confirm, line)
	default:
		return d.runExpression(ctx, stepper, line)
	}
}

func (d *Driver) runDefinition(line *parser.Line) (*LineReport, error) {
	msgs, err := d.defineMacro(line.DefName, line.Expr)
	if err != nil {
		return nil, err
	}
	return &LineReport{Kind: ReportDefinition, DefinedName: line.DefName, Messages: msgs}, nil
}

// defineMacro prepares expr against self-reference on name and stores it,
// overwriting any previous definition. Shared by the definition path and
// DefineFromLine (the :load path).
func (d *Driver) defineMacro(name string, expr term.Node) ([]string, error) {
	root := term.NewRoot(expr)
	warnings, err := term.Prepare(root, d.ids, d.macros, d.history, name)
	if err != nil {
		return nil, err
	}

	msgs := warningStrings(warnings)
	if d.macros.Has(name) {
		msgs = append(msgs, fmt.Sprintf("redefining existing macro %q", name))
	}
	d.macros.Define(name, root)

	d.logger.Info("defined macro",
		zap.String("name", name),
		zap.String("session", d.sessionID.String()),
	)
	return msgs, nil
}

func (d *Driver) runCommand(confirm func(string) bool, line *parser.Line) (*LineReport, error) {
	if confirm == nil {
		confirm = func(string) bool { return false }
	}
	result, err := command.Dispatch(d, confirm, line.Command, line.Args)
	if err != nil {
		return nil, err
	}
	return &LineReport{
		Kind:          ReportCommand,
		CommandOutput: result.Output,
		ClearScreen:   result.Clear,
	}, nil
}

func (d *Driver) runExpression(ctx context.Context, stepper Stepper, line *parser.Line) (*LineReport, error) {
	start := time.Now()
	root := term.NewRoot(line.Expr)

	warnings, err := term.Prepare(root, d.ids, d.macros, d.history, "")
	if err != nil {
		return nil, err
	}
	msgs := warningStrings(warnings)

	if top := root.Child(term.LeftSide); top != nil && term.IsExpandable(top) {
		if _, err := term.ExpandOnce(root, d.ids, d.macros, d.history); err != nil {
			return nil, err
		}
		result := term.Print(root, false)
		d.pushHistory(root)
		return &LineReport{
			Kind:       ReportExpression,
			Messages:   msgs,
			StopReason: StopShowMacro,
			Result:     result,
			Duration:   time.Since(start),
		}, nil
	}

	stopReason, steps, applies, err := d.reduceLoop(ctx, stepper, root)
	if err != nil {
		return nil, err
	}

	if d.fullExpansion {
		if err := term.ExpandAll(root, d.ids, d.macros, d.history); err != nil {
			return nil, err
		}
	}

	result := term.Print(root, false)
	d.pushHistory(root)

	d.logger.Debug("reduced expression",
		zap.String("session", d.sessionID.String()),
		zap.Stringer("stop_reason", stopReason),
		zap.Int("steps", steps),
		zap.Int("function_applies", applies),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &LineReport{
		Kind:            ReportExpression,
		Messages:        msgs,
		StopReason:      stopReason,
		Steps:           steps,
		FunctionApplies: applies,
		Result:          result,
		Duration:        time.Since(start),
	}, nil
}

// pushHistory stores a fully-expanded snapshot of root, independent of
// root's own expansion state, so later $ references are immune to macro
// redefinition.
func (d *Driver) pushHistory(root *term.Root) {
	snapshot, ok := term.Clone(root, d.ids).(*term.Root)
	if !ok {
		return
	}
	if err := term.ExpandAll(snapshot, d.ids, d.macros, d.history); err != nil {
		d.logger.Warn("failed to fully expand history snapshot",
			zap.Error(err),
			zap.String("session", d.sessionID.String()),
		)
	}
	d.history.Push(snapshot)
}

func warningStrings(warnings []term.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.String()
	}
	return out
}
