// Package command implements the ten meta-commands reachable with a
// leading ':', dispatched from the driver package against a small Context
// interface rather than the driver's concrete type, so this package never
// imports driver (driver imports command instead, to call Dispatch from
// its per-line algorithm).
package command

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/rm-dr/lamb/reader"
	"github.com/rm-dr/lamb/u"
)

// Context is the slice of driver state a command needs. Implemented by
// *driver.Driver.
type Context interface {
	MacroNames() []string
	MacroSource(name string) (string, bool)
	DeleteMacro(name string) bool
	ClearMacros()

	// DefineFromLine feeds one line from a loaded file back through the
	// same definition path RunLine uses. skipped is true when the line
	// isn't a definition.
	DefineFromLine(raw string) (name string, skipped bool, err error)

	ReductionLimit() (n int, unlimited bool)
	SetReductionLimit(n int, unlimited bool)

	StepMode() bool
	SetStepMode(bool)

	FullExpansion() bool
	SetFullExpansion(bool)
}

// Result is what a command produced: text for the repl to print, and
// whether the repl should additionally clear the screen (the
// terminal-clearing escape itself is the repl's job, not the engine's).
type Result struct {
	Output string
	Clear  bool
}

func textResult(s string) (Result, error) { return Result{Output: s}, nil }

// Dispatch runs the named command with args. confirm is called to resolve
// a yes/no prompt (delmac, save-overwrite); it must not be nil.
func Dispatch(cx Context, confirm func(prompt string) bool, name string, args []string) (Result, error) {
	switch name {
	case "help":
		return cmdHelp(args)
	case "clear":
		return cmdClear(args)
	case "macros":
		return cmdMacros(cx, args)
	case "mdel":
		return cmdMdel(cx, args)
	case "delmac":
		return cmdDelmac(cx, confirm, args)
	case "save":
		return cmdSave(cx, confirm, args)
	case "load":
		return cmdLoad(cx, args)
	case "rlimit":
		return cmdRlimit(cx, args)
	case "step":
		return cmdStep(cx, args)
	case "expand":
		return cmdExpand(cx, args)
	default:
		return Result{}, &UndefinedCommandError{Name: name}
	}
}

const helpText = `Commands:
  help            show this text
  clear           clear the screen
  macros          list defined abbreviations
  mdel NAME       delete abbreviation NAME
  delmac          clear the macro table (asks to confirm)
  save PATH       write the macro table to PATH (asks to confirm overwrite)
  load PATH       load macro definitions from PATH (supports glob patterns)
  rlimit [N]      show, or set, the reduction step limit ("none" = unlimited)
  step [y/n]      toggle, or set, step mode
  expand [y/n]    toggle, or set, full expansion of the final term`

func cmdHelp(args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, &BadCommandArgError{Command: "help", Reason: "takes no arguments"}
	}
	return textResult(helpText)
}

func cmdClear(args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, &BadCommandArgError{Command: "clear", Reason: "takes no arguments"}
	}
	return Result{Clear: true}, nil
}

func cmdMacros(cx Context, args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, &BadCommandArgError{Command: "macros", Reason: "takes no arguments"}
	}
	names := cx.MacroNames()
	if len(names) == 0 {
		return textResult("(no macros defined)")
	}
	lines := make([]string, len(names))
	for i, name := range names {
		src, _ := cx.MacroSource(name)
		lines[i] = fmt.Sprintf("%s = %s", name, src)
	}
	return textResult(strings.Join(lines, "\n"))
}

func cmdMdel(cx Context, args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, &BadCommandArgError{Command: "mdel", Reason: "expects exactly one macro name"}
	}
	if !cx.DeleteMacro(args[0]) {
		return textResult(fmt.Sprintf("%q is not defined", args[0]))
	}
	return textResult(fmt.Sprintf("deleted %q", args[0]))
}

func cmdDelmac(cx Context, confirm func(string) bool, args []string) (Result, error) {
	if len(args) != 0 {
		return Result{}, &BadCommandArgError{Command: "delmac", Reason: "takes no arguments"}
	}
	if !confirm("Clear the entire macro table?") {
		return textResult("cancelled")
	}
	cx.ClearMacros()
	return textResult("macro table cleared")
}

func cmdSave(cx Context, confirm func(string) bool, args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, &BadCommandArgError{Command: "save", Reason: "expects exactly one path"}
	}
	path := args[0]
	if _, err := os.Stat(path); err == nil {
		if !confirm(fmt.Sprintf("%s already exists. Overwrite?", path)) {
			return textResult("cancelled")
		}
	}

	// Definition order, not sorted: a saved file must re-load with every
	// reference pointing at an already-loaded name.
	names := cx.MacroNames()
	var b strings.Builder
	for _, name := range names {
		src, _ := cx.MacroSource(name)
		fmt.Fprintf(&b, "%s = %s\n", name, src)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return Result{}, fmt.Errorf("save: %w", err)
	}
	return textResult(fmt.Sprintf("wrote %d macro(s) to %s", len(names), path))
}

func cmdLoad(cx Context, args []string) (Result, error) {
	if len(args) != 1 {
		return Result{}, &BadCommandArgError{Command: "load", Reason: "expects exactly one path or glob pattern"}
	}
	pattern := args[0]

	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return Result{}, fmt.Errorf("load: %w", err)
	}
	if len(paths) == 0 {
		// Not a glob at all, or it matched nothing: fall back to treating
		// the argument as a literal path so "load foo.lamb" still works
		// without shell-level glob expansion.
		paths = []string{pattern}
	}
	sort.Strings(paths)

	var warnings []string
	defined := 0
	for _, path := range paths {
		lines, err := reader.ReadLines(path)
		if err != nil {
			return Result{}, fmt.Errorf("load: %w", err)
		}
		for i, raw := range lines {
			line := strings.TrimSpace(raw)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			_, skipped, err := cx.DefineFromLine(line)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s:%d: %s", path, i+1, err))
				continue
			}
			if skipped {
				warnings = append(warnings, fmt.Sprintf("%s:%d: not a definition, skipped", path, i+1))
				continue
			}
			defined++
		}
	}

	out := fmt.Sprintf("loaded %d macro(s) from %d file(s)", defined, len(paths))
	if len(warnings) > 0 {
		out += "\n" + strings.Join(warnings, "\n")
	}
	return textResult(out)
}

func cmdRlimit(cx Context, args []string) (Result, error) {
	if len(args) == 0 {
		n, unlimited := cx.ReductionLimit()
		if unlimited {
			return textResult("reduction limit: none")
		}
		return textResult(fmt.Sprintf("reduction limit: %d", n))
	}
	if len(args) != 1 {
		return Result{}, &BadCommandArgError{Command: "rlimit", Reason: "expects zero or one argument"}
	}
	if args[0] == "none" {
		cx.SetReductionLimit(0, true)
		return textResult("reduction limit: none")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 50 {
		return Result{}, &BadCommandArgError{Command: "rlimit", Reason: `must be an integer >= 50, or "none"`}
	}
	cx.SetReductionLimit(n, false)
	return textResult(fmt.Sprintf("reduction limit: %d", n))
}

func cmdStep(cx Context, args []string) (Result, error) {
	on, err := toggle(cx.StepMode(), args, "step")
	if err != nil {
		return Result{}, err
	}
	cx.SetStepMode(on)
	return textResult(fmt.Sprintf("step mode: %s", onOff(on)))
}

func cmdExpand(cx Context, args []string) (Result, error) {
	on, err := toggle(cx.FullExpansion(), args, "expand")
	if err != nil {
		return Result{}, err
	}
	cx.SetFullExpansion(on)
	return textResult(fmt.Sprintf("full expansion: %s", onOff(on)))
}

// toggle implements the "[y/n]" 0-or-1-arg convention shared by step and
// expand: no argument flips current; one argument sets it.
func toggle(current bool, args []string, cmdName string) (bool, error) {
	if len(args) == 0 {
		return !current, nil
	}
	if len(args) != 1 {
		return false, &BadCommandArgError{Command: cmdName, Reason: "expects zero or one argument"}
	}
	answer := strings.ToLower(args[0])
	if u.StringIn(answer, []string{"y", "yes"}) {
		return true, nil
	}
	if u.StringIn(answer, []string{"n", "no"}) {
		return false, nil
	}
	return false, &BadCommandArgError{Command: cmdName, Reason: `expects "y" or "n"`}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
