package driver

import (
	"github.com/rm-dr/lamb/parser"
	"github.com/rm-dr/lamb/term"
)

// The methods in this file make *Driver satisfy command.Context. They live
// separately from driver.go so the command-facing surface is auditable in
// one place.

func (d *Driver) MacroNames() []string { return d.macros.Names() }

func (d *Driver) MacroSource(name string) (string, bool) {
	root, ok := d.macros.Root(name)
	if !ok {
		return "", false
	}
	return term.Print(root, true), true
}

func (d *Driver) DeleteMacro(name string) bool { return d.macros.Delete(name) }

func (d *Driver) ClearMacros() { d.macros.Clear() }

func (d *Driver) DefineFromLine(raw string) (string, bool, error) {
	line, err := parser.ParseLine(raw)
	if err != nil {
		return "", false, err
	}
	if line.Kind != parser.LineDefinition {
		return "", true, nil
	}
	if _, err := d.defineMacro(line.DefName, line.Expr); err != nil {
		return "", false, err
	}
	return line.DefName, false, nil
}

func (d *Driver) ReductionLimit() (int, bool) { return d.reductionLimit, d.unlimited }

func (d *Driver) SetReductionLimit(n int, unlimited bool) {
	d.unlimited = unlimited
	if !unlimited {
		d.reductionLimit = n
	}
}

func (d *Driver) StepMode() bool      { return d.stepMode }
func (d *Driver) SetStepMode(on bool) { d.stepMode = on }

func (d *Driver) FullExpansion() bool      { return d.fullExpansion }
func (d *Driver) SetFullExpansion(on bool) { d.fullExpansion = on }
