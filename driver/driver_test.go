package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-dr/lamb/term"
)

func run(t *testing.T, d *Driver, line string) *LineReport {
	t.Helper()
	report, err := d.RunLine(context.Background(), nil, nil, line)
	require.NoError(t, err, "line %q", line)
	return report
}

// The Church-boolean selectors: T x y reduces to x.
func TestScenarioTAndF(t *testing.T) {
	d := New(nil)
	run(t, d, "T = λab.a")
	run(t, d, "F = λab.b")

	report := run(t, d, "T x y")
	assert.Equal(t, StopBetaNormal, report.StopReason)
	assert.Equal(t, "x'", report.Result)
}

// NOT T reduces all the way to the definition of F, not just to its name.
func TestScenarioNot(t *testing.T) {
	d := New(nil)
	run(t, d, "T = λab.a")
	run(t, d, "F = λab.b")
	run(t, d, "NOT = λa.(a F T)")

	report := run(t, d, "NOT T")
	assert.Equal(t, StopBetaNormal, report.StopReason)
	assert.Equal(t, "λab.b", report.Result)
}

// The non-terminating self-application hits the reduction limit rather
// than looping forever.
func TestScenarioOmegaExceedsLimit(t *testing.T) {
	d := New(nil)
	d.SetReductionLimit(50, false)

	report := run(t, d, "(λx.x x)(λx.x x)")
	assert.Equal(t, StopMaxExceeded, report.StopReason)
	assert.Equal(t, 50, report.Steps)
}

// Successor applied to a Church literal reduces to the numeral for 3.
func TestScenarioChurchSucc(t *testing.T) {
	d := New(nil)
	run(t, d, "S = λnfa.f (n f a)")

	report := run(t, d, "S 2")
	assert.Equal(t, StopBetaNormal, report.StopReason)
	assert.Equal(t, "λfa.(f (f (f a)))", report.Result)
}

// A naked macro name shows its own definition rather than being
// reduced.
func TestScenarioShowMacro(t *testing.T) {
	d := New(nil)
	run(t, d, "Y = λf.(λx.f (x x))(λx.f (x x))")

	report := run(t, d, "Y")
	assert.Equal(t, StopShowMacro, report.StopReason)
	assert.Equal(t, "λf.((λx.(f (x x))) (λx.(f (x x))))", report.Result)
}

// $ before any successful reduction is an error, not a crash.
func TestScenarioEmptyHistory(t *testing.T) {
	d := New(nil)
	_, err := d.RunLine(context.Background(), nil, nil, "$")
	var empty *term.EmptyHistoryError
	require.ErrorAs(t, err, &empty)
}

func TestHistoryRoundTrip(t *testing.T) {
	d := New(nil)
	run(t, d, "T = λab.a")
	first := run(t, d, "T x y")
	assert.Equal(t, "x'", first.Result)

	again := run(t, d, "$")
	assert.Equal(t, "x'", again.Result)
}

func TestHistoryRingDropsOldest(t *testing.T) {
	d := New(nil)
	for i := 0; i < historyCapacity+1; i++ {
		run(t, d, "x")
	}
	assert.Equal(t, historyCapacity, d.history.Len())
}

func TestHistorySnapshotSurvivesRedefinition(t *testing.T) {
	// History stores fully-expanded snapshots, so redefining T afterwards
	// must not change what $ refers to.
	d := New(nil)
	run(t, d, "T = λab.a")
	first := run(t, d, "T")
	assert.Equal(t, StopShowMacro, first.StopReason)

	run(t, d, "T = λab.b")
	again := run(t, d, "$")
	assert.Equal(t, "λab.a", again.Result)
}

func TestFunctionApplyCounterCountsOnlyBetaSteps(t *testing.T) {
	d := New(nil)
	run(t, d, "T = λab.a")

	// T x y: one macro expansion plus two β-steps.
	report := run(t, d, "T x y")
	assert.Equal(t, 3, report.Steps)
	assert.Equal(t, 2, report.FunctionApplies)
}

func TestFullExpansionRealisesRemainingMacros(t *testing.T) {
	d := New(nil)
	run(t, d, "T = λab.a")
	run(t, d, "K = λx.(x T)")

	withOff := run(t, d, "K q")
	assert.Equal(t, "(q' T)", withOff.Result)

	run(t, d, ": expand y")
	withOn := run(t, d, "K q")
	assert.Equal(t, "(q' (λab.a))", withOn.Result)
}

func TestInterruptStopsReduction(t *testing.T) {
	d := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := d.RunLine(ctx, nil, nil, "(λx.x x)(λx.x x)")
	require.NoError(t, err)
	assert.Equal(t, StopInterrupt, report.StopReason)
}

func TestDefinitionReportsRedefinition(t *testing.T) {
	d := New(nil)
	first := run(t, d, "T = λab.a")
	assert.Empty(t, first.Messages)

	second := run(t, d, "T = λab.b")
	require.Len(t, second.Messages, 1)
	assert.Contains(t, second.Messages[0], "redefining")
}

func TestSelfReferentialDefinitionRejected(t *testing.T) {
	d := New(nil)
	_, err := d.RunLine(context.Background(), nil, nil, "LOOP = LOOP x")
	assert.Error(t, err)
}

func TestDefinitionNotVisibleToItsOwnLine(t *testing.T) {
	// A macro may be rebuilt in terms of its previous value only via $, not
	// by naming itself.
	d := New(nil)
	run(t, d, "ID = λx.x")
	_, err := d.RunLine(context.Background(), nil, nil, "ID = λy.(ID y)")
	assert.Error(t, err)
}

type recordingStepper struct {
	calls     int
	skipAfter int
}

func (s *recordingStepper) Await(_ context.Context, _ int, _ term.ReduceKind, _ string) bool {
	s.calls++
	return s.calls >= s.skipAfter
}

func TestStepModeConsultsStepperEachStep(t *testing.T) {
	d := New(nil)
	d.SetStepMode(true)
	run(t, d, "T = λab.a")

	stepper := &recordingStepper{skipAfter: 100}
	report, err := d.RunLine(context.Background(), stepper, nil, "T x y")
	require.NoError(t, err)
	assert.Equal(t, report.Steps, stepper.calls)
}

func TestStepModeSkipToEndIsPerLine(t *testing.T) {
	d := New(nil)
	d.SetStepMode(true)
	run(t, d, "T = λab.a")

	stepper := &recordingStepper{skipAfter: 1}
	_, err := d.RunLine(context.Background(), stepper, nil, "T x y")
	require.NoError(t, err)
	assert.Equal(t, 1, stepper.calls, "skip-to-end quiets the rest of the line")
	assert.True(t, d.StepMode(), "step mode itself stays on for the next line")
}

func TestMdelCommandOnUndefinedMacroWarns(t *testing.T) {
	d := New(nil)
	report := run(t, d, ": mdel NOPE")
	assert.Equal(t, ReportCommand, report.Kind)
	assert.Contains(t, report.CommandOutput, "not defined")
}

func TestRlimitCommandSetsAndReports(t *testing.T) {
	d := New(nil)
	report := run(t, d, ": rlimit 100")
	assert.Contains(t, report.CommandOutput, "100")

	n, unlimited := d.ReductionLimit()
	assert.False(t, unlimited)
	assert.Equal(t, 100, n)
}

func TestStepCommandToggles(t *testing.T) {
	d := New(nil)
	assert.False(t, d.StepMode())
	run(t, d, ": step")
	assert.True(t, d.StepMode())
	run(t, d, ": step n")
	assert.False(t, d.StepMode())
}
