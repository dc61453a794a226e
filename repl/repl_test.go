package repl_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rm-dr/lamb/driver"
	"github.com/rm-dr/lamb/repl"
)

func TestRunScriptEvaluatesInOrder(t *testing.T) {
	d := driver.New(nil)
	var out, errOut bytes.Buffer

	script := []string{
		"# booleans",
		"T = λab.a",
		"F = λab.b",
		"",
		"T x y",
	}
	require.NoError(t, repl.RunScript(d, script, &out, &errOut))

	assert.Contains(t, out.String(), "Exit reason: BETA_NORMAL")
	assert.Contains(t, out.String(), "=> x'")
	assert.Contains(t, errOut.String(), "is not bound or defined")
}

func TestRunScriptReportsErrorsWithLineNumbers(t *testing.T) {
	d := driver.New(nil)
	var out, errOut bytes.Buffer

	err := repl.RunScript(d, []string{"T = λab.a", "(x"}, &out, &errOut)
	require.Error(t, err)
	assert.Contains(t, errOut.String(), "line 2:")
}

func TestInteractiveSessionDefinesAndReduces(t *testing.T) {
	d := driver.New(nil)
	var out, errOut bytes.Buffer

	in := strings.NewReader("T = λab.a\nT p q\n")
	repl.Start(d, in, &out, &errOut)

	assert.Contains(t, out.String(), "Set T")
	assert.Contains(t, out.String(), "=> p'")
}

func TestConfirmDefaultsToNo(t *testing.T) {
	d := driver.New(nil)
	var out, errOut bytes.Buffer

	// delmac answered with a bare enter: the table survives.
	in := strings.NewReader("T = λab.a\n: delmac\n\n")
	repl.Start(d, in, &out, &errOut)

	assert.Contains(t, out.String(), "cancelled")
	assert.Equal(t, []string{"T"}, d.MacroNames())
}
