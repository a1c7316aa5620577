package diagnostic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCause = errors.New("cause")

func TestDiagnostics(t *testing.T) {
	t.Parallel()

	var d Diagnostics
	assert.True(t, d.IsValid())
	require.NoError(t, d.Error())

	d.AddInfo(CodeSelectorTie, "ignore wins", "field(Name)", "Person.Name")
	d.AddWarning(CodeUnusedSelector, "selector matched no nodes", "field(Nmae)", "", errCause)
	assert.True(t, d.IsValid())

	d.Promote()
	assert.Empty(t, d.Warnings)
	require.True(t, d.HasErrors())
	assert.Equal(t, DiagnosticError, d.Errors[0].Severity)

	err := d.Error()
	require.Error(t, err)
	assert.ErrorIs(t, err, errCause)
	assert.Equal(t, "[field(Nmae)]: [unused_selector] selector matched no nodes", err.Error())
}

func TestDiagnosticString(t *testing.T) {
	t.Parallel()

	d := Diagnostic{Code: CodeUnresolvedType, Message: "no implementation", Path: "Drawing.Main"}
	assert.Equal(t, "Drawing.Main: [unresolved_type] no implementation", d.String())
	assert.EqualError(t, d.Err(), "Drawing.Main: [unresolved_type] no implementation")

	d.Cause = errCause
	assert.ErrorIs(t, d.Err(), errCause)

	assert.Equal(t, "warning", DiagnosticWarning.String())
	assert.Equal(t, "unknown", DiagnosticSeverity(9).String())
}

func TestMerge(t *testing.T) {
	t.Parallel()

	var a, b Diagnostics
	a.AddError("x", "first", "", "", nil)
	b.AddError("y", "second", "", "", nil)
	b.AddInfo("z", "note", "", "")

	a.Merge(b)
	assert.Len(t, a.Errors, 2)
	assert.Len(t, a.Infos, 1)
	assert.EqualError(t, a.Error(), "[x] first; [y] second")
}
