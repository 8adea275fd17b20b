package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailforge/internal/config"
	tferrors "tailforge/internal/errors"
	"tailforge/internal/module"
)

func TestFromCompilerErrorShiftsToZeroBasedPosition(t *testing.T) {
	ce := tferrors.NewUnreachableGoal("main", 12, tferrors.Position{Filename: "f.tf", Line: 3, Column: 5})
	diag := FromCompilerError(ce)

	assert.Equal(t, uint32(2), diag.Range.Start.Line)
	assert.Equal(t, uint32(4), diag.Range.Start.Character)
	assert.Contains(t, diag.Message, "E0001")
	assert.Contains(t, diag.Message, "main")
}

func TestCacheReplanSucceeds(t *testing.T) {
	m := &module.Module{
		Name: "demo",
		Declarations: []module.Declaration{
			{Name: "main", Procedure: []string{"x"}, Call: []module.Expression{module.NewSymbol("x")}},
		},
	}

	c := NewCache(config.Default())
	sessionID, diags := c.Replan("demo.tf", m)

	require.NotEmpty(t, sessionID)
	assert.Empty(t, diags)

	entry, ok := c.Get("demo.tf")
	require.True(t, ok)
	require.NotNil(t, entry.Result)
	assert.Equal(t, sessionID, entry.SessionID)
}

func TestCacheReplanSurfacesLayoutFailureAsDiagnostic(t *testing.T) {
	m := &module.Module{
		Name: "demo",
		Declarations: []module.Declaration{
			{Name: "ghost", Call: []module.Expression{module.NewSymbol("missing")}},
		},
	}

	c := NewCache(config.Default())
	_, diags := c.Replan("ghost.tf", m)

	require.Len(t, diags, 1)
	assert.Equal(t, "tailforge-layout", *diags[0].Source)
}

func TestCacheForgetRemovesEntry(t *testing.T) {
	c := NewCache(config.Default())
	m := &module.Module{Declarations: []module.Declaration{{Name: "main"}}}
	c.Replan("demo.tf", m)

	c.Forget("demo.tf")
	_, ok := c.Get("demo.tf")
	assert.False(t, ok)
}
