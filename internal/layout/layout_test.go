package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailforge/internal/bump"
	"tailforge/internal/cost"
	"tailforge/internal/module"
)

func demoModule() *module.Module {
	return &module.Module{
		Name:    "demo",
		Numbers: []int64{42},
		Strings: []string{"hi"},
		Imports: []string{"print"},
		Declarations: []module.Declaration{
			{
				Name:      "main",
				Procedure: []string{"x"},
				Call:      []module.Expression{module.NewSymbol("x"), module.NewNumber(0)},
			},
		},
	}
}

func TestBuildProducesCodeAndROMForEveryDeclaration(t *testing.T) {
	m := demoModule()
	result, err := Build(m, 0x2000, bump.Default(), cost.Default)
	require.NoError(t, err)

	require.Len(t, result.Declarations, 1)
	assert.NotEmpty(t, result.Code)
	assert.NotEmpty(t, result.ROM)
	assert.Equal(t, 0, result.Declarations[0].CodeOffset)
}

func TestBuildROMLayoutMatchesPoolLayout(t *testing.T) {
	m := demoModule()
	result, err := Build(m, 0x2000, bump.Default(), cost.Default)
	require.NoError(t, err)

	require.Len(t, result.Pool.Declarations, 1)
	require.Len(t, result.Pool.Imports, 1)
	require.Len(t, result.Pool.Strings, 1)

	// declaration table (8) + import table (8) + string (4 + len("hi"))
	assert.Len(t, result.ROM, 8+8+4+2)
}

func TestBuildFailsOnUnknownImport(t *testing.T) {
	m := demoModule()
	m.Imports = []string{"not_a_real_intrinsic"}
	_, err := Build(m, 0x2000, bump.Default(), cost.Default)
	assert.Error(t, err)
}

func TestBuildSurfacesUndeclaredSymbolAsError(t *testing.T) {
	m := &module.Module{
		Name: "demo",
		Declarations: []module.Declaration{
			{
				Name: "ghost",
				Call: []module.Expression{module.NewSymbol("missing")},
			},
		},
	}
	_, err := Build(m, 0x2000, bump.Default(), cost.Default)
	assert.Error(t, err)
}

func TestCodeEndsWithTailJumpForEveryDeclaration(t *testing.T) {
	m := demoModule()
	result, err := Build(m, 0x2000, bump.Default(), cost.Default)
	require.NoError(t, err)

	last2 := result.Code[len(result.Code)-2:]
	assert.Equal(t, []byte{0xFF, 0x20}, last2)
}
