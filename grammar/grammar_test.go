package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tailforge/grammar"
)

const sample = `
module demo {
    numbers  [42, 100]
    strings  ["hi"]
    imports  [print]

    decl add(x, y) closure(k) {
        tail x, y, k
    }
}
`

func TestParseStringBasicModule(t *testing.T) {
	program, err := grammar.ParseString("demo.tf", sample)
	require.NoError(t, err)
	require.NotNil(t, program.Module)

	m := program.Module
	assert.Equal(t, "demo", m.Name.Value)
	require.NotNil(t, m.Numbers)
	assert.Equal(t, []string{"42", "100"}, m.Numbers.Values)
	require.NotNil(t, m.Strings)
	assert.Equal(t, []string{`"hi"`}, m.Strings.Values)
	require.NotNil(t, m.Imports)
	assert.Equal(t, []string{"print"}, m.Imports.Names)

	require.Len(t, m.Decls, 1)
	decl := m.Decls[0]
	assert.Equal(t, "add", decl.Name.Value)
	assert.Equal(t, []string{"x", "y"}, decl.Procedure)
	assert.Equal(t, []string{"k"}, decl.Closure)

	require.NotNil(t, decl.Body.Tail)
	require.Len(t, decl.Body.Tail.Args, 3)
	assert.Equal(t, "x", *decl.Body.Tail.Args[0].Symbol)
	assert.Equal(t, "y", *decl.Body.Tail.Args[1].Symbol)
	assert.Equal(t, "k", *decl.Body.Tail.Args[2].Symbol)
}

func TestParseStringOperandForms(t *testing.T) {
	src := `
module demo {
    numbers [7]
    decl f() {
        tail number(0), import(0), string(0)
    }
}
`
	program, err := grammar.ParseString("demo.tf", src)
	require.NoError(t, err)

	args := program.Module.Decls[0].Body.Tail.Args
	require.Len(t, args, 3)
	require.NotNil(t, args[0].NumberRef)
	assert.Equal(t, "0", *args[0].NumberRef)
	require.NotNil(t, args[1].ImportRef)
	require.NotNil(t, args[2].StringRef)
}

func TestParseStringRejectsMissingBrace(t *testing.T) {
	_, err := grammar.ParseString("bad.tf", "module demo {")
	assert.Error(t, err)
}

func TestAsIntHandlesHexAndDecimal(t *testing.T) {
	v, err := grammar.AsInt("0x2a")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = grammar.AsInt("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestUnquoteStripsQuotes(t *testing.T) {
	s, err := grammar.Unquote(`"hi"`)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
}

func TestProgramStringRoundTrips(t *testing.T) {
	program, err := grammar.ParseString("demo.tf", sample)
	require.NoError(t, err)
	rendered := program.String()
	assert.Contains(t, rendered, "module demo {")
	assert.Contains(t, rendered, "decl add(x, y) closure(k) {")
}
