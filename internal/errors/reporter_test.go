package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorReporterFormatsUnreachableGoal(t *testing.T) {
	source := `module demo {
    decl add(x, y) {
        tail x, y
    }
}`
	reporter := NewErrorReporter("demo.tf", source)

	err := NewUnreachableGoal("add", 128, Position{Filename: "demo.tf", Line: 2, Column: 5})
	formatted := reporter.FormatError(err)

	assert.Contains(t, formatted, "error["+ErrorUnreachableGoal+"]")
	assert.Contains(t, formatted, "add")
	assert.Contains(t, formatted, "demo.tf:2:5")
	assert.Contains(t, formatted, "help")
}

func TestOversizeAllocationError(t *testing.T) {
	pos := Position{Line: 1, Column: 1}
	err := NewOversizeAllocation("pack", 1<<33, (1<<32)-1, pos)
	assert.Equal(t, ErrorOversizeAllocation, err.Code)
	assert.Contains(t, err.Message, "pack")
	assert.Len(t, err.Suggestions, 1)
}

func TestInvariantViolationError(t *testing.T) {
	pos := Position{Line: 1, Column: 1}
	err := NewInvariantViolation("f", "orphan allocation 2", pos)
	assert.Equal(t, ErrorInvariantViolation, err.Code)
	assert.Contains(t, err.Message, "orphan allocation 2")
}

func TestPoolIndexOutOfRangeError(t *testing.T) {
	pos := Position{Line: 1, Column: 1}
	err := NewPoolIndexOutOfRange("import", 3, 2, []string{"print", "halt"}, pos)
	assert.Equal(t, ErrorPoolIndexOutOfRange, err.Code)
	assert.Contains(t, err.Notes[0], "print")
}

func TestErrorMarkerCreation(t *testing.T) {
	source := `let variable = value;`
	reporter := NewErrorReporter("test.tf", source)

	marker := reporter.createMarker(5, 8, Error)

	spaces := strings.Count(marker, " ")
	assert.Equal(t, 4, spaces)
	carets := strings.Count(marker, "^")
	assert.Equal(t, 8, carets)
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("hello", "hello"))
	assert.Equal(t, 1, levenshteinDistance("hello", "hallo"))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}

func TestSuggestName(t *testing.T) {
	candidates := []string{"print", "printf", "halt"}
	assert.Equal(t, "print", SuggestName("pritn", candidates))
	assert.Equal(t, "", SuggestName("totally_different_name", candidates))
}

func TestRenderFormatsAWrappedCompilerError(t *testing.T) {
	source := `module demo {
    decl add(x, y) {
        tail x, y
    }
}`
	ce := NewUnreachableGoal("add", 128, Position{Filename: "demo.tf", Line: 2, Column: 5})
	wrapped := fmt.Errorf("layout: planning failed: %w", ce)

	rendered, ok := Render("demo.tf", source, wrapped)
	assert.True(t, ok)
	assert.Contains(t, rendered, "error["+ErrorUnreachableGoal+"]")
	assert.Contains(t, rendered, "demo.tf:2:5")
}

func TestRenderRejectsAPlainError(t *testing.T) {
	_, ok := Render("demo.tf", "source", fmt.Errorf("not a compiler error"))
	assert.False(t, ok)
}

func TestErrorLevels(t *testing.T) {
	source := `test`
	reporter := NewErrorReporter("test.tf", source)
	pos := Position{Line: 1, Column: 1}

	errorErr := CompilerError{Level: Error, Message: "test error", Position: pos}
	warningErr := CompilerError{Level: Warning, Message: "test warning", Position: pos}

	assert.Contains(t, reporter.FormatError(errorErr), "error:")
	assert.Contains(t, reporter.FormatError(warningErr), "warning:")
}
