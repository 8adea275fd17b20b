package errors

import (
	"fmt"
	"strings"
)

// ErrorBuilder provides a fluent interface for building a CompilerError with
// suggestions, notes, and help text.
type ErrorBuilder struct {
	err CompilerError
}

// NewError starts building a fatal error at pos.
func NewError(code, message string, pos Position) *ErrorBuilder {
	return &ErrorBuilder{
		err: CompilerError{
			Level:    Error,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

func (b *ErrorBuilder) WithLength(length int) *ErrorBuilder {
	b.err.Length = length
	return b
}

func (b *ErrorBuilder) WithSuggestion(message string) *ErrorBuilder {
	b.err.Suggestions = append(b.err.Suggestions, Suggestion{Message: message})
	return b
}

func (b *ErrorBuilder) WithNote(note string) *ErrorBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

func (b *ErrorBuilder) WithHelp(help string) *ErrorBuilder {
	b.err.HelpText = help
	return b
}

func (b *ErrorBuilder) Build() CompilerError {
	return b.err
}

// NewUnreachableGoal builds the E0001 fatal error of spec.md §4.7/§7: the
// open set emptied before any node satisfied the goal.
func NewUnreachableGoal(declName string, nodesExplored int, pos Position) CompilerError {
	return NewError(ErrorUnreachableGoal,
		fmt.Sprintf("goal state for declaration '%s' is unreachable (%d nodes explored)", declName, nodesExplored), pos).
		WithSuggestion("check that every Symbol the goal references is actually captured or produced upstream").
		WithNote("a goal containing a Symbol absent from the initial state can never be satisfied").
		WithHelp("symbols are capabilities; they can be moved between registers and allocations but never fabricated").
		Build()
}

// NewOversizeAllocation builds the E0100 fatal error of spec.md §6: an
// allocation's size exceeds what the bump allocator's encoding can address.
func NewOversizeAllocation(declName string, size, max int, pos Position) CompilerError {
	return NewError(ErrorOversizeAllocation,
		fmt.Sprintf("declaration '%s' requires an allocation of %d slots, exceeding the maximum of %d", declName, size, max), pos).
		WithSuggestion("split the allocation into smaller structures").
		WithHelp("the bump allocator encodes allocation size as a 32-bit immediate").
		Build()
}

// NewInvariantViolation builds the E0101 fatal error: a transition's
// post-state failed one of the four invariants of spec.md §3.
func NewInvariantViolation(declName, detail string, pos Position) CompilerError {
	return NewError(ErrorInvariantViolation,
		fmt.Sprintf("declaration '%s' produced an invalid machine state: %s", declName, detail), pos).
		WithNote("every Reference must index an existing allocation, and every allocation must have at least one referrer").
		WithHelp("this indicates a defect in the candidate generator or planner, not in the input declaration").
		Build()
}

// NewPoolIndexOutOfRange builds the E0200 error: a declaration notation
// operand references a pool index outside its module's bounds.
func NewPoolIndexOutOfRange(kind string, index, poolLen int, availableNames []string, pos Position) CompilerError {
	builder := NewError(ErrorPoolIndexOutOfRange,
		fmt.Sprintf("%s index %d is out of range (pool has %d entries)", kind, index, poolLen), pos)

	if len(availableNames) > 0 {
		builder = builder.WithNote(fmt.Sprintf("available %s entries: %s", kind, strings.Join(availableNames, ", ")))
	}
	return builder.Build()
}

func findSimilarNames(target string, candidates []string) []string {
	var similar []string
	for _, candidate := range candidates {
		if levenshteinDistance(target, candidate) <= 2 && len(candidate) > 2 {
			similar = append(similar, candidate)
		}
	}
	return similar
}

// levenshteinDistance is the edit distance SuggestName ranks candidate
// names by.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}
	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min3(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}
	return matrix[len(a)][len(b)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}

// SuggestName returns the first candidate within edit distance 2 of target
// (candidates of three or more characters only), or "" if none is close
// enough — a "did you mean" helper for names such as intrinsics.Names().
func SuggestName(target string, candidates []string) string {
	similar := findSimilarNames(target, candidates)
	if len(similar) == 0 {
		return ""
	}
	return similar[0]
}
