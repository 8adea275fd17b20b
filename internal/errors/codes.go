package errors

// Error codes for the tailforge codegen engine. spec.md §7 names exactly
// three fatal, programmer-visible failure conditions; each gets its own
// code so tooling (internal/diagnostics) can key off it without string
// matching the message.
//
// Error code ranges:
// E0001-E0099: planner/search failures
// E0100-E0199: oversize allocations and machine-state invariant violations
// E0200-E0299: layout/ROM resolution errors

const (
	// E0001: the goal state is unreachable from the initial state — the
	// A* open set emptied before any node satisfied the goal (spec.md §4.7).
	ErrorUnreachableGoal = "E0001"

	// E0100: a constructed or goal allocation exceeds the size the bump
	// allocator's encoding can address (spec.md §6).
	ErrorOversizeAllocation = "E0100"

	// E0101: a state produced by applying a transition violated one of the
	// four machine-state invariants of spec.md §3.
	ErrorInvariantViolation = "E0101"

	// E0200: a declaration notation (grammar) references a pool index
	// (number/string/import) outside its module's pool bounds.
	ErrorPoolIndexOutOfRange = "E0200"
)

// GetErrorDescription returns a human-readable description of the error code.
func GetErrorDescription(code string) string {
	switch code {
	case ErrorUnreachableGoal:
		return "No sequence of transitions reaches the goal state from the initial state"
	case ErrorOversizeAllocation:
		return "Allocation size exceeds what the bump allocator's encoding can address"
	case ErrorInvariantViolation:
		return "A machine-state invariant was violated"
	case ErrorPoolIndexOutOfRange:
		return "Pool index is out of range for the module"
	default:
		return "Unknown error code"
	}
}

// GetErrorCategory returns the category of the error based on its code.
func GetErrorCategory(code string) string {
	switch {
	case code >= "E0001" && code < "E0100":
		return "Planner"
	case code >= "E0100" && code < "E0200":
		return "Machine State"
	case code >= "E0200" && code < "E0300":
		return "Layout"
	default:
		return "Unknown"
	}
}
