// Package module implements the declaration-level IR of SPEC_FULL.md §C.1:
// the already-desugared Mir the original Rust parser/src/Mir.rs module
// produces, and that spec.md §6 assumes as the core's input. It carries no
// token positions, no off-side rule, and no surface syntax — internal/pool
// is the only package that interprets it.
package module

import "fmt"

// ExprKind discriminates the four operand forms a Declaration's Call list
// can reference.
type ExprKind uint8

const (
	// Number is an index into the module's Numbers pool.
	Number ExprKind = iota
	// Literal is an index into the module's Strings pool.
	Literal
	// Import is an index into the module's Imports pool.
	Import
	// Symbol names a value the declaration already holds (a procedure
	// parameter or closure capture) or a sibling top-level declaration —
	// internal/pool resolves which at goal-construction time.
	Symbol
)

func (k ExprKind) String() string {
	switch k {
	case Number:
		return "Number"
	case Literal:
		return "Literal"
	case Import:
		return "Import"
	case Symbol:
		return "Symbol"
	default:
		return "?"
	}
}

// Expression is one operand of a tail call: a tagged union over the four
// ExprKind forms of spec.md §6. Number/Literal/Import carry a pool index;
// Symbol carries a name, since whether that name is a local parameter/
// capture or a top-level declaration with its own closure is a question
// internal/pool answers at goal-construction time, not one the grammar
// layer can resolve on its own.
type Expression struct {
	Kind  ExprKind
	Index int
	Name  string
}

func NewNumber(i int) Expression       { return Expression{Kind: Number, Index: i} }
func NewLiteral(i int) Expression      { return Expression{Kind: Literal, Index: i} }
func NewImport(i int) Expression       { return Expression{Kind: Import, Index: i} }
func NewSymbol(name string) Expression { return Expression{Kind: Symbol, Name: name} }

func (e Expression) String() string {
	if e.Kind == Symbol {
		return fmt.Sprintf("Symbol(%s)", e.Name)
	}
	return fmt.Sprintf("%s(%d)", e.Kind, e.Index)
}

// Declaration is one compiled unit: the symbols it receives as procedure
// parameters, the symbols it receives via its closure, and the ordered
// tail-call argument list that becomes the goal state (internal/pool).
type Declaration struct {
	Name      string
	Procedure []string
	Closure   []string
	Call      []Expression
}

// Symbols returns Procedure followed by Closure: the local names a Symbol
// expression's Name is checked against before sibling declaration names.
func (d Declaration) Symbols() []string {
	out := make([]string, 0, len(d.Procedure)+len(d.Closure))
	out = append(out, d.Procedure...)
	out = append(out, d.Closure...)
	return out
}

// Module is the top-level compilation unit: its three constant pools
// (Numbers, Strings, Imports) plus the declarations that reference them.
type Module struct {
	Name         string
	Numbers      []int64
	Strings      []string
	Imports      []string
	Declarations []Declaration
}
