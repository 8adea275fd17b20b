// Package pool implements SPEC_FULL.md §C.3: resolving a Module's constant
// pools (Numbers, Strings, Imports) into concrete ROM addresses, and
// lowering one Declaration's tail-call expression list into the initial and
// goal machine.State pair spec.md §6 specifies as the core's input.
//
// The address arithmetic mirrors original_source/codegen/src/rom.rs and
// /codegen/src/lib.rs: one 8-byte pointer slot per declaration, then one per
// import, then each string as a 4-byte length prefix followed by its bytes.
package pool

import (
	"fmt"
	"hash/fnv"

	"tailforge/internal/machine"
	"tailforge/internal/module"
	"tailforge/internal/value"
)

// Layout is the ROM address of every pooled entry: one slot per
// declaration (its code-pointer cell), one per import (its trampoline
// -pointer cell), then the string blobs.
type Layout struct {
	Declarations []uint64
	Imports      []uint64
	Strings      []uint64
}

// BuildLayout assigns ROM addresses starting at romBase, in declaration
// -then-import-then-string order, exactly as rom.rs's layout function does.
func BuildLayout(m *module.Module, romBase uint64) Layout {
	var l Layout
	offset := romBase
	for range m.Declarations {
		l.Declarations = append(l.Declarations, offset)
		offset += 8
	}
	for range m.Imports {
		l.Imports = append(l.Imports, offset)
		offset += 8
	}
	for _, s := range m.Strings {
		l.Strings = append(l.Strings, offset)
		offset += 4 + uint64(len(s))
	}
	return l
}

// Size returns the total byte length of the ROM region BuildLayout laid
// out for m, so a caller can place whatever follows (internal/layout's code
// segment) directly after it.
func Size(m *module.Module) uint64 {
	size := uint64(len(m.Declarations))*8 + uint64(len(m.Imports))*8
	for _, s := range m.Strings {
		size += 4 + uint64(len(s))
	}
	return size
}

// SymbolID maps a symbol name to the stable capability id the abstract
// machine's Value::Symbol carries (spec.md §3). Two occurrences of the same
// name — whether within one declaration's parameter list or across a
// closure capture passed to a sibling declaration — must produce the same
// id, since closure captures are matched to enclosing bindings by name (the
// Mir's lambda-lifting convention); hashing the name deterministically
// gives every occurrence the same id without a shared symbol table.
func SymbolID(name string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return h.Sum64()
}

// Resolver lowers one Module's declarations into initial/goal State pairs.
type Resolver struct {
	module *module.Module
	layout Layout
	byName map[string]int
}

// NewResolver indexes m's declarations by name for repeated lookups.
func NewResolver(m *module.Module, l Layout) *Resolver {
	byName := make(map[string]int, len(m.Declarations))
	for i, d := range m.Declarations {
		byName[d.Name] = i
	}
	return &Resolver{module: m, layout: l, byName: byName}
}

// Initial builds the initial state of decl (spec.md §6): register 0 holds a
// Reference to an allocation [code_pointer, capture_1, ..., capture_k] when
// decl has a non-empty closure; registers 1..n hold Symbols for the formal
// parameters.
func (r *Resolver) Initial(decl module.Declaration) (*machine.State, error) {
	declIndex, ok := r.byName[decl.Name]
	if !ok {
		return nil, fmt.Errorf("pool: declaration %q not found in module", decl.Name)
	}

	state := machine.New()

	if len(decl.Closure) > 0 {
		alloc := make(machine.Allocation, 1+len(decl.Closure))
		alloc[0] = value.NewLiteral(r.layout.Declarations[declIndex])
		for i, name := range decl.Closure {
			alloc[1+i] = value.NewSymbol(SymbolID(name))
		}
		state.Allocations = append(state.Allocations, alloc)
		state.Registers[0] = value.NewReference(0, 0)
	}

	for i, name := range decl.Procedure {
		reg := i + 1
		if reg >= machine.NumRegisters {
			return nil, fmt.Errorf("pool: declaration %q has more parameters than argument registers", decl.Name)
		}
		state.Registers[reg] = value.NewSymbol(SymbolID(name))
	}

	return state, nil
}

// Goal builds the goal state of decl: each tail-call expression becomes
// register i, per spec.md §6's four cases, supplemented with the fifth case
// original_source/codegen/src/lib.rs's get_literal handles but spec.md's
// distillation omits — a top-level name with an *empty* closure resolves to
// a plain Literal ROM address rather than a fresh allocation (see
// DESIGN.md).
func (r *Resolver) Goal(decl module.Declaration) (*machine.State, error) {
	if len(decl.Call) > machine.NumRegisters {
		return nil, fmt.Errorf("pool: declaration %q has %d tail-call operands, more than %d registers", decl.Name, len(decl.Call), machine.NumRegisters)
	}

	local := make(map[string]bool, len(decl.Procedure)+len(decl.Closure))
	for _, name := range decl.Symbols() {
		local[name] = true
	}

	goal := machine.New()
	for i, expr := range decl.Call {
		v, err := r.resolveExpr(expr, local, goal)
		if err != nil {
			return nil, fmt.Errorf("pool: declaration %q operand %d: %w", decl.Name, i, err)
		}
		goal.Registers[i] = v
	}
	return goal, nil
}

func (r *Resolver) resolveExpr(expr module.Expression, local map[string]bool, goal *machine.State) (value.Value, error) {
	switch expr.Kind {
	case module.Number:
		if expr.Index < 0 || expr.Index >= len(r.module.Numbers) {
			return value.None, fmt.Errorf("number pool index %d out of range (pool has %d entries)", expr.Index, len(r.module.Numbers))
		}
		return value.NewLiteral(uint64(r.module.Numbers[expr.Index])), nil
	case module.Literal:
		if expr.Index < 0 || expr.Index >= len(r.layout.Strings) {
			return value.None, fmt.Errorf("string pool index %d out of range (pool has %d entries)", expr.Index, len(r.layout.Strings))
		}
		return value.NewLiteral(r.layout.Strings[expr.Index]), nil
	case module.Import:
		if expr.Index < 0 || expr.Index >= len(r.layout.Imports) {
			return value.None, fmt.Errorf("import pool index %d out of range (pool has %d entries)", expr.Index, len(r.layout.Imports))
		}
		return value.NewLiteral(r.layout.Imports[expr.Index]), nil
	case module.Symbol:
		return r.resolveSymbol(expr.Name, local, goal)
	default:
		return value.None, fmt.Errorf("unrecognized expression kind %v", expr.Kind)
	}
}

// resolveSymbol implements spec.md §6's Symbol(s) cases, plus the top-level
// -name-with-empty-closure case supplemented from the original source.
func (r *Resolver) resolveSymbol(name string, local map[string]bool, goal *machine.State) (value.Value, error) {
	if local[name] {
		return value.NewSymbol(SymbolID(name)), nil
	}

	declIndex, ok := r.byName[name]
	if !ok {
		return value.None, fmt.Errorf("undeclared symbol %q", name)
	}
	target := r.module.Declarations[declIndex]

	if len(target.Closure) == 0 {
		return value.NewLiteral(r.layout.Declarations[declIndex]), nil
	}

	alloc := make(machine.Allocation, 1+len(target.Closure))
	alloc[0] = value.NewLiteral(r.layout.Declarations[declIndex])
	for i, capture := range target.Closure {
		alloc[1+i] = value.NewSymbol(SymbolID(capture))
	}
	index := len(goal.Allocations)
	goal.Allocations = append(goal.Allocations, alloc)
	return value.NewReference(index, 0), nil
}
