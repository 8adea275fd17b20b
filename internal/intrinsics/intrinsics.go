// Package intrinsics is the stub registry of SPEC_FULL.md §C.4: the fixed
// set of imported builtins the target calling convention supports, grounded
// on original_source/codegen/src/intrinsics.rs. It never emits the
// intrinsic's own machine code (that body is out of scope — spec.md's
// standard-library-builtins Non-goal) — only its name, arity, and a
// CamelCase trampoline label.
package intrinsics

import (
	"fmt"
	"sort"

	"github.com/iancoleman/strcase"
)

// Descriptor is one registered intrinsic.
type Descriptor struct {
	// Name is the snake_case (or camelCase, as the source notation spells
	// it) import name a module's `imports` clause references.
	Name string
	// Arity is the number of arguments the intrinsic's trampoline expects
	// before its tail-call continuation, per intrinsics.rs's comments
	// (e.g. `print str ret` is arity 1, `add a b ret` is arity 2).
	Arity int
	// TrampolineLabel is Name rendered in CamelCase (strcase.ToCamel).
	TrampolineLabel string
}

var registry = buildRegistry()

func buildRegistry() map[string]Descriptor {
	entries := []Descriptor{
		{Name: "exit", Arity: 1},
		{Name: "print", Arity: 1},
		{Name: "add", Arity: 2},
		{Name: "sub", Arity: 2},
		{Name: "mul", Arity: 2},
		{Name: "isZero", Arity: 1},
		{Name: "input", Arity: 0},
		{Name: "parseInt", Arity: 1},
	}
	out := make(map[string]Descriptor, len(entries))
	for _, e := range entries {
		e.TrampolineLabel = strcase.ToCamel(e.Name)
		out[e.Name] = e
	}
	return out
}

// Lookup returns the Descriptor registered under name, or false if name is
// not a recognized intrinsic.
func Lookup(name string) (Descriptor, bool) {
	d, ok := registry[name]
	return d, ok
}

// Names returns every registered intrinsic name, sorted, for diagnostics
// that want to list "did you mean" candidates (internal/errors.SuggestName)
// or enumerate the registry for tooling.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve looks up every name in imports, in order, and reports the first
// unrecognized one as an error (internal/layout.Build calls this before
// resolving a module's Imports pool against ROM addresses).
func Resolve(imports []string) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(imports))
	for _, name := range imports {
		d, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("intrinsics: unknown import %q", name)
		}
		out = append(out, d)
	}
	return out, nil
}
