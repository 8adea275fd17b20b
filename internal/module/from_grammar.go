package module

import (
	"fmt"

	"tailforge/grammar"
)

// FromProgram lowers a parsed declaration-notation Program (grammar.Program)
// into the Mir of this package. It is the one place the textual notation of
// SPEC_FULL.md §C.2 is interpreted; everything downstream (internal/pool,
// internal/layout) only ever sees Module/Declaration/Expression values.
func FromProgram(p *grammar.Program) (*Module, error) {
	if p == nil || p.Module == nil {
		return nil, fmt.Errorf("module: empty program")
	}
	src := p.Module

	out := &Module{Name: src.Name.Value}

	if src.Numbers != nil {
		for _, lexeme := range src.Numbers.Values {
			n, err := grammar.AsInt(lexeme)
			if err != nil {
				return nil, fmt.Errorf("module: numbers pool: %w", err)
			}
			out.Numbers = append(out.Numbers, n)
		}
	}
	if src.Strings != nil {
		for _, lexeme := range src.Strings.Values {
			s, err := grammar.Unquote(lexeme)
			if err != nil {
				return nil, fmt.Errorf("module: strings pool: %w", err)
			}
			out.Strings = append(out.Strings, s)
		}
	}
	if src.Imports != nil {
		out.Imports = append(out.Imports, src.Imports.Names...)
	}

	declNames := make(map[string]bool, len(src.Decls))
	for _, declSrc := range src.Decls {
		declNames[declSrc.Name.Value] = true
	}

	for _, declSrc := range src.Decls {
		decl, err := lowerDecl(declSrc, declNames)
		if err != nil {
			return nil, fmt.Errorf("module: declaration %q: %w", declSrc.Name.Value, err)
		}
		out.Declarations = append(out.Declarations, decl)
	}

	return out, nil
}

func lowerDecl(src *grammar.DeclClause, declNames map[string]bool) (Declaration, error) {
	decl := Declaration{
		Name:      src.Name.Value,
		Procedure: append([]string(nil), src.Procedure...),
		Closure:   append([]string(nil), src.Closure...),
	}

	localSymbols := make(map[string]bool, len(decl.Procedure)+len(decl.Closure))
	for _, name := range decl.Symbols() {
		localSymbols[name] = true
	}

	if src.Body == nil || src.Body.Tail == nil {
		return decl, nil
	}

	for _, op := range src.Body.Tail.Args {
		expr, err := lowerOperand(op, localSymbols, declNames)
		if err != nil {
			return Declaration{}, err
		}
		decl.Call = append(decl.Call, expr)
	}
	return decl, nil
}

func lowerOperand(op *grammar.Operand, localSymbols, declNames map[string]bool) (Expression, error) {
	switch {
	case op.NumberRef != nil:
		n, err := grammar.AsInt(*op.NumberRef)
		if err != nil {
			return Expression{}, fmt.Errorf("number operand: %w", err)
		}
		return NewNumber(int(n)), nil
	case op.StringRef != nil:
		n, err := grammar.AsInt(*op.StringRef)
		if err != nil {
			return Expression{}, fmt.Errorf("string operand: %w", err)
		}
		return NewLiteral(int(n)), nil
	case op.ImportRef != nil:
		n, err := grammar.AsInt(*op.ImportRef)
		if err != nil {
			return Expression{}, fmt.Errorf("import operand: %w", err)
		}
		return NewImport(int(n)), nil
	case op.Symbol != nil:
		name := *op.Symbol
		if !localSymbols[name] && !declNames[name] {
			return Expression{}, fmt.Errorf("undeclared symbol %q", name)
		}
		return NewSymbol(name), nil
	default:
		return Expression{}, fmt.Errorf("operand has no recognized form")
	}
}
