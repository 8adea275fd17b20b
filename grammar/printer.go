package grammar

import (
	"fmt"
	"strings"
)

func indent(level int) string {
	return strings.Repeat("    ", level)
}

func (p *Program) String() string {
	if p.Module == nil {
		return ""
	}
	return p.Module.StringWithIndent(0)
}

func (m *Module) StringWithIndent(level int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%smodule %s {\n", indent(level), m.Name.Value)
	if m.Numbers != nil {
		fmt.Fprintf(&b, "%s%s\n", indent(level+1), m.Numbers.String())
	}
	if m.Strings != nil {
		fmt.Fprintf(&b, "%s%s\n", indent(level+1), m.Strings.String())
	}
	if m.Imports != nil {
		fmt.Fprintf(&b, "%s%s\n", indent(level+1), m.Imports.String())
	}
	for _, d := range m.Decls {
		b.WriteString(d.StringWithIndent(level + 1))
	}
	fmt.Fprintf(&b, "%s}\n", indent(level))
	return b.String()
}

func (n *NumbersClause) String() string {
	return fmt.Sprintf("numbers [%s]", strings.Join(n.Values, ", "))
}

func (s *StringsClause) String() string {
	return fmt.Sprintf("strings [%s]", strings.Join(s.Values, ", "))
}

func (i *ImportsClause) String() string {
	return fmt.Sprintf("imports [%s]", strings.Join(i.Names, ", "))
}

func (d *DeclClause) StringWithIndent(level int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sdecl %s(%s)", indent(level), d.Name.Value, strings.Join(d.Procedure, ", "))
	if len(d.Closure) > 0 {
		fmt.Fprintf(&b, " closure(%s)", strings.Join(d.Closure, ", "))
	}
	b.WriteString(" {\n")
	fmt.Fprintf(&b, "%s%s\n", indent(level+1), d.Body.Tail.String())
	fmt.Fprintf(&b, "%s}\n", indent(level))
	return b.String()
}

func (t *TailCall) String() string {
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("tail %s", strings.Join(parts, ", "))
}

func (o *Operand) String() string {
	switch {
	case o.NumberRef != nil:
		return fmt.Sprintf("number(%s)", *o.NumberRef)
	case o.StringRef != nil:
		return fmt.Sprintf("string(%s)", *o.StringRef)
	case o.ImportRef != nil:
		return fmt.Sprintf("import(%s)", *o.ImportRef)
	case o.Symbol != nil:
		return *o.Symbol
	default:
		return "<empty>"
	}
}
