package grammar

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Program is the root of the declaration-notation AST: exactly one Module
// per file, mirroring the teacher's one-module-per-file convention.
type Program struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Module *Module `@@`
}

// Module is the textual form of internal/module.Module (SPEC_FULL.md §C.1):
// numeric pool, string pool, imported intrinsic names, and declarations.
type Module struct {
	Pos     lexer.Position
	EndPos  lexer.Position
	Name    PosIdent       `"module" @@ "{"`
	Numbers *NumbersClause `@@?`
	Strings *StringsClause `@@?`
	Imports *ImportsClause `@@?`
	Decls   []*DeclClause  `@@*`
	Close   string         `"}"`
}

// PosIdent is an identifier with its source position, used wherever a
// diagnostic (internal/errors, internal/diagnostics) needs to point at a
// name.
type PosIdent struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Value  string `@Ident`
}

// NumbersClause lists the module's Number pool, in order.
type NumbersClause struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Values []string `"numbers" "[" @Integer { "," @Integer } "]"`
}

// StringsClause lists the module's string-literal pool, in order.
type StringsClause struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Values []string `"strings" "[" @String { "," @String } "]"`
}

// ImportsClause lists the intrinsics the module imports by name
// (internal/intrinsics resolves each against its registry).
type ImportsClause struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Names  []string `"imports" "[" @Ident { "," @Ident } "]"`
}

// DeclClause is one tail-call declaration: a procedure's parameter symbols,
// its captured closure symbols, and the tail-call expression list that
// becomes the goal state (internal/pool).
type DeclClause struct {
	Pos       lexer.Position
	EndPos    lexer.Position
	Name      PosIdent    `"decl" @@ "("`
	Procedure []string    `[ @Ident { "," @Ident } ] ")"`
	Closure   []string    `[ "closure" "(" @Ident { "," @Ident } ")" ]`
	Body      *CallBlock  `@@`
}

// CallBlock wraps the single tail-call statement SPEC_FULL.md §C.1/§C.2
// allows a declaration's body to contain — this notation has no
// expressions, no control flow, and no off-side indentation, unlike the
// teacher's full function-body grammar.
type CallBlock struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Tail   *TailCall `"{" @@ "}"`
}

// TailCall is the ordered operand list of a `tail` expression.
type TailCall struct {
	Pos    lexer.Position
	EndPos lexer.Position
	Args   []*Operand `"tail" @@ { "," @@ }`
}

// Operand is one tagged-union operand of a tail call: a pool index
// reference (Number/String/Import, written `number(N)`/`string(N)`/
// `import(N)`) or a bare symbol name.
type Operand struct {
	Pos        lexer.Position
	EndPos     lexer.Position
	NumberRef  *string `  "number" "(" @Integer ")"`
	StringRef  *string `| "string" "(" @Integer ")"`
	ImportRef  *string `| "import" "(" @Integer ")"`
	Symbol     *string `| @Ident`
}

// AsInt parses an Integer-token lexeme (decimal or 0x-prefixed hex).
func AsInt(lexeme string) (int64, error) {
	if strings.HasPrefix(lexeme, "0x") {
		return strconv.ParseInt(lexeme[2:], 16, 64)
	}
	return strconv.ParseInt(lexeme, 10, 64)
}

// Unquote strips the surrounding quotes a String token carries.
func Unquote(lexeme string) (string, error) {
	return strconv.Unquote(lexeme)
}
