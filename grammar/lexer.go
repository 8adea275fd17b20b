package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// DeclLexer tokenizes the declaration notation of SPEC_FULL.md §C.2: a flat,
// brace-delimited record format for the already-desugared module IR, not a
// surface programming language (no off-side rule, no expressions).
var DeclLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"String", `"(\\.|[^"\\])*"`, nil},
		{"Integer", `0x[0-9a-fA-F]+|[0-9]+`, nil},
		{"Punctuation", `[{}\[\](),]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
