package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// LLLLexer tokenizes LLL surface syntax. Keyword disambiguation happens
// in the grammar itself via literal matches against Ident tokens, the
// same approach the teacher's KansoLexer used for "module"/"struct".
var LLLLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{"DocComment", `///[^\n]*`, nil},
		{"Comment", `//[^\n]*`, nil},

		// Keywords and identifiers (order matters)
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		// Integer literals
		{"Integer", `0x[0-9a-fA-F]+|[0-9]+`, nil},

		// Operators (longest match first)
		{"Operator", `(\|\||&&|==|!=|<=|>=|[-+*/%<>=!&])`, nil},

		// Punctuation (must come after operators)
		{"Punctuation", `[{}()\[\],;:.]`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
