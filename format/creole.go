package format

import (
	"regexp"

	"github.com/ardnew/tangle/lit"
)

// creoleBlock matches "{{{ ... }}}" without the leading newlines and the
// trailing spaces or newlines of its content.
var creoleBlock = regexp.MustCompile(`(?s)\{\{\{\n*(.*?)[ \n]*\}\}\}`)

// Creole returns the creole format. Inline and block preformatted text are
// both block tokens.
func Creole() *Format {
	return &Format{
		Name:        "creole",
		Description: "Creole wiki markup",
		Exts:        []string{".creole", ".cre", ".crl", ".wiki"},
		Tokenizer:   lit.TokenizerFunc(tokenizeCreole),
	}
}

func tokenizeCreole(syn *lit.Syntax, text string) ([]lit.Token, error) {
	toks := lit.CommandTokens(syn, text)

	for _, m := range creoleBlock.FindAllStringSubmatchIndex(text, -1) {
		toks = append(toks, lit.Token{
			Kind:  lit.TokenBlock,
			Text:  text[m[2]:m[3]],
			Start: m[0],
			End:   m[1],
		})
	}

	return lit.Terminate(toks, len(text)), nil
}
