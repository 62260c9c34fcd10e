package format

import (
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/tangle/lit"
)

func TestCreole_Tokens(t *testing.T) {
	text := "= Example of Literate Programming in Creole =\n" +
		"== Code 1 ==\n" +
		"Test if variable is negative looks like <<c.isneg>>: {{{if a < 0}}}.\n" +
		"So, we can write absolute function <<c.fun>>:\n\n" +
		"{{{\n" +
		"    def fun(x):\n" +
		"        <<=c.isneg,a:v>>:\n" +
		"            a += 100\n" +
		"            return -a }}}\n\n" +
		"And <<c.sum>>:\n\n" +
		"{{{    def sum(x, y):\n" +
		"        return x+y }}}\n\n" +
		"not code\n"

	toks, err := tokenizeCreole(lit.DefaultSyntax(), text)
	if err != nil {
		t.Fatalf("tokenize failed: %v", err)
	}

	want := []lit.TokenKind{
		lit.TokenCommand, lit.TokenBlock,
		lit.TokenCommand, lit.TokenBlock,
		lit.TokenCommand, lit.TokenBlock,
		lit.TokenEnd,
	}
	if got := kinds(toks); !slices.Equal(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}

	if toks[1].Text != "if a < 0" {
		t.Errorf("inline = %q", toks[1].Text)
	}

	if !strings.HasPrefix(toks[3].Text, "    def fun") || !strings.HasSuffix(toks[3].Text, "return -a") {
		t.Errorf("block = %q", toks[3].Text)
	}

	if toks[5].Text != "    def sum(x, y):\n        return x+y" {
		t.Errorf("block = %q", toks[5].Text)
	}
}
