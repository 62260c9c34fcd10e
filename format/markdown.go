package format

import (
	"regexp"
	"strings"

	"github.com/ardnew/tangle/lit"
)

var (
	mdInline = regexp.MustCompile("`([^`]+)`")
	// A code block is a run of indented or blank lines that follows a blank
	// line and ends at a blank line or the end of the document.
	mdBlock  = regexp.MustCompile(`(?m)^\n((?:(?: {4}|\t).*\n|\n)+)$`)
	mdIndent = regexp.MustCompile(`(?m)^(?: {4}|\t)`)
	newlines = regexp.MustCompile(`\n+`)
)

// Markdown returns the markdown format: inline code spans and indented
// code blocks.
func Markdown() *Format {
	return &Format{
		Name:        "md",
		Description: "Markdown",
		Exts:        []string{".md", ".markdown", ".mkd"},
		Tokenizer:   lit.TokenizerFunc(tokenizeMarkdown),
	}
}

func tokenizeMarkdown(syn *lit.Syntax, text string) ([]lit.Token, error) {
	toks := lit.CommandTokens(syn, text)

	var blocks [][]int

	for _, m := range mdBlock.FindAllStringSubmatchIndex(text, -1) {
		code := strings.Trim(text[m[2]:m[3]], "\n")

		blocks = append(blocks, m[:2])
		toks = append(toks, lit.Token{
			Kind:  lit.TokenBlock,
			Text:  mdIndent.ReplaceAllString(code, ""),
			Start: m[0],
			End:   m[1],
		})
	}

	for _, m := range mdInline.FindAllStringSubmatchIndex(text, -1) {
		if within(blocks, m[0]) {
			continue
		}

		toks = append(toks, lit.Token{
			Kind:  lit.TokenInline,
			Text:  linearize(text[m[2]:m[3]]),
			Start: m[0],
			End:   m[1],
		})
	}

	return lit.Terminate(toks, len(text)), nil
}

// linearize joins the lines of an inline span with single spaces.
func linearize(s string) string {
	return strings.Trim(newlines.ReplaceAllString(s, " "), " ")
}

// within reports whether offset falls inside one of the [start, end) spans.
func within(spans [][]int, offset int) bool {
	for _, s := range spans {
		if offset >= s[0] && offset < s[1] {
			return true
		}
	}

	return false
}
