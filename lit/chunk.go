package lit

import (
	"regexp"
	"strings"
)

var (
	// placeholderRe matches $name, ${name}, $N, $-N and $*.
	placeholderRe = regexp.MustCompile(`\$(\{.+?\}|\*|-?.+?\b)`)
	// pendingRe matches anything still looking like a placeholder.
	pendingRe = regexp.MustCompile(`\$[^ $]+`)
)

// Chunk is the text bound to a defining [Command].
type Chunk struct {
	// Orig is the untouched source text.
	Orig string
	// Tangle is the working text rewritten by expansion.
	Tangle string
	// Done is set once no placeholder or paste reference remains in Tangle.
	Done bool
	// Deps are the paste references found in Orig.
	Deps []*Command

	// pasted is set once the paste event has rewritten Tangle.
	pasted bool
}

// NewChunk returns a chunk for text with its references already scanned.
func NewChunk(syn *Syntax, text string) (*Chunk, error) {
	c := &Chunk{Orig: text}
	if err := c.reset(syn); err != nil {
		return nil, err
	}

	return c, nil
}

// reset restores Tangle from Orig and rescans Deps.
func (c *Chunk) reset(syn *Syntax) error {
	deps, err := findDeps(syn, c.Orig)
	if err != nil {
		return err
	}

	c.Deps = deps
	c.Tangle = c.Orig
	c.Done = isDone(syn, c.Orig)
	c.pasted = false

	return nil
}

// Pending returns the placeholders and paste references left in Tangle.
func (c *Chunk) Pending(syn *Syntax) []string {
	var left []string

	for _, loc := range syn.FindPastes(c.Tangle) {
		left = append(left, c.Tangle[loc[0]:loc[1]])
	}

	return append(left, pendingRe.FindAllString(c.Tangle, -1)...)
}

func isDone(syn *Syntax, text string) bool {
	return !pendingRe.MatchString(text) && !syn.HasPaste(text)
}

func findDeps(syn *Syntax, text string) ([]*Command, error) {
	locs := syn.FindPastes(text)
	if len(locs) == 0 {
		return nil, nil
	}

	deps := make([]*Command, 0, len(locs))

	for _, loc := range locs {
		cmd, err := ParseCommand(syn, text[loc[0]:loc[1]])
		if err != nil {
			return nil, err
		}

		cmd.Indent = indentAt(text, loc[0])
		cmd.Offset = loc[0]
		deps = append(deps, cmd)
	}

	return deps, nil
}

// indentAt returns the blanks preceding pos when only blanks separate pos
// from the start of its line.
func indentAt(text string, pos int) string {
	i := pos
	for i > 0 && (text[i-1] == ' ' || text[i-1] == '\t') {
		i--
	}

	if i == 0 || text[i-1] == '\n' {
		return text[i:pos]
	}

	return ""
}

// indentText prefixes every line of text except the first with indent.
// A trailing empty line is left alone.
func indentText(text, indent string) string {
	if indent == "" || !strings.Contains(text, "\n") {
		return text
	}

	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		if i == len(lines)-1 && lines[i] == "" {
			break
		}

		lines[i] = indent + lines[i]
	}

	return strings.Join(lines, "\n")
}

// placeholderName strips the braces of the ${name} form.
func placeholderName(raw string) string {
	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		return raw[1 : len(raw)-1]
	}

	return raw
}
