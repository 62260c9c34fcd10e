package lit

import (
	"regexp"
	"slices"
)

// Context selects which delimiter pair of a [Syntax] applies.
type Context int

const (
	// Define is the context of chunk definitions, such as "<<c.sum>>".
	Define Context = iota
	// Paste is the context of paste references, such as "<<=c.sum>>".
	Paste
)

// PasteMark follows the left delimiter of a paste reference.
const PasteMark = "="

// DefaultDelims are the delimiters used when none are configured.
var DefaultDelims = []string{"<<", ">>"}

// Delims holds the left and right delimiters of both contexts.
type Delims struct {
	Define [2]string
	Paste  [2]string
}

// MakeDelims builds Delims from two strings (shared by both contexts) or four
// strings (definition pair followed by paste pair).
func MakeDelims(delims ...string) (Delims, error) {
	if slices.Contains(delims, "") {
		return Delims{}, ErrDelims.Wrapf("empty delimiter in %q", delims)
	}

	switch len(delims) {
	case 2:
		pair := [2]string{delims[0], delims[1]}

		return Delims{Define: pair, Paste: pair}, nil

	case 4:
		return Delims{
			Define: [2]string{delims[0], delims[1]},
			Paste:  [2]string{delims[2], delims[3]},
		}, nil

	default:
		return Delims{}, ErrDelims.Wrapf("expected 2 or 4 delimiters, got %d", len(delims))
	}
}

// Syntax recognizes directive text using a stack of delimiter sets.
// The top of the stack is the active set.
type Syntax struct {
	stack []Delims
	re    syntaxRegexps
}

type syntaxRegexps struct {
	define, paste           *regexp.Regexp
	defineExact, pasteExact *regexp.Regexp
}

// NewSyntax returns a Syntax with the given delimiters active.
// With no arguments [DefaultDelims] are used.
func NewSyntax(delims ...string) (*Syntax, error) {
	if len(delims) == 0 {
		delims = DefaultDelims
	}

	d, err := MakeDelims(delims...)
	if err != nil {
		return nil, err
	}

	s := &Syntax{stack: []Delims{d}}
	s.compile()

	return s, nil
}

// DefaultSyntax returns a Syntax using [DefaultDelims].
func DefaultSyntax() *Syntax {
	s, _ := NewSyntax()

	return s
}

// Clone returns an independent copy of s with the same active delimiters.
func (s *Syntax) Clone() *Syntax {
	c := &Syntax{stack: []Delims{s.Delims()}}
	c.compile()

	return c
}

// Delims returns the active delimiters.
func (s *Syntax) Delims() Delims { return s.stack[len(s.stack)-1] }

// Push activates new delimiters, keeping the previous ones on the stack.
func (s *Syntax) Push(delims ...string) error {
	d, err := MakeDelims(delims...)
	if err != nil {
		return err
	}

	s.stack = append(s.stack, d)
	s.compile()

	return nil
}

// Pop restores the delimiters active before the last [Syntax.Push].
func (s *Syntax) Pop() error {
	if len(s.stack) < 2 {
		return ErrDelims.Wrapf("delimiter stack is empty")
	}

	s.stack = s.stack[:len(s.stack)-1]
	s.compile()

	return nil
}

// Set replaces the active delimiters.
func (s *Syntax) Set(delims ...string) error {
	d, err := MakeDelims(delims...)
	if err != nil {
		return err
	}

	s.stack[len(s.stack)-1] = d
	s.compile()

	return nil
}

func (s *Syntax) compile() {
	d := s.Delims()

	def := regexp.QuoteMeta(d.Define[0]) + `([^=\n].*?)` + regexp.QuoteMeta(d.Define[1])
	pst := regexp.QuoteMeta(d.Paste[0]) + regexp.QuoteMeta(PasteMark) + `(.+?)` +
		regexp.QuoteMeta(d.Paste[1])

	s.re = syntaxRegexps{
		define:      regexp.MustCompile(def),
		paste:       regexp.MustCompile(pst),
		defineExact: regexp.MustCompile(`^` + def + `$`),
		pasteExact:  regexp.MustCompile(`^` + pst + `$`),
	}
}

// Surround wraps inner with the delimiters of ctx.
func (s *Syntax) Surround(ctx Context, inner string) string {
	d := s.Delims()
	if ctx == Paste {
		return d.Paste[0] + PasteMark + inner + d.Paste[1]
	}

	return d.Define[0] + inner + d.Define[1]
}

// Strip removes the delimiters (and the paste mark) from directive text.
// For every directive text t, Surround(ctx, inner) == t where inner and ctx
// are the results of Strip(t).
func (s *Syntax) Strip(text string) (inner string, ctx Context, ok bool) {
	if m := s.re.defineExact.FindStringSubmatch(text); m != nil {
		return m[1], Define, true
	}

	if m := s.re.pasteExact.FindStringSubmatch(text); m != nil {
		return m[1], Paste, true
	}

	return "", Define, false
}

// FindDefinitions returns the start and end offsets of every definition
// directive in text.
func (s *Syntax) FindDefinitions(text string) [][]int {
	return s.re.define.FindAllStringIndex(text, -1)
}

// FindPastes returns the start and end offsets of every paste reference in
// text.
func (s *Syntax) FindPastes(text string) [][]int {
	return s.re.paste.FindAllStringIndex(text, -1)
}

// HasPaste reports whether text contains a paste reference.
func (s *Syntax) HasPaste(text string) bool {
	return s.re.paste.MatchString(text)
}
