package lit

import (
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Names of reference arguments with a reserved meaning.
const (
	ArgJoin  = "join"
	ArgStart = "start"
	ArgEnd   = "end"
	ArgMount = "mnt"
	ArgFmt   = "fmt"
)

// argFlag is the argument name introducing the "*:*" and "*:$X" flags.
const argFlag = "*"

// Arg is a named directive argument.
type Arg struct {
	Name  string
	Value string
}

// Siblings is shared by the chunks produced from one definition with several
// body fragments.
type Siblings struct {
	Size int
}

// Command is one parsed directive occurrence.
type Command struct {
	// Text is the directive as it appeared in the source, delimiters included.
	Text string
	Path Path
	// Paste is set for references ("<<=path>>").
	Paste bool
	// Set is set when Path contains a wildcard.
	Set  bool
	Args []Arg
	Body []string
	// NoVars is set by the "*:*" argument: placeholders expand to their own
	// names.
	NoVars bool
	// VarScope is set by the "*:$X" argument: variables resolve from
	// dictionary X.
	VarScope string
	Indent   string
	Source   string
	Offset   int
	Siblings *Siblings

	items     []item
	directive *Directive
	scope     Path
}

type item struct {
	name, value string
	named       bool
}

// ParseCommand parses directive text including its delimiters.
func ParseCommand(syn *Syntax, text string) (*Command, error) {
	inner, ctx, ok := syn.Strip(text)
	if !ok {
		return nil, ErrSyntax.Wrap(ErrMismatch.Wrapf("%q", text))
	}

	parts := strings.Split(protect(inner), ",")

	pathPart := strings.TrimSpace(parts[0])
	if pathPart == "" {
		return nil, ErrSyntax.Wrap(ErrEmptyPath.Wrapf("%q", text))
	}

	cmd := &Command{
		Text:  text,
		Paste: ctx == Paste,
	}

	for _, comp := range strings.Split(pathPart, PathSep) {
		if comp == "" {
			return nil, ErrSyntax.Wrap(ErrEmptyPath.Wrapf("empty component in %q", text))
		}

		cmd.Path = append(cmd.Path, unprotect(comp))
	}

	cmd.Set = cmd.Path.IsGlob()

	for _, part := range parts[1:] {
		arg := strings.TrimSpace(part)
		if arg == "" {
			return nil, ErrSyntax.Wrap(ErrMissedArg.Wrapf("%q", text))
		}

		name, value, named := strings.Cut(arg, ":")
		if !named {
			v := unprotect(arg)
			cmd.Body = append(cmd.Body, v)
			cmd.items = append(cmd.items, item{value: v})

			continue
		}

		name, value = strings.TrimSpace(name), strings.TrimSpace(value)

		if name == argFlag {
			switch {
			case value == argFlag:
				cmd.NoVars = true
			case strings.HasPrefix(value, "$"):
				cmd.VarScope = unprotect(value[1:])
			}

			cmd.items = append(cmd.items, item{name: name, value: value, named: true})

			continue
		}

		if !validArgName(name) {
			return nil, ErrSyntax.Wrap(
				ErrArgName.Wrapf("arg '%s'", unprotect(name)),
			)
		}

		a := Arg{Name: name, Value: unprotect(value)}
		cmd.Args = append(cmd.Args, a)
		cmd.items = append(cmd.items, item{name: a.Name, value: a.Value, named: true})
	}

	return cmd, nil
}

// String serializes the command in canonical form with [DefaultDelims],
// re-escaping separators and keeping the argument order of the source.
func (c *Command) String() string { return c.Format(DefaultSyntax()) }

// Format serializes the command in canonical form with the delimiters of syn.
func (c *Command) Format(syn *Syntax) string {
	ctx := Define
	if c.Paste {
		ctx = Paste
	}

	return syn.Surround(ctx, c.inner())
}

func (c *Command) inner() string {
	var sb strings.Builder

	comps := make([]string, len(c.Path))
	for i, comp := range c.Path {
		comps[i] = strings.ReplaceAll(Escape(comp), PathSep, `\`+PathSep)
	}

	sb.WriteString(strings.Join(comps, PathSep))

	for _, it := range c.items {
		sb.WriteString(", ")

		switch {
		case it.named && it.name == argFlag:
			sb.WriteString(it.name + ":" + it.value)
		case it.named:
			sb.WriteString(it.name + ":" + Escape(it.value))
		default:
			sb.WriteString(Escape(it.value))
		}
	}

	return sb.String()
}

// Get returns the value of the last argument with the given name.
func (c *Command) Get(name string) (string, bool) {
	for i := len(c.Args) - 1; i >= 0; i-- {
		if c.Args[i].Name == name {
			return c.Args[i].Value, true
		}
	}

	return "", false
}

// GetOr returns the value of the named argument or def if absent.
func (c *Command) GetOr(name, def string) string {
	if v, ok := c.Get(name); ok {
		return v
	}

	return def
}

// Has reports whether the named argument is present.
func (c *Command) Has(name string) bool {
	_, ok := c.Get(name)

	return ok
}

// Kind returns the name of the directive handling c, or [KindChunk] for
// plain chunk definitions and references.
func (c *Command) Kind() string {
	if c.directive == nil {
		return KindChunk
	}

	return c.directive.Name
}

// Directive returns the built-in directive handling c, if any.
func (c *Command) Directive() *Directive { return c.directive }

// Attr returns a named attribute used by handler matchers.
// Unknown names fall back to argument lookup.
func (c *Command) Attr(name string) (string, bool) {
	switch name {
	case "path":
		return c.Path.String(), true
	case "paste":
		return strconv.FormatBool(c.Paste), true
	case "set":
		return strconv.FormatBool(c.Set), true
	case "source":
		return c.Source, true
	case "kind":
		return c.Kind(), true
	case "body":
		return strings.Join(c.Body, ","), true
	case "indent":
		return c.Indent, true
	}

	return c.Get(name)
}

// Match reports whether the glob pattern matches the path of c.
// A negative index in the pattern is first normalized against the size of
// the sibling set of c.
func (c *Command) Match(pattern string) bool {
	p := ParsePath(pattern)
	if i, ok := p.Index(); ok && i < 0 {
		if n, ok := NormIndex(i, c.siblingSize()); ok {
			p = p.WithIndex(n)
		}
	}

	return Match(p.String(), c.Path.String())
}

func (c *Command) siblingSize() int {
	if c.Siblings == nil {
		return 1
	}

	return c.Siblings.Size
}

// Clone returns a copy of c that shares no slices with it.
// The sibling set record stays shared.
func (c *Command) Clone() *Command {
	d := *c
	d.Path = slices.Clone(c.Path)
	d.Args = slices.Clone(c.Args)
	d.Body = slices.Clone(c.Body)
	d.items = slices.Clone(c.items)
	d.scope = slices.Clone(c.scope)

	return &d
}

// Escape backslash-escapes the separators ",", ":" and the backslash.
func Escape(s string) string {
	if !strings.ContainsAny(s, `,:\`) {
		return s
	}

	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ',', ':', '\\':
			sb.WriteByte('\\')
		}

		sb.WriteByte(s[i])
	}

	return sb.String()
}

// Unescape removes the backslash before every ASCII punctuation character.
func Unescape(s string) string { return unprotect(protect(s)) }

// punct is the set of escapable characters.
const punct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// escBase offsets escaped characters into the Unicode private use area while
// a directive is split into its fields.
const escBase = 0xE000

func protect(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && strings.IndexByte(punct, s[i+1]) >= 0 {
			sb.WriteRune(rune(escBase + int(s[i+1])))
			i++

			continue
		}

		sb.WriteByte(s[i])
	}

	return sb.String()
}

func unprotect(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= escBase && r < escBase+0x80 {
			return r - escBase
		}

		return r
	}, s)
}

func isProtected(r rune) bool { return r >= escBase && r < escBase+0x80 }

// validArgName reports whether name contains only letters, digits, spaces,
// '.' and '_'.
func validArgName(name string) bool {
	for _, r := range name {
		switch {
		case isProtected(r):
			return false
		case r == '.' || r == '_':
		case r < unicode.MaxASCII && strings.ContainsRune(punct, r):
			return false
		}
	}

	return true
}
