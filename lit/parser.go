package lit

import (
	"cmp"
	"context"
	"log/slog"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/tangle/log"
)

// Source resolves and reads input documents.
type Source interface {
	// Resolve maps loc to a canonical locator. Relative locators are tried
	// against the documents in bases, nearest first.
	Resolve(bases []string, loc string) (string, error)
	// Read returns the newline-normalized content of loc.
	Read(ctx context.Context, loc string) (string, error)
}

// Sink receives tangled output files.
type Sink interface {
	// Write stores text at path, creating parent directories.
	Write(ctx context.Context, path, text string) error
}

// Formats selects the tokenizer of a document by format name or, with an
// empty name, by locator.
type Formats interface {
	Tokenizer(name, loc string) (Tokenizer, error)
}

// Parser turns one document into a populated [Registry] and runs the events
// of its commands.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	syntax     *Syntax
	registry   *Registry
	vars       *Vars
	bus        *bus
	directives *Directives
	funcs      *Funcs
	formats    Formats
	source     Source
	sink       Sink
	logger     log.Logger
	parent     *Parser
	locator    *Locator
	input      string
	outdir     string
	format     string
	deferred   []*Command
}

// Option configures a [Parser].
type Option func(*Parser)

// WithSyntax sets the directive syntax.
func WithSyntax(syn *Syntax) Option {
	return func(p *Parser) {
		if syn != nil {
			p.syntax = syn
		}
	}
}

// WithDirectives sets the built-in directive registry.
func WithDirectives(ds *Directives) Option {
	return func(p *Parser) {
		if ds != nil {
			p.directives = ds
		}
	}
}

// WithFuncs sets the pipe function registry.
func WithFuncs(fs *Funcs) Option {
	return func(p *Parser) {
		if fs != nil {
			p.funcs = fs
		}
	}
}

// WithFormats sets the tokenizer registry.
func WithFormats(f Formats) Option { return func(p *Parser) { p.formats = f } }

// WithSource sets the input collaborator.
func WithSource(s Source) Option { return func(p *Parser) { p.source = s } }

// WithSink sets the output collaborator.
func WithSink(s Sink) Option { return func(p *Parser) { p.sink = s } }

// WithLogger sets the logger. The zero [log.Logger] discards everything.
func WithLogger(l log.Logger) Option { return func(p *Parser) { p.logger = l } }

// WithOutdir sets the directory output files are written under.
func WithOutdir(dir string) Option { return func(p *Parser) { p.outdir = dir } }

// WithFormat forces the format of the document instead of guessing it from
// the locator.
func WithFormat(name string) Option { return func(p *Parser) { p.format = name } }

// WithInput names the document for error locations.
func WithInput(name string) Option { return func(p *Parser) { p.input = name } }

// WithVars merges vals into dictionary dict of the variable store.
func WithVars(dict string, vals map[string]any) Option {
	return func(p *Parser) { p.vars.Update(dict, vals) }
}

// New returns a parser with the default syntax, directives and functions.
func New(opts ...Option) *Parser {
	p := &Parser{
		syntax:     DefaultSyntax(),
		vars:       NewVars(),
		bus:        newBus(),
		directives: DefaultDirectives(),
		funcs:      DefaultFuncs(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.registry = NewRegistry(p.syntax)

	return p
}

// Registry returns the chunks of the document.
func (p *Parser) Registry() *Registry { return p.registry }

// Vars returns the variable store.
func (p *Parser) Vars() *Vars { return p.vars }

// Syntax returns the directive syntax.
func (p *Parser) Syntax() *Syntax { return p.syntax }

// Input returns the locator of the document.
func (p *Parser) Input() string { return p.input }

// Directives returns the built-in directive registry.
func (p *Parser) Directives() *Directives { return p.directives }

// Var implements [Env].
func (p *Parser) Var(name, dict string) (any, bool) { return p.vars.Lookup(name, dict) }

// UpdateVars merges vals into dictionary dict.
func (p *Parser) UpdateVars(dict string, vals map[string]any) {
	p.logger.Trace("vars updated", slog.String("dict", dict), slog.Int("count", len(vals)))
	p.vars.Update(dict, vals)
}

type state int

const (
	stateStart state = iota
	stateCmd
	stateBody
)

// Parse consumes the token stream of text and defines its chunks.
func (p *Parser) Parse(ctx context.Context, text string, toks []Token) error {
	if p.locator == nil || p.locator.source != p.input {
		p.locator = NewLocator(p.input, text)
	}

	var (
		st      = stateStart
		pending Token
		body    []string
	)

	for i := 0; i < len(toks); {
		if err := ctx.Err(); err != nil {
			return err
		}

		tok := toks[i]

		p.logger.TraceContext(ctx, "token",
			slog.String("kind", tok.Kind.String()),
			slog.Int("start", tok.Start),
		)

		if st == stateStart {
			switch tok.Kind {
			case TokenCommand:
				pending, body, st = tok, nil, stateCmd
			case TokenEnd:
				return nil
			default:
				return p.locator.Locate(
					ErrSyntax.Wrapf("expected command token").
						With(slog.String("token", tok.Kind.String())),
					tok.Start,
				)
			}

			i++

			continue
		}

		if tok.IsBody() {
			body = append(body, tok.Text)
			st = stateBody
			i++

			continue
		}

		if err := p.finalize(ctx, pending, body); err != nil {
			return p.locator.Locate(err, pending.Start)
		}

		st = stateStart
	}

	return p.locator.Locate(
		ErrSyntax.Wrapf("missing end token").
			With(slog.Int("tokens", len(toks))),
		len(text),
	)
}

// finalize defines the chunks of a command token and its body tokens.
func (p *Parser) finalize(ctx context.Context, tok Token, body []string) error {
	cmd, err := ParseCommand(p.syntax, tok.Text)
	if err != nil {
		return err
	}

	if cmd.Paste {
		return ErrSyntax.Wrapf("paste reference %q outside of a chunk", tok.Text)
	}

	d, isDirective := p.directives.Lookup(cmd.Path)
	if len(body) == 0 && !isDirective {
		return ErrDirective.Wrapf("'%s' has no body and is not a directive", tok.Text)
	}

	cmd.Source = p.input
	cmd.Offset = tok.Start
	cmd.directive = d

	if len(body) <= 1 {
		return p.define(ctx, cmd, strings.Join(body, ""))
	}

	sib := &Siblings{Size: len(body)}

	for i, text := range body {
		c := cmd.Clone()
		c.Path = append(slices.Clone(cmd.Path), strconv.Itoa(i))
		c.Siblings = sib

		if err := p.define(ctx, c, text); err != nil {
			return err
		}
	}

	return nil
}

// define dispatches the define event for cmd and stores the resulting chunk
// unless a handler dropped its text.
func (p *Parser) define(ctx context.Context, cmd *Command, text string) error {
	out, err := p.Emit(ctx, cmd, EventDefine, Payload{FieldText: text})
	if err != nil {
		return err
	}

	v := out[FieldText]
	if v == nil {
		p.logger.TraceContext(ctx, "define vetoed",
			slog.String("path", cmd.Path.String()),
			slog.String("kind", cmd.Kind()),
		)

		return nil
	}

	chunk, err := NewChunk(p.syntax, flatten(v))
	if err != nil {
		return err
	}

	p.logger.TraceContext(ctx, "define",
		slog.String("path", cmd.Path.String()),
		slog.String("kind", cmd.Kind()),
		slog.Int("deps", len(chunk.Deps)),
	)

	return p.registry.Define(cmd, chunk)
}

// Resolve maps loc to a canonical locator relative to this document and its
// ancestors.
func (p *Parser) Resolve(loc string) (string, error) { return p.resolveInput(loc) }

func (p *Parser) resolveInput(loc string) (string, error) {
	if p.source == nil {
		return "", ErrNoSource
	}

	var bases []string

	for q := p; q != nil; q = q.parent {
		if q.input != "" {
			bases = append(bases, q.input)
		}
	}

	return p.source.Resolve(bases, loc)
}

// Load reads the document at loc, tokenizes it and defines its chunks.
// The reference graph is checked for cycles once the document is parsed.
func (p *Parser) Load(ctx context.Context, loc string) error {
	resolved, err := p.resolveInput(loc)
	if err != nil {
		return err
	}

	text, err := p.source.Read(ctx, resolved)
	if err != nil {
		return err
	}

	tz, err := p.tokenizer(resolved)
	if err != nil {
		return err
	}

	p.input = resolved
	p.locator = NewLocator(resolved, text)

	p.logger.DebugContext(ctx, "parsing", slog.String("input", resolved))

	toks, err := tz.Tokenize(p.syntax, text)
	if err != nil {
		return locate(err, resolved, 0)
	}

	if err := p.Parse(ctx, text, toks); err != nil {
		return err
	}

	return p.registry.CheckCycles()
}

func (p *Parser) tokenizer(loc string) (Tokenizer, error) {
	if p.formats == nil {
		return nil, ErrNoFormat
	}

	return p.formats.Tokenizer(p.format, loc)
}

// ParseFile loads the document at loc and runs the post pass.
func (p *Parser) ParseFile(ctx context.Context, loc string, flush bool) error {
	if err := p.Load(ctx, loc); err != nil {
		return err
	}

	return p.Post(ctx, flush)
}

// Post dispatches the post event to every command: first the deferred
// directives such as use, then the stored commands by directive priority.
// With flush set, output directives write their files.
func (p *Parser) Post(ctx context.Context, flush bool) error {
	byPriority := func(a, b *Command) int {
		return cmp.Compare(a.directive.priority(), b.directive.priority())
	}

	deferred := slices.Clone(p.deferred)
	slices.SortStableFunc(deferred, byPriority)

	if err := p.post(ctx, deferred, flush); err != nil {
		return err
	}

	cmds := make([]*Command, 0, p.registry.Len())
	for cmd := range p.registry.All() {
		cmds = append(cmds, cmd)
	}

	slices.SortStableFunc(cmds, byPriority)

	return p.post(ctx, cmds, flush)
}

func (p *Parser) post(ctx context.Context, cmds []*Command, flush bool) error {
	for _, cmd := range cmds {
		if _, err := p.Emit(ctx, cmd, EventPost, Payload{FieldFlush: flush}); err != nil {
			if cmd.Source == p.input {
				return p.locator.Locate(err, cmd.Offset)
			}

			return err
		}
	}

	return nil
}

// Expand resolves the chunk at path in place and reports whether it is now
// fully resolved.
func (p *Parser) Expand(ctx context.Context, path string, b Bindings) (bool, error) {
	p.logger.TraceContext(ctx, "expand", slog.String("path", path))

	return p.registry.Expand(ctx, p, path, b)
}

// Tangle expands the chunk at path and returns its text. A chunk left with
// unresolved placeholders or references is an [ErrIncomplete] error listing
// them.
func (p *Parser) Tangle(ctx context.Context, path string, b Bindings) (string, error) {
	done, err := p.Expand(ctx, path, b)
	if err != nil {
		return "", err
	}

	_, chunk, err := p.registry.Lookup(path)
	if err != nil {
		return "", err
	}

	if !done {
		return "", ErrIncomplete.Wrapf("'%s' can not be expanded", path).
			With(slog.String("unresolved", strings.Join(chunk.Pending(p.syntax), ", ")))
	}

	return chunk.Tangle, nil
}

// Import merges the chunks, variables and handlers of child under mount.
func (p *Parser) Import(child *Parser, mount Path) error {
	p.logger.Debug("import",
		slog.String("input", child.input),
		slog.String("mount", mount.String()),
	)

	if err := p.registry.Merge(child.registry, mount); err != nil {
		return err
	}

	if err := p.registry.CheckCycles(); err != nil {
		return err
	}

	p.vars.merge(child.vars, mount.String())
	p.bus.merge(child.bus, mount)

	return nil
}

// child returns a parser for a document included by p. It shares the
// collaborators and registries of p and starts with a copy of its syntax.
func (p *Parser) child(input, format string) *Parser {
	syn := p.syntax.Clone()

	return &Parser{
		syntax:     syn,
		registry:   NewRegistry(syn),
		vars:       NewVars(),
		bus:        newBus(),
		directives: p.directives,
		funcs:      p.funcs,
		formats:    p.formats,
		source:     p.source,
		sink:       p.sink,
		logger:     p.logger.With(slog.String("input", input)),
		parent:     p,
		input:      input,
		outdir:     p.outdir,
		format:     format,
	}
}

// outputDir is the directory relative output files are written under: the
// configured one, else the directory of a local document, else the working
// directory.
func (p *Parser) outputDir() string {
	if p.outdir != "" {
		return p.outdir
	}

	if p.input == "" {
		return "."
	}

	u, err := url.Parse(p.input)
	switch {
	case err != nil || u.Scheme == "" || len(u.Scheme) == 1:
		return filepath.Dir(p.input)
	case u.Scheme == "file":
		return filepath.Dir(filepath.FromSlash(u.Path))
	default:
		return "."
	}
}
