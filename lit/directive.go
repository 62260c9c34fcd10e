package lit

import (
	"context"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"
)

// Kind names.
const (
	// KindChunk is the kind of plain chunk definitions and references.
	KindChunk = "chunk"
	// KindAny selects every command in a handler declaration.
	KindAny = "cmd"
)

// Names of handler declaration arguments.
const (
	argDo    = "do"
	argGpath = "gpath"
)

// Override tells whether a directive hook shares its event with handlers.
type Override int

const (
	// NoOverride runs the hook ahead of the matching handlers.
	NoOverride Override = iota
	// Exclusive runs the hook alone.
	Exclusive
)

// Hook is the action a directive attaches to one event.
type Hook struct {
	Mode   Override
	Action Action
}

// Directive is a built-in command kind selected by a glob over command
// paths, such as "file.*".
type Directive struct {
	Name    string
	Pattern string
	// Priority orders the post pass, lower first.
	Priority int
	hooks    map[Event]Hook
}

// NewDirective returns a directive without hooks.
func NewDirective(name, pattern string, priority int) *Directive {
	return &Directive{
		Name:     name,
		Pattern:  pattern,
		Priority: priority,
		hooks:    make(map[Event]Hook),
	}
}

// On attaches a hook to ev that runs before the matching handlers.
func (d *Directive) On(ev Event, a Action) *Directive {
	d.hooks[ev] = Hook{Mode: NoOverride, Action: a}

	return d
}

// Override attaches a hook to ev that replaces every handler.
func (d *Directive) Override(ev Event, a Action) *Directive {
	d.hooks[ev] = Hook{Mode: Exclusive, Action: a}

	return d
}

// Events returns the events d hooks, in lifecycle order.
func (d *Directive) Events() []Event {
	var evs []Event

	for _, ev := range Events {
		if _, ok := d.hook(ev); ok {
			evs = append(evs, ev)
		}
	}

	return evs
}

func (d *Directive) hook(ev Event) (Hook, bool) {
	if d == nil {
		return Hook{}, false
	}

	h, ok := d.hooks[ev]

	return h, ok
}

func (d *Directive) priority() int {
	if d == nil {
		return defaultPriority
	}

	return d.Priority
}

// defaultPriority places chunks and unprioritized directives after use.
const defaultPriority = 10

// Directives is an ordered registry of directives. The first directive whose
// pattern matches a command path handles the command.
type Directives struct {
	list []*Directive
}

// NewDirectives returns a registry holding ds.
func NewDirectives(ds ...*Directive) *Directives {
	return &Directives{list: slices.Clone(ds)}
}

// DefaultDirectives returns a registry with use, file, vars and on.
func DefaultDirectives() *Directives {
	return NewDirectives(
		NewDirective("use", "use", 0).
			Override(EventDefine, deferDefine).
			On(EventPost, usePost),
		NewDirective("file", "file.*", defaultPriority).
			On(EventPost, filePost),
		NewDirective("vars", "vars", defaultPriority).
			Override(EventDefine, varsDefine),
		NewDirective("on", "on.*", defaultPriority).
			Override(EventDefine, onDefine),
	)
}

// Register appends d.
func (ds *Directives) Register(d *Directive) { ds.list = append(ds.list, d) }

// Lookup returns the directive handling commands at path.
func (ds *Directives) Lookup(path Path) (*Directive, bool) {
	name := path.String()

	for _, d := range ds.list {
		if Match(d.Pattern, name) {
			return d, true
		}
	}

	return nil, false
}

// Names returns the directive names in registration order.
func (ds *Directives) Names() []string {
	names := make([]string, len(ds.list))
	for i, d := range ds.list {
		names[i] = d.Name
	}

	return names
}

// known reports whether kind names a directive, a chunk or any command.
func (ds *Directives) known(kind string) bool {
	return kind == KindChunk || kind == KindAny || slices.Contains(ds.Names(), kind)
}

// veto is the define result that keeps a command out of the registry.
func veto(in Payload) Payload {
	out := maps.Clone(in)
	out[FieldText] = nil

	return out
}

// deferDefine keeps the command for the post pass without storing a chunk,
// so a document may hold any number of them.
func deferDefine(_ context.Context, p *Parser, target *Command, in Payload) (Payload, error) {
	p.deferred = append(p.deferred, target)

	return veto(in), nil
}

// usePost parses the document named by the body and imports it under the
// "mnt" prefix.
func usePost(ctx context.Context, p *Parser, target *Command, in Payload) (Payload, error) {
	if len(target.Body) == 0 {
		return nil, ErrDirective.Wrapf("'use' requires an input")
	}

	loc, err := p.resolveInput(strings.Join(target.Body, ""))
	if err != nil {
		return nil, ErrDirective.Wrapf("'use' can not ensure '%s' input file: %w",
			strings.Join(target.Body, ""), err)
	}

	mnt := target.GetOr(ArgMount, "")

	p.logger.InfoContext(ctx, "using",
		slog.String("input", loc),
		slog.String("mount", mnt),
	)

	child := p.child(loc, target.GetOr(ArgFmt, ""))
	if err := child.ParseFile(ctx, loc, false); err != nil {
		return nil, err
	}

	if err := p.Import(child, ParsePath(mnt)); err != nil {
		return nil, err
	}

	return in, nil
}

// filePost expands the command and writes its tangle when flushing.
func filePost(ctx context.Context, p *Parser, target *Command, in Payload) (Payload, error) {
	if flush, _ := in[FieldFlush].(bool); !flush {
		return in, nil
	}

	path := target.Path.String()

	text, err := p.Tangle(ctx, path, Bindings{})
	if err != nil {
		return nil, err
	}

	if len(target.Body) == 0 {
		return nil, ErrDirective.Wrapf("'%s' names no output file", path)
	}

	out := filepath.Join(p.outputDir(), strings.Join(target.Body, ""))
	if abs, err := filepath.Abs(out); err == nil {
		out = abs
	}

	if p.sink == nil {
		return nil, ErrNoSink
	}

	p.logger.InfoContext(ctx, "writing to", slog.String("file", out))

	if err := p.sink.Write(ctx, out, text); err != nil {
		return nil, ErrWrite.Wrap(err).With(slog.String("file", out))
	}

	return in, nil
}

// varsDefine merges the named arguments into the dictionary named by the
// body, or the anonymous one.
func varsDefine(_ context.Context, p *Parser, target *Command, in Payload) (Payload, error) {
	dict := ""
	if len(target.Body) > 0 {
		dict = target.Body[0]
	}

	vals := make(map[string]any, len(target.Args))
	for _, a := range target.Args {
		vals[a.Name] = a.Value
	}

	p.UpdateVars(dict, vals)

	return veto(in), nil
}

// onDefine registers class-scoped handlers declared as
// "on.KIND.EVENT, gpath:G, do:PIPE" or "on.KIND, gpath:G, do.EVENT:PIPE".
func onDefine(_ context.Context, p *Parser, target *Command, in Payload) (Payload, error) {
	path := target.Path
	if target.Siblings != nil {
		path = path.Base()
	}

	if len(path) < 2 || len(path) > 3 {
		return nil, ErrDirective.Wrapf("'%s': expected on.KIND or on.KIND.EVENT", path)
	}

	kind := path[1]
	if !p.directives.known(kind) {
		return nil, ErrDirective.Wrapf("'%s': unknown kind '%s'", path, kind)
	}

	if kind == KindAny {
		kind = ""
	}

	m := Matcher{Kind: kind, Glob: target.GetOr(argGpath, "")}

	for _, a := range target.Args {
		switch {
		case a.Name == argGpath, a.Name == argDo, strings.HasPrefix(a.Name, argDo+PathSep):
		default:
			if m.Attrs == nil {
				m.Attrs = make(map[string]string)
			}

			m.Attrs[a.Name] = a.Value
		}
	}

	var (
		order []Event
		decls = make(map[Event]string)
	)

	declare := func(ev Event, src string) {
		if _, ok := decls[ev]; !ok {
			order = append(order, ev)
		}

		decls[ev] = src
	}

	if len(path) == 3 {
		ev, err := ParseEvent(path[2])
		if err != nil {
			return nil, err
		}

		src, ok := target.Get(argDo)
		if !ok {
			return nil, ErrDirective.Wrapf("'%s': missing '%s' argument", path, argDo)
		}

		declare(ev, src)
	}

	for _, a := range target.Args {
		name, ok := strings.CutPrefix(a.Name, argDo+PathSep)
		if !ok {
			continue
		}

		ev, err := ParseEvent(name)
		if err != nil {
			return nil, err
		}

		declare(ev, a.Value)
	}

	for _, ev := range order {
		pipe, err := ParsePipe(decls[ev], p.funcs)
		if err != nil {
			return nil, err
		}

		hm := m
		hm.Event = ev
		hm.Attrs = maps.Clone(m.Attrs)

		p.Register(&Handler{Matcher: hm, Action: pipe.Action(ev), Pipe: decls[ev]})
	}

	return veto(in), nil
}
