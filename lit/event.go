package lit

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// Event names a point of the chunk lifecycle.
type Event string

// Lifecycle events.
const (
	// EventDefine fires before a chunk is stored.
	EventDefine Event = "define"
	// EventPaste fires once a chunk is fully resolved.
	EventPaste Event = "paste"
	// EventPost fires once per command at the end of a document.
	EventPost Event = "post"
	// EventSubargs fires when a placeholder value is about to be substituted.
	EventSubargs Event = "subargs"
)

// Events lists every lifecycle event.
var Events = []Event{EventDefine, EventPaste, EventPost, EventSubargs}

// ParseEvent returns the event named s.
func ParseEvent(s string) (Event, error) {
	for _, ev := range Events {
		if string(ev) == s {
			return ev, nil
		}
	}

	return "", ErrHandler.Wrapf("unknown event '%s'", s)
}

// primary is the payload field a pipe stage transforms by default.
func (ev Event) primary() string {
	if ev == EventSubargs {
		return FieldValue
	}

	return FieldText
}

// Payload fields.
const (
	FieldText  = "chunktext"
	FieldName  = "name"
	FieldValue = "value"
	FieldFlush = "flush"
)

// Payload carries the values an event hands to its handlers.
type Payload map[string]any

// Action transforms the payload of an event fired for target.
type Action func(ctx context.Context, p *Parser, target *Command, in Payload) (Payload, error)

// Matcher selects the commands and events a handler applies to.
// Zero fields match anything.
type Matcher struct {
	Event Event
	// Kind is the directive name, or [KindChunk].
	Kind string
	// Target matches one command by identity.
	Target *Command
	// Glob is matched against the command path.
	Glob  string
	Attrs map[string]string
}

// Match reports whether the matcher accepts target firing ev.
func (m Matcher) Match(target *Command, ev Event) bool {
	switch {
	case m.Event != "" && m.Event != ev:
		return false
	case m.Target != nil && m.Target != target:
		return false
	case m.Kind != "" && m.Kind != target.Kind():
		return false
	case m.Glob != "" && !target.Match(m.Glob):
		return false
	}

	for k, want := range m.Attrs {
		if got, ok := target.Attr(k); !ok || got != want {
			return false
		}
	}

	return true
}

// Handler pairs a matcher with the action it runs.
type Handler struct {
	Matcher
	Action Action
	// Pipe is the pipe expression the action was built from, if any.
	Pipe string
}

func (h *Handler) key() string {
	return fmt.Sprintf("%s|%s|%s|%p|%v|%s", h.Event, h.Kind, h.Glob, h.Target, h.Attrs, h.Pipe)
}

// bus holds the handlers and traps of one document.
type bus struct {
	handlers []*Handler
	keys     map[string]bool
	seen     map[*Command]bool
	traps    map[Event]*Command
}

func newBus() *bus {
	return &bus{
		keys:  make(map[string]bool),
		seen:  make(map[*Command]bool),
		traps: make(map[Event]*Command),
	}
}

// register adds h unless an equivalent handler exists.
func (b *bus) register(h *Handler) bool {
	k := h.key()
	if b.keys[k] {
		return false
	}

	b.keys[k] = true
	b.handlers = append(b.handlers, h)

	return true
}

func (b *bus) matching(target *Command, ev Event) []*Handler {
	var hs []*Handler

	for _, h := range b.handlers {
		if h.Match(target, ev) {
			hs = append(hs, h)
		}
	}

	return hs
}

// merge imports the path-matched handlers of o with their globs moved under
// mount. Identity handlers stay behind since imported commands are copies.
func (b *bus) merge(o *bus, mount Path) {
	for _, h := range o.handlers {
		if h.Target != nil {
			continue
		}

		c := *h
		c.Attrs = maps.Clone(h.Attrs)

		if c.Glob != "" && len(mount) > 0 {
			c.Glob = mount.String() + PathSep + c.Glob
		}

		b.register(&c)
	}
}

// Register adds a class-scoped handler to the document.
func (p *Parser) Register(h *Handler) {
	if p.bus.register(h) {
		p.logger.Trace("handler registered",
			slog.String("event", string(h.Event)),
			slog.String("kind", h.Kind),
			slog.String("glob", h.Glob),
			slog.String("pipe", h.Pipe),
		)
	}
}

// Handlers returns the registered handlers in registration order.
func (p *Parser) Handlers() []*Handler {
	return append([]*Handler(nil), p.bus.handlers...)
}

// Emit dispatches ev for target.
//
// A directive hook declared [Exclusive] for ev runs alone. Otherwise the
// directive's own hook runs first and every matching handler follows, each
// receiving the payload returned by the one before.
func (p *Parser) Emit(ctx context.Context, target *Command, ev Event, in Payload) (Payload, error) {
	p.logger.TraceContext(ctx, "emit",
		slog.String("event", string(ev)),
		slog.String("kind", target.Kind()),
		slog.String("path", target.Path.String()),
	)

	hook, hooked := target.directive.hook(ev)
	if hooked && hook.Mode == Exclusive {
		return hook.Action(ctx, p, target, in)
	}

	if err := p.materialize(target); err != nil {
		return nil, err
	}

	out := in

	if hooked {
		var err error

		if out, err = hook.Action(ctx, p, target, out); err != nil {
			return nil, err
		}
	}

	for _, h := range p.bus.matching(target, ev) {
		var err error

		if out, err = h.Action(ctx, p, target, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// materialize registers the "do.EVENT:PIPE" arguments of target as
// handlers the first time target fires any event.
func (p *Parser) materialize(target *Command) error {
	if p.bus.seen[target] {
		return nil
	}

	p.bus.seen[target] = true

	for _, a := range target.Args {
		name, ok := strings.CutPrefix(a.Name, argDo+PathSep)
		if !ok {
			continue
		}

		ev, err := ParseEvent(name)
		if err != nil {
			return err
		}

		pipe, err := ParsePipe(a.Value, p.funcs)
		if err != nil {
			return err
		}

		m := Matcher{Event: ev, Target: target}
		if ev == EventPaste {
			m = Matcher{Event: ev, Glob: target.Path.String()}
		}

		p.Register(&Handler{Matcher: m, Action: pipe.Action(ev), Pipe: a.Value})
	}

	return nil
}

// Trap redirects the next [Parser.Raise] of ev to target.
func (p *Parser) Trap(target *Command, ev Event) { p.bus.traps[ev] = target }

// Raise dispatches ev to the trapped command and consumes the trap.
// Without a trap the payload is returned unchanged.
func (p *Parser) Raise(ctx context.Context, ev Event, in Payload) (Payload, error) {
	target, ok := p.bus.traps[ev]
	if !ok {
		return in, nil
	}

	delete(p.bus.traps, ev)

	return p.Emit(ctx, target, ev, in)
}
