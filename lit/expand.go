package lit

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Bindings are the arguments an expansion resolves placeholders against.
type Bindings struct {
	// Positional backs $N, $-N and $*.
	Positional []string
	// Keyword backs $name ahead of the variable store.
	Keyword map[string]string
	// NoVars replaces every placeholder by its own name.
	NoVars bool
	// Scope names the dictionary consulted for every variable.
	Scope string
}

// reserved arguments steer a paste reference and are not passed down.
var reserved = []string{ArgJoin, ArgStart, ArgEnd, ArgMount, ArgFmt}

// forRef returns the bindings a paste reference passes to its targets.
func (b Bindings) forRef(ref *Command) Bindings {
	nb := Bindings{
		Positional: b.Positional,
		Keyword:    maps.Clone(b.Keyword),
		NoVars:     b.NoVars || ref.NoVars,
		Scope:      b.Scope,
	}

	if len(ref.Body) > 0 {
		nb.Positional = ref.Body
	}

	if nb.Keyword == nil {
		nb.Keyword = make(map[string]string, len(ref.Args))
	}

	for _, a := range ref.Args {
		if !slices.Contains(reserved, a.Name) {
			nb.Keyword[a.Name] = a.Value
		}
	}

	if ref.VarScope != "" {
		nb.Scope = ref.VarScope
	}

	return nb
}

// Env is what expansion needs from its surroundings: the variable store and
// the event bus. A nil Env resolves no variables and dispatches nothing.
type Env interface {
	Var(name, dict string) (any, bool)
	Emit(ctx context.Context, target *Command, ev Event, in Payload) (Payload, error)
	Trap(target *Command, ev Event)
	Raise(ctx context.Context, ev Event, in Payload) (Payload, error)
}

// Expand resolves the chunk at path, pasting its references and
// substituting its placeholders in place. It reports whether the chunk is
// fully resolved.
//
// The chunk at path keeps its working text between calls, so a second call
// may resolve what the first could not. Every referenced chunk is reset and
// expanded again for each reference, with that reference's arguments.
func (r *Registry) Expand(ctx context.Context, env Env, path string, b Bindings) (bool, error) {
	i, err := r.lookup(path)
	if err != nil {
		return false, err
	}

	x := &expander{reg: r, env: env}

	return x.expand(ctx, i, b)
}

type expander struct {
	reg      *Registry
	env      Env
	visiting []int
}

func (x *expander) expand(ctx context.Context, i int, b Bindings) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	e := x.reg.entries[i]

	if slices.Contains(x.visiting, i) {
		return false, ErrCycle.Wrapf("'%s'", e.cmd.Path)
	}

	x.visiting = append(x.visiting, i)
	defer func() { x.visiting = x.visiting[:len(x.visiting)-1] }()

	deps, err := findDeps(x.reg.syntax, e.chunk.Orig)
	if err != nil {
		return false, err
	}

	e.chunk.Deps = deps
	complete := true

	for _, dep := range deps {
		text, ok, err := x.paste(ctx, e.cmd, dep, b)
		if err != nil {
			return false, err
		}

		if !ok {
			complete = false

			continue
		}

		e.chunk.Tangle = strings.Replace(e.chunk.Tangle, dep.Text, text, 1)
	}

	if x.env != nil {
		x.env.Trap(e.cmd, EventSubargs)
	}

	if err := x.substitute(ctx, e.chunk, b); err != nil {
		return false, err
	}

	done := complete && e.chunk.Done
	if done && x.env != nil && !e.chunk.pasted {
		out, err := x.env.Emit(ctx, e.cmd, EventPaste, Payload{FieldText: e.chunk.Tangle})
		if err != nil {
			return false, err
		}

		if s, ok := out[FieldText].(string); ok {
			e.chunk.Tangle = s
		}

		e.chunk.pasted = true
	}

	return done, nil
}

// paste expands every target of ref and returns the text to put in its
// place. The result is false if any target is left unresolved.
func (x *expander) paste(ctx context.Context, from, ref *Command, b Bindings) (string, bool, error) {
	found := x.reg.targets(from, ref)
	if len(found) == 0 {
		return "", false, x.reg.notFound(ref.Path.String())
	}

	sub := b.forRef(ref)
	start, end := ref.GetOr(ArgStart, ""), ref.GetOr(ArgEnd, "")
	texts := make([]string, 0, len(found))

	for _, j := range found {
		t := x.reg.entries[j]

		if !slices.Contains(x.visiting, j) {
			if err := t.chunk.reset(x.reg.syntax); err != nil {
				return "", false, err
			}
		}

		done, err := x.expand(ctx, j, sub)
		if err != nil {
			return "", false, err
		}

		if !done {
			return "", false, nil
		}

		texts = append(texts, start+t.chunk.Tangle+end)
	}

	return indentText(strings.Join(texts, ref.GetOr(ArgJoin, "")), ref.Indent), true, nil
}

// substitute replaces the placeholders of c.Tangle that resolve and
// recomputes c.Done.
func (x *expander) substitute(ctx context.Context, c *Chunk, b Bindings) error {
	resolved := make(map[string]string)

	for _, m := range placeholderRe.FindAllStringSubmatch(c.Tangle, -1) {
		raw := m[1]
		if _, seen := resolved[raw]; seen {
			continue
		}

		name := placeholderName(raw)

		val, ok := x.resolve(name, b)
		if !ok {
			continue
		}

		if x.env != nil && !b.NoVars {
			out, err := x.env.Raise(ctx, EventSubargs, Payload{FieldName: name, FieldValue: val})
			if err != nil {
				return err
			}

			val = out[FieldValue]
		}

		resolved[raw] = flatten(val)
	}

	if len(resolved) > 0 {
		c.Tangle = placeholderRe.ReplaceAllStringFunc(c.Tangle, func(s string) string {
			if v, ok := resolved[s[1:]]; ok {
				return v
			}

			return s
		})
	}

	c.Done = isDone(x.reg.syntax, c.Tangle)

	return nil
}

func (x *expander) resolve(name string, b Bindings) (any, bool) {
	if b.NoVars {
		return name, true
	}

	if name == "*" {
		return flatten(b.Positional), true
	}

	if n, err := strconv.Atoi(name); err == nil {
		k, ok := NormIndex(n, len(b.Positional))
		if !ok {
			return nil, false
		}

		return b.Positional[k], true
	}

	if v, ok := b.Keyword[name]; ok {
		if strings.HasPrefix(v, "$") && x.env != nil {
			if val, ok := x.env.Var(v[1:], ""); ok {
				return val, true
			}
		}

		return v, true
	}

	if x.env == nil {
		return nil, false
	}

	return x.env.Var(name, b.Scope)
}
