package lit

import (
	"context"
	"maps"
	"strings"
	"unicode"
)

// PipeSep separates the stages of a pipe expression.
const PipeSep = ";"

// Pipe is a parsed pipe expression such as "strip; joinargs -j ,".
//
// Each stage transforms one payload field: the field named by its "$field"
// argument, or the primary field of the event.
type Pipe struct {
	src    string
	stages []stage
}

type stage struct {
	fn       *Func
	selector string
	args     []string
	opts     map[string]string
}

type word struct {
	text   string
	quoted bool
}

// ParsePipe parses src against the function registry funcs.
// Every function named by a stage must exist and accept its arguments.
func ParsePipe(src string, funcs *Funcs) (*Pipe, error) {
	if funcs == nil {
		funcs = DefaultFuncs()
	}

	groups, err := splitStages(src)
	if err != nil {
		return nil, err
	}

	p := &Pipe{src: src, stages: make([]stage, 0, len(groups))}

	for _, words := range groups {
		if len(words) == 0 {
			return nil, ErrHandler.Wrapf("command name is missed in pipe stage of %q", src)
		}

		st, err := parseStage(words, funcs)
		if err != nil {
			return nil, err
		}

		p.stages = append(p.stages, st)
	}

	return p, nil
}

func parseStage(words []word, funcs *Funcs) (stage, error) {
	name := words[0].text

	fn, ok := funcs.Lookup(name)
	if !ok {
		return stage{}, ErrHandler.Wrapf("no such helper function '%s'", name)
	}

	st := stage{fn: fn, opts: make(map[string]string)}

	for i := 1; i < len(words); i++ {
		w := words[i]

		switch {
		case isOption(w):
			val := ""
			if i+1 < len(words) && !isOption(words[i+1]) {
				i++
				val = words[i].text
			}

			st.opts[w.text[1:]] = val

		case !w.quoted && len(w.text) > 1 && strings.HasPrefix(w.text, "$"):
			if st.selector != "" {
				return stage{}, ErrHandler.Wrapf("only one selector allowed in '%s' stage", name)
			}

			st.selector = w.text[1:]

		default:
			st.args = append(st.args, w.text)
		}
	}

	if fn.Check != nil {
		if err := fn.Check(st.args, st.opts); err != nil {
			return stage{}, ErrHandler.Wrapf("'%s': %w", name, err)
		}
	}

	return st, nil
}

// isOption reports whether w is an unquoted "-name" flag. Negative numbers
// are plain arguments.
func isOption(w word) bool {
	if w.quoted || len(w.text) < 2 || w.text[0] != '-' {
		return false
	}

	return !unicode.IsDigit(rune(w.text[1]))
}

// splitStages splits src into stages of words, honouring single and double
// quotes.
func splitStages(src string) ([][]word, error) {
	var (
		stages [][]word
		words  []word
		cur    strings.Builder
		quote  rune
		inWord bool
		quoted bool
	)

	flush := func() {
		if inWord {
			words = append(words, word{text: cur.String(), quoted: quoted})
		}

		cur.Reset()

		inWord, quoted = false, false
	}

	for _, r := range src {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0

				continue
			}

			cur.WriteRune(r)

		case r == '\'' || r == '"':
			quote, inWord, quoted = r, true, true

		case string(r) == PipeSep:
			flush()

			stages = append(stages, words)
			words = nil

		case unicode.IsSpace(r):
			flush()

		default:
			inWord = true

			cur.WriteRune(r)
		}
	}

	if quote != 0 {
		return nil, ErrHandler.Wrapf("unbalanced quote in pipe %q", src)
	}

	flush()

	return append(stages, words), nil
}

// String returns the source of the pipe.
func (p *Pipe) String() string { return p.src }

// Apply runs every stage on in. Stages without a selector transform the
// field named primary. A stage whose field is nil is skipped.
func (p *Pipe) Apply(primary string, in Payload) (Payload, error) {
	out := in

	for _, st := range p.stages {
		field := st.selector
		if field == "" {
			field = primary
		}

		v, ok := out[field]
		if !ok {
			return nil, ErrHandler.Wrapf("'%s': no field '%s' in payload", st.fn.Name, field)
		}

		if v == nil {
			continue
		}

		res, err := st.fn.Call(Call{Value: v, Args: st.args, Opts: st.opts, Payload: out})
		if err != nil {
			return nil, ErrHandler.Wrapf("'%s': %w", st.fn.Name, err)
		}

		out = maps.Clone(out)
		out[field] = res
	}

	return out, nil
}

// Action returns an event action applying the pipe to the payload of ev.
func (p *Pipe) Action(ev Event) Action {
	primary := ev.primary()

	return func(_ context.Context, _ *Parser, _ *Command, in Payload) (Payload, error) {
		return p.Apply(primary, in)
	}
}
