package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/tangle/lit"
)

// Dump prints the chunks, variables and handlers of a document.
type Dump struct {
	Input  string `arg:"" help:"Input document."                    name:"input"`
	Format string `       help:"Output format."                      short:"F" default:"yaml" enum:"yaml,json" name:"output"`
	Indent int    `       help:"Indent width, 0 for compact output." short:"i" default:"2"`
}

type (
	dumpChunk struct {
		Path   string   `json:"path"             yaml:"path"`
		Kind   string   `json:"kind"             yaml:"kind"`
		Source string   `json:"source,omitempty" yaml:"source,omitempty"`
		Args   []string `json:"args,omitempty"   yaml:"args,omitempty"`
		Body   []string `json:"body,omitempty"   yaml:"body,omitempty"`
		Deps   []string `json:"deps,omitempty"   yaml:"deps,omitempty"`
		Text   string   `json:"text"             yaml:"text"`
	}

	dumpHandler struct {
		Event string `json:"event,omitempty" yaml:"event,omitempty"`
		Kind  string `json:"kind,omitempty"  yaml:"kind,omitempty"`
		Glob  string `json:"glob,omitempty"  yaml:"glob,omitempty"`
		Pipe  string `json:"pipe,omitempty"  yaml:"pipe,omitempty"`
	}

	dumpDoc struct {
		Input    string                    `json:"input"              yaml:"input"`
		Chunks   []dumpChunk               `json:"chunks"             yaml:"chunks"`
		Vars     map[string]map[string]any `json:"vars,omitempty"     yaml:"vars,omitempty"`
		Handlers []dumpHandler             `json:"handlers,omitempty" yaml:"handlers,omitempty"`
	}
)

// describe returns the dump of p.
func describe(p *lit.Parser) dumpDoc {
	doc := dumpDoc{Input: p.Input()}

	for c, chunk := range p.Registry().All() {
		dc := dumpChunk{
			Path:   c.Path.String(),
			Kind:   c.Kind(),
			Source: c.Source,
			Body:   c.Body,
			Text:   chunk.Orig,
		}

		for _, a := range c.Args {
			dc.Args = append(dc.Args, a.Name+":"+a.Value)
		}

		for _, d := range chunk.Deps {
			dc.Deps = append(dc.Deps, d.Path.String())
		}

		doc.Chunks = append(doc.Chunks, dc)
	}

	for _, name := range p.Vars().Dicts() {
		if doc.Vars == nil {
			doc.Vars = make(map[string]map[string]any)
		}

		doc.Vars[name] = p.Vars().Dict(name)
	}

	for _, h := range p.Handlers() {
		dh := dumpHandler{
			Event: string(h.Event),
			Kind:  h.Kind,
			Glob:  h.Glob,
			Pipe:  h.Pipe,
		}

		if h.Target != nil {
			dh.Glob = h.Target.Path.String()
		}

		doc.Handlers = append(doc.Handlers, dh)
	}

	return doc
}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	p, err := optionsFrom(ctx).load(ctx, d.Input, false)
	if err != nil {
		return err
	}

	doc := describe(p)

	var data []byte

	switch d.Format {
	case "json":
		if d.Indent > 0 {
			data, err = json.MarshalIndent(doc, "", strings.Repeat(" ", d.Indent))
		} else {
			data, err = json.Marshal(doc)
		}

		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		data = append(data, '\n')

	default:
		var opts []yaml.EncodeOption
		if d.Indent > 0 {
			opts = append(opts, yaml.Indent(d.Indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		data, err = yaml.MarshalContext(ctx, doc, opts...)
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}
	}

	_, err = fmt.Fprint(outputFrom(ctx), string(data))

	return err
}
