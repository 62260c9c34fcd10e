package cmd

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/tangle/lit"
)

// List prints the chunks of a document.
type List struct {
	Input  string `arg:"" help:"Input document."            name:"input"`
	Filter string `       help:"Fuzzy filter of chunk paths." short:"f"`
}

// Row describes one chunk of a listing.
type Row struct {
	Path string
	Kind string
	Done bool
	Deps []string
}

// Rows describes the chunks of p whose paths match filter, in definition
// order. Every chunk is expanded first, so Done tells whether it tangles
// completely.
func Rows(ctx context.Context, p *lit.Parser, filter string) []Row {
	var rows []Row

	for c, chunk := range p.Registry().All() {
		path := c.Path.String()
		done, err := p.Expand(ctx, path, lit.Bindings{})

		deps := make([]string, len(chunk.Deps))
		for i, d := range chunk.Deps {
			deps[i] = d.Path.String()
		}

		rows = append(rows, Row{Path: path, Kind: c.Kind(), Done: done && err == nil, Deps: deps})
	}

	if filter == "" {
		return rows
	}

	paths := make([]string, len(rows))
	for i, r := range rows {
		paths[i] = r.Path
	}

	matches := fuzzy.Find(filter, paths)

	keep := make([]int, len(matches))
	for i, m := range matches {
		keep[i] = m.Index
	}

	slices.Sort(keep)

	out := make([]Row, len(keep))
	for i, k := range keep {
		out[i] = rows[k]
	}

	return out
}

// Run executes the list command.
func (l *List) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	p, err := optionsFrom(ctx).load(ctx, l.Input, false)
	if err != nil {
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("PATH", "KIND", "DONE", "DEPS")

	for _, r := range Rows(ctx, p, l.Filter) {
		t.Row(r.Path, r.Kind, strconv.FormatBool(r.Done), strings.Join(r.Deps, ", "))
	}

	_, err = fmt.Fprintln(outputFrom(ctx), t.Render())

	return err
}
