// Package browse is a terminal user interface for exploring the chunks of a
// document: a fuzzy-filtered list of chunk paths next to the tangled text of
// the selected one.
package browse

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/tangle/lit"
	"github.com/ardnew/tangle/log"
)

// Item is one chunk shown by the browser.
type Item struct {
	Path string
	Kind string
	// Text is the tangled text, or the source text when Err is set.
	Text string
	Err  error
}

// Items expands every chunk of p.
func Items(ctx context.Context, p *lit.Parser) []Item {
	var items []Item

	for c, chunk := range p.Registry().All() {
		it := Item{Path: c.Path.String(), Kind: c.Kind()}

		text, err := p.Tangle(ctx, it.Path, lit.Bindings{})
		if err != nil {
			it.Text, it.Err = chunk.Orig, err
		} else {
			it.Text = text
		}

		items = append(items, it)
	}

	return items
}

// Run browses the chunks of p until the user quits.
func Run(ctx context.Context, p *lit.Parser, logger log.Logger) error {
	items := Items(ctx, p)

	logger.TraceContext(ctx, "browse start",
		slog.String("input", p.Input()),
		slog.Int("items", len(items)),
	)

	prog := tea.NewProgram(New(items), tea.WithContext(ctx), tea.WithAltScreen())
	_, err := prog.Run()

	return err
}
