package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/tangle/lit"
	"github.com/ardnew/tangle/log"
)

// fileKind is the directive kind of output files.
const fileKind = "file"

// Tangle parses a document and writes the files it declares.
type Tangle struct {
	Input  string `arg:"" help:"Input document."                                     name:"input"`
	Outdir string `       help:"Directory of output files (default: the document's)." short:"o" type:"path"`
	DryRun bool   `       help:"Print the files that would be written."                short:"n"`
}

// Run executes the tangle command.
func (t *Tangle) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	p, err := optionsFrom(ctx).load(ctx, t.Input, !t.DryRun, lit.WithOutdir(t.Outdir))
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "tangled",
		slog.String("input", p.Input()),
		slog.Int("chunks", p.Registry().Len()),
		slog.Bool("dry_run", t.DryRun),
	)

	if !t.DryRun {
		return nil
	}

	out := outputFrom(ctx)

	for c := range p.Registry().All() {
		if c.Kind() != fileKind {
			continue
		}

		path := c.Path.String()
		if _, err := p.Tangle(ctx, path, lit.Bindings{}); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(out, "%s\t%s\n", strings.Join(c.Body, ""), path); err != nil {
			return err
		}
	}

	return nil
}
