package cmd

import (
	"context"
	"fmt"

	"github.com/ardnew/tangle/lit"
)

// Expand prints the tangled text of one chunk.
type Expand struct {
	Input   string            `arg:"" help:"Input document."                                name:"input"`
	Path    string            `arg:"" help:"Chunk path, such as c.main or c.fun.-1."         name:"path"`
	Args    []string          `arg:"" help:"Positional arguments ($0, $1, ...)."             name:"args" optional:""`
	Keyword map[string]string `       help:"Keyword argument NAME=VALUE (repeatable)."       short:"k"   placeholder:"NAME=VALUE"`
	NoVars  bool              `       help:"Leave placeholders as their own names."`
}

// Run executes the expand command.
func (e *Expand) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	p, err := optionsFrom(ctx).load(ctx, e.Input, false)
	if err != nil {
		return err
	}

	text, err := p.Tangle(ctx, e.Path, lit.Bindings{
		Positional: e.Args,
		Keyword:    e.Keyword,
		NoVars:     e.NoVars,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(outputFrom(ctx), text)

	return err
}
