package cmd

import (
	"context"

	"github.com/ardnew/tangle/cli/cmd/browse"
	"github.com/ardnew/tangle/log"
)

// Browse explores the chunks of a document in a terminal user interface.
type Browse struct {
	Input string `arg:"" help:"Input document." name:"input"`
}

// Run executes the browse command.
func (b *Browse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	p, err := optionsFrom(ctx).load(ctx, b.Input, false)
	if err != nil {
		return err
	}

	return browse.Run(ctx, p, log.Default())
}
