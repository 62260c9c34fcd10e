package cmd

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/ardnew/tangle/format"
	"github.com/ardnew/tangle/lit"
	"github.com/ardnew/tangle/log"
	"github.com/ardnew/tangle/vfile"
)

// Options are the flags shared by every command.
type Options struct {
	Vars   []string `help:"YAML file of variables (repeatable)."                    placeholder:"FILE" short:"V" type:"existingfile"`
	Search []string `help:"Directory searched for included documents (repeatable)." placeholder:"DIR"  short:"I" type:"path"`
	Allow  []string `help:"Executable shell locators may run (repeatable)."         placeholder:"EXE"`
	Extras string   `help:"Directory of executables shell locators may run."        default:"${extras}"            type:"path"`
	Delims string   `help:"Directive delimiters, L,R or L,R,L2,R2."                 placeholder:"L,R[,L2,R2]"`
	Format string   `help:"Input format, detected from the extension if empty."    default:""          enum:",${formats}"`
}

// delims returns the delimiters named by the --delims flag.
func (o *Options) delims() ([]string, error) {
	if o.Delims == "" {
		return nil, nil
	}

	d := strings.Split(o.Delims, ",")
	if _, err := lit.MakeDelims(d...); err != nil {
		return nil, ErrDelims.Wrap(err)
	}

	return d, nil
}

// files returns the file system of documents and outputs.
func (o *Options) files(logger log.Logger) *vfile.FS {
	return vfile.New(
		vfile.WithSearch(o.Search...),
		vfile.WithAllow(o.Allow...),
		vfile.WithExtras(o.Extras),
		vfile.WithLogger(logger),
	)
}

// loadVars reads every distinct --vars file into a variable store option.
func (o *Options) loadVars(ctx context.Context) ([]lit.Option, error) {
	var opts []lit.Option

	for _, path := range uniqueFiles(o.Vars) {
		f, err := os.Open(path)
		if err != nil {
			return nil, ErrVars.Wrap(err).With(slog.String("file", path))
		}

		dicts, err := vfile.LoadVars(ctx, f)
		f.Close()

		if err != nil {
			return nil, ErrVars.Wrap(err).With(slog.String("file", path))
		}

		for dict, vals := range dicts {
			opts = append(opts, lit.WithVars(dict, vals))
		}
	}

	return opts, nil
}

// parser returns a parser configured by the options, with extra applied
// last.
func (o *Options) parser(ctx context.Context, extra ...lit.Option) (*lit.Parser, error) {
	logger := log.Default()

	delims, err := o.delims()
	if err != nil {
		return nil, err
	}

	syn, err := lit.NewSyntax(delims...)
	if err != nil {
		return nil, err
	}

	vars, err := o.loadVars(ctx)
	if err != nil {
		return nil, err
	}

	files := o.files(logger)

	opts := []lit.Option{
		lit.WithSyntax(syn),
		lit.WithFormats(format.Default()),
		lit.WithFormat(o.Format),
		lit.WithSource(files),
		lit.WithSink(files),
		lit.WithLogger(logger),
	}

	opts = append(opts, vars...)

	return lit.New(append(opts, extra...)...), nil
}

// load parses input and runs its post events, writing files with flush.
func (o *Options) load(ctx context.Context, input string, flush bool, extra ...lit.Option) (*lit.Parser, error) {
	p, err := o.parser(ctx, extra...)
	if err != nil {
		return nil, err
	}

	if err := p.ParseFile(ctx, input, flush); err != nil {
		return nil, err
	}

	return p, nil
}
