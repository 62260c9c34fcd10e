// Package format holds the document formats a [lit.Parser] can read and
// chooses one by name or by the extension of a document locator.
package format

import (
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/ardnew/tangle/lit"
	"github.com/ardnew/tangle/pkg"
)

// Errors returned when selecting a format.
var (
	ErrUnknownFormat = pkg.MakeErrorf("unknown format")
	ErrDuplicate     = pkg.MakeErrorf("format already registered")
)

// Format is a named document format.
type Format struct {
	Name        string
	Description string
	// Exts are the file extensions selecting the format, with the dot.
	Exts      []string
	Tokenizer lit.Tokenizer
}

// Registry maps format names and extensions to formats. The zero Registry
// is empty and ready to use.
type Registry struct {
	formats []*Format
	byName  map[string]*Format
	byExt   map[string]*Format
}

// NewRegistry returns a registry holding fs.
func NewRegistry(fs ...*Format) (*Registry, error) {
	r := &Registry{}

	for _, f := range fs {
		if err := r.Register(f); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Default returns a registry with the markdown and creole formats.
func Default() *Registry {
	r, err := NewRegistry(Markdown(), Creole())
	if err != nil {
		panic(err)
	}

	return r
}

// Register adds f. Names and extensions are matched case-insensitively; an
// extension already claimed is reassigned to f.
func (r *Registry) Register(f *Format) error {
	name := strings.ToLower(f.Name)
	if _, ok := r.byName[name]; ok {
		return ErrDuplicate.Wrapf("'%s'", f.Name)
	}

	if r.byName == nil {
		r.byName = make(map[string]*Format)
		r.byExt = make(map[string]*Format)
	}

	r.formats = append(r.formats, f)
	r.byName[name] = f

	for _, ext := range f.Exts {
		r.byExt[strings.ToLower(ext)] = f
	}

	return nil
}

// Formats returns the registered formats in registration order.
func (r *Registry) Formats() []*Format { return slices.Clone(r.formats) }

// Names returns the registered format names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.formats))
	for i, f := range r.formats {
		names[i] = f.Name
	}

	return names
}

// Lookup returns the format called name.
func (r *Registry) Lookup(name string) (*Format, error) {
	if f, ok := r.byName[strings.ToLower(name)]; ok {
		return f, nil
	}

	return nil, ErrUnknownFormat.Wrapf("'%s' (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Detect returns the format selected by the extension of loc.
func (r *Registry) Detect(loc string) (*Format, error) {
	ext := Ext(loc)
	if f, ok := r.byExt[ext]; ok {
		return f, nil
	}

	return nil, ErrUnknownFormat.Wrapf("no format for '%s'", loc)
}

// Tokenizer implements [lit.Formats]: the format called name, or with an
// empty name the one detected from loc.
func (r *Registry) Tokenizer(name, loc string) (lit.Tokenizer, error) {
	var (
		f   *Format
		err error
	)

	if name != "" {
		f, err = r.Lookup(name)
	} else {
		f, err = r.Detect(loc)
	}

	if err != nil {
		return nil, err
	}

	return f.Tokenizer, nil
}

// Ext returns the lower-case extension of the document named by loc.
// For archive members and shell commands ("zip:a.zip#doc.md") it is the
// extension of the part after "#"; for URLs it is the one of the URL path.
func Ext(loc string) string {
	if scheme, rest, ok := strings.Cut(loc, ":"); ok && len(scheme) > 1 {
		switch strings.ToLower(scheme) {
		case "zip", "shell":
			if _, member, ok := strings.Cut(rest, "#"); ok {
				loc = member
			}
		default:
			if u, err := url.Parse(loc); err == nil && u.Path != "" {
				loc = u.Path
			}
		}
	}

	return strings.ToLower(path.Ext(strings.ReplaceAll(loc, `\`, "/")))
}
