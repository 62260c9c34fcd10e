package vfile

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/tangle/log"
	"github.com/ardnew/tangle/pkg"
)

// Errors returned by [FS].
var (
	ErrNotFound = pkg.MakeErrorf("input not found")
	ErrScheme   = pkg.MakeErrorf("unsupported scheme")
	ErrLocator  = pkg.MakeErrorf("malformed locator")
	ErrInsecure = pkg.MakeErrorf("insecure locator")
	ErrFetch    = pkg.MakeErrorf("fetch failed")
)

// Locator schemes.
const (
	SchemeFile  = "file"
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
	SchemeZip   = "zip"
	SchemeShell = "shell"
)

// FS is the file system of input documents and output files. It implements
// [lit.Source] and [lit.Sink].
type FS struct {
	search []string
	allow  []string
	extras string
	client *http.Client
	logger log.Logger
	getwd  func() (string, error)
}

// Option configures an [FS].
type Option func(*FS)

// WithSearch prepends dirs to the search path.
func WithSearch(dirs ...string) Option {
	return func(fs *FS) { fs.search = append(fs.search, dirs...) }
}

// WithAllow permits shell locators to run the named executables.
func WithAllow(exes ...string) Option {
	return func(fs *FS) { fs.allow = append(fs.allow, exes...) }
}

// WithExtras sets the directory of executables shell locators may run.
func WithExtras(dir string) Option { return func(fs *FS) { fs.extras = dir } }

// WithClient sets the client of HTTP locators.
func WithClient(c *http.Client) Option {
	return func(fs *FS) {
		if c != nil {
			fs.client = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option { return func(fs *FS) { fs.logger = l } }

// New returns a file system configured by opts.
func New(opts ...Option) *FS {
	fs := &FS{
		client: http.DefaultClient,
		getwd:  os.Getwd,
	}

	for _, opt := range opts {
		opt(fs)
	}

	fs.search = searchPath(os.Getenv(PathEnv), fs.search...)

	return fs
}

// SearchPath returns the existing directories searched for relative
// locators after the including documents and the working directory.
func (fs *FS) SearchPath() []string { return append([]string(nil), fs.search...) }

// scheme returns the lower-case scheme of loc and the rest of it. A single
// letter before the colon is a drive, not a scheme.
func scheme(loc string) (string, string) {
	s, rest, ok := strings.Cut(loc, ":")
	if !ok || len(s) < 2 {
		return "", loc
	}

	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return "", loc
		}
	}

	return strings.ToLower(s), rest
}

// Resolve implements [lit.Source].
func (fs *FS) Resolve(bases []string, loc string) (string, error) {
	sch, rest := scheme(loc)

	switch sch {
	case "":
	case SchemeHTTP, SchemeHTTPS, SchemeShell:
		return loc, nil
	case SchemeFile:
		return fileURLPath(loc)
	case SchemeZip:
		archive, member, ok := strings.Cut(rest, "#")
		if !ok || archive == "" || member == "" {
			return "", ErrLocator.Wrapf("'%s' (want zip:ARCHIVE#MEMBER)", loc)
		}

		p, err := fs.Resolve(bases, archive)
		if err != nil {
			return "", err
		}

		return SchemeZip + ":" + p + "#" + member, nil
	default:
		return "", ErrScheme.Wrapf("'%s'", loc)
	}

	if filepath.IsAbs(loc) {
		return loc, nil
	}

	var tried []error

	for _, cand := range fs.candidates(bases, loc) {
		fs.logger.Trace("resolve", slog.String("input", loc), slog.String("try", cand))

		ok, err := fs.exists(cand)
		if ok {
			return cand, nil
		}

		if err == nil {
			err = fmt.Errorf("tried '%s'", cand)
		}

		tried = append(tried, err)
	}

	return "", ErrNotFound.Wrapf("'%s'", loc).Wrap(tried...)
}

// candidates returns the locators tried for the relative path loc: next to
// each base, in the working directory, then in the search path.
func (fs *FS) candidates(bases []string, loc string) []string {
	var out []string

	add := func(c string) {
		for _, o := range out {
			if o == c {
				return
			}
		}

		out = append(out, c)
	}

	for _, base := range bases {
		if c, ok := relative(base, loc); ok {
			add(c)
		}
	}

	if wd, err := fs.getwd(); err == nil {
		add(filepath.Join(wd, loc))
	}

	for _, dir := range fs.search {
		add(filepath.Join(dir, loc))
	}

	return out
}

// relative joins loc to the directory of the document base.
func relative(base, loc string) (string, bool) {
	sch, rest := scheme(base)

	switch sch {
	case "":
		return filepath.Join(filepath.Dir(base), loc), true
	case SchemeFile:
		p, err := fileURLPath(base)
		if err != nil {
			return "", false
		}

		return filepath.Join(filepath.Dir(p), loc), true
	case SchemeHTTP, SchemeHTTPS:
		return joinURL(base, loc)
	case SchemeZip:
		archive, member, _ := strings.Cut(rest, "#")
		dir := filepath.ToSlash(filepath.Dir(filepath.FromSlash(member)))

		return SchemeZip + ":" + archive + "#" + strings.TrimPrefix(filepath.ToSlash(filepath.Join(dir, loc)), "./"), true
	default:
		return "", false
	}
}

// exists reports whether the resolved locator names a readable document.
// Remote locators are assumed to exist.
func (fs *FS) exists(loc string) (bool, error) {
	sch, rest := scheme(loc)

	switch sch {
	case "":
		info, err := os.Stat(loc)

		return err == nil && !info.IsDir(), nil
	case SchemeZip:
		archive, member, _ := strings.Cut(rest, "#")

		return zipHas(archive, member)
	default:
		return true, nil
	}
}

// Read implements [lit.Source]. Line endings are normalized to "\n".
func (fs *FS) Read(ctx context.Context, loc string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	sch, rest := scheme(loc)

	var (
		data []byte
		err  error
	)

	switch sch {
	case "":
		data, err = os.ReadFile(loc)
	case SchemeFile:
		var p string
		if p, err = fileURLPath(loc); err == nil {
			data, err = os.ReadFile(p)
		}
	case SchemeHTTP, SchemeHTTPS:
		data, err = fs.fetch(ctx, loc)
	case SchemeZip:
		data, err = readZip(rest)
	case SchemeShell:
		data, err = fs.runShell(ctx, rest)
	default:
		err = ErrScheme.Wrapf("'%s'", loc)
	}

	if err != nil {
		return "", err
	}

	fs.logger.DebugContext(ctx, "read", slog.String("input", loc), slog.Int("size", len(data)))

	return normalize(string(data)), nil
}

// Write implements [lit.Sink]. Missing parent directories are created.
func (fs *FS) Write(ctx context.Context, path, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch sch, _ := scheme(path); sch {
	case "":
	case SchemeFile:
		p, err := fileURLPath(path)
		if err != nil {
			return err
		}

		path = p
	default:
		return ErrScheme.Wrapf("can not write '%s'", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, []byte(text), 0o644)
}

func normalize(s string) string { return strings.ReplaceAll(s, "\r\n", "\n") }
