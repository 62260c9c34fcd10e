package vfile

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

// fileURLPath returns the local path of a file URL.
func fileURLPath(loc string) (string, error) {
	u, err := url.Parse(loc)
	if err != nil {
		return "", ErrLocator.Wrap(err)
	}

	if u.Host != "" && u.Host != "localhost" {
		return "", ErrLocator.Wrapf("'%s' names a remote host", loc)
	}

	p := u.Path
	if p == "" {
		p = u.Opaque
	}

	return filepath.FromSlash(p), nil
}

// joinURL resolves loc against the URL of the document base.
func joinURL(base, loc string) (string, bool) {
	b, err := url.Parse(base)
	if err != nil {
		return "", false
	}

	ref, err := url.Parse(filepath.ToSlash(loc))
	if err != nil {
		return "", false
	}

	return b.ResolveReference(ref).String(), true
}

// fetch reads an HTTP locator. User info in the URL is sent as basic
// authentication and removed from the request URL.
func (fs *FS) fetch(ctx context.Context, loc string) ([]byte, error) {
	u, err := url.Parse(loc)
	if err != nil {
		return nil, ErrLocator.Wrap(err)
	}

	user := u.User
	u.User = nil

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, ErrFetch.Wrap(err)
	}

	if user != nil {
		pass, _ := user.Password()
		req.SetBasicAuth(user.Username(), pass)
	}

	resp, err := fs.client.Do(req)
	if err != nil {
		return nil, ErrFetch.Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, ErrFetch.Wrapf("'%s': %s", u.Redacted(), resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrFetch.Wrap(err)
	}

	return data, nil
}

// readZip reads the member of "ARCHIVE#MEMBER".
func readZip(ref string) ([]byte, error) {
	archive, member, ok := strings.Cut(ref, "#")
	if !ok || member == "" {
		return nil, ErrLocator.Wrapf("'%s:%s' (want zip:ARCHIVE#MEMBER)", SchemeZip, ref)
	}

	zr, err := zip.OpenReader(archive)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	f, err := zr.Open(member)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, ErrNotFound.Wrapf("'%s' in '%s'", member, archive)
		}

		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// zipHas reports whether archive holds member.
func zipHas(archive, member string) (bool, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return false, nil
		}

		return false, err
	}
	defer zr.Close()

	info, err := iofs.Stat(zr, member)

	return err == nil && !info.IsDir(), nil
}

// runShell runs "EXE#ARGS" and returns its standard output. EXE must be in
// the extras directory or in the allow-list.
func (fs *FS) runShell(ctx context.Context, ref string) ([]byte, error) {
	exe, args, _ := strings.Cut(ref, "#")
	if exe == "" {
		return nil, ErrLocator.Wrapf("'%s:%s' (want shell:EXE#ARGS)", SchemeShell, ref)
	}

	path, ok := fs.secure(exe)
	if !ok {
		return nil, ErrInsecure.Wrapf("'%s:%s'", SchemeShell, ref)
	}

	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, path, strings.Fields(args)...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, ErrFetch.Wrap(err).Wrapf("%s", msg)
		}

		return nil, ErrFetch.Wrap(err)
	}

	return out, nil
}

// secure returns the program run for exe: a file of the extras directory,
// or an allow-listed name or path looked up in $PATH.
func (fs *FS) secure(exe string) (string, bool) {
	clean := filepath.Clean(exe)

	if extras, err := filepath.Abs(fs.extras); fs.extras != "" && err == nil {
		cand := clean
		if !filepath.IsAbs(cand) {
			cand = filepath.Join(extras, cand)
		}

		if rel, err := filepath.Rel(extras, cand); err == nil &&
			rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			if info, err := os.Stat(cand); err == nil && !info.IsDir() {
				return cand, true
			}
		}
	}

	if slices.Contains(fs.allow, exe) || slices.Contains(fs.allow, clean) {
		if p, err := exec.LookPath(clean); err == nil {
			return p, true
		}
	}

	return "", false
}
