package locale

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

//go:embed locales/*.json
var embedded embed.FS

// Source retrieves the raw string table for a language code. The returned
// name ("en.json", "de.toml") tells the parser which format the bytes are in.
type Source interface {
	Table(ctx context.Context, code string) (data []byte, name string, err error)
}

// FSSource reads <code>.json or <code>.toml from a filesystem
type FSSource struct {
	fsys fs.FS
}

// NewFSSource wraps fsys
func NewFSSource(fsys fs.FS) *FSSource {
	return &FSSource{fsys: fsys}
}

// DirSource reads tables from a directory on disk
func DirSource(dir string) *FSSource {
	return NewFSSource(os.DirFS(dir))
}

// Embedded returns the tables compiled into the binary
func Embedded() *FSSource {
	sub, err := fs.Sub(embedded, "locales")
	if err != nil {
		// The embed directive guarantees the directory exists
		panic(err)
	}
	return NewFSSource(sub)
}

// Table implements Source
func (s *FSSource) Table(_ context.Context, code string) ([]byte, string, error) {
	if !fs.ValidPath(code) || path.Base(code) != code {
		return nil, "", fmt.Errorf("invalid language code %q", code)
	}

	for _, ext := range []string{".json", ".toml"} {
		name := code + ext
		data, err := fs.ReadFile(s.fsys, name)
		if err == nil {
			return data, name, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("failed to read %s: %w", name, err)
		}
	}
	return nil, "", fmt.Errorf("no string table for %q: %w", code, fs.ErrNotExist)
}

// TableFetcher is the part of the host client HostSource needs
type TableFetcher interface {
	LocaleTable(ctx context.Context, code string) ([]byte, error)
}

// HostSource fetches locales/<code>.json from the host's static resources
type HostSource struct {
	fetcher TableFetcher
}

// NewHostSource wraps fetcher
func NewHostSource(fetcher TableFetcher) *HostSource {
	return &HostSource{fetcher: fetcher}
}

// Table implements Source
func (s *HostSource) Table(ctx context.Context, code string) ([]byte, string, error) {
	if path.Base(code) != code {
		return nil, "", fmt.Errorf("invalid language code %q", code)
	}
	data, err := s.fetcher.LocaleTable(ctx, code)
	if err != nil {
		return nil, "", err
	}
	return data, code + ".json", nil
}

// Chain tries each source in order and returns the first table found
type Chain []Source

// Table implements Source
func (c Chain) Table(ctx context.Context, code string) ([]byte, string, error) {
	var errs []error
	for _, s := range c {
		data, name, err := s.Table(ctx, code)
		if err == nil {
			return data, name, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, "", fmt.Errorf("no string table sources configured")
	}
	return nil, "", errors.Join(errs...)
}
