package payload

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"sync"

	"github.com/spf13/afero"

	"github.com/example/isaac-save-manager/internal/saves/domain"
	"github.com/example/isaac-save-manager/internal/saves/paths"
)

//go:embed saves
var bundled embed.FS

// Provider maps a variant to the save template written by an install.
type Provider interface {
	Payload(v domain.Variant) ([]byte, error)
}

// FS reads <variant dir>/persistentgamedata.dat from a filesystem. Each payload is read
// once and then served from memory; callers must not modify the returned slice.
type FS struct {
	fs    afero.Fs
	mu    sync.Mutex
	cache map[domain.Variant][]byte
}

// NewFS creates a provider rooted at fsys.
func NewFS(fsys afero.Fs) *FS {
	return &FS{fs: fsys, cache: make(map[domain.Variant][]byte)}
}

// NewDir creates a provider reading from dir on base.
func NewDir(base afero.Fs, dir string) *FS {
	return NewFS(afero.NewBasePathFs(base, dir))
}

// Embedded returns the provider backed by the templates compiled into the binary.
func Embedded() *FS {
	sub, err := fs.Sub(bundled, "saves")
	if err != nil {
		panic(err)
	}
	return NewFS(afero.FromIOFS{FS: sub})
}

// Location returns the path of v's template inside the provider's filesystem.
func Location(v domain.Variant) string {
	return path.Join(v.PayloadDirectory(), paths.PayloadFileName)
}

// Payload returns the bytes of v's template.
func (p *FS) Payload(v domain.Variant) ([]byte, error) {
	if !v.Valid() {
		return nil, domain.Newf(domain.CodePayloadMissing, "there is no save file for unknown game variant %d", int(v))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if data, ok := p.cache[v]; ok {
		return data, nil
	}

	location := Location(v)
	data, err := afero.ReadFile(p.fs, location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, fs.ErrNotExist) {
			return nil, domain.Newf(domain.CodePayloadMissing, "this build does not include a save file for %s (expected %s)", v, location).
				WithDetail("path", location)
		}
		return nil, domain.Wrapf(err, domain.CodePayloadMissing, "failed to read the save file for %s", v).
			WithDetail("path", location)
	}
	if len(data) == 0 {
		return nil, domain.Newf(domain.CodePayloadMissing, "the save file for %s is empty: %s", v, location).
			WithDetail("path", location)
	}

	p.cache[v] = data
	return data, nil
}
