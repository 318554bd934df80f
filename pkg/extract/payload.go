// pkg/extract/payload.go - reassembles package payloads from named chunks

package extract

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/windowsadmins/cimianboot/pkg/logging"
)

// Provider supplies payload chunks by resource name.
type Provider interface {
	Open(name string) (io.ReadCloser, error)
}

// DirProvider reads chunks as files in a directory.
type DirProvider struct {
	Dir string
}

// Open opens the chunk file named name.
func (p DirProvider) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(p.Dir, filepath.FromSlash(name)))
}

// FSProvider reads chunks from a file system, such as an embed.FS compiled into the binary.
type FSProvider struct {
	FS fs.FS
}

// Open opens the chunk named name.
func (p FSProvider) Open(name string) (io.ReadCloser, error) {
	return p.FS.Open(name)
}

// Payload concatenates the named chunks, in order, into dest. An existing
// file at dest is replaced.
func Payload(p Provider, names []string, dest string) error {
	if len(names) == 0 {
		return fmt.Errorf("no payload resources for %s", filepath.Base(dest))
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dest, err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	var written int64
	for _, name := range names {
		n, err := copyChunk(p, name, out)
		written += n
		if err != nil {
			out.Close()
			return err
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dest, err)
	}

	logging.Debug("Extracted payload", "path", dest, "chunks", len(names), "bytes", written)
	return nil
}

func copyChunk(p Provider, name string, w io.Writer) (int64, error) {
	r, err := p.Open(name)
	if err != nil {
		return 0, fmt.Errorf("opening payload resource %s: %w", name, err)
	}
	defer r.Close()

	n, err := io.Copy(w, r)
	if err != nil {
		return n, fmt.Errorf("reading payload resource %s: %w", name, err)
	}
	return n, nil
}
