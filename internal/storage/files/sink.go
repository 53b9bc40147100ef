// Package files is the filesystem PageSink used by the static export.
package files

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrBadPath = errors.New("invalid page path")

type Sink struct {
	root string
}

// New creates root if needed.
func New(root string) (*Sink, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", root, err)
	}
	return &Sink{root: root}, nil
}

func (s *Sink) Root() string { return s.root }

// Write stores body at root/p, replacing any previous file atomically.
func (s *Sink) Write(ctx context.Context, p string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean := path.Clean(p)
	if p == "" || path.IsAbs(p) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("%q: %w", p, ErrBadPath)
	}

	dst := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", p, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".page-*")
	if err != nil {
		return fmt.Errorf("create %s: %w", p, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", p, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", p, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename %s: %w", p, err)
	}
	return nil
}
