// Package media copies picked image and PDF files into app storage so that
// flexible content and file attributes can reference them by path.
package media

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/presenterapp/presenter/internal/domain"
)

// ErrUnsupportedMedia is returned for files that are neither a decodable
// image nor a PDF.
var ErrUnsupportedMedia = errors.New("unsupported media type")

// ErrOutsideStorage is returned when a path does not live in the storage
// directory.
var ErrOutsideStorage = errors.New("path is outside media storage")

// Storage manages the media directory. Safe for concurrent use.
type Storage struct {
	basePath string
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewStorage creates the media directory at basePath if needed.
func NewStorage(basePath string, logger *slog.Logger) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	return &Storage{
		basePath: abs,
		logger:   logger,
	}, nil
}

// Dir returns the absolute media directory.
func (s *Storage) Dir() string { return s.basePath }

// Import copies r into storage as "{uuid}_{name}", where name is the base of
// filename. It returns the stored path and the block kind matching the
// detected content.
func (s *Storage) Import(ctx context.Context, r io.Reader, filename string) (string, domain.BlockKind, error) {
	tmp, err := os.CreateTemp(s.basePath, ".import-*")
	if err != nil {
		return "", "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, &contextReader{ctx: ctx, r: r})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to copy media: %w", err)
	}
	if n == 0 {
		return "", "", fmt.Errorf("%w: empty file", ErrUnsupportedMedia)
	}

	kind, err := detectKind(tmpPath)
	if err != nil {
		return "", "", err
	}

	dest := filepath.Join(s.basePath, uuid.NewString()+"_"+safeName(filename))

	s.mu.Lock()
	err = os.Rename(tmpPath, dest)
	s.mu.Unlock()
	if err != nil {
		return "", "", fmt.Errorf("failed to store media: %w", err)
	}
	committed = true

	s.logger.Info("media imported",
		"path", dest,
		"kind", kind,
		"size", n,
	)
	return dest, kind, nil
}

// Exists reports whether path is a stored file.
func (s *Storage) Exists(path string) bool {
	if !s.Contains(path) {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Contains reports whether path lies inside the media directory.
func (s *Storage) Contains(path string) bool {
	if path == "" {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(s.basePath, abs)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Delete removes a stored file. Deleting a missing file is not an error.
func (s *Storage) Delete(path string) error {
	if !s.Contains(path) {
		return fmt.Errorf("%w: %s", ErrOutsideStorage, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			// Already deleted, not an error.
			return nil
		}
		return fmt.Errorf("failed to delete media file: %w", err)
	}

	s.logger.Info("media deleted", "path", path)
	return nil
}

// detectKind sniffs the file type and validates images by decoding their
// header.
func detectKind(path string) (domain.BlockKind, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to detect media type: %w", err)
	}

	switch {
	case mtype.Is("application/pdf"):
		return domain.BlockPdf, nil
	case strings.HasPrefix(mtype.String(), "image/"):
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("failed to open media: %w", err)
		}
		defer f.Close()

		if _, _, err := image.DecodeConfig(f); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrUnsupportedMedia, mtype.String(), err)
		}
		return domain.BlockImage, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, mtype.String())
	}
}

// safeName reduces filename to a base name usable on any platform.
func safeName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
