package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presenterapp/presenter/internal/domain"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "UserDataFiles"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewStorage(t *testing.T) {
	t.Run("creates nested directories", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		s, err := NewStorage(dir, slog.Default())
		require.NoError(t, err)

		info, err := os.Stat(s.Dir())
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("returns error for empty path", func(t *testing.T) {
		s, err := NewStorage("", slog.Default())
		assert.Nil(t, s)
		assert.ErrorContains(t, err, "base path cannot be empty")
	})
}

func TestStorage_Import(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	t.Run("image", func(t *testing.T) {
		path, kind, err := s.Import(ctx, bytes.NewReader(pngBytes(t)), `C:\Users\me\Pictures\sunrise.png`)
		require.NoError(t, err)
		assert.Equal(t, domain.BlockImage, kind)
		assert.Equal(t, s.Dir(), filepath.Dir(path))
		assert.True(t, strings.HasSuffix(path, "_sunrise.png"), path)
		assert.True(t, s.Exists(path))
	})

	t.Run("pdf", func(t *testing.T) {
		pdf := "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"
		path, kind, err := s.Import(ctx, strings.NewReader(pdf), "score.pdf")
		require.NoError(t, err)
		assert.Equal(t, domain.BlockPdf, kind)
		assert.Equal(t, "score.pdf", filepath.Base(path)[37:])
	})

	t.Run("rejects text", func(t *testing.T) {
		_, _, err := s.Import(ctx, strings.NewReader("just some words"), "notes.txt")
		assert.ErrorIs(t, err, ErrUnsupportedMedia)
	})

	t.Run("rejects corrupt image", func(t *testing.T) {
		data := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
		_, _, err := s.Import(ctx, bytes.NewReader(data), "broken.png")
		assert.ErrorIs(t, err, ErrUnsupportedMedia)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, _, err := s.Import(ctx, bytes.NewReader(nil), "empty.png")
		assert.ErrorIs(t, err, ErrUnsupportedMedia)
	})

	t.Run("honors cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, _, err := s.Import(cctx, bytes.NewReader(pngBytes(t)), "late.png")
		assert.ErrorIs(t, err, context.Canceled)
	})

	// Failed imports leave nothing behind.
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStorage_Delete(t *testing.T) {
	s := setupTestStorage(t)

	path, _, err := s.Import(context.Background(), bytes.NewReader(pngBytes(t)), "x.png")
	require.NoError(t, err)

	require.NoError(t, s.Delete(path))
	assert.False(t, s.Exists(path))
	require.NoError(t, s.Delete(path), "deleting twice is not an error")

	outside := filepath.Join(t.TempDir(), "other.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))
	assert.ErrorIs(t, s.Delete(outside), ErrOutsideStorage)
	assert.ErrorIs(t, s.Delete(filepath.Join(s.Dir(), "..", "escape.png")), ErrOutsideStorage)
	assert.ErrorIs(t, s.Delete(s.Dir()), ErrOutsideStorage)

	_, err = os.Stat(outside)
	assert.NoError(t, err)
}

func TestSafeName(t *testing.T) {
	tests := map[string]string{
		"photo.jpg":             "photo.jpg",
		"/tmp/dir/photo.jpg":    "photo.jpg",
		`C:\pics\a.png`:         "a.png",
		"what?.png":             "what_.png",
		"..":                    "file",
		"":                      "file",
		"line\nbreak.pdf":       "linebreak.pdf",
		"  spaced name .png  ":  "spaced name .png",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeName(in), "input %q", in)
	}
}
