package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSaveOriginalAndThumbnail(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir, "/uploads/")

	key, err := store.SaveOriginal(context.Background(), "questions/abc", "my photo!.png", pngBytes(t, 400, 200))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "questions/abc/"))
	assert.True(t, strings.HasSuffix(key, "-my_photo_.png"))

	url, err := store.Thumbnail(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/thumb/"+key, url)

	thumb, err := imaging.Open(filepath.Join(dir, "thumb", filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, 100, thumb.Bounds().Dx())
	assert.Equal(t, 50, thumb.Bounds().Dy())

	medium, err := imaging.Open(filepath.Join(dir, "medium", filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, 300, medium.Bounds().Dx())
	assert.Equal(t, 150, medium.Bounds().Dy())
}

func TestSaveOriginalRejectsNonImages(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir, "/uploads")

	_, err := store.SaveOriginal(context.Background(), "q", "notes.txt", []byte("plain text, not a picture"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}

func TestSaveOriginalRejectsUndecodableImages(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 \x18\x00\x00\x00")},
		{"icon", []byte("\x00\x00\x01\x00\x01\x00\x10\x10\x00\x00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store := NewImageStore(dir, "/uploads")

			_, err := store.SaveOriginal(context.Background(), "q", "pic."+tt.name, tt.data)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))

			entries, _ := os.ReadDir(dir)
			assert.Empty(t, entries)
		})
	}
}

func TestThumbnailOfCorruptOriginalKeepsOriginal(t *testing.T) {
	dir := t.TempDir()
	store := NewImageStore(dir, "/uploads")

	data := pngBytes(t, 10, 10)
	key, err := store.SaveOriginal(context.Background(), "q", "broken.png", data[:60])
	require.NoError(t, err)

	_, err = store.Thumbnail(context.Background(), key)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, statErr := os.Stat(filepath.Join(dir, "original", filepath.FromSlash(key)))
	assert.NoError(t, statErr)
}

func TestDownscaleIfNeededKeepsSmallImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 20, 10))
	assert.Same(t, src, downscaleIfNeeded(src, 300, 300))
}
