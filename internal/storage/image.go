// Package storage keeps uploaded question images on the local filesystem.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/bertomartin/ashoka-survey-web/internal/domain"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	ThumbSize  = 100
	MediumSize = 300

	// MaxUploadSize caps the bytes accepted for one image.
	MaxUploadSize = 10 << 20
)

// Variant names a stored rendition of an upload.
type Variant string

const (
	VariantOriginal Variant = "original"
	VariantMedium   Variant = "medium"
	VariantThumb    Variant = "thumb"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// decodable lists the sniffed content types imaging can open.
var decodable = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
}

// ImageStore writes uploads under dir and serves them below baseURL.
type ImageStore struct {
	dir     string
	baseURL string
	now     func() time.Time
}

func NewImageStore(dir, baseURL string) *ImageStore {
	return &ImageStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// SaveOriginal stores the upload as-is and returns its key. Anything that
// does not sniff as a JPEG, PNG, GIF or BMP image is rejected before
// touching the disk.
func (s *ImageStore) SaveOriginal(ctx context.Context, folder, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload: %w", domain.ErrInvalidInput)
	}
	if len(data) > MaxUploadSize {
		return "", fmt.Errorf("upload exceeds %d bytes: %w", MaxUploadSize, domain.ErrInvalidInput)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	if ct := http.DetectContentType(head); !decodable[ct] {
		return "", fmt.Errorf("unsupported content type %s: %w", ct, domain.ErrInvalidInput)
	}

	key := s.uniqueKey(folder, filename)
	if err := s.write(key, VariantOriginal, data); err != nil {
		return "", err
	}
	return key, nil
}

// Thumbnail derives the thumb and medium renditions of a stored original
// and returns the thumb URL. An original that cannot be decoded yields
// domain.ErrInvalidInput.
func (s *ImageStore) Thumbnail(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(s.path(key, VariantOriginal))
	if err != nil {
		return "", fmt.Errorf("opening original: %w", err)
	}
	defer f.Close()

	src, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decoding image: %v: %w", err, domain.ErrInvalidInput)
	}

	if err := s.save(key, VariantMedium, downscaleIfNeeded(src, MediumSize, MediumSize)); err != nil {
		return "", err
	}
	if err := s.save(key, VariantThumb, imaging.Fit(src, ThumbSize, ThumbSize, imaging.Lanczos)); err != nil {
		return "", err
	}

	return s.URL(key, VariantThumb), nil
}

// URL resolves the public URL of a rendition.
func (s *ImageStore) URL(key string, v Variant) string {
	return s.baseURL + "/" + path.Join(string(v), key)
}

func (s *ImageStore) path(key string, v Variant) string {
	return filepath.Join(s.dir, string(v), filepath.FromSlash(key))
}

func (s *ImageStore) write(key string, v Variant, data []byte) error {
	p := s.path(key, v)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("writing %s image: %w", v, err)
	}
	return nil
}

func (s *ImageStore) save(key string, v Variant, img image.Image) error {
	format, err := imaging.FormatFromFilename(key)
	if err != nil {
		format = imaging.PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return fmt.Errorf("encoding %s image: %w", v, err)
	}
	return s.write(key, v, buf.Bytes())
}

func (s *ImageStore) uniqueKey(folder, filename string) string {
	safe := unsafeChars.ReplaceAllString(filepath.Base(filename), "_")
	name := fmt.Sprintf("%s-%s-%s", s.now().Format("20060102"), uuid.NewString(), safe)
	return path.Join(folder, name)
}

// downscaleIfNeeded shrinks src to fit maxW x maxH, keeping its aspect ratio.
func downscaleIfNeeded(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return src
	}

	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Max(1, math.Round(float64(w)*scale)))
	nh := int(math.Max(1, math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
