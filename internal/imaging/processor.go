// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging normalizes uploaded menu item photos: format check,
// EXIF orientation fix, bounded re-encode without metadata.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder

	"sofra/internal/util"
)

// MaxDimension caps either side of a stored item photo. Larger uploads
// are fitted down before encoding.
const MaxDimension = 1600

// itemsSubdir is where item photos live under the uploads directory.
const itemsSubdir = "items"

// Processor saves normalized item photos under its upload directory.
type Processor struct {
	uploadDir string
}

// NewProcessor creates a processor rooted at uploadDir.
func NewProcessor(uploadDir string) *Processor {
	return &Processor{uploadDir: uploadDir}
}

// Process reads an uploaded image, validates that it decodes, applies the
// EXIF orientation, fits it into MaxDimension and saves it under a slugged
// unique filename derived from name. Returns the stored filename relative
// to the uploads directory.
func (p *Processor) Process(reader io.Reader, name string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("reading image data: %w", err)
	}

	format := detectFormat(data)
	if format == "" {
		return "", fmt.Errorf("unsupported image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}

	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	// Pure Go encoders drop EXIF, which is what we want for privacy.
	encoded, err := encodeImage(img, format, 90)
	if err != nil {
		return "", fmt.Errorf("encoding image: %w", err)
	}

	slug := util.Slugify(name)
	if slug == "" {
		slug = "item"
	}
	ext := ".jpg"
	if format == "png" {
		ext = ".png"
	}
	filename := filepath.Join(itemsSubdir, fmt.Sprintf("%s-%s%s", slug, uuid.NewString()[:8], ext))

	if err := p.save(filename, encoded); err != nil {
		return "", err
	}
	return filename, nil
}

// Delete removes a stored photo, ignoring already-missing files.
func (p *Processor) Delete(filename string) error {
	path, err := p.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting image: %w", err)
	}
	return nil
}

// Exists reports whether a stored photo is present on disk.
func (p *Processor) Exists(filename string) bool {
	path, err := p.resolve(filename)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// resolve joins filename under the upload directory, rejecting traversal.
func (p *Processor) resolve(filename string) (string, error) {
	clean := filepath.Clean(filename)
	if strings.Contains(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid image path %q", filename)
	}
	absBase, err := filepath.Abs(p.uploadDir)
	if err != nil {
		return "", fmt.Errorf("resolving uploads dir: %w", err)
	}
	target := filepath.Join(absBase, clean)
	rel, err := filepath.Rel(absBase, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid image path %q", filename)
	}
	return target, nil
}

func (p *Processor) save(filename string, data []byte) error {
	path, err := p.resolve(filename)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating image directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	return nil
}

// readExifOrientation returns the EXIF orientation tag, 1 when absent.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

func encodeImage(img image.Image, format string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// detectFormat sniffs the image format. TIFF is rejected explicitly
// (CVE-2023-36308 in disintegration/imaging).
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	if strings.Contains(contentType, "tiff") {
		return ""
	}
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "gif"):
		return "gif"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}
