package render

import (
	"errors"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an image file format stills can be written in.
type Format int

const (
	PNG Format = iota
	BMP
	TIFF
)

var format_names = map[Format]string{PNG: "png", BMP: "bmp", TIFF: "tiff"}

var format_exts = map[string]Format{"png": PNG, "bmp": BMP, "tif": TIFF, "tiff": TIFF}

func (f Format) String() string {
	if s, ok := format_names[f]; ok {
		return s
	}
	return "unknown"
}

// Ext is the file extension, without the dot.
func (f Format) Ext() string { return f.String() }

var (
	ErrUnsupportedFormat = errors.New("render: unsupported image format")
	ErrEmptyAnimation    = errors.New("render: animation has no frames")
)

// FormatFromExtension accepts "png", "bmp", "tif" and "tiff", with or without
// a leading dot, in any case.
func FormatFromExtension(ext string) (Format, error) {
	if f, ok := format_exts[strings.ToLower(strings.TrimPrefix(ext, "."))]; ok {
		return f, nil
	}
	return -1, ErrUnsupportedFormat
}

func FormatFromFilename(filename string) (Format, error) {
	return FormatFromExtension(filepath.Ext(filename))
}

type encodeConfig struct {
	pngCompressionLevel png.CompressionLevel
	tiffCompression     tiff.CompressionType
}

var defaultEncodeConfig = encodeConfig{
	pngCompressionLevel: png.DefaultCompression,
	tiffCompression:     tiff.Deflate,
}

// EncodeOption sets an optional parameter for Encode.
type EncodeOption func(*encodeConfig)

// PNGCompressionLevel sets the compression level of PNG output. Default is
// png.DefaultCompression.
func PNGCompressionLevel(level png.CompressionLevel) EncodeOption {
	return func(c *encodeConfig) {
		c.pngCompressionLevel = level
	}
}

// TIFFCompression sets the compression of TIFF output. Default is Deflate.
func TIFFCompression(ct tiff.CompressionType) EncodeOption {
	return func(c *encodeConfig) {
		c.tiffCompression = ct
	}
}

// Encode writes img to w in the specified format.
func Encode(w io.Writer, img image.Image, format Format, opts ...EncodeOption) error {
	cfg := defaultEncodeConfig
	for _, option := range opts {
		option(&cfg)
	}
	switch format {
	case PNG:
		encoder := png.Encoder{CompressionLevel: cfg.pngCompressionLevel}
		return encoder.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: cfg.tiffCompression, Predictor: cfg.tiffCompression != tiff.Uncompressed})
	case BMP:
		return bmp.Encode(w, img)
	}
	return ErrUnsupportedFormat
}
