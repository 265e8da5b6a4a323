package pptx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// mediaFormat describes how an image format is stored inside the package.
type mediaFormat struct {
	ext         string
	contentType string
}

var mediaFormats = map[string]mediaFormat{
	"jpeg": {ext: "jpeg", contentType: "image/jpeg"},
	"png":  {ext: "png", contentType: "image/png"},
	"gif":  {ext: "gif", contentType: "image/gif"},
	"bmp":  {ext: "bmp", contentType: "image/bmp"},
	"tiff": {ext: "tiff", contentType: "image/tiff"},
	"webp": {ext: "webp", contentType: "image/webp"},
}

// ImageInfo is the decoded header of an image.
type ImageInfo struct {
	Format string
	Width  int // pixels
	Height int // pixels
}

// DecodeImageInfo sniffs the format and pixel size of encoded image data.
func DecodeImageInfo(data []byte) (ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	if _, ok := mediaFormats[format]; !ok {
		return ImageInfo{}, fmt.Errorf("unsupported image format: %s", format)
	}
	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
