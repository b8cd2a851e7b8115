// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging normalizes uploaded certificate assets. Background
// images come in at arbitrary camera resolutions; anything wider than
// the cap is downscaled before storage so the renderer never decodes a
// multi-megapixel original on every export.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

// MaxAssetWidth is the default width cap for stored backgrounds. Wide
// enough for a 2x export of the default 800px canvas.
const MaxAssetWidth = 2000

// jpegQuality is the re-encode quality for downscaled JPEG sources.
const jpegQuality = 90

// maxPixels caps the decoded size to prevent memory bombs.
// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
const maxPixels = 100_000_000

// Normalized is a processed asset ready for upload.
type Normalized struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Normalize decodes an uploaded image, downscales it if wider than
// maxWidth, and re-encodes it. Sources already within the cap are
// passed through untouched when their format needs no conversion.
// GIF and WebP are converted to PNG; animation is not preserved.
func Normalize(original []byte, maxWidth int) (*Normalized, error) {
	if maxWidth <= 0 {
		maxWidth = MaxAssetWidth
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode config: %w", err)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("imaging: image too large (%dx%d)", cfg.Width, cfg.Height)
	}

	if cfg.Width <= maxWidth && (format == "jpeg" || format == "png") {
		return &Normalized{
			Data:        original,
			ContentType: "image/" + format,
			Width:       cfg.Width,
			Height:      cfg.Height,
		}, nil
	}

	src, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode: %w", err)
	}

	out := src
	width, height := cfg.Width, cfg.Height
	if cfg.Width > maxWidth {
		width = maxWidth
		height = cfg.Height * maxWidth / cfg.Width
		if height < 1 {
			height = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Over, nil)
		out = scaled
	}

	var buf bytes.Buffer
	contentType := "image/png"
	if format == "jpeg" {
		contentType = "image/jpeg"
		err = jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(&buf, out)
	}
	if err != nil {
		return nil, fmt.Errorf("imaging: encode: %w", err)
	}

	return &Normalized{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Width:       width,
		Height:      height,
	}, nil
}
