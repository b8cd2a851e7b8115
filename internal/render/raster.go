// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"bytes"
	"context"
	"fmt"
	"image/png"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"certpress/internal/layout"
)

// PNG renders the document and rasterizes it at the option's density.
func (r *Renderer) PNG(ctx context.Context, doc layout.Document, opts Options) ([]byte, error) {
	c, err := r.Draw(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	img := rasterizer.Draw(c, canvas.DPMM(opts.density()), canvas.DefaultColorSpace)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
