// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/lvillar/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"certpress/internal/layout"
)

// exportDensity is the raster resolution used for exports: the bitmap
// carries twice the document's pixel density so downloads stay sharp.
const exportDensity = 2

// QR placement on exported PDFs, in document pixels from the
// bottom-right corner.
const (
	qrSize   = 56.0
	qrMargin = 16.0
)

// PDF renders the document to a bitmap and wraps it in a single-page
// PDF whose page takes the bitmap's pixel dimensions as points,
// landscape when it is wider than tall. When opts.VerifyURL is set a
// verification QR code is stamped in the bottom-right corner.
func (r *Renderer) PDF(ctx context.Context, doc layout.Document, opts Options) ([]byte, error) {
	opts.Scale = 1
	if opts.Density <= 0 {
		opts.Density = exportDensity
	}
	bitmap, err := r.PNG(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	cs := doc.CertificateStyle.Resolve()
	pw, ph := exportPageSize(cs, opts.Density)

	orientation, size := pageLayout(pw, ph)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           size,
	})
	pdf.AddPage()

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("certificate", imgOpts, bytes.NewReader(bitmap))
	pdf.ImageOptions("certificate", 0, 0, pw, ph, false, imgOpts, 0, "")

	if opts.VerifyURL != "" {
		qrPx := qrSize * opts.Density
		marginPx := qrMargin * opts.Density
		qr, err := qrcode.Encode(opts.VerifyURL, qrcode.Medium, int(qrPx))
		if err != nil {
			return nil, fmt.Errorf("encode verification qr: %w", err)
		}
		pdf.RegisterImageOptionsReader("verify-qr", imgOpts, bytes.NewReader(qr))
		pdf.ImageOptions("verify-qr", pw-qrPx-marginPx, ph-qrPx-marginPx, qrPx, qrPx, false, imgOpts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// exportPageSize returns the PDF page dimensions: the export bitmap's
// pixel dimensions, taken as points. This matches the downloads the
// certificate page always produced.
func exportPageSize(cs layout.CanvasStyle, density float64) (float64, float64) {
	return cs.Width * density, cs.Height * density
}

// pageLayout maps document dimensions onto a gofpdf page: the size type
// holds portrait dimensions and the orientation flag swaps them, so a
// wide document becomes a landscape page of the same final size.
func pageLayout(w, h float64) (string, gofpdf.SizeType) {
	if w > h {
		return "L", gofpdf.SizeType{Wd: h, Ht: w}
	}
	return "P", gofpdf.SizeType{Wd: w, Ht: h}
}
