// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render paints layout documents onto a vector canvas and
// exports them as PNG or PDF. The same painter serves the editor
// preview and the public certificate view, so the two can never drift
// apart on positioning, scaling, or font fallback.
//
// Style coverage: background position keywords and repeat modes are
// honored; letterSpacing and blendMode are carried in documents for the
// client editor but not painted.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/draw"

	"certpress/internal/layout"
)

// Options selects the render variant.
type Options struct {
	// ReadOnly marks the public certificate view: bound name text gets
	// the adaptive font size, decorative text shadows are dropped.
	ReadOnly bool

	// Scale is the fit-to-container factor; zero means native size.
	Scale float64

	// Fields resolves element bindings, keyed by binding name.
	Fields map[string]string

	// Density is the raster resolution in pixels per document pixel;
	// exports use 2. Zero means 1.
	Density float64

	// VerifyURL, when set, embeds a verification QR code on PDF export.
	VerifyURL string
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

func (o Options) density() float64 {
	if o.Density <= 0 {
		return 1
	}
	return o.Density
}

// Renderer paints documents using a font library and an image resolver.
type Renderer struct {
	fonts  *FontLibrary
	images ImageResolver
}

// New returns a renderer. The image resolver may be nil, in which case
// documents referencing images fail to render.
func New(fonts *FontLibrary, images ImageResolver) *Renderer {
	return &Renderer{fonts: fonts, images: images}
}

// Draw paints the document onto a new canvas sized to the resolved
// canvas style times the scale factor.
func (r *Renderer) Draw(ctx context.Context, doc layout.Document, opts Options) (*canvas.Canvas, error) {
	cs := doc.CertificateStyle.Resolve()
	scale := opts.scale()
	w, h := cs.Width*scale, cs.Height*scale

	c := canvas.New(w, h)
	cc := canvas.NewContext(c)
	cc.SetCoordSystem(canvas.CartesianIV) // top-left origin, like the documents

	if err := r.drawBackground(ctx, cc, cs, scale, opts); err != nil {
		return nil, err
	}

	items := layout.BindFields(doc.Items, opts.Fields)
	items = sortByPaintOrder(items)
	for i := range items {
		if err := r.drawElement(ctx, cc, &items[i], scale, opts); err != nil {
			return nil, fmt.Errorf("element %q: %w", items[i].ID, err)
		}
	}
	return c, nil
}

// sortByPaintOrder orders elements by effective z-index, keeping the
// insertion order among equal indexes.
func sortByPaintOrder(items []layout.Element) []layout.Element {
	out := make([]layout.Element, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PaintOrder() < out[j].PaintOrder()
	})
	return out
}

func (r *Renderer) drawBackground(ctx context.Context, cc *canvas.Context, cs layout.CanvasStyle, scale float64, opts Options) error {
	w, h := cs.Width*scale, cs.Height*scale
	if col, ok := parseColor(cs.BackgroundColor); ok {
		fillRect(cc, 0, 0, w, h, col)
	}
	if cs.BackgroundImage == "" {
		return nil
	}
	img, err := r.resolveImage(ctx, cs.BackgroundImage)
	if err != nil {
		return fmt.Errorf("background image: %w", err)
	}
	iw := float64(img.Bounds().Dx())
	ih := float64(img.Bounds().Dy())
	if iw <= 0 || ih <= 0 {
		return nil
	}
	s := minf(w/iw, h/ih)
	if cs.BackgroundSize == "cover" {
		s = maxf(w/iw, h/ih)
	}
	dw, dh := iw*s, ih*s
	density := opts.density()
	scaled := resample(img, dw*density, dh*density, 1)

	dx, dy, repeatX, repeatY := backgroundPlacement(cs, w, h, dw, dh)
	startX, startY := dx, dy
	if repeatX {
		startX = tileStart(dx, dw)
	}
	if repeatY {
		startY = tileStart(dy, dh)
	}
	for ty := startY; ty < h; ty += dh {
		for tx := startX; tx < w; tx += dw {
			cc.DrawImage(tx, ty, scaled, canvas.DPMM(density))
			if !repeatX {
				break
			}
		}
		if !repeatY {
			break
		}
	}
	return nil
}

// backgroundPlacement maps the document's background-position and
// background-repeat onto a tile origin and per-axis tiling flags.
// Positions honor the left/right/top/bottom/center keywords; anything
// else keeps the centered default.
func backgroundPlacement(cs layout.CanvasStyle, w, h, dw, dh float64) (dx, dy float64, repeatX, repeatY bool) {
	dx, dy = (w-dw)/2, (h-dh)/2
	for _, tok := range strings.Fields(strings.ToLower(cs.BackgroundPosition)) {
		switch tok {
		case "left":
			dx = 0
		case "right":
			dx = w - dw
		case "top":
			dy = 0
		case "bottom":
			dy = h - dh
		}
	}
	switch strings.ToLower(strings.TrimSpace(cs.BackgroundRepeat)) {
	case "repeat":
		repeatX, repeatY = true, true
	case "repeat-x":
		repeatX = true
	case "repeat-y":
		repeatY = true
	}
	return dx, dy, repeatX, repeatY
}

// tileStart shifts a tile offset to the first tile touching the canvas,
// so tiling covers the full axis regardless of where the anchor landed.
func tileStart(offset, size float64) float64 {
	if size <= 0 {
		return offset
	}
	start := math.Mod(offset, size)
	if start > 0 {
		start -= size
	}
	return start
}

func (r *Renderer) drawElement(ctx context.Context, cc *canvas.Context, el *layout.Element, scale float64, opts Options) error {
	switch el.Type {
	case layout.ElementText:
		return r.drawText(cc, el, scale, opts)
	case layout.ElementImage, layout.ElementDecoration:
		return r.drawImage(ctx, cc, el, scale, opts, elementOpacity(el, 1))
	case layout.ElementWatermark:
		if el.Src != "" {
			return r.drawImage(ctx, cc, el, scale, opts, elementOpacity(el, watermarkOpacity))
		}
		return r.drawText(cc, el, scale, opts)
	case layout.ElementShape:
		return r.drawShape(cc, el, scale)
	case layout.ElementBorder:
		return r.drawBorder(cc, el, scale)
	}
	return nil
}

// watermarkOpacity applies when a watermark carries no explicit opacity.
const watermarkOpacity = 0.15

// elementOpacity returns the element's opacity, or fallback when unset.
func elementOpacity(el *layout.Element, fallback float64) float64 {
	if el.Style.Opacity > 0 {
		return el.Style.Opacity
	}
	return fallback
}

func (r *Renderer) drawText(cc *canvas.Context, el *layout.Element, scale float64, opts Options) error {
	text := el.Text
	if strings.TrimSpace(text) == "" {
		return nil
	}
	st := el.Style

	size := st.FontSize
	if size <= 0 {
		size = 32
	}
	if opts.ReadOnly && el.Binding == layout.BindingName {
		size = layout.AdaptiveFontSize(text, size)
	}
	size *= scale

	col, ok := parseColor(st.Color)
	if !ok {
		col = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	}
	opacity := elementOpacity(el, 1)
	if el.Type == layout.ElementWatermark {
		opacity = elementOpacity(el, watermarkOpacity)
	}
	col = withAlpha(col, opacity)

	var deco []canvas.FontDecorator
	if strings.Contains(st.TextDecoration, "underline") {
		deco = append(deco, canvas.FontUnderline)
	}
	if strings.Contains(st.TextDecoration, "line-through") {
		deco = append(deco, canvas.FontStrikethrough)
	}

	face, err := r.fonts.Face(st.FontFamily, st.FontWeight, st.FontStyle, size, col, deco...)
	if err != nil {
		return err
	}

	x, y := el.X*scale, el.Y*scale
	width := el.Width * scale
	lines := wrapText(face, text, width)

	lineHeight := face.Metrics().LineHeight
	if st.LineHeight > 0 {
		lineHeight = st.LineHeight * size
	}
	textHeight := float64(len(lines)) * lineHeight
	boxHeight := el.Height.Or(textHeight/scale) * scale

	if bg, ok := parseColor(st.Background); ok {
		fillRect(cc, x, y, width, boxHeight, withAlpha(bg, opacity))
	}
	if border, ok := parseBorder(st.Border); ok {
		strokeRect(cc, x, y, width, boxHeight, border.Width*scale, border.Color)
	}

	var shadowFace *canvas.FontFace
	var shadow shadowSpec
	if !opts.ReadOnly {
		if sh, ok := parseShadow(st.TextShadow); ok {
			shadow = sh
			shadowFace, err = r.fonts.Face(st.FontFamily, st.FontWeight, st.FontStyle, size, withAlpha(sh.Color, opacity))
			if err != nil {
				return err
			}
		}
	}

	align := canvas.Left
	anchorX := x
	switch st.TextAlign {
	case "center":
		align = canvas.Center
		anchorX = x + width/2
	case "right":
		align = canvas.Right
		anchorX = x + width
	}

	if st.Rotation != 0 {
		cc.Push()
		cc.RotateAbout(st.Rotation, x+width/2, y+boxHeight/2)
		defer cc.Pop()
	}

	ascent := face.Metrics().Ascent
	cursorY := y
	for _, line := range lines {
		baseline := cursorY + ascent
		if shadowFace != nil {
			cc.DrawText(anchorX+shadow.DX*scale, baseline+shadow.DY*scale, canvas.NewTextLine(shadowFace, line, align))
		}
		cc.DrawText(anchorX, baseline, canvas.NewTextLine(face, line, align))
		cursorY += lineHeight
	}
	return nil
}

func (r *Renderer) drawImage(ctx context.Context, cc *canvas.Context, el *layout.Element, scale float64, opts Options, opacity float64) error {
	if el.Src == "" {
		return nil
	}
	img, err := r.resolveImage(ctx, el.Src)
	if err != nil {
		return err
	}
	iw := float64(img.Bounds().Dx())
	ih := float64(img.Bounds().Dy())
	if iw <= 0 || ih <= 0 {
		return nil
	}

	dw := el.Width * scale
	dh := el.Height.Or(ih*el.Width/iw) * scale
	density := opts.density()
	scaled := resample(img, dw*density, dh*density, opacity)

	x, y := el.X*scale, el.Y*scale
	if el.Style.Rotation != 0 {
		cc.Push()
		cc.RotateAbout(el.Style.Rotation, x+dw/2, y+dh/2)
		defer cc.Pop()
	}
	cc.DrawImage(x, y, scaled, canvas.DPMM(density))
	return nil
}

func (r *Renderer) drawShape(cc *canvas.Context, el *layout.Element, scale float64) error {
	x, y := el.X*scale, el.Y*scale
	w := el.Width * scale
	h := el.Height.Or(el.Width) * scale
	opacity := elementOpacity(el, 1)

	fill, ok := parseColor(el.Style.Background)
	if !ok {
		fill = color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}
	}
	fill = withAlpha(fill, opacity)

	if el.Style.Rotation != 0 {
		cc.Push()
		cc.RotateAbout(el.Style.Rotation, x+w/2, y+h/2)
		defer cc.Pop()
	}

	var path *canvas.Path
	offsetX, offsetY := x, y
	switch el.Shape {
	case layout.ShapeCircle:
		path = canvas.Ellipse(w/2, h/2)
		offsetX, offsetY = x+w/2, y+h/2
	case layout.ShapeTriangle, layout.ShapeDiamond, layout.ShapeStar:
		points, err := layout.ParseClipPath(layout.ClipPath(el.Shape))
		if err != nil {
			return err
		}
		path = polygonPath(points, w, h)
	default: // rectangle
		if radius, ok := parsePx(el.Style.BorderRadius); ok && radius > 0 {
			path = canvas.RoundedRectangle(w, h, radius*scale)
		} else {
			path = canvas.Rectangle(w, h)
		}
	}

	cc.SetFillColor(fill)
	if border, ok := parseBorder(el.Style.Border); ok {
		cc.SetStrokeColor(withAlpha(border.Color, opacity))
		cc.SetStrokeWidth(border.Width * scale)
	} else {
		cc.SetStrokeColor(canvas.Transparent)
		cc.SetStrokeWidth(0)
	}
	cc.DrawPath(offsetX, offsetY, path)
	return nil
}

func (r *Renderer) drawBorder(cc *canvas.Context, el *layout.Element, scale float64) error {
	x, y := el.X*scale, el.Y*scale
	w := el.Width * scale
	h := el.Height.Or(el.Width) * scale

	spec, ok := parseBorder(el.Style.Border)
	if !ok {
		spec = borderSpec{Width: 2, Color: color.RGBA{A: 0xff}}
		if col, ok := parseColor(el.Style.Color); ok {
			spec.Color = col
		}
	}
	strokeRect(cc, x, y, w, h, spec.Width*scale, withAlpha(spec.Color, elementOpacity(el, 1)))
	return nil
}

func (r *Renderer) resolveImage(ctx context.Context, ref string) (image.Image, error) {
	if r.images == nil {
		return nil, fmt.Errorf("no image resolver configured")
	}
	return r.images(ctx, ref)
}

// polygonPath builds a closed path from unit-square vertices scaled to
// the element box.
func polygonPath(points []layout.PolygonPoint, w, h float64) *canvas.Path {
	p := &canvas.Path{}
	p.MoveTo(points[0].X*w, points[0].Y*h)
	for _, pt := range points[1:] {
		p.LineTo(pt.X*w, pt.Y*h)
	}
	p.Close()
	return p
}

func fillRect(cc *canvas.Context, x, y, w, h float64, col color.RGBA) {
	cc.SetFillColor(col)
	cc.SetStrokeColor(canvas.Transparent)
	cc.SetStrokeWidth(0)
	cc.DrawPath(x, y, canvas.Rectangle(w, h))
}

func strokeRect(cc *canvas.Context, x, y, w, h, width float64, col color.RGBA) {
	cc.SetFillColor(canvas.Transparent)
	cc.SetStrokeColor(col)
	cc.SetStrokeWidth(width)
	cc.DrawPath(x, y, canvas.Rectangle(w, h))
}

// resample scales an image to the given pixel dimensions, multiplying
// its alpha channel by opacity.
func resample(img image.Image, w, h, opacity float64) image.Image {
	dw, dh := int(w+0.5), int(h+0.5)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	if opacity > 0 && opacity < 1 {
		faded := image.NewRGBA(dst.Bounds())
		mask := image.NewUniform(color.Alpha{A: uint8(opacity * 0xff)})
		draw.DrawMask(faded, faded.Bounds(), dst, image.Point{}, mask, image.Point{}, draw.Over)
		return faded
	}
	return dst
}

// wrapText breaks text into lines no wider than limit, splitting on
// whitespace first and inside overlong words as a last resort. Explicit
// newlines are honored.
func wrapText(face *canvas.FontFace, text string, limit float64) []string {
	if limit <= 0 {
		return strings.Split(text, "\n")
	}
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		current := ""
		for _, word := range words {
			candidate := word
			if current != "" {
				candidate = current + " " + word
			}
			if face.TextWidth(candidate) <= limit {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			if face.TextWidth(word) <= limit {
				current = word
				continue
			}
			for _, chunk := range splitWord(face, word, limit) {
				if current != "" {
					lines = append(lines, current)
				}
				current = chunk
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

// splitWord breaks a single overlong word into width-limited chunks.
func splitWord(face *canvas.FontFace, word string, limit float64) []string {
	var parts []string
	var b strings.Builder
	for _, r := range word {
		b.WriteRune(r)
		if face.TextWidth(b.String()) > limit && b.Len() > 1 {
			runes := []rune(b.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			b.Reset()
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		parts = append(parts, b.String())
	}
	return parts
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
