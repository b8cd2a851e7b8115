// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package layout defines the certificate layout document: a fixed-size
// canvas with absolutely positioned elements, persisted as JSON. It also
// provides the editing operations, field binding, and the scaling rules
// shared by the authoring preview and the public renderer.
package layout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Default canvas dimensions. Editor and renderer must agree on these:
// a document with a missing width/height resolves to the same box in
// both, otherwise scale factors and PDF dimensions diverge.
const (
	DefaultCanvasWidth  = 800.0
	DefaultCanvasHeight = 600.0
)

// DefaultCanvasBackground is the fill used when a document carries no
// background color at all.
const DefaultCanvasBackground = "#f9f5e8"

// ElementType discriminates element variants. The editor currently only
// produces text elements; the remaining variants are recognized by the
// renderer for forward compatibility.
type ElementType string

const (
	ElementText       ElementType = "text"
	ElementImage      ElementType = "image"
	ElementBorder     ElementType = "border"
	ElementDecoration ElementType = "decoration"
	ElementShape      ElementType = "shape"
	ElementWatermark  ElementType = "watermark"
)

// knownElementTypes is the closed set accepted at the document boundary.
var knownElementTypes = map[ElementType]bool{
	ElementText:       true,
	ElementImage:      true,
	ElementBorder:     true,
	ElementDecoration: true,
	ElementShape:      true,
	ElementWatermark:  true,
}

// Dimension is a pixel size that may also hold the literal "auto"
// (heights of text boxes grow with their content). It marshals as a JSON
// number, or as the string "auto".
type Dimension struct {
	Auto  bool
	Value float64
}

// Px returns a concrete pixel dimension.
func Px(v float64) Dimension { return Dimension{Value: v} }

// AutoDim returns the "auto" dimension.
func AutoDim() Dimension { return Dimension{Auto: true} }

// Or returns the dimension's value, or fallback when it is auto or unset.
func (d Dimension) Or(fallback float64) float64 {
	if d.Auto || d.Value <= 0 {
		return fallback
	}
	return d.Value
}

// MarshalJSON writes "auto" or a number.
func (d Dimension) MarshalJSON() ([]byte, error) {
	if d.Auto {
		return []byte(`"auto"`), nil
	}
	return json.Marshal(d.Value)
}

// UnmarshalJSON accepts a number, the string "auto", or a numeric string.
func (d *Dimension) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == `"auto"` || s == "null" {
		*d = Dimension{Auto: true}
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("dimension %q: %w", s, err)
	}
	*d = Dimension{Value: v}
	return nil
}

// Element is one positioned visual unit on the canvas. Coordinates are
// canvas pixels with a top-left origin.
type Element struct {
	ID     string      `json:"id"`
	Type   ElementType `json:"type"`
	Text   string      `json:"text,omitempty"`
	Src    string      `json:"src,omitempty"`
	Alt    string      `json:"alt,omitempty"`
	Shape  ShapeKind   `json:"shape,omitempty"`
	Style  Style       `json:"style"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Width  float64     `json:"width"`
	Height Dimension   `json:"height"`

	// ZIndex overrides paint order; nil means insertion order.
	ZIndex *int `json:"zIndex,omitempty"`

	// Binding links the element's content to a student field resolved at
	// render time. The wire name is kept from the original documents.
	Binding string `json:"idAttribute,omitempty"`

	// Placeholder is an editor-only hint, carried but never rendered.
	Placeholder string `json:"placeholder,omitempty"`
}

// PaintOrder returns the effective z-index: the explicit override when
// present, otherwise 1 (elements then stack by insertion order).
func (e *Element) PaintOrder() int {
	if e.ZIndex != nil {
		return *e.ZIndex
	}
	return 1
}

// CanvasStyle is the certificate-level canvas styling.
type CanvasStyle struct {
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	BackgroundColor string `json:"backgroundColor,omitempty"`
	// Background is the legacy solid-fill key older documents carry.
	Background string `json:"background,omitempty"`

	BackgroundImage    string `json:"backgroundImage,omitempty"`
	BackgroundSize     string `json:"backgroundSize,omitempty"`
	BackgroundPosition string `json:"backgroundPosition,omitempty"`
	BackgroundRepeat   string `json:"backgroundRepeat,omitempty"`

	Padding float64 `json:"padding,omitempty"`
}

// Resolve returns a copy with every value the renderer depends on made
// concrete. Both the editor preview and the public renderer consume the
// resolved form, so they can never disagree on dimensions or on the
// background-size default.
func (c CanvasStyle) Resolve() CanvasStyle {
	out := c
	if out.Width <= 0 {
		out.Width = DefaultCanvasWidth
	}
	if out.Height <= 0 {
		out.Height = DefaultCanvasHeight
	}
	if out.BackgroundColor == "" {
		out.BackgroundColor = out.Background
	}
	if out.BackgroundColor == "" {
		out.BackgroundColor = DefaultCanvasBackground
	}
	if out.BackgroundImage != "" {
		if out.BackgroundSize == "" {
			out.BackgroundSize = "contain"
		}
		if out.BackgroundPosition == "" {
			out.BackgroundPosition = "center"
		}
		if out.BackgroundRepeat == "" {
			out.BackgroundRepeat = "no-repeat"
		}
	}
	return out
}

// Document is the persisted certificate layout: ordered elements plus the
// canvas style. It is the unit of persistence — saves replace it whole.
type Document struct {
	Items            []Element   `json:"items"`
	CertificateStyle CanvasStyle `json:"certificateStyle"`
}

// NewDocument returns an empty document with the editor's default canvas.
func NewDocument() Document {
	return Document{
		Items: []Element{},
		CertificateStyle: CanvasStyle{
			Width:           DefaultCanvasWidth,
			Height:          DefaultCanvasHeight,
			BackgroundColor: "#ffffff",
		},
	}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	out.Items = make([]Element, len(d.Items))
	copy(out.Items, d.Items)
	for i := range out.Items {
		if z := d.Items[i].ZIndex; z != nil {
			v := *z
			out.Items[i].ZIndex = &v
		}
	}
	return out
}

// indexOf returns the position of the element with the given id, or -1.
func (d Document) indexOf(id string) int {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Validate checks a document at the persistence boundary: unique element
// ids, known variants, closed style values, bounded geometry, and a safe
// background image reference. Canvas dimensions may be absent (they
// resolve to defaults) but must not be negative or absurd, and element
// positions and sizes are bounded the same way since render buffers are
// sized from them.
func Validate(d Document) error {
	if d.CertificateStyle.Width < 0 || d.CertificateStyle.Height < 0 {
		return fmt.Errorf("canvas dimensions must not be negative")
	}
	if d.CertificateStyle.Width > maxCanvasDim || d.CertificateStyle.Height > maxCanvasDim {
		return fmt.Errorf("canvas dimensions exceed %v px", maxCanvasDim)
	}
	if err := validateImageRef(d.CertificateStyle.BackgroundImage); err != nil {
		return fmt.Errorf("background image: %w", err)
	}

	seen := make(map[string]bool, len(d.Items))
	for i := range d.Items {
		el := &d.Items[i]
		if el.ID == "" {
			return fmt.Errorf("element %d: missing id", i)
		}
		if seen[el.ID] {
			return fmt.Errorf("element %d: duplicate id %q", i, el.ID)
		}
		seen[el.ID] = true

		if !knownElementTypes[el.Type] {
			return fmt.Errorf("element %q: unknown type %q", el.ID, el.Type)
		}
		if el.Type == ElementShape && el.Shape != "" && !knownShapes[el.Shape] {
			return fmt.Errorf("element %q: unknown shape %q", el.ID, el.Shape)
		}
		if el.X < -maxCanvasDim || el.X > maxCanvasDim || el.Y < -maxCanvasDim || el.Y > maxCanvasDim {
			return fmt.Errorf("element %q: position out of range", el.ID)
		}
		if el.Width < 0 || el.Width > maxCanvasDim {
			return fmt.Errorf("element %q: width out of range", el.ID)
		}
		if !el.Height.Auto && (el.Height.Value < 0 || el.Height.Value > maxCanvasDim) {
			return fmt.Errorf("element %q: height out of range", el.ID)
		}
		if err := validateImageRef(el.Src); err != nil {
			return fmt.Errorf("element %q: src: %w", el.ID, err)
		}
		if err := el.Style.Validate(); err != nil {
			return fmt.Errorf("element %q: %w", el.ID, err)
		}
	}
	return nil
}

// maxCanvasDim caps canvas dimensions and element geometry; the editor UI
// allows up to 2000, and the renderer sizes buffers from these values.
const maxCanvasDim = 4000.0

// validateImageRef admits inline data URIs and http(s)/relative URLs only,
// so no other scheme can reach the rendering surface.
func validateImageRef(ref string) error {
	if ref == "" {
		return nil
	}
	switch {
	case strings.HasPrefix(ref, "data:image/"):
		return nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return nil
	case strings.HasPrefix(ref, "/"):
		return nil
	}
	return fmt.Errorf("unsupported reference scheme")
}
