// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"image/color"
	"strconv"
	"strings"
)

// The style values stored in layout documents are CSS fragments. The
// painter understands the subset the editor emits: hex colors with
// optional alpha, pixel lengths, "width style color" borders, and
// "dx dy blur color" text shadows. Anything it cannot parse is treated
// as absent rather than failing the render.

// parseColor reads #rgb, #rgba, #rrggbb and #rrggbbaa hex colors plus
// the keywords the editor emits for "no fill".
func parseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none", "transparent":
		return color.RGBA{}, false
	}
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false
	}
	hex := s[1:]
	switch len(hex) {
	case 3, 4:
		var wide strings.Builder
		for _, c := range hex {
			wide.WriteRune(c)
			wide.WriteRune(c)
		}
		hex = wide.String()
	case 6, 8:
	default:
		return color.RGBA{}, false
	}

	v, err := strconv.ParseUint(hex[:6], 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	c := color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
	if len(hex) == 8 {
		a, err := strconv.ParseUint(hex[6:], 16, 16)
		if err != nil {
			return color.RGBA{}, false
		}
		c.A = uint8(a)
	}
	return c, true
}

// withAlpha scales a color's alpha by the given opacity.
func withAlpha(c color.RGBA, opacity float64) color.RGBA {
	if opacity <= 0 || opacity >= 1 {
		return c
	}
	c.A = uint8(float64(c.A) * opacity)
	return c
}

// parsePx reads a pixel length like "8px", "8", or "8.5px".
func parsePx(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// borderSpec is a parsed CSS border shorthand.
type borderSpec struct {
	Width float64
	Color color.RGBA
}

// parseBorder reads the "2px solid #c9a227" shorthand. Only width and
// color matter to the painter; the line style token is accepted and
// ignored. "none" and unparseable values report no border.
func parseBorder(s string) (borderSpec, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return borderSpec{}, false
	}
	var spec borderSpec
	haveWidth, haveColor := false, false
	for _, tok := range strings.Fields(s) {
		if !haveWidth {
			if w, ok := parsePx(tok); ok {
				spec.Width, haveWidth = w, true
				continue
			}
		}
		if !haveColor {
			if c, ok := parseColor(tok); ok {
				spec.Color, haveColor = c, true
				continue
			}
		}
	}
	if !haveWidth || spec.Width <= 0 {
		return borderSpec{}, false
	}
	if !haveColor {
		spec.Color = color.RGBA{A: 0xff}
	}
	return spec, true
}

// shadowSpec is a parsed CSS text-shadow. Blur is carried but the
// raster path approximates it as a plain offset copy.
type shadowSpec struct {
	DX, DY float64
	Blur   float64
	Color  color.RGBA
}

// parseShadow reads the "0 2px 8px #00000022" shorthand: two offsets,
// an optional blur radius, and a color in any position.
func parseShadow(s string) (shadowSpec, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return shadowSpec{}, false
	}
	var spec shadowSpec
	lengths := make([]float64, 0, 3)
	haveColor := false
	for _, tok := range strings.Fields(s) {
		if c, ok := parseColor(tok); ok {
			spec.Color, haveColor = c, true
			continue
		}
		if v, ok := parsePx(tok); ok && len(lengths) < 3 {
			lengths = append(lengths, v)
		}
	}
	if len(lengths) < 2 || !haveColor {
		return shadowSpec{}, false
	}
	spec.DX, spec.DY = lengths[0], lengths[1]
	if len(lengths) == 3 {
		spec.Blur = lengths[2]
	}
	return spec, true
}
