// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Style bounds enforced at the document boundary. They match the ranges
// the original editor controls offered.
const (
	MinFontSize = 8.0
	MaxFontSize = 200.0
)

// Style is the closed set of presentation properties an element may
// carry. Documents arrive with an open JSON style bag; decoding into this
// struct drops anything outside the set, and Validate rejects values that
// could not be painted safely.
type Style struct {
	FontFamily     string  `json:"fontFamily,omitempty"`
	FontSize       float64 `json:"fontSize,omitempty"`
	FontWeight     string  `json:"fontWeight,omitempty"`
	FontStyle      string  `json:"fontStyle,omitempty"`
	TextDecoration string  `json:"textDecoration,omitempty"`
	Color          string  `json:"color,omitempty"`
	TextAlign      string  `json:"textAlign,omitempty"`
	LineHeight     float64 `json:"lineHeight,omitempty"`
	LetterSpacing  string  `json:"letterSpacing,omitempty"`
	TextShadow     string  `json:"textShadow,omitempty"`
	Background     string  `json:"background,omitempty"`
	Border         string  `json:"border,omitempty"`
	BorderRadius   string  `json:"borderRadius,omitempty"`
	Padding        string  `json:"padding,omitempty"`
	Opacity        float64 `json:"opacity,omitempty"`
	BlendMode      string  `json:"blendMode,omitempty"`
	Rotation       float64 `json:"rotation,omitempty"`
}

// DefaultTextStyle is the style applied to newly added text elements.
// Letter spacing is carried for authored documents but not part of the
// default: the painter does not space glyphs, so a default would promise
// what exports cannot show.
func DefaultTextStyle() Style {
	return Style{
		FontSize:     32,
		FontWeight:   "bold",
		Color:        "#222222",
		TextAlign:    "center",
		LineHeight:   1.2,
		FontFamily:   "Montserrat, sans-serif",
		TextShadow:   "0 2px 8px #00000022",
		Background:   "transparent",
		Border:       "none",
		BorderRadius: "0",
		Padding:      "0",
	}
}

// Validate checks numeric bounds and enum-like fields.
func (s Style) Validate() error {
	if s.FontSize != 0 && (s.FontSize < MinFontSize || s.FontSize > MaxFontSize) {
		return fmt.Errorf("font size %v out of range [%v, %v]", s.FontSize, MinFontSize, MaxFontSize)
	}
	if s.Opacity < 0 || s.Opacity > 1 {
		return fmt.Errorf("opacity %v out of range [0, 1]", s.Opacity)
	}
	switch s.TextAlign {
	case "", "left", "center", "right":
	default:
		return fmt.Errorf("unknown text alignment %q", s.TextAlign)
	}
	if s.LineHeight < 0 {
		return fmt.Errorf("negative line height")
	}
	return nil
}

// Set mutates a single style property addressed by its wire key. Unknown
// keys are rejected, which keeps the style bag closed even though the
// editor API is key/value shaped.
func (s *Style) Set(key, value string) error {
	switch key {
	case "fontFamily":
		s.FontFamily = value
	case "fontSize":
		v, err := strconv.ParseFloat(strings.TrimSuffix(value, "px"), 64)
		if err != nil {
			return fmt.Errorf("fontSize %q: %w", value, err)
		}
		s.FontSize = v
	case "fontWeight":
		s.FontWeight = value
	case "fontStyle":
		s.FontStyle = value
	case "textDecoration":
		s.TextDecoration = value
	case "color":
		s.Color = value
	case "textAlign":
		s.TextAlign = value
	case "lineHeight":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("lineHeight %q: %w", value, err)
		}
		s.LineHeight = v
	case "letterSpacing":
		s.LetterSpacing = value
	case "textShadow":
		s.TextShadow = value
	case "background":
		s.Background = value
	case "border":
		s.Border = value
	case "borderRadius":
		s.BorderRadius = value
	case "padding":
		s.Padding = value
	case "opacity":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("opacity %q: %w", value, err)
		}
		s.Opacity = v
	case "blendMode":
		s.BlendMode = value
	case "rotation":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("rotation %q: %w", value, err)
		}
		s.Rotation = v
	default:
		return fmt.Errorf("unknown style property %q", key)
	}
	return s.Validate()
}
