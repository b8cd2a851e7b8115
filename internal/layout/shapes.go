// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// ShapeKind names the shape variants of a shape element.
type ShapeKind string

const (
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapeTriangle  ShapeKind = "triangle"
	ShapeDiamond   ShapeKind = "diamond"
	ShapeStar      ShapeKind = "star"
)

var knownShapes = map[ShapeKind]bool{
	ShapeRectangle: true,
	ShapeCircle:    true,
	ShapeTriangle:  true,
	ShapeDiamond:   true,
	ShapeStar:      true,
}

// Clip-path polygon literals for the non-rectangular shapes. The vertex
// sets are visually load-bearing and must be reproduced byte for byte.
const (
	TriangleClipPath = "polygon(50% 0%, 0% 100%, 100% 100%)"
	DiamondClipPath  = "polygon(50% 0%, 100% 50%, 50% 100%, 0% 50%)"
	StarClipPath     = "polygon(50% 0%, 61% 35%, 98% 35%, 68% 57%, 79% 91%, 50% 70%, 21% 91%, 32% 57%, 2% 35%, 39% 35%)"
)

// ClipPath returns the polygon literal for a shape, or "" for shapes that
// need no clipping (rectangle, circle).
func ClipPath(kind ShapeKind) string {
	switch kind {
	case ShapeTriangle:
		return TriangleClipPath
	case ShapeDiamond:
		return DiamondClipPath
	case ShapeStar:
		return StarClipPath
	}
	return ""
}

// PolygonPoint is one clip-path vertex in unit coordinates (0..1 of the
// element's box).
type PolygonPoint struct {
	X, Y float64
}

// ParseClipPath converts a polygon(...) literal with percentage vertices
// into unit coordinates for the painter.
func ParseClipPath(clip string) ([]PolygonPoint, error) {
	body := strings.TrimSpace(clip)
	if !strings.HasPrefix(body, "polygon(") || !strings.HasSuffix(body, ")") {
		return nil, fmt.Errorf("not a polygon clip path: %q", clip)
	}
	body = strings.TrimSuffix(strings.TrimPrefix(body, "polygon("), ")")

	var points []PolygonPoint
	for _, pair := range strings.Split(body, ",") {
		fields := strings.Fields(strings.TrimSpace(pair))
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed vertex %q", pair)
		}
		x, err := parsePercent(fields[0])
		if err != nil {
			return nil, err
		}
		y, err := parsePercent(fields[1])
		if err != nil {
			return nil, err
		}
		points = append(points, PolygonPoint{X: x, Y: y})
	}
	if len(points) < 3 {
		return nil, fmt.Errorf("polygon needs at least 3 vertices, got %d", len(points))
	}
	return points, nil
}

func parsePercent(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("percent %q: %w", s, err)
	}
	return v / 100, nil
}
