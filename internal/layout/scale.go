// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package layout

import "unicode/utf8"

// ComputeScale returns the factor that fits a canvas into a container
// while preserving aspect ratio. The canvas is only ever scaled down —
// the factor never exceeds 1.
func ComputeScale(containerW, containerH, canvasW, canvasH float64) float64 {
	if canvasW <= 0 || canvasH <= 0 || containerW <= 0 || containerH <= 0 {
		return 1
	}
	scale := containerW / canvasW
	if h := containerH / canvasH; h < scale {
		scale = h
	}
	if scale > 1 {
		return 1
	}
	return scale
}

// Thresholds and floors for the bound-name font step-down. Names are
// free-form length and must not overflow their box.
const (
	adaptiveLongLen   = 22
	adaptiveLongerLen = 32
	adaptiveLongStep  = 6
	adaptiveLongFloor = 16.0

	adaptiveLongerStep  = 12
	adaptiveLongerFloor = 12.0
)

// AdaptiveFontSize applies the linear step-down policy for the bound name
// field: length > 32 runes shrinks the base by 12 (floor 12); length > 22
// shrinks it by 6 (floor 16); shorter text is unchanged.
func AdaptiveFontSize(text string, base float64) float64 {
	n := utf8.RuneCountInString(text)
	switch {
	case n > adaptiveLongerLen:
		if s := base - adaptiveLongerStep; s > adaptiveLongerFloor {
			return s
		}
		return adaptiveLongerFloor
	case n > adaptiveLongLen:
		if s := base - adaptiveLongStep; s > adaptiveLongFloor {
			return s
		}
		return adaptiveLongFloor
	}
	return base
}
