package layout

import (
	"math"
	"strings"
	"testing"
)

// TestComputeScale verifies the fit-to-container factor for a range of
// container sizes, including that the canvas is never scaled up.
func TestComputeScale(t *testing.T) {
	tests := []struct {
		name                   string
		containerW, containerH float64
		canvasW, canvasH       float64
		want                   float64
	}{
		{name: "container larger than canvas", containerW: 1600, containerH: 1200, canvasW: 800, canvasH: 600, want: 1},
		{name: "exact fit", containerW: 800, containerH: 600, canvasW: 800, canvasH: 600, want: 1},
		{name: "half width constrained", containerW: 400, containerH: 600, canvasW: 800, canvasH: 600, want: 0.5},
		{name: "height constrained", containerW: 800, containerH: 300, canvasW: 800, canvasH: 600, want: 0.5},
		{name: "both constrained takes smaller", containerW: 400, containerH: 150, canvasW: 800, canvasH: 600, want: 0.25},
		{name: "degenerate canvas", containerW: 400, containerH: 300, canvasW: 0, canvasH: 600, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScale(tt.containerW, tt.containerH, tt.canvasW, tt.canvasH)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ComputeScale(%v, %v, %v, %v) = %v, want %v",
					tt.containerW, tt.containerH, tt.canvasW, tt.canvasH, got, tt.want)
			}
		})
	}
}

// TestComputeScalePreservesAspect checks that scaling both dimensions by
// the computed factor keeps the canvas aspect ratio for arbitrary
// container sizes, and that the factor never exceeds 1.
func TestComputeScalePreservesAspect(t *testing.T) {
	canvasW, canvasH := 900.0, 650.0
	for _, cw := range []float64{120, 333, 650, 899, 900, 2000} {
		for _, ch := range []float64{90, 333, 649, 650, 1300} {
			scale := ComputeScale(cw, ch, canvasW, canvasH)
			if scale > 1 {
				t.Fatalf("scale %v exceeds 1 for container %vx%v", scale, cw, ch)
			}
			ratio := (canvasW * scale) / (canvasH * scale)
			if math.Abs(ratio-canvasW/canvasH) > 1e-9 {
				t.Fatalf("aspect ratio not preserved for container %vx%v", cw, ch)
			}
		}
	}
}

// TestAdaptiveFontSize covers the step-down policy for long names.
func TestAdaptiveFontSize(t *testing.T) {
	tests := []struct {
		name string
		text string
		base float64
		want float64
	}{
		{name: "short name unchanged", text: strings.Repeat("a", 10), base: 32, want: 32},
		{name: "boundary 22 unchanged", text: strings.Repeat("a", 22), base: 32, want: 32},
		{name: "length 25 steps down 6", text: strings.Repeat("a", 25), base: 32, want: 26},
		{name: "length 25 hits floor 16", text: strings.Repeat("a", 25), base: 20, want: 16},
		{name: "length 40 steps down 12", text: strings.Repeat("a", 40), base: 32, want: 20},
		{name: "length 40 base 28 gives 16", text: strings.Repeat("a", 40), base: 28, want: 16},
		{name: "length 40 hits floor 12", text: strings.Repeat("a", 40), base: 18, want: 12},
		{name: "boundary 32 uses first step", text: strings.Repeat("a", 32), base: 32, want: 26},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdaptiveFontSize(tt.text, tt.base)
			if got != tt.want {
				t.Errorf("AdaptiveFontSize(len %d, base %v) = %v, want %v",
					len(tt.text), tt.base, got, tt.want)
			}
		})
	}
}
