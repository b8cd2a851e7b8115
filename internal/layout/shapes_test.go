package layout

import "testing"

// TestClipPathLiterals pins the polygon coordinate strings byte for byte;
// the vertex sets are visually load-bearing.
func TestClipPathLiterals(t *testing.T) {
	tests := []struct {
		name  string
		shape ShapeKind
		want  string
	}{
		{name: "triangle", shape: ShapeTriangle, want: "polygon(50% 0%, 0% 100%, 100% 100%)"},
		{name: "diamond", shape: ShapeDiamond, want: "polygon(50% 0%, 100% 50%, 50% 100%, 0% 50%)"},
		{name: "star", shape: ShapeStar, want: "polygon(50% 0%, 61% 35%, 98% 35%, 68% 57%, 79% 91%, 50% 70%, 21% 91%, 32% 57%, 2% 35%, 39% 35%)"},
		{name: "circle has no clip", shape: ShapeCircle, want: ""},
		{name: "rectangle has no clip", shape: ShapeRectangle, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClipPath(tt.shape); got != tt.want {
				t.Errorf("ClipPath(%q) = %q, want %q", tt.shape, got, tt.want)
			}
		})
	}
}

// TestParseClipPath checks vertex parsing into unit coordinates.
func TestParseClipPath(t *testing.T) {
	points, err := ParseClipPath(TriangleClipPath)
	if err != nil {
		t.Fatalf("ParseClipPath: %v", err)
	}
	want := []PolygonPoint{{0.5, 0}, {0, 1}, {1, 1}}
	if len(points) != len(want) {
		t.Fatalf("got %d points, want %d", len(points), len(want))
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, points[i], want[i])
		}
	}

	star, err := ParseClipPath(StarClipPath)
	if err != nil {
		t.Fatalf("ParseClipPath(star): %v", err)
	}
	if len(star) != 10 {
		t.Errorf("star has %d vertices, want 10", len(star))
	}
}

// TestParseClipPathRejectsMalformed ensures non-polygon input errors.
func TestParseClipPathRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"", "circle(50%)", "polygon(50% 0%)", "polygon(50%, 0%)"} {
		if _, err := ParseClipPath(bad); err == nil {
			t.Errorf("ParseClipPath(%q) succeeded, want error", bad)
		}
	}
}
