package layout

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestDocumentJSONRoundTrip verifies that a document survives a
// marshal/unmarshal cycle with no field dropped or defaulted differently,
// including the legacy wire names (idAttribute) and "auto" heights.
func TestDocumentJSONRoundTrip(t *testing.T) {
	z := 5
	doc := Document{
		Items: []Element{
			{
				ID:          "textbox-1",
				Type:        ElementText,
				Text:        "Certificate of Achievement",
				Style:       DefaultTextStyle(),
				X:           100,
				Y:           100,
				Width:       200,
				Height:      AutoDim(),
				Binding:     "name",
				Placeholder: "Enter text",
			},
			{
				ID:     "shape-1",
				Type:   ElementShape,
				Shape:  ShapeStar,
				Style:  Style{Background: "#ffd700", Opacity: 0.8},
				X:      10,
				Y:      20,
				Width:  64,
				Height: Px(64),
				ZIndex: &z,
			},
		},
		CertificateStyle: CanvasStyle{
			Width:           900,
			Height:          650,
			BackgroundColor: "#fffbe9",
			BackgroundImage: "data:image/png;base64,iVBORw0KGgo=",
			Padding:         40,
		},
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Wire format must keep the original field names.
	for _, key := range []string{`"idAttribute":"name"`, `"height":"auto"`, `"certificateStyle"`, `"items"`, `"zIndex":5`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("marshaled document missing %s:\n%s", key, raw)
		}
	}

	var back Document
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	again, err := json.Marshal(back)
	if err != nil {
		t.Fatalf("remarshal: %v", err)
	}
	if string(raw) != string(again) {
		t.Errorf("round trip not stable:\n first: %s\nsecond: %s", raw, again)
	}
}

// TestDimensionUnmarshal accepts numbers, "auto", and numeric strings.
func TestDimensionUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Dimension
	}{
		{name: "number", in: `40`, want: Px(40)},
		{name: "auto", in: `"auto"`, want: AutoDim()},
		{name: "numeric string", in: `"120"`, want: Px(120)},
		{name: "null", in: `null`, want: AutoDim()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Dimension
			if err := json.Unmarshal([]byte(tt.in), &d); err != nil {
				t.Fatalf("unmarshal %q: %v", tt.in, err)
			}
			if d != tt.want {
				t.Errorf("unmarshal %q = %+v, want %+v", tt.in, d, tt.want)
			}
		})
	}

	var d Dimension
	if err := json.Unmarshal([]byte(`"wide"`), &d); err == nil {
		t.Error("unmarshal of non-numeric string succeeded, want error")
	}
}

// TestCanvasStyleResolve pins the shared defaults: 800x600 canvas, legacy
// background promotion, and contain-by-default background sizing.
func TestCanvasStyleResolve(t *testing.T) {
	tests := []struct {
		name string
		in   CanvasStyle
		want CanvasStyle
	}{
		{
			name: "empty gets defaults",
			in:   CanvasStyle{},
			want: CanvasStyle{Width: 800, Height: 600, BackgroundColor: DefaultCanvasBackground},
		},
		{
			name: "legacy background key promoted",
			in:   CanvasStyle{Background: "#abcdef"},
			want: CanvasStyle{Width: 800, Height: 600, Background: "#abcdef", BackgroundColor: "#abcdef"},
		},
		{
			name: "background image defaults to contain",
			in:   CanvasStyle{BackgroundImage: "/assets/bg.png"},
			want: CanvasStyle{
				Width: 800, Height: 600, BackgroundColor: DefaultCanvasBackground,
				BackgroundImage: "/assets/bg.png", BackgroundSize: "contain",
				BackgroundPosition: "center", BackgroundRepeat: "no-repeat",
			},
		},
		{
			name: "authored size honored",
			in:   CanvasStyle{Width: 900, Height: 650, BackgroundColor: "#fff", BackgroundImage: "/bg.png", BackgroundSize: "cover"},
			want: CanvasStyle{
				Width: 900, Height: 650, BackgroundColor: "#fff",
				BackgroundImage: "/bg.png", BackgroundSize: "cover",
				BackgroundPosition: "center", BackgroundRepeat: "no-repeat",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Resolve(); got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestValidate exercises the document boundary checks.
func TestValidate(t *testing.T) {
	valid := Document{
		Items: []Element{
			{ID: "a", Type: ElementText, Style: DefaultTextStyle(), Width: 200, Height: AutoDim()},
			{ID: "b", Type: ElementShape, Shape: ShapeCircle, Width: 50, Height: Px(50)},
		},
		CertificateStyle: CanvasStyle{Width: 800, Height: 600},
	}
	if err := Validate(valid); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Document)
		wantErr string
	}{
		{
			name:    "duplicate ids",
			mutate:  func(d *Document) { d.Items[1].ID = "a" },
			wantErr: "duplicate id",
		},
		{
			name:    "missing id",
			mutate:  func(d *Document) { d.Items[0].ID = "" },
			wantErr: "missing id",
		},
		{
			name:    "unknown type",
			mutate:  func(d *Document) { d.Items[0].Type = "video" },
			wantErr: "unknown type",
		},
		{
			name:    "unknown shape",
			mutate:  func(d *Document) { d.Items[1].Shape = "hexagon" },
			wantErr: "unknown shape",
		},
		{
			name:    "negative canvas",
			mutate:  func(d *Document) { d.CertificateStyle.Width = -1 },
			wantErr: "negative",
		},
		{
			name:    "absurd element width",
			mutate:  func(d *Document) { d.Items[1].Width = 1e12 },
			wantErr: "width out of range",
		},
		{
			name:    "absurd element height",
			mutate:  func(d *Document) { d.Items[1].Height = Px(1e12) },
			wantErr: "height out of range",
		},
		{
			name:    "negative element width",
			mutate:  func(d *Document) { d.Items[1].Width = -10 },
			wantErr: "width out of range",
		},
		{
			name:    "position far off canvas",
			mutate:  func(d *Document) { d.Items[0].X = -1e12 },
			wantErr: "position out of range",
		},
		{
			name:    "javascript background",
			mutate:  func(d *Document) { d.CertificateStyle.BackgroundImage = "javascript:alert(1)" },
			wantErr: "unsupported reference scheme",
		},
		{
			name:    "font size out of range",
			mutate:  func(d *Document) { d.Items[0].Style.FontSize = 500 },
			wantErr: "font size",
		},
		{
			name:    "opacity out of range",
			mutate:  func(d *Document) { d.Items[1].Style.Opacity = 1.5 },
			wantErr: "opacity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := valid.Clone()
			tt.mutate(&doc)
			err := Validate(doc)
			if err == nil {
				t.Fatal("Validate succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
