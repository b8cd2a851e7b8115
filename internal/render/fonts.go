// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
)

// FontLibrary resolves the CSS font-family stacks stored in layout
// documents against a directory of .ttf/.otf files. Loaded families are
// cached per family and style, so repeated renders reuse the parsed
// fonts.
type FontLibrary struct {
	dir string

	mu       sync.Mutex
	files    map[string]string // normalized basename -> path
	order    []string          // scan order, for the fallback pick
	families map[string]*canvas.FontFamily
	fallback *canvas.FontFamily
}

// NewFontLibrary scans dir for font files. The directory may be empty;
// rendering text then fails with a clear error instead of at startup.
func NewFontLibrary(dir string) (*FontLibrary, error) {
	lib := &FontLibrary{
		dir:      dir,
		files:    map[string]string{},
		families: map[string]*canvas.FontFamily{},
	}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttf", ".otf":
		default:
			return nil
		}
		key := normalizeFontName(strings.TrimSuffix(d.Name(), filepath.Ext(d.Name())))
		if _, ok := lib.files[key]; !ok {
			lib.files[key] = path
			lib.order = append(lib.order, key)
		}
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("scan font dir %s: %w", dir, err)
	}
	return lib, nil
}

// Face returns a font face for the given CSS family stack, weight and
// style, sized in canvas units.
func (l *FontLibrary) Face(stack, weight, fontStyle string, size float64, col color.Color, deco ...canvas.FontDecorator) (*canvas.FontFace, error) {
	style := parseFontStyle(weight, fontStyle)
	family, err := l.family(stack, style)
	if err != nil {
		return nil, err
	}
	args := []interface{}{col, style, canvas.FontNormal}
	for _, d := range deco {
		args = append(args, d)
	}
	return family.Face(toPt(size), args...), nil
}

// family walks the stack left to right and returns the first family a
// local font file satisfies, falling back to the first font on disk.
func (l *FontLibrary) family(stack string, style canvas.FontStyle) (*canvas.FontFamily, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := stack + "|" + strconv.Itoa(int(style))
	if fam, ok := l.families[key]; ok {
		return fam, nil
	}
	for _, name := range splitFontStack(stack) {
		path, ok := l.findFile(name, style)
		if !ok {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
		fam := canvas.NewFontFamily(name)
		if err := fam.LoadFont(data, 0, style); err != nil {
			return nil, fmt.Errorf("load font %s: %w", path, err)
		}
		l.families[key] = fam
		return fam, nil
	}

	fam, err := l.fallbackFamily(style)
	if err != nil {
		return nil, err
	}
	l.families[key] = fam
	return fam, nil
}

func (l *FontLibrary) fallbackFamily(style canvas.FontStyle) (*canvas.FontFamily, error) {
	if l.fallback != nil {
		return l.fallback, nil
	}
	if len(l.order) == 0 {
		return nil, fmt.Errorf("no fonts available in %s", l.dir)
	}
	data, err := os.ReadFile(l.files[l.order[0]])
	if err != nil {
		return nil, fmt.Errorf("read fallback font: %w", err)
	}
	fam := canvas.NewFontFamily("fallback")
	if err := fam.LoadFont(data, 0, style); err != nil {
		return nil, fmt.Errorf("load fallback font: %w", err)
	}
	l.fallback = fam
	return fam, nil
}

// findFile locates a font file for family+style. It tries exact
// "<family>-<stylename>" matches first, then the bare family name, then
// any file whose name starts with the family.
func (l *FontLibrary) findFile(family string, style canvas.FontStyle) (string, bool) {
	base := normalizeFontName(family)
	if base == "" {
		return "", false
	}
	for _, suffix := range styleSuffixes(style) {
		if path, ok := l.files[base+suffix]; ok {
			return path, true
		}
	}
	if path, ok := l.files[base]; ok {
		return path, true
	}
	for _, key := range l.order {
		if strings.HasPrefix(key, base) {
			return l.files[key], true
		}
	}
	return "", false
}

// splitFontStack breaks "Montserrat, 'Times New Roman', serif" into
// individual family names, dropping the CSS generic keywords (those are
// served by the fallback font).
func splitFontStack(stack string) []string {
	var out []string
	for _, part := range strings.Split(stack, ",") {
		name := strings.Trim(strings.TrimSpace(part), `'"`)
		if name == "" {
			continue
		}
		switch strings.ToLower(name) {
		case "serif", "sans-serif", "monospace", "cursive", "fantasy", "system-ui":
			continue
		}
		out = append(out, name)
	}
	return out
}

// normalizeFontName lowercases and strips everything but letters and
// digits, so "Times New Roman" matches "TimesNewRoman-Regular.ttf".
func normalizeFontName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// styleSuffixes lists the filename suffixes conventionally used for a
// font style, most specific first.
func styleSuffixes(style canvas.FontStyle) []string {
	italic := style&canvas.FontItalic != 0
	switch style &^ canvas.FontItalic {
	case canvas.FontBlack:
		if italic {
			return []string{"blackitalic", "black"}
		}
		return []string{"black"}
	case canvas.FontExtraBold:
		if italic {
			return []string{"extrabolditalic", "extrabold"}
		}
		return []string{"extrabold"}
	case canvas.FontBold:
		if italic {
			return []string{"bolditalic", "boldoblique", "bold"}
		}
		return []string{"bold"}
	case canvas.FontSemiBold:
		if italic {
			return []string{"semibolditalic", "semibold"}
		}
		return []string{"semibold", "demibold"}
	case canvas.FontMedium:
		if italic {
			return []string{"mediumitalic", "medium"}
		}
		return []string{"medium"}
	case canvas.FontLight:
		if italic {
			return []string{"lightitalic", "light"}
		}
		return []string{"light"}
	default:
		if italic {
			return []string{"italic", "oblique"}
		}
		return []string{"regular"}
	}
}

// parseFontStyle maps CSS font-weight and font-style values onto canvas
// font styles. Weights may be keywords or the numeric scale.
func parseFontStyle(weight, fontStyle string) canvas.FontStyle {
	result := canvas.FontRegular
	w := strings.ToLower(strings.TrimSpace(weight))
	if n, err := strconv.Atoi(w); err == nil {
		switch {
		case n >= 900:
			result = canvas.FontBlack
		case n >= 800:
			result = canvas.FontExtraBold
		case n >= 700:
			result = canvas.FontBold
		case n >= 600:
			result = canvas.FontSemiBold
		case n >= 500:
			result = canvas.FontMedium
		case n > 0 && n <= 300:
			result = canvas.FontLight
		}
	} else {
		switch {
		case strings.Contains(w, "black"):
			result = canvas.FontBlack
		case strings.Contains(w, "extrabold"):
			result = canvas.FontExtraBold
		case strings.Contains(w, "bold"):
			result = canvas.FontBold
		case strings.Contains(w, "semibold"), strings.Contains(w, "demibold"):
			result = canvas.FontSemiBold
		case strings.Contains(w, "medium"):
			result = canvas.FontMedium
		case strings.Contains(w, "light"):
			result = canvas.FontLight
		}
	}
	s := strings.ToLower(strings.TrimSpace(fontStyle))
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}

// Canvas units are document pixels; font faces are sized in points.
const ptPerPx = 72.0 / 25.4

func toPt(px float64) float64 { return px * ptPerPx }
