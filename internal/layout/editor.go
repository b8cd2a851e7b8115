// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package layout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"dario.cat/mergo"
	"github.com/google/uuid"
)

// Save failure taxonomy. Callers surface these distinctly: validation
// blocks the submit inline, conflicts and auth failures get their own
// messages, anything else is generic.
var (
	ErrNameRequired  = errors.New("template name is required")
	ErrDuplicateName = errors.New("template name must be unique")
	ErrUnauthorized  = errors.New("not authorized")
	ErrSaveInFlight  = errors.New("a save is already in progress")
	ErrUnknownType   = errors.New("unsupported element type")
)

// Defaults for newly created text elements.
const (
	defaultElementX     = 100.0
	defaultElementY     = 100.0
	defaultElementWidth = 200.0
	defaultElementText  = "Text"
)

// newElementID generates a fresh element id. The "textbox-" prefix is
// kept from existing documents; the uuid suffix means two rapid adds can
// never collide.
func newElementID() string {
	return "textbox-" + uuid.NewString()
}

// Point is a position in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DragPayload describes a palette drag dropped onto the canvas.
type DragPayload struct {
	Type ElementType `json:"type"`
}

// SaveFunc persists a named document. Implementations report duplicate
// names as ErrDuplicateName and missing credentials as ErrUnauthorized.
type SaveFunc func(ctx context.Context, name string, doc Document) error

// Editor holds an in-memory document being authored and applies the
// direct-manipulation operations. Mutations follow an immutable-update
// discipline: only the addressed element is replaced, everything else is
// carried over untouched. Selection is transient UI state and is never
// part of the persisted document.
type Editor struct {
	doc      Document
	selected string

	saveMu sync.Mutex // single-flight guard for Save
}

// NewEditor starts with an empty document on the default canvas.
func NewEditor() *Editor {
	return &Editor{doc: NewDocument()}
}

// NewEditorFrom resumes editing over an existing document, e.g. one
// loaded from the backend or from a stored editing session.
func NewEditorFrom(doc Document, selected string) *Editor {
	e := &Editor{doc: doc.Clone(), selected: selected}
	if e.doc.indexOf(selected) < 0 {
		e.selected = ""
	}
	return e
}

// Document returns a deep copy of the current document.
func (e *Editor) Document() Document { return e.doc.Clone() }

// Selected returns the id of the selected element, or "".
func (e *Editor) Selected() string { return e.selected }

// Select marks an element as selected; unknown ids clear the selection.
func (e *Editor) Select(id string) {
	if e.doc.indexOf(id) < 0 {
		e.selected = ""
		return
	}
	e.selected = id
}

// AddElement appends a new element of the given variant at the default
// position and selects it. Only text elements can be authored today.
func (e *Editor) AddElement(t ElementType) (Element, error) {
	return e.insertElement(t, defaultElementX, defaultElementY)
}

// DropElement creates a new element where a palette drag was dropped.
// The drop position is the pointer's screen coordinates minus the canvas
// bounding box origin; the caller must supply an origin that already
// accounts for canvas scroll, not just viewport position.
func (e *Editor) DropElement(payload DragPayload, pointer, canvasOrigin Point) (Element, error) {
	return e.insertElement(payload.Type, pointer.X-canvasOrigin.X, pointer.Y-canvasOrigin.Y)
}

func (e *Editor) insertElement(t ElementType, x, y float64) (Element, error) {
	if t != ElementText {
		return Element{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	el := Element{
		ID:          newElementID(),
		Type:        ElementText,
		Text:        defaultElementText,
		Style:       DefaultTextStyle(),
		X:           x,
		Y:           y,
		Width:       defaultElementWidth,
		Height:      AutoDim(),
		Placeholder: "Enter text",
	}
	e.doc.Items = append(e.doc.Items, el)
	e.selected = el.ID
	return el, nil
}

// MoveElement updates only the element's position, clamped to the canvas.
// A missing id is a silent no-op.
func (e *Editor) MoveElement(id string, x, y float64) {
	i := e.doc.indexOf(id)
	if i < 0 {
		return
	}
	el := e.doc.Items[i]
	el.X, el.Y = e.clamp(x, y, el.Width, el.Height)
	e.doc.Items[i] = el
}

// ResizeElement updates size and position together — resizing from a top
// or left handle shifts the origin. The box is clamped to stay within
// the parent canvas.
func (e *Editor) ResizeElement(id string, width float64, height Dimension, x, y float64) {
	i := e.doc.indexOf(id)
	if i < 0 {
		return
	}
	canvas := e.doc.CertificateStyle.Resolve()
	el := e.doc.Items[i]
	if width < 1 {
		width = 1
	}
	if width > canvas.Width {
		width = canvas.Width
	}
	if !height.Auto {
		if height.Value < 1 {
			height.Value = 1
		}
		if height.Value > canvas.Height {
			height.Value = canvas.Height
		}
	}
	el.Width, el.Height = width, height
	el.X, el.Y = e.clamp(x, y, width, height)
	e.doc.Items[i] = el
}

// clamp keeps a box of the given size inside the resolved canvas.
func (e *Editor) clamp(x, y, w float64, h Dimension) (float64, float64) {
	canvas := e.doc.CertificateStyle.Resolve()
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x+w > canvas.Width {
		x = canvas.Width - w
		if x < 0 {
			x = 0
		}
	}
	if hv := h.Or(0); hv > 0 && y+hv > canvas.Height {
		y = canvas.Height - hv
		if y < 0 {
			y = 0
		}
	}
	return x, y
}

// DeleteElement removes the element entirely (no tombstones) and clears
// the selection when the selected element is deleted.
func (e *Editor) DeleteElement(id string) {
	i := e.doc.indexOf(id)
	if i < 0 {
		return
	}
	e.doc.Items = append(e.doc.Items[:i:i], e.doc.Items[i+1:]...)
	if e.selected == id {
		e.selected = ""
	}
}

// SetElementText replaces the element's text content.
func (e *Editor) SetElementText(id, text string) {
	i := e.doc.indexOf(id)
	if i < 0 {
		return
	}
	el := e.doc.Items[i]
	el.Text = text
	e.doc.Items[i] = el
}

// SetElementStyle mutates a single style property on one element.
func (e *Editor) SetElementStyle(id, key, value string) error {
	i := e.doc.indexOf(id)
	if i < 0 {
		return nil
	}
	el := e.doc.Items[i]
	if err := el.Style.Set(key, value); err != nil {
		return err
	}
	e.doc.Items[i] = el
	return nil
}

// SetElementBinding sets the element's binding key. An empty key makes
// the element static text again.
func (e *Editor) SetElementBinding(id, key string) {
	i := e.doc.indexOf(id)
	if i < 0 {
		return
	}
	el := e.doc.Items[i]
	el.Binding = strings.TrimSpace(key)
	e.doc.Items[i] = el
}

// SetCanvasStyle merges the non-zero fields of partial into the
// certificate style.
func (e *Editor) SetCanvasStyle(partial CanvasStyle) error {
	merged := e.doc.CertificateStyle
	if err := mergo.Merge(&merged, partial, mergo.WithOverride); err != nil {
		return fmt.Errorf("merge canvas style: %w", err)
	}
	e.doc.CertificateStyle = merged
	return nil
}

// Save validates the name and persists the document through fn. Only one
// save may be in flight at a time; a second call while submitting returns
// ErrSaveInFlight without issuing a second write.
func (e *Editor) Save(ctx context.Context, name string, fn SaveFunc) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if !e.saveMu.TryLock() {
		return ErrSaveInFlight
	}
	defer e.saveMu.Unlock()

	if err := Validate(e.doc); err != nil {
		return err
	}
	return fn(ctx, name, e.doc.Clone())
}
