// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"certpress/internal/cache"
	"certpress/internal/layout"
	"certpress/internal/middleware"
	"certpress/internal/models"
	"certpress/internal/render"
	"certpress/internal/session"
	"certpress/internal/store"
)

// Editor groups the template-editor session handlers. The authoring
// state lives server-side in Valkey; every mutation loads the session,
// applies one layout operation, and writes the session back.
type Editor struct {
	sessions  *session.Store
	templates *store.TemplateStore
	renderer  *render.Renderer
	exports   *cache.ExportCache
}

// NewEditor creates the editor handler group.
func NewEditor(sessions *session.Store, templates *store.TemplateStore, renderer *render.Renderer, exports *cache.ExportCache) *Editor {
	return &Editor{sessions: sessions, templates: templates, renderer: renderer, exports: exports}
}

// editorView is the session representation returned to the admin UI.
type editorView struct {
	SessionID string          `json:"sessionId"`
	Name      string          `json:"name"`
	Document  layout.Document `json:"document"`
	Selected  string          `json:"selected,omitempty"`
	Saved     bool            `json:"saved"`
}

func viewOf(id string, state *session.State) editorView {
	return editorView{
		SessionID: id,
		Name:      state.Name,
		Document:  state.Document,
		Selected:  state.Selected,
		Saved:     state.TemplateID != nil,
	}
}

// Create opens an editing session, either blank or over an existing
// template given as {"templateId": ...}.
func (h *Editor) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token")
		return
	}
	ownerID, err := claims.UserID()
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid token subject.")
		return
	}

	// The body is optional: a blank editor needs no payload.
	var payload struct {
		TemplateID *uuid.UUID `json:"templateId"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&payload); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	state := &session.State{
		Document: layout.NewDocument(),
		OwnerID:  ownerID,
	}
	if payload.TemplateID != nil {
		tpl, err := h.templates.FindByID(*payload.TemplateID)
		if err != nil {
			slog.Error("load template failed", "id", *payload.TemplateID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to load template.")
			return
		}
		if tpl == nil {
			writeError(w, http.StatusNotFound, "Template not found.")
			return
		}
		state.TemplateID = &tpl.ID
		state.Name = tpl.Name
		state.Document = tpl.Data
	}

	id, err := h.sessions.Create(r.Context(), state)
	if err != nil {
		slog.Error("create editor session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to open editor.")
		return
	}

	writeJSON(w, http.StatusCreated, viewOf(id, state))
}

// Get returns the current session state.
func (h *Editor) Get(w http.ResponseWriter, r *http.Request) {
	id, state, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(id, state))
}

// Close discards an editing session.
func (h *Editor) Close(w http.ResponseWriter, r *http.Request) {
	id, _, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if err := h.sessions.Delete(r.Context(), id); err != nil {
		slog.Error("delete editor session failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to close editor.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddElement inserts a new element, either at the default position or at
// a drop point. The drop point is the pointer position plus the canvas
// origin reported by the client (already scroll-adjusted).
func (h *Editor) AddElement(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Type         layout.ElementType `json:"type"`
		Pointer      *layout.Point      `json:"pointer"`
		CanvasOrigin layout.Point       `json:"canvasOrigin"`
	}
	h.mutate(w, r, func(ed *layout.Editor) error {
		var err error
		if payload.Pointer != nil {
			_, err = ed.DropElement(layout.DragPayload{Type: payload.Type}, *payload.Pointer, payload.CanvasOrigin)
		} else {
			_, err = ed.AddElement(payload.Type)
		}
		return err
	}, &payload)
}

// MoveElement repositions an element; coordinates are clamped to the canvas.
func (h *Editor) MoveElement(w http.ResponseWriter, r *http.Request) {
	elementID := chi.URLParam(r, "elementId")
	var payload layout.Point
	h.mutate(w, r, func(ed *layout.Editor) error {
		ed.MoveElement(elementID, payload.X, payload.Y)
		return nil
	}, &payload)
}

// ResizeElement applies a resize gesture's final box.
func (h *Editor) ResizeElement(w http.ResponseWriter, r *http.Request) {
	elementID := chi.URLParam(r, "elementId")
	var payload struct {
		Width  float64          `json:"width"`
		Height layout.Dimension `json:"height"`
		X      float64          `json:"x"`
		Y      float64          `json:"y"`
	}
	h.mutate(w, r, func(ed *layout.Editor) error {
		ed.ResizeElement(elementID, payload.Width, payload.Height, payload.X, payload.Y)
		return nil
	}, &payload)
}

// SetText replaces an element's text content.
func (h *Editor) SetText(w http.ResponseWriter, r *http.Request) {
	elementID := chi.URLParam(r, "elementId")
	var payload struct {
		Text string `json:"text"`
	}
	h.mutate(w, r, func(ed *layout.Editor) error {
		ed.SetElementText(elementID, payload.Text)
		return nil
	}, &payload)
}

// SetStyle updates one style property on an element.
func (h *Editor) SetStyle(w http.ResponseWriter, r *http.Request) {
	elementID := chi.URLParam(r, "elementId")
	var payload struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	h.mutate(w, r, func(ed *layout.Editor) error {
		return ed.SetElementStyle(elementID, payload.Key, payload.Value)
	}, &payload)
}

// SetBinding links an element to a student field (e.g. "name").
func (h *Editor) SetBinding(w http.ResponseWriter, r *http.Request) {
	elementID := chi.URLParam(r, "elementId")
	var payload struct {
		Key string `json:"key"`
	}
	h.mutate(w, r, func(ed *layout.Editor) error {
		ed.SetElementBinding(elementID, payload.Key)
		return nil
	}, &payload)
}

// DeleteElement removes an element and clears the selection if it was
// the selected one.
func (h *Editor) DeleteElement(w http.ResponseWriter, r *http.Request) {
	elementID := chi.URLParam(r, "elementId")
	h.mutate(w, r, func(ed *layout.Editor) error {
		ed.DeleteElement(elementID)
		return nil
	}, nil)
}

// Select marks an element as selected.
func (h *Editor) Select(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ID string `json:"id"`
	}
	h.mutate(w, r, func(ed *layout.Editor) error {
		ed.Select(payload.ID)
		return nil
	}, &payload)
}

// SetCanvas merges partial canvas styling (dimensions, background) into
// the document.
func (h *Editor) SetCanvas(w http.ResponseWriter, r *http.Request) {
	var payload layout.CanvasStyle
	h.mutate(w, r, func(ed *layout.Editor) error {
		return ed.SetCanvasStyle(payload)
	}, &payload)
}

// Save persists the session's document as a template. Saves are
// single-flight per session: a second request while one is running is
// refused instead of issuing a second write.
func (h *Editor) Save(w http.ResponseWriter, r *http.Request) {
	id, state, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		return
	}

	locked, err := h.sessions.AcquireSaveLock(r.Context(), id)
	if err != nil {
		slog.Error("save lock failed", "session", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Save failed.")
		return
	}
	if !locked {
		writeError(w, http.StatusConflict, "A save is already in progress.")
		return
	}
	defer h.sessions.ReleaseSaveLock(r.Context(), id)

	var saved *models.Template
	ed := layout.NewEditorFrom(state.Document, state.Selected)
	err = ed.Save(r.Context(), payload.Name, func(ctx context.Context, name string, doc layout.Document) error {
		var tpl *models.Template
		var err error
		if state.TemplateID != nil {
			tpl, err = h.templates.Update(*state.TemplateID, name, doc)
		}
		if err == nil && tpl == nil {
			// New document, or the template was deleted underneath us.
			tpl, err = h.templates.Create(name, doc)
		}
		if errors.Is(err, store.ErrDuplicateName) {
			return layout.ErrDuplicateName
		}
		if err != nil {
			return err
		}
		saved = tpl
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, layout.ErrNameRequired):
			writeError(w, http.StatusBadRequest, "A template name is required.")
		case errors.Is(err, layout.ErrDuplicateName):
			writeError(w, http.StatusConflict, "A template with this name already exists.")
		case errors.Is(err, layout.ErrSaveInFlight):
			writeError(w, http.StatusConflict, "A save is already in progress.")
		default:
			slog.Error("save template failed", "session", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Save failed.")
		}
		return
	}

	state.TemplateID = &saved.ID
	state.Name = saved.Name
	if err := h.sessions.Update(r.Context(), id, state); err != nil {
		slog.Error("update editor session failed", "session", id, "error", err)
	}

	// Certificates already issued from this template re-render next time.
	h.exports.InvalidateAll(r.Context())

	writeJSON(w, http.StatusOK, saved)
}

// Preview rasterizes the working document to a PNG at editor scale.
func (h *Editor) Preview(w http.ResponseWriter, r *http.Request) {
	_, state, ok := h.loadSession(w, r)
	if !ok {
		return
	}

	png, err := h.renderer.PNG(r.Context(), state.Document, render.Options{})
	if err != nil {
		slog.Error("preview render failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Preview failed.")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

// mutate is the shared load-apply-store cycle behind every editor
// operation. payload may be nil for body-less operations.
func (h *Editor) mutate(w http.ResponseWriter, r *http.Request, op func(*layout.Editor) error, payload any) {
	id, state, ok := h.loadSession(w, r)
	if !ok {
		return
	}
	if payload != nil {
		if err := decodeJSON(w, r, payload); err != nil {
			return
		}
	}

	ed := layout.NewEditorFrom(state.Document, state.Selected)
	if err := op(ed); err != nil {
		if errors.Is(err, layout.ErrUnknownType) {
			writeError(w, http.StatusBadRequest, "Unsupported element type.")
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	state.Document = ed.Document()
	state.Selected = ed.Selected()
	if err := h.sessions.Update(r.Context(), id, state); err != nil {
		slog.Error("update editor session failed", "session", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to store editor state.")
		return
	}

	writeJSON(w, http.StatusOK, viewOf(id, state))
}

// loadSession fetches the session named by {sid} and checks it belongs
// to the authenticated admin. Writes the error response itself.
func (h *Editor) loadSession(w http.ResponseWriter, r *http.Request) (string, *session.State, bool) {
	id := chi.URLParam(r, "sid")
	state, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		slog.Error("load editor session failed", "session", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load editor session.")
		return "", nil, false
	}
	if state == nil {
		writeError(w, http.StatusNotFound, "Editor session not found or expired.")
		return "", nil, false
	}

	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "No token")
		return "", nil, false
	}
	ownerID, err := claims.UserID()
	if err != nil || ownerID != state.OwnerID {
		writeError(w, http.StatusForbidden, "This editor session belongs to another admin.")
		return "", nil, false
	}

	return id, state, true
}
