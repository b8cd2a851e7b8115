// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"certpress/internal/cache"
	"certpress/internal/layout"
	"certpress/internal/store"
)

// Templates groups the certificate template CRUD handlers.
type Templates struct {
	templates *store.TemplateStore
	exports   *cache.ExportCache
}

// NewTemplates creates the template handler group.
func NewTemplates(templates *store.TemplateStore, exports *cache.ExportCache) *Templates {
	return &Templates{templates: templates, exports: exports}
}

type templatePayload struct {
	Name string          `json:"name"`
	Data layout.Document `json:"data"`
}

// List returns all templates, newest first.
func (h *Templates) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.templates.List()
	if err != nil {
		slog.Error("list templates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load templates.")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get returns a single template with its full layout document.
func (h *Templates) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tpl, err := h.templates.FindByID(id)
	if err != nil {
		slog.Error("find template failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load template.")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// Create stores a new template from a name and layout document.
func (h *Templates) Create(w http.ResponseWriter, r *http.Request) {
	var payload templatePayload
	if err := decodeJSON(w, r, &payload); err != nil {
		return
	}
	if msg := validateTemplateName(payload.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if err := layout.Validate(payload.Data); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid layout: "+err.Error())
		return
	}

	tpl, err := h.templates.Create(strings.TrimSpace(payload.Name), payload.Data)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			writeError(w, http.StatusConflict, "A template with this name already exists.")
			return
		}
		slog.Error("create template failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create template.")
		return
	}

	writeJSON(w, http.StatusCreated, tpl)
}

// Update replaces a template's name and layout document. The whole
// document is swapped; the last writer wins.
func (h *Templates) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var payload templatePayload
	if err := decodeJSON(w, r, &payload); err != nil {
		return
	}
	if msg := validateTemplateName(payload.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if err := layout.Validate(payload.Data); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid layout: "+err.Error())
		return
	}

	tpl, err := h.templates.Update(id, strings.TrimSpace(payload.Name), payload.Data)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			writeError(w, http.StatusConflict, "A template with this name already exists.")
			return
		}
		slog.Error("update template failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update template.")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}

	// Any certificate rendered from this template may now be stale.
	h.exports.InvalidateAll(r.Context())

	writeJSON(w, http.StatusOK, tpl)
}

// Delete removes a template and, through the FK cascade, its students.
func (h *Templates) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.templates.Delete(id); err != nil {
		slog.Error("delete template failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete template.")
		return
	}

	h.exports.InvalidateAll(r.Context())

	w.WriteHeader(http.StatusNoContent)
}
