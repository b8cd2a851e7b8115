// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"certpress/internal/cache"
	"certpress/internal/store"
)

// Students groups the admin student-roster handlers.
type Students struct {
	students  *store.StudentStore
	templates *store.TemplateStore
	exports   *cache.ExportCache
}

// NewStudents creates the student handler group.
func NewStudents(students *store.StudentStore, templates *store.TemplateStore, exports *cache.ExportCache) *Students {
	return &Students{students: students, templates: templates, exports: exports}
}

type studentPayload struct {
	Name       string    `json:"name"`
	Number     string    `json:"number"`
	TemplateID uuid.UUID `json:"templateId"`
}

// List returns registered students, optionally filtered by template.
func (h *Students) List(w http.ResponseWriter, r *http.Request) {
	var templateID *uuid.UUID
	if raw := r.URL.Query().Get("templateId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid templateId.")
			return
		}
		templateID = &id
	}

	items, err := h.students.List(templateID)
	if err != nil {
		slog.Error("list students failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load students.")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Register creates a single student record against a template.
func (h *Students) Register(w http.ResponseWriter, r *http.Request) {
	var payload studentPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		return
	}
	if msg := validateStudent(payload.Name, payload.Number); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tpl, err := h.templates.FindByID(payload.TemplateID)
	if err != nil {
		slog.Error("find template failed", "id", payload.TemplateID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to register student.")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusBadRequest, "Unknown template.")
		return
	}

	student, err := h.students.Create(strings.TrimSpace(payload.Name), payload.Number, payload.TemplateID)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateStudent) {
			writeError(w, http.StatusConflict, "This number is already registered for the template.")
			return
		}
		slog.Error("create student failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to register student.")
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

// Update rewrites a student's name, number and template. The lookup hash
// is re-derived, so previously issued certificate links stop resolving.
func (h *Students) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var payload studentPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		return
	}
	if msg := validateStudent(payload.Name, payload.Number); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	existing, err := h.students.FindByID(id)
	if err != nil {
		slog.Error("find student failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update student.")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Student not found.")
		return
	}

	student, err := h.students.Update(id, strings.TrimSpace(payload.Name), payload.Number, payload.TemplateID)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateStudent) {
			writeError(w, http.StatusConflict, "This number is already registered for the template.")
			return
		}
		slog.Error("update student failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update student.")
		return
	}

	h.exports.InvalidateCertificate(r.Context(), existing.LookupHash)
	if student.LookupHash != existing.LookupHash {
		h.exports.InvalidateCertificate(r.Context(), student.LookupHash)
	}

	writeJSON(w, http.StatusOK, student)
}

// Delete removes a student record and their cached exports.
func (h *Students) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	existing, err := h.students.FindByID(id)
	if err != nil {
		slog.Error("find student failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete student.")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "Student not found.")
		return
	}

	if err := h.students.Delete(id); err != nil {
		slog.Error("delete student failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete student.")
		return
	}

	h.exports.InvalidateCertificate(r.Context(), existing.LookupHash)

	w.WriteHeader(http.StatusNoContent)
}

// Search resolves a student number to its certificate lookup hash. The
// admin UI uses this to preview the public certificate page.
func (h *Students) Search(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	student, err := h.students.FindByNumber(number)
	if err != nil {
		slog.Error("search student failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Search failed.")
		return
	}
	if student == nil {
		writeError(w, http.StatusNotFound, "No certificate found for this number.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"hash": student.LookupHash})
}
