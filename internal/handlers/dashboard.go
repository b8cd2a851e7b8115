// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"certpress/internal/store"
)

// Dashboard serves the admin dashboard stats.
type Dashboard struct {
	templates *store.TemplateStore
	students  *store.StudentStore
}

// NewDashboard creates the dashboard handler group.
func NewDashboard(templates *store.TemplateStore, students *store.StudentStore) *Dashboard {
	return &Dashboard{templates: templates, students: students}
}

// Stats returns issue totals for the admin overview.
func (h *Dashboard) Stats(w http.ResponseWriter, r *http.Request) {
	templateCount, err := h.templates.Count()
	if err != nil {
		slog.Error("count templates failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load stats.")
		return
	}
	studentCount, err := h.students.Count()
	if err != nil {
		slog.Error("count students failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load stats.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"templates":    templateCount,
		"certificates": studentCount,
	})
}
