// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certpress/internal/cache"
	"certpress/internal/models"
	"certpress/internal/render"
	"certpress/internal/store"
	"certpress/web"
)

// Public serves the student-facing certificate lookup: the JSON API the
// search page calls, the export endpoints, and the HTML pages themselves.
type Public struct {
	students  *store.StudentStore
	templates *store.TemplateStore
	renderer  *render.Renderer
	exports   *cache.ExportCache
	publicURL string
	pages     *template.Template
}

// NewPublic creates the public handler group. publicURL is the site's
// external base URL, embedded in PDF verification QR codes.
func NewPublic(students *store.StudentStore, templates *store.TemplateStore, renderer *render.Renderer, exports *cache.ExportCache, publicURL string) (*Public, error) {
	pages, err := template.ParseFS(web.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse public pages: %w", err)
	}
	return &Public{
		students:  students,
		templates: templates,
		renderer:  renderer,
		exports:   exports,
		publicURL: publicURL,
		pages:     pages,
	}, nil
}

// Search resolves a phone number to a certificate hash. Rate limited at
// the router so the roster cannot be enumerated by dialing numbers.
func (h *Public) Search(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	student, err := h.students.FindByNumber(number)
	if err != nil {
		slog.Error("certificate search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Search failed.")
		return
	}
	if student == nil {
		writeError(w, http.StatusNotFound, "No certificate found for this number.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"hash": student.LookupHash})
}

// Certificate returns the student record and its template document, the
// payload the certificate page renders from.
func (h *Public) Certificate(w http.ResponseWriter, r *http.Request) {
	student, tpl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"student":  student,
		"template": tpl,
	})
}

// Image serves the certificate rendered as a PNG, with the student's
// fields bound into the layout. Exports are cached in Valkey.
func (h *Public) Image(w http.ResponseWriter, r *http.Request) {
	student, tpl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	key := cache.ExportKey(student.LookupHash, "png")
	data, hit := h.exports.Get(r.Context(), key)
	if !hit {
		var err error
		data, err = h.renderer.PNG(r.Context(), tpl.Data, render.Options{
			ReadOnly: true,
			Fields:   student.Fields(),
			Density:  2,
		})
		if err != nil {
			slog.Error("certificate render failed", "hash", student.LookupHash, "error", err)
			writeError(w, http.StatusInternalServerError, "Rendering failed.")
			return
		}
		h.exports.Set(r.Context(), key, data)
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(data)
}

// PDF serves the certificate as a downloadable PDF with a verification
// QR code pointing back at the public page.
func (h *Public) PDF(w http.ResponseWriter, r *http.Request) {
	student, tpl, ok := h.lookup(w, r)
	if !ok {
		return
	}

	key := cache.ExportKey(student.LookupHash, "pdf")
	data, hit := h.exports.Get(r.Context(), key)
	if !hit {
		var err error
		data, err = h.renderer.PDF(r.Context(), tpl.Data, render.Options{
			ReadOnly:  true,
			Fields:    student.Fields(),
			VerifyURL: h.publicURL + "/certificate/" + student.LookupHash,
		})
		if err != nil {
			slog.Error("certificate pdf failed", "hash", student.LookupHash, "error", err)
			writeError(w, http.StatusInternalServerError, "Rendering failed.")
			return
		}
		h.exports.Set(r.Context(), key, data)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="certificate.pdf"`)
	w.Write(data)
}

// HomePage renders the public search page.
func (h *Public) HomePage(w http.ResponseWriter, r *http.Request) {
	h.page(w, "index.html", http.StatusOK, nil)
}

// CertificatePage renders the certificate view page. An unknown hash
// still renders the page shell with a not-found state rather than a
// bare error, so shared links degrade gracefully.
func (h *Public) CertificatePage(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	student, err := h.students.FindByHash(hash)
	if err != nil {
		slog.Error("certificate page lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if student == nil {
		h.page(w, "certificate.html", http.StatusNotFound, map[string]any{"NotFound": true})
		return
	}

	h.page(w, "certificate.html", http.StatusOK, map[string]any{
		"Student":  student,
		"ImageURL": "/api/client/certificate/" + hash + "/image",
		"PDFURL":   "/api/client/certificate/" + hash + "/pdf",
	})
}

// lookup resolves the {hash} parameter to its student and template.
func (h *Public) lookup(w http.ResponseWriter, r *http.Request) (*models.Student, *models.Template, bool) {
	hash := chi.URLParam(r, "hash")

	student, err := h.students.FindByHash(hash)
	if err != nil {
		slog.Error("certificate lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Lookup failed.")
		return nil, nil, false
	}
	if student == nil {
		writeError(w, http.StatusNotFound, "Certificate not found.")
		return nil, nil, false
	}

	tpl, err := h.templates.FindByID(student.TemplateID)
	if err != nil {
		slog.Error("certificate template load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Lookup failed.")
		return nil, nil, false
	}
	if tpl == nil {
		writeError(w, http.StatusNotFound, "Certificate template no longer exists.")
		return nil, nil, false
	}

	return student, tpl, true
}

func (h *Public) page(w http.ResponseWriter, name string, status int, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.pages.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("render page failed", "page", name, "error", err)
	}
}
