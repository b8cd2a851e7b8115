// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"certpress/internal/layout"
	"certpress/internal/models"
)

func templatesRouter(env *testEnv) chi.Router {
	templates := NewTemplates(env.templates, env.exports)
	r := chi.NewRouter()
	r.Route("/api/templates", func(r chi.Router) {
		r.Get("/", templates.List)
		r.Post("/", templates.Create)
		r.Get("/{id}", templates.Get)
		r.Put("/{id}", templates.Update)
		r.Delete("/{id}", templates.Delete)
	})
	return r
}

func flowDocument() layout.Document {
	doc := layout.NewDocument()
	doc.Items = append(doc.Items, layout.Element{
		ID:      "textbox-flow-1",
		Type:    layout.ElementText,
		Text:    "Certificate of Achievement",
		Style:   layout.DefaultTextStyle(),
		X:       100,
		Y:       80,
		Width:   400,
		Height:  layout.AutoDim(),
		Binding: layout.BindingName,
	})
	return doc
}

func TestTemplateCRUDFlow(t *testing.T) {
	env := newTestEnv(t)
	cleanTestTemplates(t, env.db, "Flow Template", "Flow Template Renamed")
	r := templatesRouter(env)

	// Create.
	rec := doJSON(t, r, http.MethodPost, "/api/templates", "", templatePayload{
		Name: "Flow Template",
		Data: flowDocument(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[models.Template](t, rec)
	if created.Name != "Flow Template" || len(created.Data.Items) != 1 {
		t.Fatalf("created = %+v", created)
	}

	// Duplicate name conflicts.
	rec = doJSON(t, r, http.MethodPost, "/api/templates", "", templatePayload{
		Name: "Flow Template",
		Data: flowDocument(),
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create = %d, want 409", rec.Code)
	}

	// Get round-trips the document.
	rec = doJSON(t, r, http.MethodGet, "/api/templates/"+created.ID.String(), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d", rec.Code)
	}
	fetched := decodeBody[models.Template](t, rec)
	if fetched.Data.Items[0].Binding != layout.BindingName {
		t.Error("binding lost in round trip")
	}
	if !fetched.Data.Items[0].Height.Auto {
		t.Error("auto height lost in round trip")
	}

	// Update replaces name and document.
	doc := flowDocument()
	doc.Items[0].Text = "Updated"
	rec = doJSON(t, r, http.MethodPut, "/api/templates/"+created.ID.String(), "", templatePayload{
		Name: "Flow Template Renamed",
		Data: doc,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[models.Template](t, rec)
	if updated.Name != "Flow Template Renamed" || updated.Data.Items[0].Text != "Updated" {
		t.Errorf("updated = %+v", updated)
	}

	// Delete, then 404.
	rec = doJSON(t, r, http.MethodDelete, "/api/templates/"+created.ID.String(), "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodGet, "/api/templates/"+created.ID.String(), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", rec.Code)
	}
}

func TestTemplateCreateRejectsInvalidLayout(t *testing.T) {
	env := newTestEnv(t)
	r := templatesRouter(env)

	doc := flowDocument()
	doc.Items = append(doc.Items, doc.Items[0]) // duplicate element id

	rec := doJSON(t, r, http.MethodPost, "/api/templates", "", templatePayload{
		Name: "Broken Layout",
		Data: doc,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create = %d, want 400", rec.Code)
	}
}

func TestTemplateBadID(t *testing.T) {
	env := newTestEnv(t)
	r := templatesRouter(env)

	rec := doJSON(t, r, http.MethodGet, "/api/templates/not-a-uuid", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("get = %d, want 400", rec.Code)
	}
}
