// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"certpress/internal/models"
)

func studentsRouter(env *testEnv) chi.Router {
	students := NewStudents(env.students, env.templates, env.exports)
	r := chi.NewRouter()
	r.Route("/api/students", func(r chi.Router) {
		r.Get("/", students.List)
		r.Post("/register", students.Register)
		r.Get("/search/{number}", students.Search)
		r.Put("/{id}", students.Update)
		r.Delete("/{id}", students.Delete)
	})
	return r
}

func flowTemplate(t *testing.T, env *testEnv, name string) *models.Template {
	t.Helper()
	cleanTestTemplates(t, env.db, name)
	tpl, err := env.templates.Create(name, flowDocument())
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tpl
}

func TestStudentRegisterAndSearch(t *testing.T) {
	env := newTestEnv(t)
	tpl := flowTemplate(t, env, "Student Flow Template")
	cleanTestStudents(t, env.db, "0611234567")
	r := studentsRouter(env)

	rec := doJSON(t, r, http.MethodPost, "/api/students/register", "", map[string]any{
		"name":       "Amina Hassan",
		"number":     "0611234567",
		"templateId": tpl.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register = %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[models.Student](t, rec)
	if created.LookupHash == "" {
		t.Fatal("student created without lookup hash")
	}

	// Same number in a different spelling is still a duplicate.
	rec = doJSON(t, r, http.MethodPost, "/api/students/register", "", map[string]any{
		"name":       "Amina Again",
		"number":     "+252 61 123 4567",
		"templateId": tpl.ID,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register = %d, want 409", rec.Code)
	}

	// Search resolves any spelling to the same hash.
	rec = doJSON(t, r, http.MethodGet, "/api/students/search/00252611234567", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search = %d: %s", rec.Code, rec.Body.String())
	}
	if hash := decodeBody[map[string]string](t, rec)["hash"]; hash != created.LookupHash {
		t.Errorf("search hash = %q, want %q", hash, created.LookupHash)
	}

	rec = doJSON(t, r, http.MethodGet, "/api/students/search/0619999999", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("search unknown = %d, want 404", rec.Code)
	}
}

func TestStudentRegisterUnknownTemplate(t *testing.T) {
	env := newTestEnv(t)
	r := studentsRouter(env)

	rec := doJSON(t, r, http.MethodPost, "/api/students/register", "", map[string]any{
		"name":       "Amina Hassan",
		"number":     "0611234567",
		"templateId": "4b1f5a1e-0000-0000-0000-000000000000",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("register = %d, want 400", rec.Code)
	}
}

func TestStudentListFilter(t *testing.T) {
	env := newTestEnv(t)
	tplA := flowTemplate(t, env, "List Filter A")
	tplB := flowTemplate(t, env, "List Filter B")
	cleanTestStudents(t, env.db, "0615550001", "0615550002")
	r := studentsRouter(env)

	doJSON(t, r, http.MethodPost, "/api/students/register", "", map[string]any{
		"name": "Amina", "number": "0615550001", "templateId": tplA.ID,
	})
	doJSON(t, r, http.MethodPost, "/api/students/register", "", map[string]any{
		"name": "Yusuf", "number": "0615550002", "templateId": tplB.ID,
	})

	rec := doJSON(t, r, http.MethodGet, "/api/students/?templateId="+tplA.ID.String(), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}
	items := decodeBody[[]models.Student](t, rec)
	for _, st := range items {
		if st.TemplateID != tplA.ID {
			t.Errorf("filter leaked student %s from template %s", st.Name, st.TemplateID)
		}
	}

	rec = doJSON(t, r, http.MethodGet, "/api/students/?templateId=junk", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad filter = %d, want 400", rec.Code)
	}
}

func TestStudentUpdateAndDelete(t *testing.T) {
	env := newTestEnv(t)
	tpl := flowTemplate(t, env, "Update Flow Template")
	cleanTestStudents(t, env.db, "0616660001", "0616660002")
	r := studentsRouter(env)

	rec := doJSON(t, r, http.MethodPost, "/api/students/register", "", map[string]any{
		"name": "Amina", "number": "0616660001", "templateId": tpl.ID,
	})
	created := decodeBody[models.Student](t, rec)

	rec = doJSON(t, r, http.MethodPut, "/api/students/"+created.ID.String(), "", map[string]any{
		"name": "Amina H.", "number": "0616660002", "templateId": tpl.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d: %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[models.Student](t, rec)
	if updated.LookupHash == created.LookupHash {
		t.Error("lookup hash should change when the number changes")
	}

	rec = doJSON(t, r, http.MethodDelete, "/api/students/"+created.ID.String(), "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodDelete, "/api/students/"+created.ID.String(), "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete again = %d, want 404", rec.Code)
	}
}
