// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"certpress/internal/models"
)

func publicRouter(t *testing.T, env *testEnv) chi.Router {
	t.Helper()
	public, err := NewPublic(env.students, env.templates, env.renderer, env.exports, env.cfg.PublicURL)
	if err != nil {
		t.Fatalf("NewPublic: %v", err)
	}
	r := chi.NewRouter()
	r.Route("/api/client/certificate", func(r chi.Router) {
		r.Get("/search/{number}", public.Search)
		r.Get("/{hash}", public.Certificate)
	})
	r.Get("/", public.HomePage)
	r.Get("/certificate/{hash}", public.CertificatePage)
	return r
}

func TestPublicCertificateLookup(t *testing.T) {
	env := newTestEnv(t)
	tpl := flowTemplate(t, env, "Public Flow Template")
	cleanTestStudents(t, env.db, "0618880001")
	r := publicRouter(t, env)

	student, err := env.students.Create("Amina Hassan", "0618880001", tpl.ID)
	if err != nil {
		t.Fatalf("create student: %v", err)
	}

	// Search resolves the number to the hash.
	rec := doJSON(t, r, http.MethodGet, "/api/client/certificate/search/0618880001", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search = %d: %s", rec.Code, rec.Body.String())
	}
	if hash := decodeBody[map[string]string](t, rec)["hash"]; hash != student.LookupHash {
		t.Errorf("hash = %q, want %q", hash, student.LookupHash)
	}

	// The certificate payload bundles student and template.
	rec = doJSON(t, r, http.MethodGet, "/api/client/certificate/"+student.LookupHash, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("certificate = %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Student  models.Student  `json:"student"`
		Template models.Template `json:"template"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Student.Name != "Amina Hassan" {
		t.Errorf("student = %+v", payload.Student)
	}
	if payload.Template.ID != tpl.ID || len(payload.Template.Data.Items) != 1 {
		t.Errorf("template = %+v", payload.Template)
	}
	if strings.Contains(rec.Body.String(), "normalized") {
		t.Error("normalized number should not appear in public payloads")
	}

	// Unknown identifiers are 404s.
	if rec := doJSON(t, r, http.MethodGet, "/api/client/certificate/search/0619990000", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown search = %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodGet, "/api/client/certificate/deadbeef", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown hash = %d", rec.Code)
	}
}

func TestPublicPages(t *testing.T) {
	env := newTestEnv(t)
	tpl := flowTemplate(t, env, "Public Page Template")
	cleanTestStudents(t, env.db, "0618880002")
	r := publicRouter(t, env)

	student, err := env.students.Create("Yusuf Ali", "0618880002", tpl.ID)
	if err != nil {
		t.Fatalf("create student: %v", err)
	}

	rec := doJSON(t, r, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("home = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "search-form") {
		t.Error("home page missing search form")
	}

	rec = doJSON(t, r, http.MethodGet, "/certificate/"+student.LookupHash, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("certificate page = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Yusuf Ali") {
		t.Error("certificate page missing student name")
	}
	if !strings.Contains(body, student.LookupHash+"/pdf") {
		t.Error("certificate page missing PDF link")
	}

	rec = doJSON(t, r, http.MethodGet, "/certificate/unknownhash", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown certificate page = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not found") {
		t.Error("not-found page should render the shell")
	}
}
