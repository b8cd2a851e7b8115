// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"testing"

	"certpress/internal/models"
)

// helperTemplate creates a template to register students under.
func helperTemplate(t *testing.T, db *sql.DB, name string) *models.Template {
	t.Helper()
	tmpl, err := NewTemplateStore(db).Create(name, testDocument())
	if err != nil {
		t.Fatalf("create helper template: %v", err)
	}
	t.Cleanup(func() { cleanTemplates(t, db, name) })
	return tmpl
}

func TestStudentStoreCreateAndLookup(t *testing.T) {
	db := testDB(t)
	s := NewStudentStore(db, testHashSecret)
	tmpl := helperTemplate(t, db, "student-test-template")
	number := "+252 61 9990001"
	t.Cleanup(func() { cleanStudents(t, db, number) })

	created, err := s.Create("Amina Hassan", number, tmpl.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.NormalizedNumber != "619990001" {
		t.Errorf("normalized number = %q", created.NormalizedNumber)
	}
	if created.LookupHash != s.LookupHash(tmpl.ID, "619990001") {
		t.Error("lookup hash not derived from template and normalized number")
	}

	// Any spelling of the same number resolves the registration.
	for _, variant := range []string{"0619990001", "619990001", "+252619990001", "00252 61 999 0001"} {
		found, err := s.FindByNumber(variant)
		if err != nil {
			t.Fatalf("FindByNumber(%q): %v", variant, err)
		}
		if found == nil || found.ID != created.ID {
			t.Errorf("FindByNumber(%q) = %+v, want student %s", variant, found, created.ID)
		}
	}

	byHash, err := s.FindByHash(created.LookupHash)
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if byHash == nil || byHash.ID != created.ID {
		t.Errorf("FindByHash = %+v", byHash)
	}

	if miss, err := s.FindByNumber("615550000"); err != nil || miss != nil {
		t.Errorf("unknown number: %+v, %v", miss, err)
	}
}

func TestStudentStoreDuplicate(t *testing.T) {
	db := testDB(t)
	s := NewStudentStore(db, testHashSecret)
	tmpl := helperTemplate(t, db, "student-test-dup-template")
	number := "0619990002"
	t.Cleanup(func() { cleanStudents(t, db, number, "+252619990002") })

	if _, err := s.Create("First", number, tmpl.ID); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Same number in a different spelling is still the same registration.
	_, err := s.Create("Second", "+252619990002", tmpl.ID)
	if !errors.Is(err, ErrDuplicateStudent) {
		t.Errorf("duplicate create error = %v, want ErrDuplicateStudent", err)
	}
}

func TestStudentStoreMostRecentWins(t *testing.T) {
	db := testDB(t)
	s := NewStudentStore(db, testHashSecret)
	first := helperTemplate(t, db, "student-test-recent-a")
	second := helperTemplate(t, db, "student-test-recent-b")
	number := "0619990003"
	t.Cleanup(func() { cleanStudents(t, db, number) })

	if _, err := s.Create("Amina", number, first.ID); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	latest, err := s.Create("Amina", number, second.ID)
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	found, err := s.FindByNumber(number)
	if err != nil {
		t.Fatalf("FindByNumber: %v", err)
	}
	if found == nil || found.ID != latest.ID {
		t.Errorf("FindByNumber returned %+v, want newest registration %s", found, latest.ID)
	}
}

func TestStudentStoreUpdateRederivesHash(t *testing.T) {
	db := testDB(t)
	s := NewStudentStore(db, testHashSecret)
	tmpl := helperTemplate(t, db, "student-test-upd-template")
	t.Cleanup(func() { cleanStudents(t, db, "0619990004", "0619990005") })

	created, err := s.Create("Amina", "0619990004", tmpl.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	updated, err := s.Update(created.ID, "Amina Hassan", "0619990005", tmpl.ID)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated == nil {
		t.Fatal("update of existing student returned nil")
	}
	if updated.NormalizedNumber != "619990005" {
		t.Errorf("normalized number = %q", updated.NormalizedNumber)
	}
	if updated.LookupHash == created.LookupHash {
		t.Error("lookup hash unchanged after number change")
	}

	if old, err := s.FindByHash(created.LookupHash); err != nil || old != nil {
		t.Errorf("old hash still resolves: %+v, %v", old, err)
	}
}

func TestStudentStoreListByTemplate(t *testing.T) {
	db := testDB(t)
	s := NewStudentStore(db, testHashSecret)
	mine := helperTemplate(t, db, "student-test-list-a")
	other := helperTemplate(t, db, "student-test-list-b")
	t.Cleanup(func() { cleanStudents(t, db, "0619990006", "0619990007") })

	if _, err := s.Create("Mine", "0619990006", mine.ID); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create("Other", "0619990007", other.ID); err != nil {
		t.Fatalf("Create: %v", err)
	}

	listed, err := s.List(&mine.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, st := range listed {
		if st.TemplateID != mine.ID {
			t.Errorf("student %s from another template in filtered list", st.ID)
		}
	}
}
