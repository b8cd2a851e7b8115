// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"

	"certpress/internal/models"
)

// StudentStore handles all student-related database operations. Lookup
// hashes are derived with an HMAC keyed by a server secret, so the
// public certificate URLs cannot be enumerated from phone numbers.
type StudentStore struct {
	db         *sql.DB
	hashSecret []byte
}

// NewStudentStore creates a new StudentStore with the given database
// connection and lookup-hash secret.
func NewStudentStore(db *sql.DB, hashSecret []byte) *StudentStore {
	return &StudentStore{db: db, hashSecret: hashSecret}
}

// LookupHash derives the public certificate identifier for a student:
// an HMAC-SHA256 over the template id and the normalized number. The
// same student registered under two templates gets two distinct hashes.
func (s *StudentStore) LookupHash(templateID uuid.UUID, normalized string) string {
	mac := hmac.New(sha256.New, s.hashSecret)
	mac.Write([]byte(templateID.String()))
	mac.Write([]byte(":"))
	mac.Write([]byte(normalized))
	return hex.EncodeToString(mac.Sum(nil))
}

// List returns all students, newest first. When templateID is non-nil
// only students registered under that template are returned.
func (s *StudentStore) List(templateID *uuid.UUID) ([]models.Student, error) {
	query := `
		SELECT id, name, number, normalized_number, lookup_hash, template_id, created_at, updated_at
		FROM students
	`
	args := []any{}
	if templateID != nil {
		query += ` WHERE template_id = $1`
		args = append(args, *templateID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		var st models.Student
		if err := rows.Scan(
			&st.ID, &st.Name, &st.Number, &st.NormalizedNumber, &st.LookupHash,
			&st.TemplateID, &st.CreatedAt, &st.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// Create registers a student under a template, deriving the normalized
// number and lookup hash. Registering the same number under the same
// template twice is a conflict.
func (s *StudentStore) Create(name, number string, templateID uuid.UUID) (*models.Student, error) {
	normalized := models.NormalizeNumber(number)
	st := &models.Student{}
	err := s.db.QueryRow(`
		INSERT INTO students (name, number, normalized_number, lookup_hash, template_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, number, normalized_number, lookup_hash, template_id, created_at, updated_at
	`, name, number, normalized, s.LookupHash(templateID, normalized), templateID).Scan(
		&st.ID, &st.Name, &st.Number, &st.NormalizedNumber, &st.LookupHash,
		&st.TemplateID, &st.CreatedAt, &st.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("student %s: %w", number, ErrDuplicateStudent)
		}
		return nil, fmt.Errorf("create student: %w", err)
	}
	return st, nil
}

// Update changes a student's name, number, or template, re-deriving the
// normalized number and lookup hash. Returns nil, nil when the student
// does not exist.
func (s *StudentStore) Update(id uuid.UUID, name, number string, templateID uuid.UUID) (*models.Student, error) {
	normalized := models.NormalizeNumber(number)
	st := &models.Student{}
	err := s.db.QueryRow(`
		UPDATE students SET
			name = $1, number = $2, normalized_number = $3, lookup_hash = $4,
			template_id = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING id, name, number, normalized_number, lookup_hash, template_id, created_at, updated_at
	`, name, number, normalized, s.LookupHash(templateID, normalized), templateID, id).Scan(
		&st.ID, &st.Name, &st.Number, &st.NormalizedNumber, &st.LookupHash,
		&st.TemplateID, &st.CreatedAt, &st.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("student %s: %w", number, ErrDuplicateStudent)
		}
		return nil, fmt.Errorf("update student: %w", err)
	}
	return st, nil
}

// FindByID retrieves a student by primary key. Returns nil if not found.
func (s *StudentStore) FindByID(id uuid.UUID) (*models.Student, error) {
	st := &models.Student{}
	err := s.db.QueryRow(`
		SELECT id, name, number, normalized_number, lookup_hash, template_id, created_at, updated_at
		FROM students WHERE id = $1
	`, id).Scan(
		&st.ID, &st.Name, &st.Number, &st.NormalizedNumber, &st.LookupHash,
		&st.TemplateID, &st.CreatedAt, &st.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	return st, nil
}

// Delete removes a student by ID.
func (s *StudentStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// FindByNumber finds the most recent registration for a phone number.
// The number is normalized and matched exactly; when the same number is
// registered under several templates, the newest registration wins.
// Returns nil if not found.
func (s *StudentStore) FindByNumber(number string) (*models.Student, error) {
	st := &models.Student{}
	err := s.db.QueryRow(`
		SELECT id, name, number, normalized_number, lookup_hash, template_id, created_at, updated_at
		FROM students WHERE normalized_number = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, models.NormalizeNumber(number)).Scan(
		&st.ID, &st.Name, &st.Number, &st.NormalizedNumber, &st.LookupHash,
		&st.TemplateID, &st.CreatedAt, &st.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find student by number: %w", err)
	}
	return st, nil
}

// FindByHash retrieves a student by their public lookup hash. Returns
// nil if not found.
func (s *StudentStore) FindByHash(hash string) (*models.Student, error) {
	st := &models.Student{}
	err := s.db.QueryRow(`
		SELECT id, name, number, normalized_number, lookup_hash, template_id, created_at, updated_at
		FROM students WHERE lookup_hash = $1
	`, hash).Scan(
		&st.ID, &st.Name, &st.Number, &st.NormalizedNumber, &st.LookupHash,
		&st.TemplateID, &st.CreatedAt, &st.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find student by hash: %w", err)
	}
	return st, nil
}

// Count returns the total number of students.
func (s *StudentStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM students`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}
