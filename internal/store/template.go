// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"certpress/internal/layout"
	"certpress/internal/models"
)

// TemplateStore handles all template-related database operations. The
// layout document is stored as a JSONB column and replaced whole on
// every save.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// List returns all templates ordered by name.
func (s *TemplateStore) List() ([]models.Template, error) {
	rows, err := s.db.Query(`
		SELECT id, name, data, created_at, updated_at
		FROM templates
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows.Scan)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// FindByID retrieves a template by its UUID. Returns nil if not found.
func (s *TemplateStore) FindByID(id uuid.UUID) (*models.Template, error) {
	row := s.db.QueryRow(`
		SELECT id, name, data, created_at, updated_at
		FROM templates WHERE id = $1
	`, id)
	t, err := scanTemplate(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// FindByName retrieves a template by its unique name. Returns nil if not found.
func (s *TemplateStore) FindByName(name string) (*models.Template, error) {
	row := s.db.QueryRow(`
		SELECT id, name, data, created_at, updated_at
		FROM templates WHERE name = $1
	`, name)
	t, err := scanTemplate(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by name: %w", err)
	}
	return t, nil
}

// Create inserts a new template. A name collision returns ErrDuplicateName.
func (s *TemplateStore) Create(name string, doc layout.Document) (*models.Template, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	row := s.db.QueryRow(`
		INSERT INTO templates (name, data)
		VALUES ($1, $2)
		RETURNING id, name, data, created_at, updated_at
	`, name, data)
	t, err := scanTemplate(row.Scan)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("create template: %w", err)
	}
	return t, nil
}

// Update replaces a template's name and document. The whole layout is
// written, so the last writer wins. A name collision returns
// ErrDuplicateName; a missing row returns nil, nil.
func (s *TemplateStore) Update(id uuid.UUID, name string, doc layout.Document) (*models.Template, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode layout: %w", err)
	}
	row := s.db.QueryRow(`
		UPDATE templates SET name = $1, data = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING id, name, data, created_at, updated_at
	`, name, data, id)
	t, err := scanTemplate(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("update template: %w", err)
	}
	return t, nil
}

// Delete removes a template by ID. Students registered under it are
// removed by the ON DELETE CASCADE on the foreign key.
func (s *TemplateStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

// Count returns the total number of templates.
func (s *TemplateStore) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM templates`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}

// scanTemplate reads one template row, decoding the JSONB document.
func scanTemplate(scan func(...any) error) (*models.Template, error) {
	t := &models.Template{}
	var data []byte
	if err := scan(&t.ID, &t.Name, &data, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &t.Data); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	return t, nil
}
