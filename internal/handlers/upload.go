// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"certpress/internal/store"
)

// maxSheetSize caps uploaded spreadsheets (10 MB).
const maxSheetSize = 10 << 20

// uploadResult summarizes a bulk roster import.
type uploadResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// Upload imports a student roster from an .xlsx spreadsheet. The form
// carries the workbook as `file` and the target template id as `template`.
// Rows with a header named "name"/"number" are mapped by header; otherwise
// the first two columns are used. Bad rows are skipped, not fatal.
func (h *Students) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSheetSize+1024)
	if err := r.ParseMultipartForm(maxSheetSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10 MB.")
		return
	}

	templateID, err := uuid.Parse(r.FormValue("template"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "A valid template id is required.")
		return
	}
	tpl, err := h.templates.FindByID(templateID)
	if err != nil {
		slog.Error("find template failed", "id", templateID, "error", err)
		writeError(w, http.StatusInternalServerError, "Upload failed.")
		return
	}
	if tpl == nil {
		writeError(w, http.StatusBadRequest, "Unknown template.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "A spreadsheet file is required.")
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".xlsx" {
		writeError(w, http.StatusBadRequest, "Only .xlsx spreadsheets are supported.")
		return
	}

	workbook, err := excelize.OpenReader(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read the spreadsheet.")
		return
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		writeError(w, http.StatusBadRequest, "The spreadsheet has no sheets.")
		return
	}
	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Could not read the spreadsheet.")
		return
	}

	result := importRows(rows, func(name, number string) error {
		_, err := h.students.Create(name, number, templateID)
		return err
	})

	slog.Info("roster imported",
		"template", templateID,
		"created", result.Created,
		"skipped", result.Skipped,
	)
	writeJSON(w, http.StatusOK, result)
}

// importRows walks spreadsheet rows and feeds valid (name, number) pairs
// to create. Kept separate from the HTTP plumbing so it can be tested
// without a workbook fixture.
func importRows(rows [][]string, create func(name, number string) error) uploadResult {
	nameCol, numberCol := 0, 1
	start := 0
	if len(rows) > 0 && headerRow(rows[0]) {
		for i, cell := range rows[0] {
			switch strings.ToLower(strings.TrimSpace(cell)) {
			case "name":
				nameCol = i
			case "number", "phone", "mobile":
				numberCol = i
			}
		}
		start = 1
	}

	var result uploadResult
	for i := start; i < len(rows); i++ {
		row := rows[i]
		name := cellAt(row, nameCol)
		number := cellAt(row, numberCol)
		if name == "" && number == "" {
			continue // blank row
		}

		if msg := validateStudent(name, number); msg != "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", i+1, msg))
			continue
		}

		if err := create(name, number); err != nil {
			result.Skipped++
			if errors.Is(err, store.ErrDuplicateStudent) {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: number already registered", i+1))
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: could not save", i+1))
			}
			continue
		}
		result.Created++
	}
	return result
}

// headerRow reports whether the first row looks like column headers
// rather than data: any cell matching a known header name.
func headerRow(row []string) bool {
	for _, cell := range row {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "name", "number", "phone", "mobile":
			return true
		}
	}
	return false
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
