package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for template and student fields.
const (
	maxTemplateNameLen = 200
	maxStudentNameLen  = 200
	maxStudentNumLen   = 30
	minStudentNumLen   = 4
)

// validateTemplateName checks a template name and returns the first error found.
func validateTemplateName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Template name is required."
	}
	if utf8.RuneCountInString(name) > maxTemplateNameLen {
		return "Template name is too long (max 200 characters)."
	}
	return ""
}

// validateStudent checks student registration inputs and returns the first
// error found. The number is validated on its digit content since spacing
// and country prefixes are normalized away before storage.
func validateStudent(name, number string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Student name is required."
	}
	if utf8.RuneCountInString(name) > maxStudentNameLen {
		return "Student name is too long (max 200 characters)."
	}

	digits := 0
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits == 0 {
		return "Student number is required."
	}
	if digits < minStudentNumLen {
		return "Student number is too short."
	}
	if digits > maxStudentNumLen {
		return "Student number is too long."
	}
	return ""
}
