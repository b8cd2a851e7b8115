package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Student is a certificate recipient registered under a template. The
// phone number is stored both as entered and in normalized form; public
// lookups match on the normalized form only.
type Student struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Number           string    `json:"number"`
	NormalizedNumber string    `json:"-"`
	// LookupHash is the opaque public identifier of the certificate.
	LookupHash string    `json:"hash"`
	TemplateID uuid.UUID `json:"templateId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Fields returns the render-time binding values for this student.
func (s *Student) Fields() map[string]string {
	return map[string]string{"name": s.Name}
}

// NormalizeNumber reduces a Somali phone number to its local significant
// digits: every non-digit is dropped, the 00252/252 country prefix is
// removed, and a single leading trunk zero is stripped. "+252 61 1234567",
// "0611234567" and "611234567" all normalize to "611234567".
func NormalizeNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case strings.HasPrefix(digits, "00252"):
		digits = digits[5:]
	case strings.HasPrefix(digits, "252") && len(digits) > 9:
		digits = digits[3:]
	}
	if strings.HasPrefix(digits, "0") {
		digits = digits[1:]
	}
	return digits
}
