// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"

	"certpress/internal/layout"
)

// Template is a named certificate layout. Data holds the full layout
// document; saves replace it whole, so the newest write wins.
type Template struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Data      layout.Document `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
