// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Conflict sentinels. Handlers map these to 409 responses with a
// distinguished message instead of a generic save failure.
var (
	ErrDuplicateName    = errors.New("duplicate template name")
	ErrDuplicateEmail   = errors.New("duplicate email")
	ErrDuplicateStudent = errors.New("duplicate registration")
)

// isUniqueViolation reports whether the error is a Postgres unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
