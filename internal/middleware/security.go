// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders adds security headers to every response. Certificate pages
// are shared as public links, so MIME sniffing and framing are locked down
// while same-origin embedding (the certificate image on its own page) stays
// allowed.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Never MIME-sniff exported PNG/PDF responses.
		h.Set("X-Content-Type-Options", "nosniff")

		// Same-origin framing only.
		h.Set("X-Frame-Options", "SAMEORIGIN")

		// The legacy XSS filter is off; it causes more problems than it solves.
		h.Set("X-XSS-Protection", "0")

		// Control what information is sent in the Referer header.
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")

		// Opt out of FLoC cohort calculations.
		h.Set("Permissions-Policy", "interest-cohort=()")

		next.ServeHTTP(w, r)
	})
}
