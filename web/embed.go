// Package web provides the embedded public pages and static assets for
// the certificate lookup site. Everything ships inside the binary; there
// is no on-disk template directory to deploy.
package web

import "embed"

// TemplatesFS embeds the public HTML pages (search and certificate view).
//
//go:embed all:templates
var TemplatesFS embed.FS

// StaticFS embeds the web/static/ directory tree served at /static/.
//
//go:embed all:static
var StaticFS embed.FS
