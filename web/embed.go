// Package web embeds the page templates and static assets.
package web

import "embed"

// FS holds the embedded templates and static files.
//
//go:embed templates static
var FS embed.FS
