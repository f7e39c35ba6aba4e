// Package ui embeds the templates and static assets the viewer serves.
package ui

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS
