package web

import "embed"

// Content holds the embedded landing page, report template and stylesheet.
//
//go:embed index.html templates/check-visibility.html static/style.css
var Content embed.FS
