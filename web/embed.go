// Package web bundles the server-rendered UI.
package web

import "embed"

// Templates holds the layouts, partials and pages parsed by the view engine.
//
//go:embed templates/**/*.html
var Templates embed.FS

// Static holds the stylesheet and the location cascade script served under
// /static/.
//
//go:embed static/**/*
var Static embed.FS
