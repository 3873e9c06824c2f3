package report

import "embed"

// templates contains the embedded markdown and HTML report templates.
//
//go:embed templates/*
var templates embed.FS
