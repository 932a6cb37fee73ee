// Package embedded ships the current-law policy defaults and growth factor
// tables compiled into the binary, so a parameter set can be constructed
// with no filesystem access.
package embedded

import (
	"embed"
)

// FS embeds the policy defaults and grow factor yaml files at build time.
//
//go:embed policy/*
var FS embed.FS
