// Package main provides the entry point for the taxparams CLI tool.
package main

import "github.com/pslmodels/taxparams/cmd/taxparams/cmd"

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
