// Package configs provides embedded configuration templates for caselens.
//
// Templates are embedded at build time with go:embed so they ship with
// every build. `caselens config init` writes them out as starting points.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config (~/.config/caselens/config.yaml)
//  3. Project config (.caselens.yaml)
//  4. CASELENS_* environment variables
package configs

import _ "embed"

// UserConfigTemplate is the machine-level configuration template, written
// to ~/.config/caselens/config.yaml by `caselens config init --user`.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the project-level configuration template,
// written to .caselens.yaml by `caselens config init`.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
