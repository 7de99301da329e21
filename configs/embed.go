// Package configs provides the embedded configuration template for bigpick.
//
// The template is embedded at build time using Go's //go:embed directive so
// it ships with every distribution. `bigpick config init` writes it to
// ~/.config/bigpick/config.yaml; `bigpick config example` prints it.
//
// Configuration hierarchy (see internal/config/config.go Load()):
//  1. Hardcoded defaults (internal/config/config.go Default())
//  2. Config file (--config or ~/.config/bigpick/config.yaml)
//  3. Environment variables (BIGPICK_*)
//
// To modify the template, edit config.example.yaml and rebuild.
package configs

import _ "embed"

// ConfigTemplate is the annotated example configuration.
//
//go:embed config.example.yaml
var ConfigTemplate string
