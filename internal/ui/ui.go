// Package ui provides the interactive picker surface over the list core:
// a full-screen bubbletea widget for terminals and a plain one-shot filter
// for pipes and CI.
package ui

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Options configures the picker surface.
type Options struct {
	Output     io.Writer
	Input      io.Reader
	ForcePlain bool
	NoColor    bool
	// Prompt is the text shown before the query. Defaults to "> ".
	Prompt string
	// Multi enables multi-select with tab.
	Multi bool
	// InitialQuery pre-fills the filter on startup.
	InitialQuery string
	// Header is an optional title line above the prompt.
	Header string
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithForcePlain forces plain one-shot output.
func WithForcePlain(force bool) Option {
	return func(o *Options) {
		o.ForcePlain = force
	}
}

// WithNoColor disables color output.
func WithNoColor(noColor bool) Option {
	return func(o *Options) {
		o.NoColor = noColor
	}
}

// WithMulti enables multi-select.
func WithMulti(multi bool) Option {
	return func(o *Options) {
		o.Multi = multi
	}
}

// WithInitialQuery pre-fills the filter.
func WithInitialQuery(q string) Option {
	return func(o *Options) {
		o.InitialQuery = q
	}
}

// WithHeader sets the title line above the prompt.
func WithHeader(h string) Option {
	return func(o *Options) {
		o.Header = h
	}
}

// NewOptions creates Options with the given output and options applied.
func NewOptions(output io.Writer, opts ...Option) Options {
	o := Options{
		Output: output,
		Input:  os.Stdin,
		Prompt: "> ",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Interactive reports whether the full-screen widget should be used. Plain
// mode wins for explicit requests, non-TTY outputs, and CI environments.
func Interactive(o Options) bool {
	if o.ForcePlain {
		return false
	}
	if !IsTTY(o.Output) {
		return false
	}
	return !DetectCI()
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// DetectCI checks if running in a CI environment.
func DetectCI() bool {
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "TRAVIS"}
	for _, v := range ciVars {
		if _, exists := os.LookupEnv(v); exists {
			return true
		}
	}
	return false
}
