package internal

import "github.com/halvard/skein/internal/scriptheal"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	mcpStdio  bool
	corrector scriptheal.Corrector
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithMCPStdio makes Run serve MCP over stdio instead of starting the HTTP
// server.
func WithMCPStdio() Option {
	return func(a *application) {
		a.mcpStdio = true
	}
}

// WithCorrector sets the AI collaborator used by the script healing loop.
// Without one, scan findings go straight to warnings.
func WithCorrector(c scriptheal.Corrector) Option {
	return func(a *application) {
		a.corrector = c
	}
}
