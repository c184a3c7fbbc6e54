// Package islet is a component template engine with two execution modes
// over one grammar. The compiler extracts every dynamic expression into an
// ordered table and leaves numeric placeholders in the markup for a browser
// runtime to mount. The renderer evaluates the same templates directly
// against data and produces HTML on the server.
//
// Directives:
//
//	:name="expr"          dynamic attribute, or :if :else-if :else :for :html :bind
//	@event.mods="expr"    event handler (dropped from server output)
//	$name="expr"          boolean attribute
//	{ expr } / {{ expr }} escaped / raw interpolation
//	<slot/>, <slot for="name"/>
package islet

import (
	"log"

	"github.com/livefir/islet/internal/eval"
	"github.com/livefir/islet/internal/metrics"
)

// Scope is the lookup interface expressions resolve names against
type Scope = eval.Scope

// Metrics counts compiles, renders and islands
type Metrics = metrics.Collector

// NewMetrics returns an empty metrics collector for WithMetrics
func NewMetrics() *Metrics {
	return metrics.NewCollector()
}

// Config holds compile and render options
type Config struct {
	Minify  bool     // Minify rendered HTML and compiled modules
	Debug   bool     // Log compile and render activity
	Metrics *Metrics // Optional counters
}

// Option is a functional option for Compile and Render
type Option func(*Config)

// WithMinify minifies rendered HTML and compiled library modules
func WithMinify() Option {
	return func(c *Config) {
		c.Minify = true
	}
}

// WithDebug enables debug logging
func WithDebug(enabled bool) Option {
	return func(c *Config) {
		c.Debug = enabled
	}
}

// WithMetrics records activity in m
func WithMetrics(m *Metrics) Option {
	return func(c *Config) {
		c.Metrics = m
	}
}

func newConfig(opts []Option) *Config {
	config := &Config{}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

func (c *Config) logf(format string, args ...any) {
	if c.Debug {
		log.Printf("islet: "+format, args...)
	}
}
