// Package modelmap resolves which embedding model to use for a given
// memory sector and embedding provider. The mapping comes from an optional
// models.yml file discovered at well-known locations; when no usable file
// exists the compiled-in defaults apply. Resolution never fails: a sector
// without its own entry falls back to the semantic sector, and a provider
// missing everywhere falls back to a fixed model name.
package modelmap

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Mapping is the resolved configuration: sector name -> provider name ->
// embedding model name.
type Mapping map[string]map[string]string

const (
	// FallbackSector is consulted for any sector/provider pair absent from
	// its own section.
	FallbackSector = "semantic"

	// FallbackModel is returned when neither the requested sector nor the
	// fallback sector has an entry for the provider.
	FallbackModel = "nomic-embed-text"
)

// ProviderConfig is a declared extension point for per-provider settings
// (credentials, endpoints, timeouts). Nothing populates it yet; model-name
// resolution is independent of it.
type ProviderConfig struct {
	Options map[string]string
}

// Option is a functional option for NewResolver.
type Option func(*Resolver)

// WithLogger overrides the diagnostic logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// WithSearchPaths replaces the default candidate path list, primarily for
// tests that point the resolver at a fixture file.
func WithSearchPaths(paths ...string) Option {
	return func(r *Resolver) {
		r.locate = func() (string, bool) { return Locate(paths) }
	}
}

// WithLocateFunc injects a custom locate step. Tests use this to count how
// often the filesystem is actually consulted.
func WithLocateFunc(fn func() (string, bool)) Option {
	return func(r *Resolver) { r.locate = fn }
}

// Resolver answers model-name lookups against a mapping loaded at most once
// per Resolver lifetime. Construct one at startup and share it; there is no
// hot reload.
type Resolver struct {
	log    zerolog.Logger
	locate func() (string, bool)

	once    sync.Once
	mapping Mapping
}

// NewResolver creates a Resolver. Pass Option values to override the logger
// or the file search behavior.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		log:    zerolog.New(os.Stderr).With().Timestamp().Logger(),
		locate: func() (string, bool) { return Locate(SearchPaths()) },
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

// Load returns the active model mapping. The first call locates and parses
// models.yml (or falls back to the defaults); every later call returns the
// cached result without touching the filesystem.
//
// Callers must treat the returned Mapping as read-only: it is shared by all
// subsequent resolutions through this Resolver.
func (r *Resolver) Load() Mapping {
	r.once.Do(r.load)
	return r.mapping
}

// load populates the cache cell exactly once. Any failure replaces the whole
// result with the defaults table; a partially parsed mapping is never kept.
func (r *Resolver) load() {
	path, ok := r.locate()
	if !ok {
		r.mapping = DefaultModels()
		r.log.Warn().Msg("models.yml not found, using built-in embedding model defaults")

		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		r.mapping = DefaultModels()
		r.log.Error().Err(err).Str("path", path).Msg("failed to read models.yml, using built-in embedding model defaults")

		return
	}

	parsed := Parse(string(data))
	if len(parsed) == 0 {
		// File exists but yielded no sections: nothing usable in it.
		r.mapping = DefaultModels()
		r.log.Error().Str("path", path).Msg("models.yml contains no sections, using built-in embedding model defaults")

		return
	}

	r.mapping = parsed
	r.log.Info().Str("path", path).Int("sectors", len(parsed)).Msg("loaded embedding model mapping")
}

// Model resolves the embedding model name for a sector/provider pair.
// Lookup order: the sector's own section, then the semantic section, then
// FallbackModel. It always returns a usable model name.
func (r *Resolver) Model(sector, provider string) string {
	mapping := r.Load()

	if model, ok := mapping[sector][provider]; ok {
		return model
	}

	if model, ok := mapping[FallbackSector][provider]; ok {
		return model
	}

	return FallbackModel
}

// ProviderConfig returns per-provider settings. Currently always empty;
// future credentials or endpoint configuration would resolve here without
// changing the Model contract.
func (r *Resolver) ProviderConfig(_ string) ProviderConfig {
	return ProviderConfig{}
}
