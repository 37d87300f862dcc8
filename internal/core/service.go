package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mnemo/internal/config"
	"mnemo/internal/db"
	"mnemo/internal/embeddings"
	"mnemo/internal/modelmap"
	"mnemo/internal/models"
	"mnemo/internal/redaction"
	"mnemo/internal/search"
	"mnemo/internal/storage"
)

const (
	// DedupScoreThreshold is the minimum normalized FTS score (0-1) combined
	// with an exact title match required to treat a new store as an update.
	DedupScoreThreshold = 0.7
)

// Option is a functional option for NewService.
type Option func(*Service)

// WithStore injects a custom db.Store implementation, primarily for testing.
func WithStore(s db.Store) Option {
	return func(svc *Service) { svc.db = s }
}

// WithResolver injects a custom model resolver, primarily for testing.
func WithResolver(r *modelmap.Resolver) Option {
	return func(svc *Service) { svc.resolver = r }
}

// Service is the main orchestrator for mnemo operations.
type Service struct {
	mnemoHome      string
	journalDir     string
	dbPath         string
	configPath     string
	ignorePath     string
	config         *config.Config
	db             db.Store
	resolver       *modelmap.Resolver
	compiledIgnore *redaction.CompiledRules // pre-compiled from .mnemoignore

	// Embedding providers are resolved per sector and cached by model name.
	providerMu sync.Mutex
	providers  map[string]embeddings.Provider

	vectorsOnce      sync.Once
	vectorsAvailable bool
}

// NewService creates a new mnemo service. Pass Option values to override
// defaults (e.g., WithStore for testing).
func NewService(mnemoHome string, opts ...Option) (*Service, error) {
	if mnemoHome == "" {
		mnemoHome = config.GetMnemoHome()
	}

	journalDir := filepath.Join(mnemoHome, "journal")
	dbPath := filepath.Join(mnemoHome, "index.db")
	configPath := filepath.Join(mnemoHome, "config.yaml")
	ignorePath := filepath.Join(mnemoHome, ".mnemoignore")

	if err := os.MkdirAll(journalDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	database, err := db.NewDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Missing .mnemoignore is fine; other errors are surfaced.
	ignoreRules, ignoreErr := redaction.LoadIgnoreFile(ignorePath)
	if ignoreErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load .mnemoignore: %v\n", ignoreErr)

		ignoreRules = &redaction.Rules{}
	}

	svc := &Service{
		mnemoHome:      mnemoHome,
		journalDir:     journalDir,
		dbPath:         dbPath,
		configPath:     configPath,
		ignorePath:     ignorePath,
		config:         cfg,
		db:             database,
		resolver:       modelmap.NewResolver(),
		compiledIgnore: ignoreRules.Compile(),
		providers:      make(map[string]embeddings.Provider),
	}

	for _, o := range opts {
		o(svc)
	}

	return svc, nil
}

// Resolver returns the embedding model resolver in use.
func (s *Service) Resolver() *modelmap.Resolver {
	return s.resolver
}

// ResolveModel returns the embedding model name for a sector under the
// configured provider. config.embedding.model, when set, overrides the
// resolved name for every sector.
func (s *Service) ResolveModel(sector string) string {
	if s.config.Embedding.Model != "" {
		return s.config.Embedding.Model
	}
	return s.resolver.Model(sector, s.config.Embedding.Provider)
}

// EmbeddingProviderFor returns the embedding provider for a sector, lazily
// constructing one per resolved model name. Safe for concurrent use.
func (s *Service) EmbeddingProviderFor(sector string) (embeddings.Provider, error) {
	model := s.ResolveModel(sector)

	s.providerMu.Lock()
	defer s.providerMu.Unlock()

	if p, ok := s.providers[model]; ok {
		return p, nil
	}

	p, err := embeddings.NewProvider(s.config.Embedding, model)
	if err != nil {
		return nil, err
	}
	s.providers[model] = p
	return p, nil
}

// VectorsAvailable checks if vector operations are available.
// Safe for concurrent use.
func (s *Service) VectorsAvailable() bool {
	s.vectorsOnce.Do(func() {
		s.vectorsAvailable = s.db.HasVecTable()
	})
	return s.vectorsAvailable
}

// CountMemories returns the total number of stored memories, optionally filtered.
func (s *Service) CountMemories(project *string, sector *string) (int64, error) {
	return s.db.CountMemories(project, sector)
}

// Store stores a memory, writing it to the sector journal and the index.
func (s *Service) Store(raw models.RawMemoryInput, project string) (map[string]interface{}, error) {
	if project == "" {
		project = filepath.Base(getCurrentDir())
	}

	raw.Sector = models.NormalizeSector(raw.Sector)
	today := time.Now().UTC().Format("2006-01-02")
	projectDir := filepath.Join(s.journalDir, project)

	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create project directory: %w", err)
	}

	// Redact all text fields with the sector's pre-compiled patterns.
	ignore := s.compiledIgnore.For(raw.Sector)
	raw.Title = redaction.RedactCompiled(raw.Title, ignore)
	raw.Content = redaction.RedactCompiled(raw.Content, ignore)
	if raw.Details != nil {
		redacted := redaction.RedactCompiled(*raw.Details, ignore)
		raw.Details = &redacted
	}

	// Dedup check: look for a similar existing memory in the same project
	// and sector.
	dedupQuery := fmt.Sprintf("%s %s", raw.Title, raw.Content)
	candidates, err := s.db.FTSSearch(dedupQuery, 5, &project, &raw.Sector)
	if err == nil && len(candidates) > 0 {
		broad, _ := s.db.FTSSearch(dedupQuery, 5, nil, nil)
		maxScore := 0.0
		if len(broad) > 0 {
			maxScore = broad[0].Score
		}

		top := candidates[0]
		normalized := 0.0
		if maxScore > 0 {
			normalized = top.Score / maxScore
		}
		titleMatch := strings.EqualFold(strings.TrimSpace(raw.Title), strings.TrimSpace(top.Title))
		if normalized >= DedupScoreThreshold && titleMatch {
			mergedTags := mergeTags(top.Tags, raw.Tags)

			detailsAppend := ""
			if raw.Details != nil {
				detailsAppend = fmt.Sprintf("--- updated %s ---\n%s", today, *raw.Details)
			}

			if err := s.db.UpdateMemory(top.ID, &raw.Content, mergedTags, &detailsAppend); err != nil {
				return nil, fmt.Errorf("failed to update memory: %w", err)
			}

			return map[string]interface{}{
				"id":        top.ID,
				"file_path": top.FilePath,
				"sector":    raw.Sector,
				"action":    "updated",
			}, nil
		}
	}

	// Normal save path: new memory.
	filePath := filepath.Join(projectDir, raw.Sector, storage.JournalFileName(today))
	mem := models.FromRaw(raw, project, filePath)

	if _, err := storage.WriteJournalEntry(projectDir, mem, today, raw.Details); err != nil {
		return nil, fmt.Errorf("failed to write journal entry: %w", err)
	}

	rowid, err := s.db.InsertMemory(mem, raw.Details)
	if err != nil {
		return nil, fmt.Errorf("failed to insert memory: %w", err)
	}

	// Generate and store embedding with the sector's resolved model.
	// Embedding failures are non-fatal; keyword search still works.
	if provider, err := s.EmbeddingProviderFor(mem.Sector); err == nil {
		embedText := fmt.Sprintf("%s %s %s", mem.Title, mem.Content, strings.Join(mem.Tags, " "))
		if embedding, err := provider.Embed(embedText); err == nil {
			if err := s.db.EnsureVecTable(len(embedding)); err == nil {
				s.db.InsertVector(rowid, embedding)
			}
		}
	}

	return map[string]interface{}{
		"id":        mem.ID,
		"file_path": filePath,
		"sector":    mem.Sector,
		"action":    "created",
	}, nil
}

// Search searches memories using hybrid FTS + vector search.
func (s *Service) Search(query string, limit int, project *string, sector *string, useVectors bool) ([]models.SearchResult, error) {
	if !useVectors || !s.VectorsAvailable() {
		return s.db.FTSSearch(query, limit, project, sector)
	}

	// Query embeddings use the sector's model when a sector filter is given,
	// the fallback sector's model otherwise.
	querySector := modelmap.FallbackSector
	if sector != nil {
		querySector = *sector
	}
	provider, err := s.EmbeddingProviderFor(querySector)
	if err != nil {
		return s.db.FTSSearch(query, limit, project, sector)
	}

	return search.TieredSearch(s.db, provider, query, limit, search.DefaultMinFTSResults, project, sector)
}

// GetContext gets memory pointers for context injection at session start.
func (s *Service) GetContext(limit int, project *string, sector *string, query *string, semanticMode string, topupRecent bool) ([]models.SearchResult, int64, error) {
	total, err := s.db.CountMemories(project, sector)
	if err != nil {
		return nil, 0, err
	}

	var results []models.SearchResult
	if query != nil {
		useVectors := false
		if semanticMode == "always" {
			useVectors = true
		} else if semanticMode == "auto" && s.VectorsAvailable() {
			useVectors = true
		}

		results, err = s.Search(*query, limit, project, sector, useVectors)
		if err != nil {
			return nil, 0, err
		}

		if topupRecent && len(results) < limit {
			recent, err := s.db.ListRecent(limit, project, sector)
			if err == nil {
				seen := make(map[string]bool)
				for _, r := range results {
					seen[r.ID] = true
				}
				for _, r := range recent {
					if !seen[r.ID] {
						results = append(results, r)
						if len(results) >= limit {
							break
						}
					}
				}
			}
		}
	} else {
		results, err = s.db.ListRecent(limit, project, sector)
		if err != nil {
			return nil, 0, err
		}
	}

	return results, total, nil
}

// GetDetails gets the full details body for a memory.
func (s *Service) GetDetails(memoryID string) (*models.MemoryDetail, error) {
	return s.db.GetDetails(memoryID)
}

// Remove removes a memory from the index. The journal entry is kept; the
// journal is an append-only record.
func (s *Service) Remove(memoryID string) (bool, error) {
	return s.db.DeleteMemory(memoryID)
}

// Reindex rebuilds the vector table, re-embedding every memory with its
// sector's currently resolved model. Rows whose model produces a different
// dimension than the probe are skipped.
func (s *Service) Reindex(progressCallback func(current, total int)) (map[string]interface{}, error) {
	probeProvider, err := s.EmbeddingProviderFor(modelmap.FallbackSector)
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding provider: %w", err)
	}

	probe, err := probeProvider.Embed("dimension probe")
	if err != nil {
		return nil, fmt.Errorf("failed to probe embedding dimension: %w", err)
	}
	dim := len(probe)

	s.db.DropVecTable()
	if err := s.db.SetEmbeddingDim(dim); err != nil {
		return nil, err
	}
	if err := s.db.EnsureVecTable(dim); err != nil {
		return nil, err
	}

	rows, err := s.db.ListAllForReindex()
	if err != nil {
		return nil, err
	}
	total := len(rows)

	indexed := 0
	for i, row := range rows {
		provider, err := s.EmbeddingProviderFor(row.Sector)
		if err != nil {
			continue
		}

		embedText := fmt.Sprintf("%s %s %s", row.Title, row.Content, strings.Join(row.Tags, " "))
		embedding, err := provider.Embed(embedText)
		if err != nil || len(embedding) != dim {
			continue
		}

		if err := s.db.InsertVector(row.Rowid, embedding); err == nil {
			indexed++
		}

		if progressCallback != nil {
			progressCallback(i+1, total)
		}
	}

	return map[string]interface{}{
		"count":   total,
		"indexed": indexed,
		"dim":     dim,
	}, nil
}

// Close closes the service and cleans up resources.
func (s *Service) Close() error {
	return s.db.Close()
}

// getCurrentDir returns the current working directory, or "unknown" if it
// cannot be determined. This prevents filepath.Base("") returning "." which
// would silently be stored as a project name.
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}

func mergeTags(existing []string, extra []string) []string {
	combined := make([]string, len(existing))
	copy(combined, existing)
	seen := make(map[string]bool)
	for _, t := range existing {
		seen[strings.ToLower(t)] = true
	}
	for _, tag := range extra {
		if !seen[strings.ToLower(tag)] {
			combined = append(combined, tag)
			seen[strings.ToLower(tag)] = true
		}
	}
	return combined
}
