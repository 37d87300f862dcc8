package db

import (
	"errors"

	"mnemo/internal/models"
)

// ErrNotFound is returned when a requested memory does not exist in the database.
var ErrNotFound = errors.New("memory not found")

// ErrDimensionMismatch is returned when the embedding dimension stored in the
// database does not match the dimension returned by the current provider.
// The caller should advise the user to run 'mnemo reindex'.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// ReindexRow carries the fields needed to re-embed one memory.
type ReindexRow struct {
	Rowid   int64
	Title   string
	Content string
	Sector  string
	Tags    []string
}

// Store is the persistence interface for mnemo operations.
// *DB implements this interface; test code can inject a stub.
type Store interface {
	InsertMemory(mem models.Memory, details *string) (int64, error)
	InsertVector(rowid int64, embedding []float32) error
	GetMemory(memoryID string) (*models.Memory, bool, error)
	GetDetails(memoryID string) (*models.MemoryDetail, error)
	UpdateMemory(memoryID string, content *string, tags []string, detailsAppend *string) error
	DeleteMemory(memoryID string) (bool, error)
	FTSSearch(query string, limit int, project *string, sector *string) ([]models.SearchResult, error)
	VectorSearch(queryEmbedding []float32, limit int, project *string, sector *string) ([]models.SearchResult, error)
	ListRecent(limit int, project *string, sector *string) ([]models.SearchResult, error)
	ListAllForReindex() ([]ReindexRow, error)
	CountMemories(project *string, sector *string) (int64, error)
	HasVecTable() bool
	EnsureVecTable(dim int) error
	SetEmbeddingDim(dim int) error
	DropVecTable() error
	Close() error
}
