package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	// used to import sqlite vec bindings.
	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mnemo/internal/models"
)

// Compile-time check that *DB satisfies the Store interface.
var _ Store = (*DB)(nil)

// DB wraps the database connection and provides methods for mnemo operations.
type DB struct {
	db *gorm.DB
}

// NewDB creates a new database connection.
func NewDB(dbPath string) (*DB, error) {
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)"

	gormDB, err := gorm.Open(gormlite.Open(dsn), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	db := &DB{db: gormDB}
	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// HasVecTable checks if the vector table exists.
func (d *DB) HasVecTable() bool {
	var count int64

	d.db.Raw(`
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name='memories_vec'
	`).Scan(&count)

	return count > 0
}

// DropVecTable drops the vector table.
func (d *DB) DropVecTable() error {
	return d.db.Exec("DROP TABLE IF EXISTS memories_vec").Error
}

// SetEmbeddingDim stores the embedding dimension in meta table.
func (d *DB) SetEmbeddingDim(dim int) error {
	meta := MetaModel{
		Key:   "embedding_dim",
		Value: strconv.Itoa(dim),
	}

	return d.db.Save(&meta).Error
}

// EnsureVecTable ensures the vector table exists with the correct dimension.
func (d *DB) EnsureVecTable(dim int) error {
	storedDim := d.getEmbeddingDim()
	if storedDim == nil {
		if err := d.SetEmbeddingDim(dim); err != nil {
			return err
		}

		return d.createVecTable(dim)
	}

	if *storedDim != dim {
		return fmt.Errorf("%w: database has %d, provider returned %d. Run 'mnemo reindex' to rebuild", ErrDimensionMismatch, *storedDim, dim)
	}

	// The stored dim can match while the table is gone: reindex drops the
	// table and re-stores the dim before calling this. CREATE IF NOT EXISTS
	// makes the recreate idempotent.
	return d.createVecTable(dim)
}

// InsertMemory inserts a memory into the database using GORM.
func (d *DB) InsertMemory(mem models.Memory, details *string) (int64, error) {
	tagsJSON, err := json.Marshal(mem.Tags)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal tags: %w", err)
	}

	relatedFilesJSON, err := json.Marshal(mem.RelatedFiles)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal related_files: %w", err)
	}

	memModel := MemoryModel{}
	memModel.FromMemory(mem, string(tagsJSON), string(relatedFilesJSON))

	if err := d.db.Create(&memModel).Error; err != nil {
		return 0, err
	}

	// Get rowid
	var rowid int64
	if err := d.db.Raw("SELECT rowid FROM memories WHERE id = ?", mem.ID).Scan(&rowid).Error; err != nil {
		return 0, err
	}

	// Insert details if provided
	if details != nil {
		detailModel := MemoryDetailModel{
			MemoryID: mem.ID,
			Body:     *details,
		}
		if err := d.db.Create(&detailModel).Error; err != nil {
			return 0, err
		}
	}

	return rowid, nil
}

// InsertVector inserts an embedding vector for a memory.
func (d *DB) InsertVector(rowid int64, embedding []float32) error {
	if !d.HasVecTable() {
		return nil
	}

	embeddingBytes, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	return d.db.Exec(`
		INSERT INTO memories_vec (rowid, embedding)
		VALUES (?, ?)
	`, rowid, embeddingBytes).Error
}

// GetMemory gets a memory by ID using GORM.
func (d *DB) GetMemory(memoryID string) (*models.Memory, bool, error) {
	var memModel MemoryModel
	if err := d.db.Where("id = ?", memoryID).First(&memModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	// Check if details exist
	var hasDetails bool

	d.db.Model(&MemoryDetailModel{}).Select("COUNT(*) > 0").Where("memory_id = ?", memoryID).Scan(&hasDetails)

	mem := memModel.ToMemory()

	// Parse tags and related files; ignore errors on malformed JSON (fields stay nil)
	_ = json.Unmarshal([]byte(memModel.Tags), &mem.Tags)
	_ = json.Unmarshal([]byte(memModel.RelatedFiles), &mem.RelatedFiles)

	return &mem, hasDetails, nil
}

// GetDetails gets full details for a memory using GORM.
func (d *DB) GetDetails(memoryID string) (*models.MemoryDetail, error) {
	var detailModel MemoryDetailModel
	if err := d.db.Where("memory_id LIKE ?", memoryID+"%").First(&detailModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil //nolint:nilnil
		}

		return nil, err
	}

	return &models.MemoryDetail{
		MemoryID: detailModel.MemoryID,
		Body:     detailModel.Body,
	}, nil
}

// UpdateMemory updates an existing memory's fields using GORM.
func (d *DB) UpdateMemory(memoryID string, content *string, tags []string, detailsAppend *string) error {
	// Resolve full ID from prefix
	var memModel MemoryModel
	if err := d.db.Where("id LIKE ?", memoryID+"%").First(&memModel).Error; err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, memoryID)
	}

	fullID := memModel.ID

	// Build updates
	updates := map[string]any{
		"updated_count": gorm.Expr("updated_count + 1"),
		"updated_at":    time.Now().UTC().Format(time.RFC3339),
	}

	if content != nil {
		updates["content"] = *content
	}

	if tags != nil {
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags: %w", err)
		}

		updates["tags"] = string(tagsJSON)
	}

	if err := d.db.Model(&MemoryModel{}).Where("id = ?", fullID).Updates(updates).Error; err != nil {
		return err
	}

	// Handle details append
	if detailsAppend != nil {
		var detailModel MemoryDetailModel
		if err := d.db.Where("memory_id = ?", fullID).First(&detailModel).Error; err == nil {
			detailModel.Body = detailModel.Body + "\n\n" + *detailsAppend
			d.db.Save(&detailModel)
		} else {
			detailModel = MemoryDetailModel{
				MemoryID: fullID,
				Body:     *detailsAppend,
			}
			d.db.Create(&detailModel)
		}
	}

	return nil
}

// DeleteMemory deletes a memory by ID or prefix using GORM.
func (d *DB) DeleteMemory(memoryID string) (bool, error) {
	// Resolve full ID from prefix
	var memModel MemoryModel
	if err := d.db.Where("id LIKE ?", memoryID+"%").First(&memModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, err
	}

	fullID := memModel.ID

	// Delete details first
	d.db.Where("memory_id = ?", fullID).Delete(&MemoryDetailModel{})

	// Delete memory
	result := d.db.Where("id = ?", fullID).Delete(&MemoryModel{})

	return result.RowsAffected > 0, result.Error
}

// searchRow is the scan target shared by the search queries.
type searchRow struct {
	ID         string
	Title      string
	Content    string
	Sector     string
	Tags       string
	Project    string
	Source     sql.NullString
	FilePath   string
	CreatedAt  string
	Score      float64
	Distance   float64
	HasDetails bool
}

func (row *searchRow) toResult() models.SearchResult {
	result := models.SearchResult{
		ID:         row.ID,
		Title:      row.Title,
		Content:    row.Content,
		Sector:     row.Sector,
		Project:    row.Project,
		FilePath:   row.FilePath,
		CreatedAt:  row.CreatedAt,
		Score:      row.Score,
		HasDetails: row.HasDetails,
	}

	if row.Source.Valid {
		result.Source = &row.Source.String
	}

	if err := json.Unmarshal([]byte(row.Tags), &result.Tags); err != nil {
		result.Tags = []string{}
	}

	return result
}

// FTSSearch searches memories using FTS5 (must use raw SQL for FTS).
func (d *DB) FTSSearch(query string, limit int, project *string, sector *string) ([]models.SearchResult, error) {
	// Build prefix matching query
	terms := splitQuery(query)

	var ftsQuery strings.Builder

	for i, term := range terms {
		if i > 0 {
			ftsQuery.WriteString(" OR ")
		}

		ftsQuery.WriteString(fmt.Sprintf(`"%s"*`, term))
	}

	whereClause := ""
	args := []any{ftsQuery.String()}

	if project != nil {
		whereClause += " AND m.project = ?"

		args = append(args, *project)
	}

	if sector != nil {
		whereClause += " AND m.sector = ?"

		args = append(args, *sector)
	}

	args = append(args, limit)

	var rows []searchRow

	err := d.db.Raw(fmt.Sprintf(`
		SELECT m.id, m.title, m.content, m.sector, m.tags,
		       m.project, m.source, m.file_path, m.created_at,
		       -fts.rank as score,
		       EXISTS(SELECT 1 FROM memory_details WHERE memory_id = m.id) as has_details
		FROM memories_fts fts
		JOIN memories m ON m.rowid = fts.rowid
		WHERE fts.memories_fts MATCH ?
		%s
		ORDER BY fts.rank
		LIMIT ?
	`, whereClause), args...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, len(rows))
	for i := range rows {
		results[i] = rows[i].toResult()
	}

	return results, nil
}

// VectorSearch searches memories using vector similarity (must use raw SQL for vec).
func (d *DB) VectorSearch(queryEmbedding []float32, limit int, project *string, sector *string) ([]models.SearchResult, error) {
	if !d.HasVecTable() {
		return []models.SearchResult{}, nil
	}

	embeddingBytes, err := json.Marshal(queryEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query embedding: %w", err)
	}

	whereClause := ""
	args := []any{embeddingBytes, limit}

	if project != nil {
		whereClause += " AND m.project = ?"

		args = append(args, *project)
	}

	if sector != nil {
		whereClause += " AND m.sector = ?"

		args = append(args, *sector)
	}

	var rows []searchRow

	err = d.db.Raw(fmt.Sprintf(`
		SELECT m.id, m.title, m.content, m.sector, m.tags,
		       m.project, m.source, m.file_path, m.created_at,
		       v.distance,
		       EXISTS(SELECT 1 FROM memory_details WHERE memory_id = m.id) as has_details
		FROM memories_vec v
		JOIN memories m ON m.rowid = v.rowid
		WHERE v.embedding MATCH ?
		AND k = ?
		%s
		ORDER BY v.distance
	`, whereClause), args...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, len(rows))

	for i := range rows {
		rows[i].Score = 1.0 - rows[i].Distance
		results[i] = rows[i].toResult()
	}

	return results, nil
}

// ListRecent lists recent memories ordered by creation date descending.
// Uses a single raw SQL query with an EXISTS subquery to avoid N+1 queries.
func (d *DB) ListRecent(limit int, project *string, sector *string) ([]models.SearchResult, error) {
	whereClause := "1=1"
	args := []any{}

	if project != nil {
		whereClause += " AND m.project = ?"

		args = append(args, *project)
	}

	if sector != nil {
		whereClause += " AND m.sector = ?"

		args = append(args, *sector)
	}

	args = append(args, limit)

	var rows []searchRow

	err := d.db.Raw(fmt.Sprintf(`
		SELECT m.id, m.title, m.content, m.sector, m.tags,
		       m.project, m.source, m.file_path, m.created_at,
		       EXISTS(SELECT 1 FROM memory_details WHERE memory_id = m.id) AS has_details
		FROM memories m
		WHERE %s
		ORDER BY m.created_at DESC
		LIMIT ?
	`, whereClause), args...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, len(rows))
	for i := range rows {
		results[i] = rows[i].toResult()
	}

	return results, nil
}

// ListAllForReindex lists all memories with fields needed for re-embedding.
func (d *DB) ListAllForReindex() ([]ReindexRow, error) {
	var memModels []MemoryModel
	if err := d.db.Order("rowid").Find(&memModels).Error; err != nil {
		return nil, err
	}

	results := make([]ReindexRow, len(memModels))

	for i, mm := range memModels {
		// Get rowid
		var rowid int64

		d.db.Raw("SELECT rowid FROM memories WHERE id = ?", mm.ID).Scan(&rowid)

		row := ReindexRow{
			Rowid:   rowid,
			Title:   mm.Title,
			Content: mm.Content,
			Sector:  mm.Sector,
		}

		if err := json.Unmarshal([]byte(mm.Tags), &row.Tags); err != nil {
			row.Tags = []string{}
		}

		results[i] = row
	}

	return results, nil
}

// CountMemories counts total memories with optional filters using GORM.
func (d *DB) CountMemories(project *string, sector *string) (int64, error) {
	var count int64

	query := d.db.Model(&MemoryModel{})

	if project != nil {
		query = query.Where("project = ?", *project)
	}

	if sector != nil {
		query = query.Where("sector = ?", *sector)
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// migrate runs database migrations using GORM AutoMigrate.
func (d *DB) migrate() error {
	// Auto-migrate GORM models
	if err := d.db.AutoMigrate(&MemoryModel{}, &MemoryDetailModel{}, &MetaModel{}); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	// Create FTS5 virtual table (must use raw SQL)
	if err := d.db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS memories_fts USING fts5(
			title, content, tags, sector, project, source,
			content='memories', content_rowid='rowid',
			tokenize='porter unicode61'
		)
	`).Error; err != nil {
		return err
	}

	// Create FTS5 triggers (must use raw SQL)
	if err := d.db.Exec(`
		CREATE TRIGGER IF NOT EXISTS memories_ai AFTER INSERT ON memories BEGIN
			INSERT INTO memories_fts(rowid, title, content, tags, sector, project, source)
			VALUES (new.rowid, new.title, new.content, new.tags, new.sector, new.project, new.source);
		END
	`).Error; err != nil {
		return err
	}

	if err := d.db.Exec(`
		CREATE TRIGGER IF NOT EXISTS memories_au AFTER UPDATE ON memories BEGIN
			INSERT INTO memories_fts(memories_fts, rowid, title, content, tags, sector, project, source)
			VALUES ('delete', old.rowid, old.title, old.content, old.tags, old.sector, old.project, old.source);
			INSERT INTO memories_fts(rowid, title, content, tags, sector, project, source)
			VALUES (new.rowid, new.title, new.content, new.tags, new.sector, new.project, new.source);
		END
	`).Error; err != nil {
		return err
	}

	// Create vec table if dimension is known
	dim := d.getEmbeddingDim()
	if dim != nil {
		if err := d.createVecTable(*dim); err != nil {
			return err
		}
	}

	return nil
}

// createVecTable creates the vector table with the given dimension.
func (d *DB) createVecTable(dim int) error {
	query := fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS memories_vec USING vec0(
			rowid INTEGER PRIMARY KEY,
			embedding float[%d]
		)
	`, dim)

	return d.db.Exec(query).Error
}

// getEmbeddingDim gets the stored embedding dimension from meta table.
func (d *DB) getEmbeddingDim() *int {
	var meta MetaModel
	if err := d.db.Where("key = ?", "embedding_dim").First(&meta).Error; err != nil {
		return nil
	}

	var dim int
	if _, err := fmt.Sscanf(meta.Value, "%d", &dim); err != nil {
		return nil
	}

	return &dim
}

// Helper functions.
func splitQuery(query string) []string {
	return strings.Fields(query)
}
