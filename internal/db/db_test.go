package db

import (
	"path/filepath"
	"testing"
	"time"

	"mnemo/internal/models"
)

// newTestDB creates a fresh DB in a temp directory.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()

	database, err := NewDB(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}

	t.Cleanup(func() { _ = database.Close() })

	return database
}

// makeMemory returns a minimal valid Memory for testing.
func makeMemory(title, project, sector string) models.Memory {
	now := time.Now().UTC().Format(time.RFC3339)

	return models.Memory{
		ID:        title + "-id",
		Title:     title,
		Content:   "content for " + title,
		Sector:    sector,
		Tags:      []string{"tag1", "tag2"},
		Project:   project,
		FilePath:  "/tmp/" + title + ".md",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// --- InsertMemory / GetMemory ---

func TestInsertMemory_GetMemory_Roundtrip(t *testing.T) {
	d := newTestDB(t)
	mem := makeMemory("Test Memory", "myproject", "episodic")

	rowid, err := d.InsertMemory(mem, nil)
	if err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	if rowid <= 0 {
		t.Errorf("InsertMemory() rowid = %d, want > 0", rowid)
	}

	got, hasDetails, err := d.GetMemory(mem.ID)
	if err != nil {
		t.Fatalf("GetMemory() error = %v", err)
	}

	if got == nil {
		t.Fatal("GetMemory() returned nil")
	}

	if got.Title != mem.Title {
		t.Errorf("Title = %q, want %q", got.Title, mem.Title)
	}

	if got.Sector != "episodic" {
		t.Errorf("Sector = %q, want %q", got.Sector, "episodic")
	}

	if len(got.Tags) != 2 || got.Tags[0] != "tag1" {
		t.Errorf("Tags = %v, want [tag1 tag2]", got.Tags)
	}

	if hasDetails {
		t.Error("hasDetails = true, want false")
	}
}

func TestGetMemory_NotFound(t *testing.T) {
	d := newTestDB(t)

	got, _, err := d.GetMemory("no-such-id")
	if err != nil {
		t.Fatalf("GetMemory() error = %v", err)
	}

	if got != nil {
		t.Errorf("GetMemory() = %v, want nil", got)
	}
}

// --- Details ---

func TestInsertMemory_WithDetails(t *testing.T) {
	d := newTestDB(t)
	mem := makeMemory("Detailed", "proj", "semantic")
	details := "the full story"

	if _, err := d.InsertMemory(mem, &details); err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	got, err := d.GetDetails(mem.ID)
	if err != nil {
		t.Fatalf("GetDetails() error = %v", err)
	}

	if got == nil || got.Body != details {
		t.Errorf("GetDetails() = %v, want body %q", got, details)
	}
}

func TestGetDetails_PrefixLookup(t *testing.T) {
	d := newTestDB(t)
	mem := makeMemory("Prefixed", "proj", "semantic")
	details := "body"

	if _, err := d.InsertMemory(mem, &details); err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	got, err := d.GetDetails(mem.ID[:4])
	if err != nil {
		t.Fatalf("GetDetails() error = %v", err)
	}

	if got == nil {
		t.Error("GetDetails() with prefix should find the memory")
	}
}

// --- UpdateMemory ---

func TestUpdateMemory(t *testing.T) {
	d := newTestDB(t)
	mem := makeMemory("To Update", "proj", "procedural")

	if _, err := d.InsertMemory(mem, nil); err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	newContent := "updated content"
	if err := d.UpdateMemory(mem.ID, &newContent, []string{"tag3"}, nil); err != nil {
		t.Fatalf("UpdateMemory() error = %v", err)
	}

	got, _, err := d.GetMemory(mem.ID)
	if err != nil {
		t.Fatalf("GetMemory() error = %v", err)
	}

	if got.Content != newContent {
		t.Errorf("Content = %q, want %q", got.Content, newContent)
	}

	if len(got.Tags) != 1 || got.Tags[0] != "tag3" {
		t.Errorf("Tags = %v, want [tag3]", got.Tags)
	}
}

func TestUpdateMemory_NotFound(t *testing.T) {
	d := newTestDB(t)

	content := "x"
	if err := d.UpdateMemory("missing", &content, nil, nil); err == nil {
		t.Error("UpdateMemory() should error for a missing memory")
	}
}

// --- DeleteMemory ---

func TestDeleteMemory(t *testing.T) {
	d := newTestDB(t)
	mem := makeMemory("To Delete", "proj", "emotional")

	if _, err := d.InsertMemory(mem, nil); err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	deleted, err := d.DeleteMemory(mem.ID)
	if err != nil {
		t.Fatalf("DeleteMemory() error = %v", err)
	}

	if !deleted {
		t.Error("DeleteMemory() = false, want true")
	}

	got, _, _ := d.GetMemory(mem.ID)
	if got != nil {
		t.Error("memory should be gone after delete")
	}
}

func TestDeleteMemory_NotFound(t *testing.T) {
	d := newTestDB(t)

	deleted, err := d.DeleteMemory("missing")
	if err != nil {
		t.Fatalf("DeleteMemory() error = %v", err)
	}

	if deleted {
		t.Error("DeleteMemory() = true, want false")
	}
}

// --- FTSSearch ---

func TestFTSSearch(t *testing.T) {
	d := newTestDB(t)

	if _, err := d.InsertMemory(makeMemory("Gorm Migration", "proj", "procedural"), nil); err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	if _, err := d.InsertMemory(makeMemory("Unrelated", "proj", "episodic"), nil); err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	results, err := d.FTSSearch("migration", 5, nil, nil)
	if err != nil {
		t.Fatalf("FTSSearch() error = %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("FTSSearch() results = %d, want 1", len(results))
	}

	if results[0].Title != "Gorm Migration" {
		t.Errorf("Title = %q, want %q", results[0].Title, "Gorm Migration")
	}
}

func TestFTSSearch_SectorFilter(t *testing.T) {
	d := newTestDB(t)

	m1 := makeMemory("Shared Term Alpha", "proj", "episodic")
	m2 := makeMemory("Shared Term Beta", "proj", "semantic")

	if _, err := d.InsertMemory(m1, nil); err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	if _, err := d.InsertMemory(m2, nil); err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	sector := "semantic"
	results, err := d.FTSSearch("shared", 5, nil, &sector)
	if err != nil {
		t.Fatalf("FTSSearch() error = %v", err)
	}

	if len(results) != 1 || results[0].Sector != "semantic" {
		t.Errorf("FTSSearch() with sector filter = %v, want only the semantic memory", results)
	}
}

// --- ListRecent / CountMemories ---

func TestListRecent_And_Count(t *testing.T) {
	d := newTestDB(t)

	for _, title := range []string{"One", "Two", "Three"} {
		if _, err := d.InsertMemory(makeMemory(title, "proj", "episodic"), nil); err != nil {
			t.Fatalf("InsertMemory() error = %v", err)
		}
	}

	results, err := d.ListRecent(2, nil, nil)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}

	if len(results) != 2 {
		t.Errorf("ListRecent() results = %d, want 2", len(results))
	}

	count, err := d.CountMemories(nil, nil)
	if err != nil {
		t.Fatalf("CountMemories() error = %v", err)
	}

	if count != 3 {
		t.Errorf("CountMemories() = %d, want 3", count)
	}

	sector := "episodic"
	count, err = d.CountMemories(nil, &sector)
	if err != nil {
		t.Fatalf("CountMemories() error = %v", err)
	}

	if count != 3 {
		t.Errorf("CountMemories(sector) = %d, want 3", count)
	}
}

// --- Vec table management ---

func TestEnsureVecTable_DimensionMismatch(t *testing.T) {
	d := newTestDB(t)

	if err := d.EnsureVecTable(3); err != nil {
		t.Fatalf("EnsureVecTable() error = %v", err)
	}

	if !d.HasVecTable() {
		t.Error("HasVecTable() = false after EnsureVecTable")
	}

	if err := d.EnsureVecTable(4); err == nil {
		t.Error("EnsureVecTable() with a different dim should error")
	}
}

func TestInsertVector_And_VectorSearch(t *testing.T) {
	d := newTestDB(t)
	mem := makeMemory("Vectored", "proj", "semantic")

	rowid, err := d.InsertMemory(mem, nil)
	if err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	if err := d.EnsureVecTable(3); err != nil {
		t.Fatalf("EnsureVecTable() error = %v", err)
	}

	if err := d.InsertVector(rowid, []float32{0.1, 0.2, 0.3}); err != nil {
		t.Fatalf("InsertVector() error = %v", err)
	}

	results, err := d.VectorSearch([]float32{0.1, 0.2, 0.3}, 5, nil, nil)
	if err != nil {
		t.Fatalf("VectorSearch() error = %v", err)
	}

	if len(results) != 1 || results[0].ID != mem.ID {
		t.Errorf("VectorSearch() = %v, want the vectored memory", results)
	}
}

func TestEnsureVecTable_RecreatesAfterDrop(t *testing.T) {
	d := newTestDB(t)
	mem := makeMemory("Rebuilt", "proj", "semantic")

	rowid, err := d.InsertMemory(mem, nil)
	if err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	if err := d.EnsureVecTable(3); err != nil {
		t.Fatalf("EnsureVecTable() error = %v", err)
	}

	// The rebuild sequence: drop, store the dim, ensure again. The table
	// must come back even though the stored dim already matches.
	if err := d.DropVecTable(); err != nil {
		t.Fatalf("DropVecTable() error = %v", err)
	}
	if err := d.SetEmbeddingDim(3); err != nil {
		t.Fatalf("SetEmbeddingDim() error = %v", err)
	}
	if err := d.EnsureVecTable(3); err != nil {
		t.Fatalf("EnsureVecTable() after drop error = %v", err)
	}

	if !d.HasVecTable() {
		t.Fatal("HasVecTable() = false after EnsureVecTable with matching stored dim")
	}

	if err := d.InsertVector(rowid, []float32{0.5, 0.5, 0.0}); err != nil {
		t.Fatalf("InsertVector() error = %v", err)
	}

	results, err := d.VectorSearch([]float32{0.5, 0.5, 0.0}, 5, nil, nil)
	if err != nil {
		t.Fatalf("VectorSearch() error = %v", err)
	}

	if len(results) != 1 || results[0].ID != mem.ID {
		t.Errorf("VectorSearch() after rebuild = %v, want the reinserted vector", results)
	}
}

func TestVectorSearch_NoVecTable(t *testing.T) {
	d := newTestDB(t)

	results, err := d.VectorSearch([]float32{0.1}, 5, nil, nil)
	if err != nil {
		t.Fatalf("VectorSearch() error = %v", err)
	}

	if len(results) != 0 {
		t.Errorf("VectorSearch() without vec table = %v, want empty", results)
	}
}

// --- ListAllForReindex ---

func TestListAllForReindex(t *testing.T) {
	d := newTestDB(t)

	if _, err := d.InsertMemory(makeMemory("R1", "proj", "episodic"), nil); err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	if _, err := d.InsertMemory(makeMemory("R2", "proj", "reflective"), nil); err != nil {
		t.Fatalf("InsertMemory() error = %v", err)
	}

	rows, err := d.ListAllForReindex()
	if err != nil {
		t.Fatalf("ListAllForReindex() error = %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("ListAllForReindex() rows = %d, want 2", len(rows))
	}

	if rows[0].Rowid <= 0 {
		t.Error("ReindexRow.Rowid should be set")
	}

	if rows[1].Sector != "reflective" {
		t.Errorf("Sector = %q, want %q", rows[1].Sector, "reflective")
	}
}
