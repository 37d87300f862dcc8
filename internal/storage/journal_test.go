package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mnemo/internal/models"
)

func makeMemory(title, sector string) models.Memory {
	return models.Memory{
		ID:      title + "-id",
		Title:   title,
		Content: "content for " + title,
		Sector:  sector,
		Tags:    []string{"alpha"},
		Project: "proj",
	}
}

func TestWriteJournalEntry_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	mem := makeMemory("First Memory", "episodic")

	path, err := WriteJournalEntry(dir, mem, "2026-08-25", nil)
	if err != nil {
		t.Fatalf("WriteJournalEntry() error = %v", err)
	}

	want := filepath.Join(dir, "episodic", "2026-08-25.md")
	if path != want {
		t.Errorf("WriteJournalEntry() path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	content := string(data)
	if !strings.HasPrefix(content, "---\n") {
		t.Error("journal file should start with frontmatter")
	}
	if !strings.Contains(content, "sector: episodic") {
		t.Error("frontmatter should record the sector")
	}
	if !strings.Contains(content, "# 2026-08-25 Episodes") {
		t.Errorf("journal should carry the sector heading, got:\n%s", content)
	}
	if !strings.Contains(content, "### First Memory") {
		t.Error("journal should contain the memory section")
	}
}

func TestWriteJournalEntry_AppendsSection(t *testing.T) {
	dir := t.TempDir()

	if _, err := WriteJournalEntry(dir, makeMemory("One", "semantic"), "2026-08-25", nil); err != nil {
		t.Fatalf("WriteJournalEntry() error = %v", err)
	}

	second := makeMemory("Two", "semantic")
	second.Tags = []string{"beta"}
	src := "agent-x"
	second.Source = &src

	path, err := WriteJournalEntry(dir, second, "2026-08-25", nil)
	if err != nil {
		t.Fatalf("WriteJournalEntry() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	content := string(data)

	if !strings.Contains(content, "### One") || !strings.Contains(content, "### Two") {
		t.Errorf("journal should contain both sections, got:\n%s", content)
	}
	if !strings.Contains(content, "tags: [alpha, beta]") {
		t.Errorf("frontmatter tags should merge, got:\n%s", content)
	}
	if !strings.Contains(content, "sources: [agent-x]") {
		t.Errorf("frontmatter sources should merge, got:\n%s", content)
	}
	if strings.Count(content, "---\n") != 2 {
		t.Errorf("frontmatter should appear once, got:\n%s", content)
	}
}

func TestWriteJournalEntry_DetailsBlock(t *testing.T) {
	dir := t.TempDir()
	details := "long form details"
	mem := makeMemory("With Details", "reflective")

	path, err := WriteJournalEntry(dir, mem, "2026-08-25", &details)
	if err != nil {
		t.Fatalf("WriteJournalEntry() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "<details>\nlong form details\n</details>") {
		t.Errorf("journal should wrap details, got:\n%s", string(data))
	}
}

func TestWriteJournalEntry_SectorsSeparated(t *testing.T) {
	dir := t.TempDir()

	p1, err := WriteJournalEntry(dir, makeMemory("A", "episodic"), "2026-08-25", nil)
	if err != nil {
		t.Fatalf("WriteJournalEntry() error = %v", err)
	}

	p2, err := WriteJournalEntry(dir, makeMemory("B", "procedural"), "2026-08-25", nil)
	if err != nil {
		t.Fatalf("WriteJournalEntry() error = %v", err)
	}

	if filepath.Dir(p1) == filepath.Dir(p2) {
		t.Error("different sectors should journal into different directories")
	}
}
