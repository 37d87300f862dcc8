package modelmap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLocate_FirstExistingWins(t *testing.T) {
	dir := t.TempDir()
	second := filepath.Join(dir, "second.yml")

	if err := os.WriteFile(second, []byte("semantic:\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	path, ok := Locate([]string{filepath.Join(dir, "first.yml"), second})
	if !ok {
		t.Fatal("Locate() ok = false, want true")
	}

	if path != second {
		t.Errorf("Locate() = %q, want %q", path, second)
	}
}

func TestLocate_NoneExist(t *testing.T) {
	dir := t.TempDir()

	if _, ok := Locate([]string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yml")}); ok {
		t.Error("Locate() ok = true, want false")
	}
}

func TestLocate_DirectoryDoesNotCount(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, ModelsFileName)

	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}

	if _, ok := Locate([]string{sub}); ok {
		t.Error("Locate() should not return a directory")
	}
}

func TestSearchPaths_Order(t *testing.T) {
	paths := SearchPaths()

	if len(paths) < 2 {
		t.Fatalf("SearchPaths() returned %d paths, want at least 2", len(paths))
	}

	if paths[len(paths)-2] != filepath.Join("/app", ModelsFileName) {
		t.Errorf("second-to-last path = %q, want %q", paths[len(paths)-2], filepath.Join("/app", ModelsFileName))
	}

	if paths[len(paths)-1] != ModelsFileName {
		t.Errorf("last path = %q, want %q (working directory)", paths[len(paths)-1], ModelsFileName)
	}
}
