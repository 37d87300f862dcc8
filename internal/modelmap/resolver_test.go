package modelmap

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func writeModelsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ModelsFileName)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	return path
}

// --- Load ---

func TestResolver_Load_FileAbsent_UsesDefaults(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(
		WithSearchPaths(filepath.Join(t.TempDir(), "missing.yml")),
		WithLogger(zerolog.New(&buf)),
	)

	got := r.Load()

	want := DefaultModels()
	if got[SectorSemantic][ProviderOllama] != want[SectorSemantic][ProviderOllama] {
		t.Errorf("Load() semantic/ollama = %q, want default %q",
			got[SectorSemantic][ProviderOllama], want[SectorSemantic][ProviderOllama])
	}

	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("absent file should log at warn level, got %q", buf.String())
	}
}

func TestResolver_Load_ParsesFile(t *testing.T) {
	path := writeModelsFile(t, "semantic:\n  openai: custom-model-A\nepisodic:\n  local: custom-model-B\n")

	var buf bytes.Buffer
	r := NewResolver(WithSearchPaths(path), WithLogger(zerolog.New(&buf)))

	got := r.Load()

	if got["semantic"]["openai"] != "custom-model-A" {
		t.Errorf("semantic/openai = %q, want %q", got["semantic"]["openai"], "custom-model-A")
	}

	log := buf.String()
	if !strings.Contains(log, `"level":"info"`) {
		t.Errorf("successful load should log at info level, got %q", log)
	}

	if !strings.Contains(log, `"sectors":2`) {
		t.Errorf("load diagnostic should report section count, got %q", log)
	}
}

func TestResolver_Load_NoSections_FallsBackToDefaults(t *testing.T) {
	// A file the dialect cannot use (top-level scalar, no section context)
	// must yield the full defaults table, never a partial mapping.
	path := writeModelsFile(t, "foo: bar\n")

	var buf bytes.Buffer
	r := NewResolver(WithSearchPaths(path), WithLogger(zerolog.New(&buf)))

	got := r.Load()

	want := DefaultModels()
	if len(got) != len(want) {
		t.Errorf("Load() sectors = %d, want %d (defaults)", len(got), len(want))
	}

	if got[SectorReflective][ProviderOpenAI] != want[SectorReflective][ProviderOpenAI] {
		t.Error("Load() should return the defaults table on an unusable file")
	}

	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Errorf("unusable file should log at error level, got %q", buf.String())
	}
}

func TestResolver_Load_UnreadablePath_FallsBackToDefaults(t *testing.T) {
	// Locate reports a path that cannot be read.
	var buf bytes.Buffer
	r := NewResolver(
		WithLocateFunc(func() (string, bool) { return filepath.Join(t.TempDir(), "gone.yml"), true }),
		WithLogger(zerolog.New(&buf)),
	)

	got := r.Load()

	if len(got) != 5 {
		t.Errorf("Load() sectors = %d, want 5 (defaults)", len(got))
	}

	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Errorf("read failure should log at error level, got %q", buf.String())
	}
}

func TestResolver_Load_Idempotent(t *testing.T) {
	locateCalls := 0
	r := NewResolver(
		WithLocateFunc(func() (string, bool) {
			locateCalls++
			return "", false
		}),
		WithLogger(zerolog.Nop()),
	)

	first := r.Load()
	second := r.Load()

	if locateCalls != 1 {
		t.Errorf("locate called %d times across two Load() calls, want 1", locateCalls)
	}

	// Same cached mapping, not a re-resolved copy.
	first[SectorSemantic]["probe"] = "x"
	if second[SectorSemantic]["probe"] != "x" {
		t.Error("Load() should return the same cached mapping on every call")
	}
}

// --- Model ---

func TestResolver_Model_OwnSector(t *testing.T) {
	path := writeModelsFile(t, "episodic:\n  openai: episodic-model\nsemantic:\n  openai: semantic-model\n")
	r := NewResolver(WithSearchPaths(path), WithLogger(zerolog.Nop()))

	if got := r.Model("episodic", "openai"); got != "episodic-model" {
		t.Errorf("Model() = %q, want %q", got, "episodic-model")
	}
}

func TestResolver_Model_SemanticFallback(t *testing.T) {
	path := writeModelsFile(t, "semantic:\n  openai: m1\n")
	r := NewResolver(WithSearchPaths(path), WithLogger(zerolog.Nop()))

	// Sector "x" has no section of its own; the semantic row answers.
	if got := r.Model("x", "openai"); got != "m1" {
		t.Errorf("Model() = %q, want semantic fallback %q", got, "m1")
	}
}

func TestResolver_Model_LiteralFallback(t *testing.T) {
	path := writeModelsFile(t, "semantic:\n  openai: m1\n")
	r := NewResolver(WithSearchPaths(path), WithLogger(zerolog.Nop()))

	if got := r.Model("x", "unknown-provider"); got != FallbackModel {
		t.Errorf("Model() = %q, want %q", got, FallbackModel)
	}
}

func TestResolver_Model_DefaultsComplete(t *testing.T) {
	r := NewResolver(
		WithSearchPaths(filepath.Join(t.TempDir(), "missing.yml")),
		WithLogger(zerolog.Nop()),
	)

	want := DefaultModels()
	for _, sector := range allSectors {
		for _, provider := range allProviders {
			if got := r.Model(sector, provider); got != want[sector][provider] {
				t.Errorf("Model(%s, %s) = %q, want %q", sector, provider, got, want[sector][provider])
			}
		}
	}
}

func TestResolver_Model_UnknownProviderUnderKnownSector(t *testing.T) {
	r := NewResolver(
		WithSearchPaths(filepath.Join(t.TempDir(), "missing.yml")),
		WithLogger(zerolog.Nop()),
	)

	if got := r.Model("episodic", "unknown-provider"); got != FallbackModel {
		t.Errorf("Model() = %q, want %q", got, FallbackModel)
	}
}

// --- ProviderConfig ---

func TestResolver_ProviderConfig_Empty(t *testing.T) {
	r := NewResolver(WithLogger(zerolog.Nop()))

	for _, provider := range []string{"ollama", "openai", "anything"} {
		cfg := r.ProviderConfig(provider)
		if len(cfg.Options) != 0 {
			t.Errorf("ProviderConfig(%q) = %v, want empty", provider, cfg)
		}
	}
}
