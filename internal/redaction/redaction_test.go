package redaction

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		patterns []string
		want     string
	}{
		{
			name:     "explicit redacted tags",
			input:    "My key is <redacted>secret</redacted>",
			patterns: []string{},
			want:     "My key is [REDACTED]",
		},
		{
			name:     "nested redacted tags",
			input:    "Value: <redacted>outer<redacted>inner</redacted></redacted>",
			patterns: []string{},
			want:     "Value: [REDACTED]",
		},
		{
			name:     "stripe key",
			input:    "API key: sk_live_abc123xyz",
			patterns: []string{},
			want:     "API key: [REDACTED]",
		},
		{
			name:     "openai key",
			input:    "Use sk-abcdefghijklmnopqrstuv for auth",
			patterns: []string{},
			want:     "Use [REDACTED] for auth",
		},
		{
			name:     "github token",
			input:    "Token: ghp_abcdefghijklmnop",
			patterns: []string{},
			want:     "Token: [REDACTED]",
		},
		{
			name:     "custom pattern",
			input:    "SSN: 123-45-6789",
			patterns: []string{`\d{3}-\d{2}-\d{4}`},
			want:     "SSN: [REDACTED]",
		},
		{
			name:     "no sensitive data",
			input:    "This is a normal string with no secrets",
			patterns: []string{},
			want:     "This is a normal string with no secrets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Redact(tt.input, tt.patterns)
			if got != tt.want {
				t.Errorf("Redact() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadIgnoreFile(t *testing.T) {
	// Test with non-existent file
	rules, err := LoadIgnoreFile("/nonexistent/path/.mnemoignore")
	if err != nil {
		t.Errorf("LoadIgnoreFile() error = %v, want nil", err)
	}
	if rules.Count() != 0 {
		t.Errorf("LoadIgnoreFile() = %d patterns, want 0", rules.Count())
	}

	// Test with a real file, including comments and blank lines
	path := filepath.Join(t.TempDir(), ".mnemoignore")
	content := "# custom patterns\n\\d{3}-\\d{2}-\\d{4}\n\ninternal-host-\\w+\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	rules, err = LoadIgnoreFile(path)
	if err != nil {
		t.Fatalf("LoadIgnoreFile() error = %v", err)
	}
	if len(rules.Global) != 2 {
		t.Errorf("LoadIgnoreFile() = %d global patterns, want 2", len(rules.Global))
	}
	if len(rules.BySector) != 0 {
		t.Errorf("LoadIgnoreFile() = %d sector sections, want 0", len(rules.BySector))
	}
}

func TestLoadIgnoreFile_SectorSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mnemoignore")
	content := `# global
internal-host-\w+

[emotional]
patient-\d+
mgr-\w+

[episodic]
ticket-\d+
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	rules, err := LoadIgnoreFile(path)
	if err != nil {
		t.Fatalf("LoadIgnoreFile() error = %v", err)
	}

	if len(rules.Global) != 1 {
		t.Errorf("Global = %v, want 1 pattern", rules.Global)
	}
	if len(rules.BySector["emotional"]) != 2 {
		t.Errorf("BySector[emotional] = %v, want 2 patterns", rules.BySector["emotional"])
	}
	if len(rules.BySector["episodic"]) != 1 {
		t.Errorf("BySector[episodic] = %v, want 1 pattern", rules.BySector["episodic"])
	}
	if rules.Count() != 4 {
		t.Errorf("Count() = %d, want 4", rules.Count())
	}
}

func TestCompiledRules_For(t *testing.T) {
	rules := &Rules{
		Global: []string{`internal-host-\w+`},
		BySector: map[string][]string{
			"emotional": {`patient-\d+`},
		},
	}
	compiled := rules.Compile()

	// Sector with its own section gets global plus sector patterns.
	got := RedactCompiled("saw patient-42 on internal-host-db1", compiled.For("emotional"))
	want := "saw [REDACTED] on [REDACTED]"
	if got != want {
		t.Errorf("RedactCompiled(emotional) = %q, want %q", got, want)
	}

	// Other sectors only get the global patterns.
	got = RedactCompiled("saw patient-42 on internal-host-db1", compiled.For("procedural"))
	want = "saw patient-42 on [REDACTED]"
	if got != want {
		t.Errorf("RedactCompiled(procedural) = %q, want %q", got, want)
	}
}

func TestCompiledRules_For_NilSafe(t *testing.T) {
	var compiled *CompiledRules

	if got := compiled.For("semantic"); got != nil {
		t.Errorf("For() on nil rules = %v, want nil", got)
	}

	// Built-in patterns still apply with no custom rules at all.
	got := RedactCompiled("key sk_live_abc123", compiled.For("semantic"))
	if got != "key [REDACTED]" {
		t.Errorf("RedactCompiled() = %q, want built-in redaction", got)
	}
}
