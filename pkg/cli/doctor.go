package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"mnemo/internal/config"
	"mnemo/internal/core"
	"mnemo/internal/modelmap"
	"mnemo/internal/redaction"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check mnemo health and capabilities",
	Run: func(cmd *cobra.Command, args []string) {
		ok := true
		pass := func(label, detail string) {
			fmt.Printf("  ✓ %-28s %s\n", label, detail)
		}
		fail := func(label, detail string) {
			fmt.Printf("  ✗ %-28s %s\n", label, detail)
			ok = false
		}
		warn := func(label, detail string) {
			fmt.Printf("  ! %-28s %s\n", label, detail)
		}

		home := config.GetMnemoHome()
		fmt.Printf("\nMnemo home: %s\n\n", home)

		// --- Filesystem ---
		fmt.Println("Filesystem:")

		if info, err := os.Stat(home); err != nil || !info.IsDir() {
			fail("mnemo home", "directory missing, run `mnemo init`")
		} else {
			pass("mnemo home", home)
		}

		dbPath := filepath.Join(home, "index.db")
		if _, err := os.Stat(dbPath); err != nil {
			fail("index.db", "missing, run `mnemo init`")
		} else {
			pass("index.db", dbPath)
		}

		journalDir := filepath.Join(home, "journal")
		if _, err := os.Stat(journalDir); err != nil {
			fail("journal/", "missing, run `mnemo init`")
		} else {
			pass("journal/", journalDir)
		}

		configPath := filepath.Join(home, "config.yaml")
		if _, err := os.Stat(configPath); err != nil {
			warn("config.yaml", "not found, using defaults")
		} else {
			pass("config.yaml", configPath)
		}

		ignorePath := filepath.Join(home, ".mnemoignore")
		if _, err := os.Stat(ignorePath); err != nil {
			warn(".mnemoignore", "not found (optional)")
		} else {
			pass(".mnemoignore", ignorePath)
		}

		// --- Configuration ---
		fmt.Println("\nConfiguration:")

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			fail("load config", err.Error())
		} else {
			pass("load config", "ok")
			if err := cfg.Validate(); err != nil {
				fail("validate config", err.Error())
			} else {
				pass("validate config", "ok")
			}
			baseURL := "(default)"
			if cfg.Embedding.BaseURL != nil {
				baseURL = *cfg.Embedding.BaseURL
			}
			pass("embedding provider", fmt.Sprintf("%s @ %s", cfg.Embedding.Provider, baseURL))
			pass("context.semantic", cfg.Context.Semantic)
		}

		// --- Embedding models ---
		fmt.Println("\nEmbedding models:")

		if path, found := modelmap.Locate(modelmap.SearchPaths()); found {
			pass("models.yml", path)
		} else {
			warn("models.yml", "not found, using built-in defaults")
		}

		// --- Redaction ---
		fmt.Println("\nRedaction:")
		pass("built-in patterns", fmt.Sprintf("%d patterns", len(redaction.SensitivePatterns)))
		if rules, err := redaction.LoadIgnoreFile(ignorePath); err != nil {
			fail(".mnemoignore patterns", err.Error())
		} else {
			pass(".mnemoignore patterns", fmt.Sprintf("%d custom patterns (%d sector sections)", rules.Count(), len(rules.BySector)))
		}

		// --- Database & search ---
		fmt.Println("\nDatabase & search:")

		svc, err := core.NewService(home)
		if err != nil {
			fail("database connection", err.Error())
			fmt.Println("\nFix the issues above and re-run `mnemo doctor`.")
			os.Exit(1)
		}
		defer svc.Close()
		pass("database connection", "ok")

		total, err := svc.CountMemories(nil, nil)
		if err != nil {
			fail("memory count", err.Error())
		} else {
			pass("memory count", fmt.Sprintf("%d memories stored", total))
		}

		pass("FTS5 search", "always available")

		if svc.VectorsAvailable() {
			pass("vector search", "available (sqlite-vec loaded, table exists)")
		} else {
			warn("vector search", "not available, run `mnemo reindex` after configuring embeddings")
		}

		// --- Embedding provider live test ---
		fmt.Println("\nEmbedding provider:")

		provider, err := svc.EmbeddingProviderFor(modelmap.FallbackSector)
		if err != nil {
			fail("initialize provider", err.Error())
		} else {
			pass("initialize provider", fmt.Sprintf("model %s", svc.ResolveModel(modelmap.FallbackSector)))
			embedding, err := provider.Embed("mnemo doctor probe")
			if err != nil {
				fail("live probe", err.Error())
				warn("", "check that your embedding service is running and reachable")
			} else {
				pass("live probe", fmt.Sprintf("ok, %d dimensions", len(embedding)))
			}
		}

		// --- Summary ---
		fmt.Println()
		if ok {
			fmt.Println("All checks passed.")
		} else {
			fmt.Println("Some checks failed. Fix the issues above.")
			os.Exit(1)
		}
	},
}
