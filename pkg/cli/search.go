package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"mnemo/internal/core"
	"mnemo/internal/models"

	"github.com/spf13/cobra"
)

var (
	searchLimit   int
	searchProject bool
	searchSector  string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search memories",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := args[0]

		svc, err := core.NewService("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		defer func() { _ = svc.Close() }()

		var project *string

		if searchProject {
			dir, _ := os.Getwd()
			projectName := filepath.Base(dir)
			project = &projectName
		}

		var sector *string
		if searchSector != "" {
			normalized := models.NormalizeSector(searchSector)
			sector = &normalized
		}

		results, err := svc.Search(query, searchLimit, project, sector, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(results) == 0 {
			fmt.Println("No results found.")

			return
		}

		fmt.Printf("\n Results (%d found) \n\n", len(results))

		for i, r := range results {
			src := ""
			if r.Source != nil {
				src = *r.Source
			}

			fmt.Printf(" [%d] %s (score: %.2f)\n", i+1, r.Title, r.Score)
			fmt.Printf("     %s | %s | %s", r.Sector, r.CreatedAt[:10], r.Project)

			if src != "" {
				fmt.Printf(" | %s", src)
			}

			fmt.Println()
			fmt.Printf("     %s\n", r.Content)

			if r.HasDetails {
				fmt.Printf("     Details: available (use `mnemo retrieve %s`)\n", r.ID[:12])
			}

			fmt.Println()
		}
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "Maximum number of results")
	searchCmd.Flags().BoolVarP(&searchProject, "project", "p", false, "Filter to current project")
	searchCmd.Flags().StringVarP(&searchSector, "sector", "s", "", "Filter by memory sector")
}
