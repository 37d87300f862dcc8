package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"mnemo/internal/core"
	"mnemo/internal/models"
)

var (
	listLimit   int
	listProject bool
	listSector  string
	listQuery   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent memories",
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := core.NewService("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer svc.Close()

		var project *string
		if listProject {
			dir, _ := os.Getwd()
			projectName := filepath.Base(dir)
			project = &projectName
		}

		var sector *string
		if listSector != "" {
			normalized := models.NormalizeSector(listSector)
			sector = &normalized
		}

		var query *string
		if listQuery != "" {
			query = &listQuery
		}

		results, total, err := svc.GetContext(listLimit, project, sector, query, "never", false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if len(results) == 0 {
			fmt.Println("No memories found.")
			return
		}

		fmt.Printf("Available memories (%d total, showing %d):\n", total, len(results))

		for _, r := range results {
			dateStr := r.CreatedAt[:10]
			dateDisplay := dateStr
			if t, err := time.Parse("2006-01-02", dateStr); err == nil {
				dateDisplay = t.Format("Jan 02")
			}

			tags := ""
			if len(r.Tags) > 0 {
				tags = fmt.Sprintf(" [%v]", r.Tags)
			}

			fmt.Printf("- [%s] %s [%s]%s\n", dateDisplay, r.Title, r.Sector, tags)
		}

		fmt.Println("\nUse `mnemo search <query>` for full details on any memory.")
	},
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 10, "Maximum number of memories")
	listCmd.Flags().BoolVar(&listProject, "project", false, "Filter to current project")
	listCmd.Flags().StringVar(&listSector, "sector", "", "Filter by memory sector")
	listCmd.Flags().StringVar(&listQuery, "query", "", "Search query for filtering")
}
