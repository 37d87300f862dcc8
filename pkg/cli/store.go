package cli

import (
	"fmt"
	"os"
	"strings"

	"mnemo/internal/core"
	"mnemo/internal/models"

	"github.com/spf13/cobra"
)

var (
	storeTitle        string
	storeContent      string
	storeSector       string
	storeTags         string
	storeRelatedFiles string
	storeDetails      string
	storeSource       string
	storeProject      string
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Store a memory",
	Run: func(cmd *cobra.Command, args []string) {
		if storeTitle == "" || storeContent == "" {
			fmt.Fprintf(os.Stderr, "Error: --title and --content are required\n")
			os.Exit(1)
		}

		raw := models.RawMemoryInput{
			Title:   storeTitle,
			Content: storeContent,
			Sector:  storeSector,
		}

		if storeSource != "" {
			raw.Source = &storeSource
		}

		if storeDetails != "" {
			raw.Details = &storeDetails
		}

		if storeTags != "" {
			tags := strings.Split(storeTags, ",")
			for i := range tags {
				tags[i] = strings.TrimSpace(tags[i])
			}

			raw.Tags = tags
		}

		if storeRelatedFiles != "" {
			files := strings.Split(storeRelatedFiles, ",")
			for i := range files {
				files[i] = strings.TrimSpace(files[i])
			}

			raw.RelatedFiles = files
		}

		svc, err := core.NewService("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		defer func() { _ = svc.Close() }()

		result, err := svc.Store(raw, storeProject)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		id, _ := result["id"].(string)
		sector, _ := result["sector"].(string)
		filePath, _ := result["file_path"].(string)

		fmt.Printf("Stored: %s (id: %s, sector: %s)\n", storeTitle, id, sector)
		fmt.Printf("File: %s\n", filePath)
	},
}

func init() {
	storeCmd.Flags().StringVarP(&storeTitle, "title", "t", "", "Title of the memory (required)")
	storeCmd.Flags().StringVarP(&storeContent, "content", "c", "", "What happened or was learned (required)")
	storeCmd.Flags().StringVarP(&storeSector, "sector", "s", "", "Memory sector (episodic, semantic, procedural, emotional, reflective)")
	storeCmd.Flags().StringVarP(&storeTags, "tags", "g", "", "Comma-separated tags")
	storeCmd.Flags().StringVar(&storeRelatedFiles, "related-files", "", "Comma-separated file paths")
	storeCmd.Flags().StringVarP(&storeDetails, "details", "d", "", "Extended details or context")
	storeCmd.Flags().StringVar(&storeSource, "source", "", "Source agent name")
	storeCmd.Flags().StringVarP(&storeProject, "project", "p", "", "Project name (defaults to current directory)")
}
