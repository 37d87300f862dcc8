package cli

import (
	"fmt"
	"os"

	"mnemo/internal/core"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild vector index with currently resolved embedding models",
	Run: func(cmd *cobra.Command, args []string) {
		svc, err := core.NewService("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		defer func() { _ = svc.Close() }()

		fmt.Println("Reindexing memories...")

		progressCallback := func(current, total int) {
			fmt.Printf("  %d/%d\r", current, total)

			if current == total {
				fmt.Println()
			}
		}

		result, err := svc.Reindex(progressCallback)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Re-indexed %v of %v memories (%v dims)\n",
			result["indexed"], result["count"], result["dim"])
	},
}
