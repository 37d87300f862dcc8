package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mnemo/internal/core"
)

var removeCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a memory from the index",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		memoryID := args[0]

		svc, err := core.NewService("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer svc.Close()

		deleted, err := svc.Remove(memoryID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if deleted {
			fmt.Printf("Removed memory %s\n", memoryID)
		} else {
			fmt.Printf("No memory found for %s\n", memoryID)
		}
	},
}
