package cli

import (
	"fmt"
	"os"

	"mnemo/internal/core"

	"github.com/spf13/cobra"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [id]",
	Short: "Retrieve full details for a memory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		memoryID := args[0]

		svc, err := core.NewService("")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		defer func() { _ = svc.Close() }()

		detail, err := svc.GetDetails(memoryID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if detail == nil {
			fmt.Printf("No details found for memory %s\n", memoryID)

			return
		}

		fmt.Println(detail.Body)
	},
}
