package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"mnemo/internal/modelmap"
	"mnemo/internal/models"

	"github.com/spf13/cobra"
)

var modelsProvider string

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show resolved embedding models per sector",
	Long:  `Shows which embedding model each memory sector resolves to, per provider. The mapping comes from models.yml when one is found at a known location, otherwise from the built-in defaults.`,
	Run: func(cmd *cobra.Command, args []string) {
		resolver := modelmap.NewResolver()
		mapping := resolver.Load()

		if path, found := modelmap.Locate(modelmap.SearchPaths()); found {
			fmt.Printf("Mapping source: %s\n\n", path)
		} else {
			fmt.Print("Mapping source: built-in defaults\n\n")
		}

		providers := []string{
			modelmap.ProviderOllama,
			modelmap.ProviderOpenAI,
			modelmap.ProviderGemini,
			modelmap.ProviderAWS,
			modelmap.ProviderLocal,
		}
		if modelsProvider != "" {
			providers = []string{modelsProvider}
		}

		// Known sectors first, then any extra sections from the file.
		sectors := append([]string{}, models.ValidSectors...)
		known := make(map[string]bool)
		for _, s := range sectors {
			known[s] = true
		}
		var extra []string
		for s := range mapping {
			if !known[s] {
				extra = append(extra, s)
			}
		}
		sort.Strings(extra)
		sectors = append(sectors, extra...)

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprint(w, "SECTOR")
		for _, p := range providers {
			fmt.Fprintf(w, "\t%s", p)
		}
		fmt.Fprintln(w)

		for _, sector := range sectors {
			fmt.Fprint(w, sector)
			for _, p := range providers {
				fmt.Fprintf(w, "\t%s", resolver.Model(sector, p))
			}
			fmt.Fprintln(w)
		}

		w.Flush()
	},
}

func init() {
	modelsCmd.Flags().StringVarP(&modelsProvider, "provider", "p", "", "Show a single provider column")
}
