package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Run:   runStats,
	}

	cacheCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s := mustOpenStore(cmd.Context())
	defer s.Close()

	stats, err := s.Stats(cmd.Context())
	if err != nil {
		exitErr("stats", err)
	}

	if textFormat() {
		fmt.Printf("backend:     %s %s\n", stats.Backend, stats.Path)
		fmt.Printf("restaurants: %d\n", stats.Restaurants)
		fmt.Printf("items:       %d\n", stats.Items)
		fmt.Printf("revisions:   %d\n", stats.Revisions)
		for _, src := range stats.BySource {
			fmt.Printf("  %-18s %d\n", src.Source, src.Count)
		}
		return
	}

	printJSON(stats)
}
