package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/menu-cache/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history <restaurant-id>",
		Short: "Show the write history of a cached menu",
		Args:  cobra.ExactArgs(1),
		Run:   runHistory,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max revisions")
	cmd.Flags().Bool("records", false, "Include the full record of each revision")

	cacheCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	withRecords, _ := cmd.Flags().GetBool("records")

	s := mustOpenStore(cmd.Context())
	defer s.Close()

	revs, err := s.History(cmd.Context(), args[0], limit)
	if err != nil {
		exitErr("history", err)
	}

	if textFormat() {
		for _, r := range revs {
			fmt.Printf("v%d\t%s\t%s\t%d items\t%d reviews\t%s\n", r.Version, r.ID, r.Source,
				r.ItemCount, r.ReviewsAnalyzed, r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return
	}

	if !withRecords {
		for i := range revs {
			revs[i].Record = nil
		}
	}
	if revs == nil {
		revs = []store.Revision{}
	}
	printJSON(revs)
}
