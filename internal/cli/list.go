package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/menu-cache/internal/model"
	"github.com/rcliao/menu-cache/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached menus",
		Run:   runList,
	}

	cmd.Flags().StringP("source", "s", "", "Filter by source (ai-initial, ai-incremental, template, generic-fallback)")
	cmd.Flags().IntP("limit", "l", 20, "Max results (negative for all)")
	cmd.Flags().Bool("ids-only", false, "Only output restaurant ids")

	cacheCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	if source != "" && !model.ValidProvenances[model.Provenance(source)] {
		exitErr("list", fmt.Errorf("unknown source %q", source))
	}

	s := mustOpenStore(cmd.Context())
	defer s.Close()

	records, err := s.List(cmd.Context(), store.ListParams{
		Source: model.Provenance(source),
		Limit:  limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, r := range records {
			fmt.Println(r.RestaurantID)
		}
		return
	}

	if textFormat() {
		for _, r := range records {
			fmt.Printf("%s\t%s\t%s\t%d items\t%s\n", r.RestaurantID, r.RestaurantName, r.Source,
				len(r.Menu), r.CachedAt.Format("2006-01-02 15:04"))
		}
		return
	}

	if records == nil {
		records = []*model.CachedMenuRecord{}
	}
	printJSON(records)
}
