package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/menu-cache/internal/model"
	"github.com/rcliao/menu-cache/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search cached menu items by keyword",
		Long:  "Search item names and descriptions across every cached restaurant.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("source", "s", "", "Filter by source")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	cacheCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")
	query := strings.Join(args, " ")

	s := mustOpenStore(cmd.Context())
	defer s.Close()

	searcher, ok := s.(store.ItemSearcher)
	if !ok {
		exitErr("search", fmt.Errorf("%T does not support item search", s))
	}

	results, err := searcher.SearchItems(cmd.Context(), store.SearchParams{
		Query:  query,
		Source: model.Provenance(source),
		Limit:  limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if textFormat() {
		for _, m := range results {
			fmt.Printf("%s\t%s\t%s: %s\n", m.RestaurantID, m.RestaurantName, m.Name, m.Description)
		}
		return
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}
	printJSON(results)
}
