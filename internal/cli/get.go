package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <restaurant-id>",
		Short: "Show a cached menu",
		Long:  "Show the cached record for a restaurant without contacting any provider.",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().Bool("stale", false, "Also report whether the record is past its TTL")

	cacheCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	checkStale, _ := cmd.Flags().GetBool("stale")
	cfg := loadConfig()

	s, err := openStore(cmd.Context(), cfg)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rec, err := s.Get(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}

	if textFormat() {
		printRecordText(rec)
		if checkStale {
			fmt.Printf("stale: %v\n", rec.IsStale(nowFunc(), cfg.Cache.TTL))
		}
		return
	}
	if checkStale {
		printJSON(struct {
			Record any  `json:"record"`
			Stale  bool `json:"stale"`
		}{rec, rec.IsStale(nowFunc(), cfg.Cache.TTL)})
		return
	}
	printJSON(rec)
}
