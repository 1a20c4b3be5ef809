package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/menu-cache/internal/model"
	"github.com/rcliao/menu-cache/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export cached menus as JSON",
		Long:  "Export every current record as a JSON array. Filter by source with -s.",
		Run:   runExport,
	}

	cmd.Flags().StringP("source", "s", "", "Filter by source")

	cacheCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	source, _ := cmd.Flags().GetString("source")

	s := mustOpenStore(cmd.Context())
	defer s.Close()

	records, err := store.ExportAll(cmd.Context(), s, model.Provenance(source))
	if err != nil {
		exitErr("export", err)
	}
	if records == nil {
		records = []*model.CachedMenuRecord{}
	}

	printJSON(records)
}
