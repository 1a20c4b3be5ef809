package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm <restaurant-id>",
		Short: "Delete a cached menu",
		Long:  "Delete the current cached record. The next request regenerates it. Revision history is kept.",
		Args:  cobra.ExactArgs(1),
		Run:   runRm,
	}

	cacheCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	id := args[0]

	s := mustOpenStore(cmd.Context())
	defer s.Close()

	if err := s.Delete(cmd.Context(), id); err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"restaurant_id":%q}`+"\n", id)
}
