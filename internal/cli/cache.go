package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// cacheCmd groups the cache maintenance commands.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain cached menus",
}

func init() {
	RootCmd.AddCommand(cacheCmd)
}

var nowFunc = time.Now
