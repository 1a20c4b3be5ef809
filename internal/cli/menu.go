package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/menu-cache/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "menu <restaurant-id>",
		Short: "Produce the menu for a restaurant",
		Long:  "Run one cache-check / refresh / extraction pass for a place id and print the resulting record.",
		Args:  cobra.ExactArgs(1),
		Run:   runMenu,
	}

	cmd.Flags().Bool("trail", false, "Print the state trail to stderr")

	RootCmd.AddCommand(cmd)
}

func runMenu(cmd *cobra.Command, args []string) {
	showTrail, _ := cmd.Flags().GetBool("trail")
	cfg := loadConfig()

	a, err := newApp(cmd.Context(), cfg, slog.Default(), nil)
	if err != nil {
		exitErr("init", err)
	}
	defer a.Close()

	rec, out := a.orchestrator.Menu(cmd.Context(), args[0])
	if showTrail {
		fmt.Fprintf(os.Stderr, "%s (%s)\n", out.TrailString(), out.Result)
		if out.Cause != nil {
			fmt.Fprintf(os.Stderr, "cause: %v\n", out.Cause)
		}
	}

	if textFormat() {
		printRecordText(rec)
		return
	}
	printJSON(rec)
}

func printRecordText(rec *model.CachedMenuRecord) {
	name := rec.RestaurantName
	if name == "" {
		name = rec.RestaurantID
	}
	fmt.Printf("%s [%s, %d reviews analyzed]\n", name, rec.Source, rec.ReviewsAnalyzed)
	for _, item := range rec.Menu.Items() {
		flags := ""
		if item.Popular {
			flags += " *"
		}
		if !item.IsAvailable() {
			flags += " (unavailable)"
		}
		fmt.Printf("  %s%s: %s\n", item.Name, flags, item.Description)
	}
}
