package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/menu-cache/internal/embedding"
)

func init() {
	cmd := &cobra.Command{
		Use:   "similarity <a> <b>",
		Short: "Embed two item names and print their cosine similarity",
		Long:  "Embed two item names with the configured embedder and report whether the novelty filter would treat them as duplicates.",
		Args:  cobra.ExactArgs(2),
		Run:   runSimilarity,
	}

	RootCmd.AddCommand(cmd)
}

func runSimilarity(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	emb, err := newEmbedder(cfg)
	if err != nil {
		exitErr("init", err)
	}
	if emb == nil {
		exitErr("similarity", errors.New("no embedder configured"))
	}

	vecs, err := emb.Embed(cmd.Context(), args)
	if err != nil {
		exitErr("embed", err)
	}
	if len(vecs) != 2 {
		exitErr("embed", fmt.Errorf("expected 2 vectors, got %d", len(vecs)))
	}

	sim := embedding.CosineSimilarity(vecs[0], vecs[1])
	duplicate := sim > cfg.Menu.NoveltyThreshold

	if textFormat() {
		fmt.Printf("%.4f (threshold %.2f, duplicate: %v)\n", sim, cfg.Menu.NoveltyThreshold, duplicate)
		return
	}
	printJSON(map[string]any{
		"a":          args[0],
		"b":          args[1],
		"similarity": sim,
		"threshold":  cfg.Menu.NoveltyThreshold,
		"duplicate":  duplicate,
	})
}
