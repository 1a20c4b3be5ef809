package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rcliao/menu-cache/internal/config"
)

func init() {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialise configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets redacted",
		Run:   runConfigShow,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		Run:   runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	cmd.AddCommand(show, initCmd)
	RootCmd.AddCommand(cmd)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg := *loadConfig()
	cfg.Places.APIKey = redact(cfg.Places.APIKey)
	cfg.Generator.APIKey = redact(cfg.Generator.APIKey)
	cfg.Embedder.APIKey = redact(cfg.Embedder.APIKey)

	if textFormat() {
		b, err := yaml.Marshal(cfg)
		if err != nil {
			exitErr("marshal", err)
		}
		fmt.Print(string(b))
		return
	}
	printJSON(cfg)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	force, _ := cmd.Flags().GetBool("force")
	path := config.ProjectConfigFile
	if len(args) == 1 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !force {
		exitErr("init", fmt.Errorf("%s already exists (use --force)", path))
	}
	if err := config.DefaultConfig().SaveToFile(path); err != nil {
		exitErr("init", err)
	}
	fmt.Printf(`{"ok":true,"path":%q}`+"\n", path)
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****"
}
