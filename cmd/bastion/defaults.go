package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/bastion/internal/config"
)

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the built-in balance file",
	Long: `Print the embedded balance YAML. Save it to ~/.bastion/configs/bastion.yaml
or ./configs/bastion.yaml and edit it to change the game's balance.

Examples:
  bastion defaults > ~/.bastion/configs/bastion.yaml`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		if _, err := os.Stdout.Write(config.DefaultYAML()); err != nil {
			fail("%v", err)
		}
	},
}
