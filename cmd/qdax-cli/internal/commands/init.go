package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BioGeek/qdax-go/pkg/config"
)

func NewInitCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented starter config file",
		Long: `Write a starter configuration with every section filled in with the
defaults: experiment, population, selection, perturbation, training
loop, store, logging, and event log. The file is placed where
'qdax-cli run' discovers it automatically.`,
		Example: `  # Write ./qdax.yaml
  qdax-cli init

  # Write the starter config somewhere else
  qdax-cli init --dir ~/experiments/sweep-1`,
		Run: func(cmd *cobra.Command, args []string) {
			path, err := config.NewDiscovery().CreateDefaultConfigFileInPath(dir)
			if err != nil {
				fail(err)
			}
			fmt.Printf("Wrote starter config to %s\n", path)
			fmt.Println("Edit it, then start an experiment with 'qdax-cli run'.")
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the config into")

	return cmd
}
