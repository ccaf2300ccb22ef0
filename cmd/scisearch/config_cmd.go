package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"scisearch/internal/config"
)

var (
	configWrite bool
	configForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration or write it to the config file",
	Long: `Print the effective configuration.

With --write the configuration is saved to the config file instead (--config,
or the default location). Without an existing file that means the defaults;
--endpoint and --log-level are stored along with them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if configWrite {
			return writeConfig(out)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# file: %s\n# resolved endpoint: %s\n", cfgFile, endpoint)
		_, err = out.Write(data)
		return err
	},
}

func writeConfig(out io.Writer) error {
	if _, err := os.Stat(cfgFile); err == nil && !configForce {
		return fmt.Errorf("%s already exists; use --force to overwrite", cfgFile)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if endpointArg != "" {
		cfg.API.Endpoint = endpointArg
	}
	if err := config.Save(cfgFile, cfg); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	_, err := fmt.Fprintf(out, "wrote %s\n", cfgFile)
	return err
}

func init() {
	configCmd.Flags().BoolVar(&configWrite, "write", false, "Save the configuration to the config file")
	configCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file with --write")
	rootCmd.AddCommand(configCmd)
}
