// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"fmt"

	"github.com/ManuGH/vssplay/internal/config"
	"github.com/ManuGH/vssplay/internal/version"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := config.NewLoader(root.configPath, version.Version).Load(); err != nil {
				return err
			}
			source := root.configPath
			if source == "" {
				source = "env+defaults"
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "configuration valid (%s)\n", source)
			return err
		},
	}

	dump := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewLoader(root.configPath, version.Version).Load()
			if err != nil {
				return err
			}
			if cfg.Gateway.Token != "" {
				cfg.Gateway.Token = "***"
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.AddCommand(validate, dump)
	return cmd
}
