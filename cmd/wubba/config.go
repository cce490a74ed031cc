package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmcdole/wubba/internal/adapter"
)

func newConfigCmd(opts *appOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file and stored data",
	}
	cmd.AddCommand(
		newConfigInitCmd(opts),
		newConfigPathCmd(opts),
		newConfigClearDataCmd(opts),
	)
	return cmd
}

func newConfigInitCmd(opts *appOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config.yaml populated with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			existing := filepath.Join(adapter.ConfigPath(opts.configDir), "config.yaml")
			if _, err := os.Stat(existing); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", existing)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to check config file: %w", err)
			}

			path, err := adapter.SaveConfigTo(adapter.DefaultConfig(), opts.configDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newConfigPathCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the directory config.yaml is read from",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), adapter.ConfigPath(opts.configDir))
		},
	}
}

func newConfigClearDataCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-data",
		Short: "Delete stored favourites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := adapter.LoadConfigFrom(opts.configDir)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := adapter.ClearData(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", cfg.Storage.Path)
			return nil
		},
	}
}
