package main

import (
	"github.com/spf13/cobra"

	"github.com/bigpot/playerd/internal/xdg"
)

// Global flags available to all subcommands.
var configFile string

// resolveConfigFile returns the --config path when given, otherwise the
// XDG default config file if one exists.
func resolveConfigFile() string {
	if configFile != "" {
		return configFile
	}
	return xdg.DefaultConfigFile()
}

// NewRootCmd creates the root command for the playerd CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playerd",
		Short: "playerd - player account and authentication service",
		Long: `playerd manages player accounts for the casino platform: registration,
credential login, signed bearer tokens, and authenticated lookup and
deletion, backed by PostgreSQL.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}
