// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/bigpot/playerd/internal/store"
)

// SchemaStatus holds the migration state of the database.
type SchemaStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database schema status",
		Long:  `Show the current migration version and whether the schema is in a dirty state.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output status as JSON")

	return cmd
}

func runStatus(cmd *cobra.Command, jsonOutput bool) error {
	databaseURL, err := databaseURLFromEnv()
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = migrator.Close() //nolint:errcheck
	}()

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}

	status := SchemaStatus{Version: version, Dirty: dirty}

	if jsonOutput {
		out, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(out))
		return nil
	}

	cmd.Printf("schema version: %d\n", status.Version)
	if status.Dirty {
		cmd.Println("state: DIRTY (manual intervention required)")
	} else {
		cmd.Println("state: clean")
	}
	return nil
}
