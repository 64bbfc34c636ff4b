// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabularium/tabularium/internal/backup"
)

var (
	backupTables  []string
	backupExclude []string
	backupNotes   string
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a backup of the configured store",
	Long: `Create a full logical snapshot of the configured store and record it
in the catalog.

By default every base table is captured. --tables restricts the run to
an exact table set; --exclude subtracts tables afterwards, so a table
named in both is excluded. A table that fails to extract is reported
and left out of the snapshot; the command fails only when every table
fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		ctx, cancel := signalContext()
		defer cancel()

		result, err := eng.manager.CreateBackup(ctx, backup.CreateOptions{
			IncludeTables: backupTables,
			ExcludeTables: backupExclude,
			Notes:         backupNotes,
			Trigger:       backup.TriggerManual,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(result)
		}

		fmt.Printf("Backup created: %s\n", result.Meta.ID)
		printMetadata(os.Stdout, result.Meta)
		if n := printTableFailures(os.Stdout, result.Tables); n > 0 {
			fmt.Printf("Completed with %d failed table(s).\n", n)
		}
		return nil
	},
}

//nolint:gochecknoinits // Cobra flag registration
func init() {
	backupCmd.Flags().StringSliceVar(&backupTables, "tables", nil, "tables to capture (default: all base tables)")
	backupCmd.Flags().StringSliceVar(&backupExclude, "exclude", nil, "tables to leave out")
	backupCmd.Flags().StringVarP(&backupNotes, "notes", "n", "", "free-form note recorded on the backup")
}
