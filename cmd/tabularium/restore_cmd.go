// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-id>",
	Short: "Restore a backup into the configured store",
	Long: `Restore replays a snapshot into the store: each table the snapshot
holds is cleared and its rows reinserted. Tables absent from the
snapshot are left untouched.

A table that fails to restore is reported and skipped; the data already
replayed into other tables stays in place. The command fails only when
every table fails. Interrupting a restore stops it between tables,
leaving already-restored tables complete.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		ctx, cancel := signalContext()
		defer cancel()

		result, err := eng.manager.RestoreBackup(ctx, args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(result)
		}

		fmt.Printf("Restored %d table(s), %d row(s) in %dms from backup %s\n",
			len(result.RestoredTables), result.RowsRestored, result.DurationMS, result.BackupID)
		if n := printTableFailures(os.Stdout, result.Tables); n > 0 {
			fmt.Printf("Completed with %d failed table(s).\n", n)
		}
		return nil
	},
}
