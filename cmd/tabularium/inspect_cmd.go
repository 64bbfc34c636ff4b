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

var validateCmd = &cobra.Command{
	Use:   "validate <backup-id>",
	Short: "Run integrity checks against a backup",
	Long: `Validate checks a backup without touching the store: the snapshot file
exists, is non-empty, and matches the size and checksum the catalog
records; a record older than the retention horizon is flagged stale.
Every failing check is reported, not just the first. Use test-restore
to decode the document itself. The command exits non-zero when the
backup fails validation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		result, err := eng.manager.ValidateBackup(args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := printJSON(result); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("backup %s failed validation", result.BackupID)
			}
			return nil
		}

		if result.Valid {
			fmt.Printf("Backup %s is valid.\n", result.BackupID)
			return nil
		}
		fmt.Printf("Backup %s failed validation:\n", result.BackupID)
		for _, issue := range result.Issues {
			fmt.Printf("  - %s\n", issue)
		}
		return fmt.Errorf("%d issue(s) found", len(result.Issues))
	},
}

var testRestoreCmd = &cobra.Command{
	Use:   "test-restore <backup-id>",
	Short: "Rehearse a restore without touching the store",
	Long: `Test-restore decodes the snapshot and walks every table and row exactly
as a real restore would, without contacting the store. Warnings flag
shapes a restore would accept but alter, such as rows whose column set
differs from their table's first row. The command exits non-zero when
the rehearsal fails.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		result, err := eng.manager.TestRestore(args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := printJSON(result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("backup %s failed restore rehearsal", result.BackupID)
			}
			return nil
		}

		if result.Success {
			fmt.Printf("Backup %s would restore cleanly (%d tables).\n", result.BackupID, len(result.Tables))
			for _, warning := range result.Warnings {
				fmt.Printf("  warning: %s\n", warning)
			}
			return nil
		}
		fmt.Printf("Backup %s failed restore rehearsal: %s\n", result.BackupID, result.Error)
		printTableFailures(os.Stdout, result.Tables)
		return fmt.Errorf("restore rehearsal failed")
	},
}
