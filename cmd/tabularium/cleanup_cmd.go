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

var deleteCmd = &cobra.Command{
	Use:   "delete <backup-id>",
	Short: "Delete a single backup",
	Long: `Delete removes the snapshot file and its catalog record. Deleting the
record survives the file already being gone, so a half-deleted backup
can always be cleaned up by running delete again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := eng.manager.DeleteBackup(args[0]); err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(map[string]string{"deleted": args[0]})
		}
		fmt.Printf("Backup %s deleted.\n", args[0])
		return nil
	},
}

var cleanupDryRun bool

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete backups older than the retention period",
	Long: `Cleanup deletes every backup strictly older than the configured
retention period, measured from each backup's creation time. Retention
disabled (retention_days = 0) makes cleanup a no-op.

--dry-run prints what a run would delete right now without deleting
anything.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if cleanupDryRun {
			preview := eng.manager.GetRetentionPreview()
			if jsonOutput {
				return printJSON(preview)
			}
			printRetentionPreview(os.Stdout, preview)
			return nil
		}

		ctx, cancel := signalContext()
		defer cancel()

		result, err := eng.manager.CleanupExpired(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(result)
		}

		if result.DeletedCount == 0 && len(result.Failed) == 0 {
			fmt.Println("Nothing to delete.")
			return nil
		}
		fmt.Printf("Deleted %d backup(s), reclaimed %s.\n", result.DeletedCount, formatSize(result.ReclaimedBytes))
		for _, id := range result.Failed {
			fmt.Printf("  failed: %s\n", id)
		}
		return nil
	},
}

//nolint:gochecknoinits // Cobra flag registration
func init() {
	cleanupCmd.Flags().BoolVar(&cleanupDryRun, "dry-run", false, "print what would be deleted without deleting")
}
