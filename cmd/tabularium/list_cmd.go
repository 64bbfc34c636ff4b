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
	listTrigger string
	listLimit   int
	listOffset  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups in the catalog",
	Long: `List catalog records newest first. --trigger filters by what initiated
the backup (manual, scheduled, imported); --limit and --offset paginate.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch backup.Trigger(listTrigger) {
		case "", backup.TriggerManual, backup.TriggerScheduled, backup.TriggerImported:
		default:
			return fmt.Errorf("invalid trigger %q (expected manual, scheduled or imported)", listTrigger)
		}

		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		metas, err := eng.manager.ListBackups(backup.ListOptions{
			Trigger: backup.Trigger(listTrigger),
			Limit:   listLimit,
			Offset:  listOffset,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(metas)
		}

		if len(metas) == 0 {
			fmt.Println("No backups found.")
			return nil
		}
		printBackupTable(os.Stdout, metas)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate backup statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		stats := eng.manager.GetStats()
		if jsonOutput {
			return printJSON(stats)
		}
		printStats(os.Stdout, stats)
		return nil
	},
}

//nolint:gochecknoinits // Cobra flag registration
func init() {
	listCmd.Flags().StringVar(&listTrigger, "trigger", "", "filter by trigger (manual, scheduled, imported)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum records to print (0 = all)")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "records to skip")
}
