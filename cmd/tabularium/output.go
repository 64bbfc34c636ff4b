// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/* output.go - Human and Machine Output Rendering
 *
 * Human output goes through text/tabwriter for the list views and plain
 * aligned lines for single records. Machine output (--json) is indented
 * JSON on stdout. Sizes are humanized in tables, exact in JSON.
 */
//nolint:staticcheck // File documentation, not package doc

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-json"

	"github.com/tabularium/tabularium/internal/backup"
)

// displayTime is the timestamp layout for table output.
const displayTime = "2006-01-02 15:04:05"

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(b))
	return nil
}

// formatSize renders a byte count for humans (IEC units).
func formatSize(n int64) string {
	if n < 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(n))
}

// printBackupTable renders catalog records as an aligned table.
func printBackupTable(w io.Writer, metas []*backup.Metadata) {
	tw := tabwriter.NewWriter(w, 0, 1, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSIZE\tTABLES\tROWS\tENCODING\tTRIGGER")
	for _, m := range metas {
		trigger := string(m.Trigger)
		if trigger == "" {
			trigger = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			m.ID,
			m.CreatedAt.UTC().Format(displayTime),
			formatSize(m.Size),
			len(m.Tables),
			m.RecordCount,
			m.Encoding,
			trigger,
		)
	}
	tw.Flush() //nolint:errcheck // Terminal output
}

// printTableFailures lists every failed table. Returns the failure count
// so callers can summarize.
func printTableFailures(w io.Writer, results []backup.TableResult) int {
	failed := 0
	for _, t := range results {
		if !t.OK() {
			failed++
			fmt.Fprintf(w, "  failed: %s: %s\n", t.Table, t.Err)
		}
	}
	return failed
}

// printStats renders aggregate catalog statistics.
func printStats(w io.Writer, stats *backup.Stats) {
	tw := tabwriter.NewWriter(w, 0, 1, 2, ' ', 0)
	fmt.Fprintf(tw, "Backups:\t%d\n", stats.TotalCount)
	fmt.Fprintf(tw, "Total size:\t%s\n", formatSize(stats.TotalSizeBytes))
	fmt.Fprintf(tw, "Average size:\t%s\n", formatSize(stats.AverageSize))
	fmt.Fprintf(tw, "Total rows:\t%d\n", stats.TotalRecords)
	if stats.OldestBackup != nil {
		fmt.Fprintf(tw, "Oldest:\t%s\n", stats.OldestBackup.UTC().Format(displayTime))
	}
	if stats.NewestBackup != nil {
		fmt.Fprintf(tw, "Newest:\t%s\n", stats.NewestBackup.UTC().Format(displayTime))
	}
	if stats.RetentionDays > 0 {
		fmt.Fprintf(tw, "Retention:\t%d days (%d expired)\n", stats.RetentionDays, stats.ExpiredCount)
	} else {
		fmt.Fprintf(tw, "Retention:\tdisabled\n")
	}
	for trigger, n := range stats.CountByTrigger {
		fmt.Fprintf(tw, "  %s:\t%d\n", trigger, n)
	}
	tw.Flush() //nolint:errcheck // Terminal output
}

// printRetentionPreview renders what a cleanup run would delete.
func printRetentionPreview(w io.Writer, preview *backup.RetentionPreview) {
	if preview.DeleteCount == 0 {
		fmt.Fprintln(w, "Nothing to delete.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 1, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tAGE\tSIZE\tREASON")
	for _, item := range preview.WouldDelete {
		fmt.Fprintf(tw, "%s\t%s\t%dd\t%s\t%s\n",
			item.ID,
			item.CreatedAt.UTC().Format(displayTime),
			item.AgeDays,
			formatSize(item.Size),
			item.Reason,
		)
	}
	tw.Flush() //nolint:errcheck // Terminal output
	fmt.Fprintf(w, "Would delete %d of %d backup(s), reclaiming %s.\n",
		preview.DeleteCount,
		preview.DeleteCount+preview.KeepCount,
		formatSize(preview.DeleteBytes),
	)
}

// printMetadata renders one catalog record as aligned detail lines.
func printMetadata(w io.Writer, meta *backup.Metadata) {
	fmt.Fprintf(w, "  id:       %s\n", meta.ID)
	fmt.Fprintf(w, "  file:     %s\n", meta.Filename)
	fmt.Fprintf(w, "  created:  %s\n", meta.CreatedAt.UTC().Format(displayTime))
	fmt.Fprintf(w, "  size:     %s\n", formatSize(meta.Size))
	fmt.Fprintf(w, "  encoding: %s\n", meta.Encoding)
	fmt.Fprintf(w, "  tables:   %d\n", len(meta.Tables))
	fmt.Fprintf(w, "  rows:     %d\n", meta.RecordCount)
	if meta.Trigger != "" {
		fmt.Fprintf(w, "  trigger:  %s\n", meta.Trigger)
	}
	if meta.Notes != "" {
		fmt.Fprintf(w, "  notes:    %s\n", meta.Notes)
	}
}
