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

var exportCmd = &cobra.Command{
	Use:   "export <backup-id> <dest>",
	Short: "Copy a backup out of the managed directory",
	Long: `Export copies the snapshot file to dest. A dest that is an existing
directory receives the file under its original name; otherwise dest is
the target path. The catalog is not changed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		path, err := eng.manager.ExportBackup(args[0], args[1])
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(map[string]string{"exported": args[0], "path": path})
		}
		fmt.Printf("Backup %s exported to %s\n", args[0], path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Bring an external snapshot into the catalog",
	Long: `Import copies a snapshot file into the managed directory and catalogs
it under a fresh identity. The document is checked just deep enough to
confirm it is a snapshot; contents are verified at restore time like
any other backup. The original file is left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		meta, err := eng.manager.ImportBackup(args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(meta)
		}
		fmt.Printf("Backup imported: %s\n", meta.ID)
		printMetadata(os.Stdout, meta)
		return nil
	},
}
