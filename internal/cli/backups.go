package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/TiredRebel/personal-assistant/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var restoreAt string

// dataFileArg maps "contacts" or "notes" to their file names and passes
// anything else through.
func dataFileArg(name string) string {
	switch strings.ToLower(name) {
	case "contacts":
		return store.ContactsFile
	case "notes":
		return store.NotesFile
	}
	return name
}

// backupEntry is one row of pa backups --json.
type backupEntry struct {
	File string `json:"file"`
	store.Backup
}

var backupsCmd = &cobra.Command{
	Use:   "backups [file]",
	Short: "List backups of the data files",
	Long: `List the timestamped backups kept for contacts.json and notes.json,
newest first. A backup is taken before every save; backup_keep in the
config sets how many are kept per file.`,
	Example: `  pa backups
  pa backups contacts
  pa backups notes.json --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		js, err := a.jsonStore()
		if err != nil {
			return err
		}

		files := []string{store.ContactsFile, store.NotesFile}
		if len(args) == 1 {
			files = []string{dataFileArg(args[0])}
		}
		entries := []backupEntry{}
		for _, f := range files {
			backups, err := js.ListBackups(f)
			if err != nil {
				return err
			}
			for _, b := range backups {
				entries = append(entries, backupEntry{File: f, Backup: b})
			}
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}
		if len(entries) == 0 {
			fmt.Println("No backups found.")
			return nil
		}
		tbl := NewTable(os.Stdout, useColor(os.Stdout, settings.Color, noColor), "FILE", "BACKUP", "TAKEN", "SIZE")
		for _, e := range entries {
			tbl.Row(e.File, e.Name, e.Timestamp.Format("2006-01-02 15:04:05")+" ("+humanize.Time(e.Timestamp)+")",
				humanize.Bytes(uint64(e.Size)))
		}
		return tbl.Flush()
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore a data file from a backup",
	Long: `Replace contacts.json or notes.json with one of its backups. Without
--at the newest backup is used; --at selects the backup taken at that
second (the YYYYMMDD_HHMMSS part of the backup name).`,
	Example: `  pa restore contacts
  pa restore notes.json --at 20250301_090000`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var at time.Time
		if restoreAt != "" {
			t, err := time.ParseInLocation(store.BackupStamp, restoreAt, time.Local)
			if err != nil {
				return fmt.Errorf("--at: want YYYYMMDD_HHMMSS, got %q", restoreAt)
			}
			at = t
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		js, err := a.jsonStore()
		if err != nil {
			return err
		}

		name := dataFileArg(args[0])
		b, err := js.Restore(name, at)
		if err != nil {
			return err
		}
		fmt.Printf("Restored %s from %s\n", name, b.Name)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Copy the data files and a manifest into a directory",
	Example: `  pa export ./pa-export`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		js, err := a.jsonStore()
		if err != nil {
			return err
		}

		m, err := js.Export(args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(m)
		}
		fmt.Printf("Exported %d file(s) to %s\n", len(m.Files), args[0])
		for _, f := range m.Files {
			fmt.Printf("  %s\n", f)
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Replace the data files with those in a directory",
	Long: `Import every JSON data file from a directory (for example one written by
pa export). Current files are backed up first, and nothing is replaced
unless every incoming file is valid JSON.`,
	Example: `  pa import ./pa-export`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		js, err := a.jsonStore()
		if err != nil {
			return err
		}

		names, err := js.Import(args[0])
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("No data files found.")
			return nil
		}
		fmt.Printf("Imported: %s\n", strings.Join(names, ", "))
		return nil
	},
}

func init() {
	restoreCmd.Flags().StringVar(&restoreAt, "at", "", "backup timestamp, YYYYMMDD_HHMMSS")
	rootCmd.AddCommand(backupsCmd, restoreCmd, exportCmd, importCmd)
}
