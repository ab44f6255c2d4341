// Package main provides the casebook CLI: a test case management
// store with projects, folders, test cases, and runs, served from a
// local SQLite file or a shared Postgres database.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes: 1 for user errors (bad input, nothing selected), 2 for
// system errors (config, backend).
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
)

var rootCmd = &cobra.Command{
	Use:   "casebook",
	Short: "Casebook is a test case management store",
	Long: `Casebook manages test projects, folders, test cases, and test runs.
Data lives in a local SQLite file by default, or in a shared Postgres
database when configured, with live change notifications either way.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: $(CWD)/.casebook)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.casebook-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(caseCmd)
	rootCmd.AddCommand(folderCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	// glog registers its flags on the standard flag set.
	flag.CommandLine.Parse(nil)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
