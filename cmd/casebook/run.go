// Test run commands for the casebook CLI.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Manage test runs",
}

var runAddDescription string

func init() {
	runAddCmd.Flags().StringVar(&runAddDescription, "description", "", "run description")

	runCmd.AddCommand(runListCmd)
	runCmd.AddCommand(runAddCmd)
}

var runListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the selected project's test runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, configDir, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		p, err := currentProject(store, configDir)
		if err != nil {
			return err
		}

		runs, err := repo.NewTestRunRepo(store).ListByProject(p.ID)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}

		if flagJSON {
			return printJSON(runs)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tCREATED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, short(r.Title, 50), r.Status, r.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()
	},
}

var runAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a test run to the selected project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, configDir, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		p, err := currentProject(store, configDir)
		if err != nil {
			return err
		}

		run, err := repo.NewTestRunRepo(store).Create(&types.TestRun{
			ProjectID:   p.ID,
			Title:       args[0],
			Description: runAddDescription,
		})
		if err != nil {
			return fmt.Errorf("add run: %w", err)
		}

		if flagJSON {
			return printJSON(run)
		}
		fmt.Printf("Added run %s (%s)\n", run.Title, run.ID)
		return nil
	},
}
