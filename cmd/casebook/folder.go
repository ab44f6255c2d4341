// Folder commands for the casebook CLI.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/internal/stats"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

var folderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders",
}

var folderAddParent string

func init() {
	folderAddCmd.Flags().StringVar(&folderAddParent, "parent", "", "parent folder id")

	folderCmd.AddCommand(folderListCmd)
	folderCmd.AddCommand(folderAddCmd)
}

var folderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the selected project's folders with their case counts",
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

		cases := repo.NewTestCaseRepo(store)
		folders, err := repo.NewFolderRepo(store).ListByProject(p.ID)
		if err != nil {
			return fmt.Errorf("list folders: %w", err)
		}
		stats.NewAggregator(cases).Annotate(folders)

		if flagJSON {
			return printJSON(folders)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCASES\tAUTOMATED")
		for _, f := range folders {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", f.ID, f.Name, f.TestCount, f.AutomationCount)
		}
		return w.Flush()
	},
}

var folderAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a folder to the selected project",
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

		f, err := repo.NewFolderRepo(store).Create(&types.Folder{
			ProjectID: p.ID,
			Name:      args[0],
			ParentID:  folderAddParent,
		})
		if err != nil {
			return fmt.Errorf("add folder: %w", err)
		}

		if flagJSON {
			return printJSON(f)
		}
		fmt.Printf("Added folder %s (%s)\n", f.Name, f.ID)
		return nil
	},
}
