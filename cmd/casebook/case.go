// Test case commands for the casebook CLI.
package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

var caseCmd = &cobra.Command{
	Use:   "case",
	Short: "Manage test cases",
}

var (
	caseListFolder  string
	caseAddFolder   string
	caseAddPriority string
	caseAddType     string
	caseAddTags     []string
)

func init() {
	caseListCmd.Flags().StringVar(&caseListFolder, "folder", "", "only list cases in this folder")
	caseAddCmd.Flags().StringVar(&caseAddFolder, "folder", "", "file the case under this folder")
	caseAddCmd.Flags().StringVar(&caseAddPriority, "priority", "", "priority (Low, Medium, High, Critical)")
	caseAddCmd.Flags().StringVar(&caseAddType, "type", "", "test type (Functional, Performance, ...)")
	caseAddCmd.Flags().StringSliceVar(&caseAddTags, "tag", nil, "tag (repeatable)")

	caseCmd.AddCommand(caseListCmd)
	caseCmd.AddCommand(caseAddCmd)
	caseCmd.AddCommand(caseShowCmd)
	caseCmd.AddCommand(caseDeleteCmd)
}

var caseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the selected project's test cases",
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
		var list []*types.TestCase
		if caseListFolder != "" {
			list, err = cases.ListByFolder(caseListFolder)
		} else {
			list, err = cases.ListByProject(p.ID)
		}
		if err != nil {
			return fmt.Errorf("list cases: %w", err)
		}

		if flagJSON {
			return printJSON(list)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tSTATE\tPRIORITY\tAUTOMATION")
		for _, tc := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", tc.ID, short(tc.Title, 50), tc.State, tc.Priority, tc.AutomationStatus)
		}
		return w.Flush()
	},
}

var caseAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a test case to the selected project",
	Long: `Add a test case. Unset fields default to a Draft, Medium priority,
Functional, not automated case.

Example:
  casebook case add "Login with valid credentials"
  casebook case add "Checkout under load" --priority High --type Performance --tag checkout`,
	Args: cobra.ExactArgs(1),
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

		tc, err := repo.NewTestCaseRepo(store).Create(&types.TestCase{
			ProjectID: p.ID,
			FolderID:  caseAddFolder,
			Title:     args[0],
			Priority:  caseAddPriority,
			Type:      caseAddType,
			Tags:      caseAddTags,
		})
		if err != nil {
			return fmt.Errorf("add case: %w", err)
		}

		if flagJSON {
			return printJSON(tc)
		}
		fmt.Printf("Added case %s (%s)\n", tc.Title, tc.ID)
		return nil
	},
}

var caseShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one test case in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		tc, err := repo.NewTestCaseRepo(store).Get(args[0])
		if err != nil {
			return fmt.Errorf("show case: %w", err)
		}

		if flagJSON {
			return printJSON(tc)
		}

		fmt.Println("ID:        ", tc.ID)
		fmt.Println("Title:     ", tc.Title)
		fmt.Println("State:     ", tc.State)
		fmt.Println("Priority:  ", tc.Priority)
		fmt.Println("Type:      ", tc.Type)
		fmt.Println("Automation:", tc.AutomationStatus)
		if len(tc.Tags) > 0 {
			fmt.Println("Tags:      ", strings.Join(tc.Tags, ", "))
		}
		if tc.Description != "" {
			fmt.Println("Description:")
			fmt.Println(" ", tc.Description)
		}
		if tc.Preconditions != "" {
			fmt.Println("Preconditions:")
			fmt.Println(" ", tc.Preconditions)
		}
		if tc.Steps != "" {
			fmt.Println("Steps:")
			fmt.Println(" ", tc.Steps)
		}
		if tc.ExpectedResults != "" {
			fmt.Println("Expected results:")
			fmt.Println(" ", tc.ExpectedResults)
		}
		return nil
	},
}

var caseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a test case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		if err := repo.NewTestCaseRepo(store).Delete(args[0]); err != nil {
			return fmt.Errorf("delete case: %w", err)
		}
		fmt.Println("Deleted case", args[0])
		return nil
	},
}
