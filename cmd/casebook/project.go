// Project commands for the casebook CLI.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/casebook/internal/repo"
	"github.com/mesh-intelligence/casebook/pkg/types"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectCreateDescription string

func init() {
	projectCreateCmd.Flags().StringVar(&projectCreateDescription, "description", "", "project description")

	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectSelectCmd)
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, configDir, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		projects, err := repo.NewProjectRepo(store).List()
		if err != nil {
			return fmt.Errorf("list projects: %w", err)
		}

		if flagJSON {
			return printJSON(projects)
		}

		selected := savedProjectID(configDir)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, " \tID\tKEY\tNAME\tDESCRIPTION")
		for _, p := range projects {
			mark := " "
			if p.ID == selected {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", mark, p.ID, p.Key, p.Name, short(p.Description, 40))
		}
		return w.Flush()
	},
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name> <key>",
	Short: "Create a project",
	Long: `Create a project. The key is 2-10 alphanumeric characters and is
stored upper-cased; it cannot be changed later.

Example:
  casebook project create "Payments" PAY
  casebook project create "Mobile App" APP --description "iOS and Android"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		p, err := repo.NewProjectRepo(store).Create(&types.Project{
			Name:        args[0],
			Key:         args[1],
			Description: projectCreateDescription,
		})
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}

		if flagJSON {
			return printJSON(p)
		}
		fmt.Printf("Created project %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, configDir, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		if err := repo.NewProjectRepo(store).Delete(args[0]); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		if savedProjectID(configDir) == args[0] {
			saveProjectID(configDir, "")
		}
		fmt.Println("Deleted project", args[0])
		return nil
	},
}

var projectSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Select the project other commands operate on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, configDir, err := attachBackend()
		if err != nil {
			return err
		}
		defer store.Detach()

		p, err := repo.NewProjectRepo(store).Get(args[0])
		if err != nil {
			return fmt.Errorf("select project: %w", err)
		}
		if err := saveProjectID(configDir, p.ID); err != nil {
			return fmt.Errorf("save selection: %w", err)
		}
		fmt.Printf("Selected project %s (%s)\n", p.Name, p.ID)
		return nil
	},
}
