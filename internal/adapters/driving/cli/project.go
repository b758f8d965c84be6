package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  `Create, list, update, or delete document projects.`,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectCreate,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectGetCmd = &cobra.Command{
	Use:   "get [project-id]",
	Short: "Show a project and its documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectGet,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update [project-id]",
	Short: "Update project fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectUpdate,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete [project-id]",
	Short: "Delete a project (documents are detached)",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

var (
	projectCreateDescription string
	projectCreateUser        string
	projectListUser          string
	projectListTitle         string
	projectUpdateTitle       string
	projectUpdateDescription string
)

func init() {
	projectCreateCmd.Flags().StringVarP(&projectCreateDescription, "description", "d", "", "project description")
	projectCreateCmd.Flags().StringVar(&projectCreateUser, "user", defaultUserID, "owning user")

	projectListCmd.Flags().StringVar(&projectListUser, "user", "", "filter by owning user")
	projectListCmd.Flags().StringVar(&projectListTitle, "title", "", "filter by title (partial, case-insensitive)")

	projectUpdateCmd.Flags().StringVar(&projectUpdateTitle, "title", "", "new title")
	projectUpdateCmd.Flags().StringVarP(&projectUpdateDescription, "description", "d", "", "new description")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectGetCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	project, err := projectService.Create(cmd.Context(), args[0], projectCreateDescription, projectCreateUser)
	if err != nil {
		return fmt.Errorf("creating project: %w", err)
	}
	cmd.Printf("Created project %s\n", project.ID)
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	var filters domain.ProjectFilters
	if projectListUser != "" {
		filters.UserID = &projectListUser
	}
	if projectListTitle != "" {
		filters.Title = &projectListTitle
	}

	projects, err := projectService.List(cmd.Context(), filters)
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}
	if len(projects) == 0 {
		cmd.Println("No projects found.")
		return nil
	}

	for _, project := range projects {
		cmd.Printf("%s  %s\n", project.ID, project.Title)
	}
	return nil
}

func runProjectGet(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	project, err := projectService.Get(cmd.Context(), args[0], true)
	if err != nil {
		return fmt.Errorf("getting project: %w", err)
	}

	cmd.Printf("ID:          %s\n", project.ID)
	cmd.Printf("Title:       %s\n", project.Title)
	if project.Description != "" {
		cmd.Printf("Description: %s\n", project.Description)
	}
	cmd.Printf("User:        %s\n", project.UserID)
	cmd.Printf("Documents:   %d\n", len(project.Documents))
	for _, doc := range project.Documents {
		cmd.Printf("  %s  %s\n", doc.ID, doc.Name)
	}
	return nil
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	var update domain.ProjectUpdate
	if projectUpdateTitle != "" {
		update.Title = domain.Set(projectUpdateTitle)
	}
	if cmd.Flags().Changed("description") {
		update.Description = domain.Set(projectUpdateDescription)
	}

	project, err := projectService.Update(cmd.Context(), args[0], update)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	cmd.Printf("Updated %s\n", project.ID)
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errors.New("project service not configured")
	}

	if err := projectService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
