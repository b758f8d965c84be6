package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage uploaded documents",
	Long:  `List, view, reassign, or delete uploaded documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print a document's extracted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentUpdateCmd = &cobra.Command{
	Use:   "update [doc-id]",
	Short: "Update document fields",
	Long: `Updates a document record. Fields not flagged are left untouched;
--detach clears the chat or project assignment.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentUpdate,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var (
	documentListUser      string
	documentListChat      string
	documentListProject   string
	documentListName      string
	documentListProcessed bool

	documentUpdateName    string
	documentUpdateChat    string
	documentUpdateProject string
	documentUpdateDetach  bool
)

func init() {
	documentListCmd.Flags().StringVar(&documentListUser, "user", "", "filter by owning user")
	documentListCmd.Flags().StringVar(&documentListChat, "chat", "", "filter by chat")
	documentListCmd.Flags().StringVar(&documentListProject, "project", "", "filter by project")
	documentListCmd.Flags().StringVar(&documentListName, "name", "", "filter by name (partial, case-insensitive)")
	documentListCmd.Flags().BoolVar(&documentListProcessed, "processed", false, "only processed documents")

	documentUpdateCmd.Flags().StringVar(&documentUpdateName, "name", "", "new display name")
	documentUpdateCmd.Flags().StringVar(&documentUpdateChat, "chat", "", "assign to a chat")
	documentUpdateCmd.Flags().StringVar(&documentUpdateProject, "project", "", "assign to a project")
	documentUpdateCmd.Flags().BoolVar(&documentUpdateDetach, "detach", false, "clear chat and project assignment")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentUpdateCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	var filters domain.DocumentFilters
	if documentListUser != "" {
		filters.UserID = &documentListUser
	}
	if documentListChat != "" {
		filters.ChatID = &documentListChat
	}
	if documentListProject != "" {
		filters.ProjectID = &documentListProject
	}
	if documentListName != "" {
		filters.Name = &documentListName
	}
	if cmd.Flags().Changed("processed") {
		filters.Processed = &documentListProcessed
	}

	docs, err := documentService.List(cmd.Context(), filters)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for _, doc := range docs {
		status := " "
		if doc.Processed {
			status = "*"
		}
		cmd.Printf("%s %s  %s (%s, %d bytes)\n", status, doc.ID, doc.Name, doc.MimeType, doc.SizeBytes)
	}
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting document: %w", err)
	}

	cmd.Printf("ID:        %s\n", doc.ID)
	cmd.Printf("Name:      %s\n", doc.Name)
	cmd.Printf("MIME type: %s\n", doc.MimeType)
	cmd.Printf("Size:      %d bytes\n", doc.SizeBytes)
	cmd.Printf("Processed: %t\n", doc.Processed)
	cmd.Printf("User:      %s\n", doc.UserID)
	if doc.ChatID != nil {
		cmd.Printf("Chat:      %s\n", *doc.ChatID)
	}
	if doc.ProjectID != nil {
		cmd.Printf("Project:   %s\n", *doc.ProjectID)
	}
	cmd.Printf("Created:   %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	content, err := documentService.Content(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting content: %w", err)
	}
	cmd.Println(content)
	return nil
}

func runDocumentUpdate(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if documentUpdateDetach && (documentUpdateChat != "" || documentUpdateProject != "") {
		return errors.New("--detach cannot be combined with --chat or --project")
	}

	var update domain.DocumentUpdate
	if documentUpdateName != "" {
		update.Name = domain.Set(documentUpdateName)
	}
	if documentUpdateChat != "" {
		update.ChatID = domain.Set(documentUpdateChat)
	}
	if documentUpdateProject != "" {
		update.ProjectID = domain.Set(documentUpdateProject)
	}
	if documentUpdateDetach {
		update.ChatID = domain.Null[string]()
		update.ProjectID = domain.Null[string]()
	}

	doc, err := documentService.Update(cmd.Context(), args[0], update)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	cmd.Printf("Updated %s\n", doc.ID)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}
