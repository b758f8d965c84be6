package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

var (
	searchLimit           int
	searchJSON            bool
	searchDocumentID      string
	searchChatID          string
	searchProjectID       string
	searchUserID          string
	searchIncludeDocument bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find the most relevant chunks for a query",
	Long: `Embeds the query and returns the chunks whose embeddings are most
similar, optionally restricted to one document, chat, project, or
user.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVar(&searchDocumentID, "document", "", "restrict to one document")
	searchCmd.Flags().StringVar(&searchChatID, "chat", "", "restrict to a chat's documents")
	searchCmd.Flags().StringVar(&searchProjectID, "project", "", "restrict to a project's documents")
	searchCmd.Flags().StringVar(&searchUserID, "user", "", "restrict to a user's documents")
	searchCmd.Flags().BoolVar(&searchIncludeDocument, "include-document", false, "attach the owning document to each result")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	filters := domain.DocumentChunkFilters{
		IncludeDocument: searchIncludeDocument,
	}
	if searchDocumentID != "" {
		filters.DocumentID = &searchDocumentID
	}
	if searchChatID != "" {
		filters.ChatID = &searchChatID
	}
	if searchProjectID != "" {
		filters.ProjectID = &searchProjectID
	}
	if searchUserID != "" {
		filters.UserID = &searchUserID
	}

	chunks, err := documentService.RelevantChunks(cmd.Context(), args[0], searchLimit, filters)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputChunksJSON(cmd, chunks)
	}
	return outputChunksTable(cmd, chunks)
}

func outputChunksJSON(cmd *cobra.Command, chunks []domain.DocumentChunk) error {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputChunksTable(cmd *cobra.Command, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, chunk := range chunks {
		cmd.Printf("  [%d] %s #%d (%.3f)\n", i+1, chunk.DocumentID, chunk.Index, chunk.Score)
		if chunk.Document != nil {
			cmd.Printf("      Document: %s\n", chunk.Document.Name)
		}
		cmd.Printf("      %s\n", snippet(chunk.Content, 120))
		cmd.Println()
	}
	return nil
}

// snippet truncates s to max runes with an ellipsis.
func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
