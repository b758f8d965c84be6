package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process [document-id]",
	Short: "Chunk and embed an uploaded document",
	Long: `Extracts text from a stored document, splits it into overlapping
chunks, embeds every chunk in parallel, and marks the document
processed. A document whose MIME type has no extractor is marked
processed with zero chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	documentID := args[0]
	if err := documentService.Process(cmd.Context(), documentID); err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}
	cmd.Printf("Processed %s\n", documentID)
	return nil
}
