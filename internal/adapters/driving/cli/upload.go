package cli

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/core/ports/driving"
)

var (
	uploadChatID    string
	uploadProjectID string
	uploadUserID    string
	uploadMimeType  string
	uploadProcess   bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a document",
	Long: `Stores a file and creates a document record. With --process the
document is immediately chunked and embedded.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadChatID, "chat", "", "attach the document to a chat")
	uploadCmd.Flags().StringVar(&uploadProjectID, "project", "", "attach the document to a project")
	uploadCmd.Flags().StringVar(&uploadUserID, "user", defaultUserID, "owning user")
	uploadCmd.Flags().StringVar(&uploadMimeType, "mime", "", "MIME type override (default: detected)")
	uploadCmd.Flags().BoolVar(&uploadProcess, "process", false, "process the document after upload")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if uploadChatID != "" && uploadProjectID != "" {
		return errors.New("--chat and --project are mutually exclusive")
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	req := driving.UploadRequest{
		Name:     filepath.Base(path),
		MimeType: detectMimeType(path, data),
		UserID:   uploadUserID,
		Data:     data,
	}
	if uploadMimeType != "" {
		req.MimeType = uploadMimeType
	}
	if uploadChatID != "" {
		req.ChatID = &uploadChatID
	}
	if uploadProjectID != "" {
		req.ProjectID = &uploadProjectID
	}

	ctx := cmd.Context()
	doc, err := documentService.Upload(ctx, req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	cmd.Printf("Uploaded %s (%s, %d bytes)\n", doc.ID, doc.MimeType, doc.SizeBytes)

	if uploadProcess {
		if err := documentService.Process(ctx, doc.ID); err != nil {
			return fmt.Errorf("processing failed: %w", err)
		}
		cmd.Printf("Processed %s\n", doc.ID)
	}
	return nil
}

// detectMimeType resolves a MIME type from the file extension, falling
// back to content sniffing.
func detectMimeType(path string, data []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}
