package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/core/ports/driving"
	"github.com/quarrylabs/quarry/internal/logger"
)

var (
	watchUserID    string
	watchChatID    string
	watchProjectID string
)

// settleDelay gives the writing process time to finish before a new
// inbox file is read.
const settleDelay = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch an inbox directory and ingest new files",
	Long: `Watches the configured inbox directory. Every file dropped into it
is uploaded, processed, and removed from the inbox. Runs until
interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchUserID, "user", defaultUserID, "owning user for ingested files")
	watchCmd.Flags().StringVar(&watchChatID, "chat", "", "attach ingested files to a chat")
	watchCmd.Flags().StringVar(&watchProjectID, "project", "", "attach ingested files to a project")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if watchChatID != "" && watchProjectID != "" {
		return errors.New("--chat and --project are mutually exclusive")
	}

	inbox := cfg.Watch.InboxDir
	if inbox == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("getting home directory: %w", err)
		}
		inbox = filepath.Join(home, ".quarry", "inbox")
	}
	if err := os.MkdirAll(inbox, 0700); err != nil {
		return fmt.Errorf("creating inbox directory: %w", err)
	}

	ctx := cmd.Context()

	// Pick up anything already waiting before the watch starts.
	entries, err := os.ReadDir(inbox)
	if err != nil {
		return fmt.Errorf("reading inbox: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			ingestInboxFile(ctx, filepath.Join(inbox, entry.Name()))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(inbox); err != nil {
		return fmt.Errorf("watching %s: %w", inbox, err)
	}
	cmd.Printf("Watching %s\n", inbox)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			time.Sleep(settleDelay)
			ingestInboxFile(ctx, event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// ingestInboxFile uploads and processes one inbox file, removing it on
// success. Failures are logged and the file is left for a retry.
func ingestInboxFile(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Failed to read inbox file %s: %v", path, err)
		return
	}

	req := driving.UploadRequest{
		Name:     filepath.Base(path),
		MimeType: detectMimeType(path, data),
		UserID:   watchUserID,
		Data:     data,
	}
	if watchChatID != "" {
		req.ChatID = &watchChatID
	}
	if watchProjectID != "" {
		req.ProjectID = &watchProjectID
	}

	doc, err := documentService.Upload(ctx, req)
	if err != nil {
		logger.Warn("Failed to upload %s: %v", path, err)
		return
	}
	if err := documentService.Process(ctx, doc.ID); err != nil {
		logger.Warn("Failed to process %s: %v", doc.ID, err)
		return
	}

	if err := os.Remove(path); err != nil {
		logger.Warn("Failed to remove ingested file %s: %v", path, err)
	}
	logger.Info("Ingested %s as %s", filepath.Base(path), doc.ID)
}
