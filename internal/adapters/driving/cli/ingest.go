package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/watch"
)

var (
	ingestWatch bool
	ingestBulk  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest files into the knowledge base",
	Long: `Ingest reads files and adds their content to the knowledge base.
Re-ingesting a file replaces its previous content.

With --bulk, all files are read first and indexed in a single batch, which
amortises embedding cost for large initial loads.

With --watch, a single directory argument is watched and files are
re-ingested automatically as they are created or modified. Hidden files
and directories are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "watch a directory and ingest on change")
	ingestCmd.Flags().BoolVar(&ingestBulk, "bulk", false, "index all files in one batch")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if ingestWatch {
		if len(args) != 1 {
			return errors.New("--watch takes exactly one directory")
		}
		return runIngestWatch(cmd, args[0])
	}

	if ingestBulk {
		return runIngestBulk(cmd, args)
	}

	var failed int
	for _, path := range args {
		docID, err := ingestService.IngestFile(cmd.Context(), path)
		if err != nil {
			cmd.PrintErrf("failed to ingest %s: %v\n", path, err)
			failed++
			continue
		}
		cmd.Printf("ingested %s (%s)\n", path, docID)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func runIngestBulk(cmd *cobra.Command, paths []string) error {
	items := make([]domain.IngestInput, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		items = append(items, domain.IngestInput{
			Title:   filepath.Base(path),
			Content: string(content),
			DocType: "file",
			Source:  domain.SourceBulk,
		})
	}

	if !ingestService.IngestBulk(cmd.Context(), items) {
		return errors.New("nothing ingested")
	}
	cmd.Printf("ingested %d files\n", len(items))
	return nil
}

func runIngestWatch(cmd *cobra.Command, dir string) error {
	watcher, err := watch.New(ingestService, dir, watch.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	watcher.Start(cmd.Context())
	defer watcher.Stop()

	cmd.Printf("watching %s, press Ctrl+C to stop\n", dir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	cmd.Println("\nstopping watcher")
	return nil
}
