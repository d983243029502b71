package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Rorical/filedrop/internal/config"
	"github.com/Rorical/filedrop/internal/logging"
	"github.com/Rorical/filedrop/internal/naming"
	"github.com/Rorical/filedrop/internal/settings"
	"github.com/Rorical/filedrop/internal/sniff"
	"github.com/Rorical/filedrop/internal/upload"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type importOptions struct {
	contentType string
	settings    string
	rename      bool
	dryRun      bool
}

func newRootCommand() *cobra.Command {
	opts := importOptions{}
	cmd := &cobra.Command{
		Use:   "filedrop-import [flags] FILE...",
		Short: "Store local files in the upload directory under the upload policy",
		Long: `Runs one upload batch over local files, applying the same MIME filters
and naming rules as POST /upload, and prints the batch outcome as JSON.

The content type of each file is detected from its content unless --type is set.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts, args)
		},
	}
	cmd.Flags().StringVar(&opts.contentType, "type", "", "content type to declare for every file")
	cmd.Flags().StringVar(&opts.settings, "settings", "", "dotenv file with upload settings (overrides FILEDROP_SETTINGS_FILE)")
	cmd.Flags().BoolVar(&opts.rename, "rename", true, "move stored files to their permanent names")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the effective policy and exit")
	return cmd
}

func runImport(ctx context.Context, opts importOptions, paths []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.settings != "" {
		cfg.Upload.SettingsFile = opts.settings
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	slog.SetDefault(logger)
	ctx = logging.WithLogger(ctx, logger)

	src, err := config.SettingsSource(cfg.Upload)
	if err != nil {
		return err
	}
	pol, err := config.LoadPolicy(settings.New(src))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if opts.dryRun {
		return enc.Encode(pol)
	}

	files := make([]upload.PostedFile, 0, len(paths))
	for _, p := range paths {
		lf := &upload.LocalFile{Path: p, Type: opts.contentType}
		if lf.Type == "" {
			ct, err := sniff.ContentType("", lf.Open)
			if err != nil {
				logger.Warn("content type detection failed", "path", p, "err", err)
			}
			lf.Type = ct
		}
		files = append(files, lf)
	}

	b := upload.NewBatch(&upload.Runner{Allocator: &naming.Allocator{}, Workers: cfg.Upload.Workers})
	out, err := b.Setup(pol, files).Execute(ctx)
	if err != nil {
		return err
	}
	if opts.rename {
		out = upload.Finalize(ctx, out, nil)
	}

	if err := enc.Encode(struct {
		upload.BatchOutcome
		Summary upload.Summary `json:"summary"`
	}{out, out.Summary()}); err != nil {
		return err
	}
	return failures(out.Summary())
}

// failures turns files that were accepted but not stored into an error, so
// the command exits non-zero.
func failures(s upload.Summary) error {
	if s.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", s.Failed, s.Total)
	}
	return nil
}
