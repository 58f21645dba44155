package main

import (
	"context"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var (
		flags    expandFlags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <schema.yaml>",
		Short: "Re-expand enums whenever the schema document changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), args[0], &flags, debounce)
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "Quiet period before re-expanding after a change")
	return cmd
}

func runWatch(ctx context.Context, schemaPath string, flags *expandFlags, debounce time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors replace files on save,
	// which drops a direct file watch.
	dir := filepath.Dir(schemaPath)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(schemaPath)

	runOnce := func() {
		if err := runExpand(ctx, schemaPath, flags); err != nil {
			slog.Error("expansion failed", slog.String("schema", schemaPath), slog.String("error", err.Error()))
		}
	}

	slog.Info("watching schema document", slog.String("path", schemaPath))
	runOnce()

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounce, func() {
			select {
			case pending <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("watch stopped")
			return nil
		case <-pending:
			runOnce()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			slog.Debug("schema changed", slog.String("op", event.Op.String()))
			schedule()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", slog.String("error", err.Error()))
		}
	}
}
