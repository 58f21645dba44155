// Package main provides the vskit binary entry point.
// Vskit expands intentional (query-defined) enums into extensional
// permissible-value lists by dispatching graph-reachability queries to
// ontology backends.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	// Register backend adapters via init()
	_ "github.com/ontokit/vskit/backend/memory"
	_ "github.com/ontokit/vskit/backend/neo4j"
	_ "github.com/ontokit/vskit/backend/ols"
	_ "github.com/ontokit/vskit/backend/sqlite"

	"github.com/spf13/cobra"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "vskit"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "vskit",
		Short: "Value-set expansion engine",
		Long: `Vskit turns declarative, query-defined enums into concrete lists of
permissible values.

An enum specification combines graph-reachability queries against
ontology backends (sqlite, neo4j, ols) with set algebra: inherited base
sets, additional include terms, literal concepts, and minus subtraction.
Vskit resolves the expression tree, evaluates it against the configured
resolvers, and renders a deterministic, sorted value list.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(expandCmd())
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(watchCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

func configureLogging(logLevel string) {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}
