package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/ontokit/vskit/config"
	"github.com/ontokit/vskit/expand"
	"github.com/ontokit/vskit/graph"
	"github.com/ontokit/vskit/registry"
	"github.com/ontokit/vskit/schema"
)

// expandFlags are the options shared by the expand and watch commands.
type expandFlags struct {
	resolversPath string
	template      string
	enums         []string
	output        string
	timeout       time.Duration
	natsURL       string
}

func (f *expandFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.resolversPath, "resolvers", "", "Resolver config file (default: built-in per-method defaults)")
	cmd.Flags().StringVar(&f.template, "template", "", `Render template override, e.g. "{label} [{id}]" (default: each enum's pv_formula)`)
	cmd.Flags().StringArrayVar(&f.enums, "enum", nil, "Enum name or glob pattern to expand (repeatable, default: all)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Per-backend-call timeout (default: from config, 30s)")
	cmd.Flags().StringVar(&f.natsURL, "nats-url", "", "Publish expanded value sets to this NATS server")
}

func expandCmd() *cobra.Command {
	var flags expandFlags

	cmd := &cobra.Command{
		Use:   "expand <schema.yaml>",
		Short: "Expand named enums into permissible-value lists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd.Context(), args[0], &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

// runExpand performs one full expansion pass: load, expand, write, publish.
func runExpand(ctx context.Context, schemaPath string, flags *expandFlags) error {
	cfg, err := config.NewLoader(slog.Default()).Load()
	if err != nil {
		return err
	}
	mergeFlags(cfg, flags)

	doc, err := schema.Load(schemaPath)
	if err != nil {
		return err
	}

	reg, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	defer reg.Close(ctx)

	names, err := expand.MatchNames(doc.EnumNames(), flags.enums)
	if err != nil {
		return err
	}

	expander := expand.New(doc, reg, expand.Options{
		Template: cfg.Render.Template,
		Timeout:  cfg.Query.Timeout,
		Logger:   slog.Default(),
	})
	report, err := expander.ExpandAll(ctx, names)
	if err != nil {
		return err
	}

	if err := writeReport(flags.output, doc, report); err != nil {
		return err
	}

	if err := publishReport(ctx, cfg, report); err != nil {
		return err
	}

	for _, f := range report.Failed {
		fmt.Fprintf(os.Stderr, "expansion failed: enum %s: %v\n", f.Enum, f.Err)
	}
	if len(report.Failed) > 0 {
		return fmt.Errorf("%d of %d enum(s) failed to expand", len(report.Failed), len(names))
	}
	return nil
}

// mergeFlags applies command-line overrides onto the loaded config.
func mergeFlags(cfg *config.Config, flags *expandFlags) {
	if flags.resolversPath != "" {
		cfg.Resolvers.Path = flags.resolversPath
	}
	if flags.template != "" {
		cfg.Render.Template = flags.template
	}
	if flags.timeout != 0 {
		cfg.Query.Timeout = flags.timeout
	}
	if flags.natsURL != "" {
		cfg.NATS.URL = flags.natsURL
	}
}

// buildRegistry constructs the resolver registry from the configured
// document, or the built-in defaults when none is given.
func buildRegistry(cfg *config.Config) (*registry.Registry, error) {
	if cfg.Resolvers.Path == "" {
		return registry.Default(), nil
	}
	resolverCfg, err := registry.LoadConfig(cfg.Resolvers.Path)
	if err != nil {
		return nil, err
	}
	return registry.New(resolverCfg), nil
}

// writeReport writes the expanded document to the output path or stdout.
func writeReport(output string, doc *schema.Document, report *expand.Report) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return expand.WriteDocument(w, doc, report)
}

// publishReport publishes expanded value sets when a NATS URL is configured.
func publishReport(ctx context.Context, cfg *config.Config, report *expand.Report) error {
	if cfg.NATS.URL == "" {
		return nil
	}
	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer nc.Close()
	return graph.PublishReport(ctx, nc, cfg.NATS.Subject, report)
}
