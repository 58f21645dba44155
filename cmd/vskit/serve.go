package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ontokit/vskit/config"
	"github.com/ontokit/vskit/expand"
	"github.com/ontokit/vskit/schema"
	"github.com/ontokit/vskit/server"
)

func serveCmd() *cobra.Command {
	var (
		addr          string
		resolversPath string
	)

	cmd := &cobra.Command{
		Use:   "serve <schema.yaml>",
		Short: "Serve value-set expansion over HTTP",
		Long: `Serve loads a schema document once and exposes expansion at
POST /api/v1/expand, with /healthz and Prometheus /metrics alongside.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader(slog.Default()).Load()
			if err != nil {
				return err
			}
			if resolversPath != "" {
				cfg.Resolvers.Path = resolversPath
			}

			doc, err := schema.Load(args[0])
			if err != nil {
				return err
			}

			reg, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			defer reg.Close(cmd.Context())

			slog.Info("serving value-set expansion",
				slog.String("addr", addr),
				slog.Int("enums", len(doc.Enums)))

			srv := server.New(doc, reg, expand.Options{
				Template: cfg.Render.Template,
				Timeout:  cfg.Query.Timeout,
				Logger:   slog.Default(),
			})
			return srv.Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8087", "Listen address")
	cmd.Flags().StringVar(&resolversPath, "resolvers", "", "Resolver config file (default: built-in per-method defaults)")
	return cmd
}
