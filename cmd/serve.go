package cmd

import (
	"readiness/internal/logging"
	"readiness/internal/server"
	"readiness/internal/services"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve evaluations to fleet managers over HTTP and WebSocket",
		Long: `Re-evaluates this host on an interval and serves the latest record.

Endpoints (all but /healthz need "Authorization: Bearer <token>"):
  GET /compatibility           latest JSON record, X-Return-Code header
  GET /compatibility/details   per-check results
  GET /compatibility/history   recorded evaluations, ?duration=1h
  GET /ws?token=<token>        stream of new evaluations

Mint tokens with 'readiness token --name <server>'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			// A long-running server is quiet at warn; default to info
			if opts.configPath == "" && opts.logLevel == "" {
				cfg.LogLevel = "info"
			}

			log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			auth, err := services.NewAuthService(cfg.Auth.SecretKey, services.DefaultKeyDir(), cfg.Auth.TokenExpiry, log)
			if err != nil {
				return err
			}
			platform, err := newPlatform(opts, cfg, log)
			if err != nil {
				return err
			}

			srv, err := server.New(cfg.Server, services.NewChecker(platform, log), auth, log)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, localhost:8080)")
	cmd.Flags().StringVar(&opts.factsPath, "facts", "", "Serve facts from a file instead of this host")
	return cmd
}
