package cmd

import (
	"fmt"
	"time"

	"readiness/internal/logging"
	"readiness/internal/middleware"
	"readiness/internal/services"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the serve endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !middleware.ValidServerName(name) {
				return fmt.Errorf("invalid server name %q: use letters, digits, '-', '_' or '.'", name)
			}
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}
			auth, err := services.NewAuthService(cfg.Auth.SecretKey, services.DefaultKeyDir(), cfg.Auth.TokenExpiry, log)
			if err != nil {
				return err
			}

			token, expiresAt, err := auth.GenerateToken(name)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s (expires %s)\n",
				color.GreenString("Token issued for"), name, expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Name of the server the token is for")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
