package cmd

import (
	"encoding/json"

	"readiness/internal/logging"
	"readiness/internal/services"

	"github.com/spf13/cobra"
)

func newFactsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "facts",
		Short: "Print the collected host facts as JSON",
		Long: `Prints the raw facts the check is based on. Absent facts are null.
The output can be evaluated later, or elsewhere, with 'readiness --facts <file>'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}

			facts := services.Collect(cmd.Context(), services.NewHostPlatform(cfg.SystemDrive, log), log)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(facts)
		},
	}
}
