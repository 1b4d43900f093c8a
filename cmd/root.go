package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"readiness/internal/config"
	"readiness/internal/formatter"
	"readiness/internal/logging"
	"readiness/internal/services"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ExitError carries a process exit status without printing an error
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type rootOptions struct {
	configPath string
	jsonOnly   bool
	pause      bool
	output     string
	drive      string
	factsPath  string
	logLevel   string
}

// NewRootCmd builds the readiness command tree
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "readiness",
		Short: "Check whether this machine meets the Windows 11 hardware requirements",
		Long: `readiness checks processor, memory, storage, graphics, Secure Boot, TPM and
OS version against the Windows 11 minimums, prints a report and a JSON record
for fleet management, and exits with the record's returnCode (0 capable,
1 not capable).

Examples:
  # Console report
  readiness

  # JSON record only, also written to a file
  readiness --json --output C:\ProgramData\readiness\result.json

  # Evaluate facts recorded on another machine
  readiness --facts host-facts.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&opts.jsonOnly, "json", false, "Print only the JSON record")
	rootCmd.Flags().BoolVar(&opts.pause, "pause", false, "Wait for Enter before exiting")
	rootCmd.Flags().StringVarP(&opts.output, "output", "o", "", "Also write the JSON record to this file")
	rootCmd.PersistentFlags().StringVar(&opts.drive, "drive", "", "System volume to check for free space")
	rootCmd.Flags().StringVar(&opts.factsPath, "facts", "", "Evaluate facts from a file written by 'readiness facts' instead of this host")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newTokenCmd(opts),
		newFactsCmd(opts),
		newVersionCmd(version),
	)
	return rootCmd
}

// loadConfig reads the config file and applies flag overrides
func loadConfig(cmd *cobra.Command, opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("drive") {
		cfg.SystemDrive = opts.drive
	}
	if flags.Changed("output") {
		cfg.Output = opts.output
	}
	if flags.Changed("pause") {
		cfg.Pause = opts.pause
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

func newPlatform(opts *rootOptions, cfg config.Config, log logrus.FieldLogger) (services.Platform, error) {
	if opts.factsPath != "" {
		return services.LoadFactsFile(opts.factsPath)
	}
	return services.NewHostPlatform(cfg.SystemDrive, log), nil
}

func runCheck(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	platform, err := newPlatform(opts, cfg, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	stop := startSpinner(cmd.ErrOrStderr(), !opts.jsonOnly, " Collecting hardware information...")
	result, _ := services.NewChecker(platform, log).Run(cmd.Context())
	stop()

	if opts.jsonOnly {
		err = formatter.DisplayDocument(out, result)
	} else {
		err = formatter.DisplayResults(out, result)
	}
	if err != nil {
		return err
	}

	if cfg.Output != "" {
		// The record is already printed, so the exit code stays returnCode.
		if err := services.WriteDocumentFile(cfg.Output, services.NewDocument(result)); err != nil {
			log.Errorf("Could not write result file: %v", err)
		} else {
			log.Infof("Wrote result to %s", cfg.Output)
		}
	}

	if cfg.Pause {
		formatter.Pause(out, cmd.InOrStdin())
	}

	if result.ReturnCode != 0 {
		return &ExitError{Code: result.ReturnCode}
	}
	return nil
}

// startSpinner shows progress on w when it is a terminal. The returned
// function stops it.
func startSpinner(w io.Writer, enabled bool, suffix string) func() {
	f, ok := w.(*os.File)
	if !enabled || !ok || !isatty.IsTerminal(f.Fd()) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(f))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}

// Execute runs the command tree and maps the outcome to an exit status
func Execute(ctx context.Context, version string, args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd(version)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 2
}
