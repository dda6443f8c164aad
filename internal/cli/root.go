package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pairload/internal/config"
	"github.com/vvka-141/pairload/internal/logging"
	"github.com/vvka-141/pairload/pkg/pairload"
)

var rootCmd = &cobra.Command{
	Use:   "pairload",
	Short: "Move the LitBench pairwise stories from Hugging Face into Supabase",
	Long: `pairload is a two-stage batch ETL for pairwise story preference data.

  pairload fetch   downloads SAA-Lab/LitBench-Test (split "train") from
                   Hugging Face and writes LitBench_Test.csv
  pairload load    reads writingprompts_pairwise_test.csv and inserts it into
                   the Supabase table "writingprompts-pairwise-test" in
                   batches of 1000

The fetch output is not picked up by load automatically: rename or copy the
CSV between the two runs.

Credentials are read from the environment after loading .env.local:
  NEXT_PUBLIC_SUPABASE_URL (or SUPABASE_URL)  project URL
  SUPABASE_SERVICE_KEY                        service role key
  SUPABASE_DB_URL                             optional direct Postgres URL

Defaults can be overridden in pairload.yaml in the working directory.
Precedence: command line flag > pairload.yaml > built-in default.

Exit Codes (with --strict; otherwise runs exit 0 after reporting):
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration or missing credentials
  11 - Database connection failed
  12 - Input CSV not found
  13 - Dataset fetch failed
  14 - Batch insert failed`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadEnvironment,
}

type globalFlagValues struct {
	verbose bool
	strict  bool
	envFile string
	timeout time.Duration
}

var globalFlags globalFlagValues

// runSettings holds what loadEnvironment resolved for the current command.
type runSettings struct {
	project *config.ProjectConfig
	timeout time.Duration
	envFile string
	aborted bool
}

var settings runSettings

// Execute runs the root command
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo(os.Stdout)
		return nil
	}
	err := rootCmd.Execute()
	var reported *reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.verbose, "verbose", "v", false, "Enable verbose output for all commands")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.strict, "strict", false,
		"Exit with a non-zero code when a run fails (see Exit Codes)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.envFile, "env-file", pairload.DefaultEnvFile,
		"File with KEY=VALUE pairs loaded before reading credentials\n"+
			"Variables already set in the environment take precedence")
	rootCmd.PersistentFlags().DurationVar(&globalFlags.timeout, "timeout", 0,
		"Abort the run after this long (0 = no limit)\n"+
			"Examples: 30s, 5m, 1h30m")
}

// loadEnvironment reads pairload.yaml and the env file before any command runs.
// A failure is reported here and marks the run as aborted so the command
// body does nothing.
func loadEnvironment(cmd *cobra.Command, _ []string) error {
	err := resolveEnvironment(cmd)
	if err == nil {
		return nil
	}
	newLogger(cmd).Error("Error: %v", err)
	settings = runSettings{aborted: true}
	return finishRun(err)
}

func resolveEnvironment(cmd *cobra.Command) error {
	logger := newLogger(cmd)

	project, err := config.Load(".")
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		project = &config.ProjectConfig{}
	case err != nil:
		return fmt.Errorf("failed to load %s: %w: %w", config.ConfigFileName, err, pairload.ErrInvalidConfig)
	default:
		logger.Verbose("loaded %s", config.ConfigFileName)
	}

	envFile := globalFlags.envFile
	if !cmd.Flags().Changed("env-file") && project.EnvFile != "" {
		envFile = project.EnvFile
	}
	loaded, err := config.LoadEnvFile(envFile)
	if err != nil {
		return fmt.Errorf("%w: %w", pairload.ErrInvalidConfig, err)
	}
	if loaded {
		logger.Verbose("loaded environment from %s", envFile)
	}

	timeout := globalFlags.timeout
	if !cmd.Flags().Changed("timeout") && project.Timeout != "" {
		timeout, err = time.ParseDuration(project.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout in %s: %w: %w", config.ConfigFileName, err, pairload.ErrInvalidConfig)
		}
	}

	settings = runSettings{project: project, timeout: timeout, envFile: envFile}
	return nil
}

func projectConfig() *config.ProjectConfig {
	if settings.project == nil {
		return &config.ProjectConfig{}
	}
	return settings.project
}

func newLogger(cmd *cobra.Command) pairload.Logger {
	return logging.NewWriterLogger(globalFlags.verbose, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// reportedError marks a run failure that was already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// finishRun turns a reported failure into the command result: nil unless
// --strict asks for a semantic exit code.
func finishRun(err error) error {
	if err == nil || !globalFlags.strict {
		return nil
	}
	return &reportedError{err: err}
}

// pickString applies flag > pairload.yaml > default precedence. The flag's
// default value is the built-in default.
func pickString(cmd *cobra.Command, flag, flagValue, fileValue string) string {
	if cmd.Flags().Changed(flag) || fileValue == "" {
		return flagValue
	}
	return fileValue
}

func pickInt(cmd *cobra.Command, flag string, flagValue, fileValue int) int {
	if cmd.Flags().Changed(flag) || fileValue <= 0 {
		return flagValue
	}
	return fileValue
}
