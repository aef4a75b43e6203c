package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/stackvity/utf-converter/internal/cli"
	"github.com/stackvity/utf-converter/internal/cli/config"
	"github.com/stackvity/utf-converter/pkg/converter"
)

var (
	// These are set during build time using -ldflags
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Exit codes returned by Execute.
const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

// newRootCmd builds the command tree. A bare `cvt2utf <path>` runs convert.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cvt2utf [command] <path>",
		Short: "Converts legacy-encoded text files to UTF-8 in place.",
		Long: `cvt2utf walks a directory (or takes a single file), detects the character
encoding of every candidate text file and rewrites it as UTF-8.

It features:
  - Statistical detection with a configurable confidence threshold.
  - Timestamped backups of every converted file, and a cleanbak command to prune them.
  - A detect command that reports encodings without touching anything.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runCommand(converter.CommandConvert)(cmd, args)
		},
	}
	rootCmd.SetVersionTemplate(`{{.Name}} version {{.Version}}` + "\n")

	// Persistent flags
	rootCmd.PersistentFlags().String("config", "", "Configuration file path (default is search ., $HOME/.config/cvt2utf/, $HOME/.cvt2utf/)")
	rootCmd.PersistentFlags().String("profile", "", "Name of configuration profile to use")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose (debug) logging output (disables the progress line)")
	rootCmd.PersistentFlags().String("output-format", string(converter.DefaultOutputFormat), `Final report format ("text", "json", "toml")`)

	// The bare form accepts every convert flag.
	addConvertFlags(rootCmd)

	rootCmd.AddCommand(newConvertCmd(), newDetectCmd(), newCleanBakCmd())
	return rootCmd
}

// runCommand returns a RunE that loads configuration for the path argument and runs
// the given library command until it finishes or the process is interrupted.
func runCommand(command converter.Command) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		cfgFile, _ := cmd.Flags().GetString("config")
		profileName, _ := cmd.Flags().GetString("profile")

		opts, logger, err := config.LoadAndValidate(cfgFile, profileName, version, args[0], cmd.Flags())
		if err != nil {
			return err
		}
		return cli.Run(ctx, command, opts, logger, cli.Output{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()})
	}
}

// Execute runs the command tree and maps the outcome to a process exit code.
func Execute() int {
	return execute(context.Background(), newRootCmd(), os.Args[1:])
}

func execute(ctx context.Context, rootCmd *cobra.Command, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	if errors.Is(err, converter.ErrInterrupted) {
		return exitInterrupted
	}
	return exitError
}
