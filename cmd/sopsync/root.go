package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sopsync/sopsync/internal/report"
	"github.com/sopsync/sopsync/internal/types"
)

var (
	configPath   string
	formatName   string
	backendName  string
	identityPath string
	cmdTimeout   time.Duration
	outputMode   string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "sopsync",
	Short: "Sync secrets from shell commands into encrypted files",
	Long: `sopsync treats shell commands as the source of truth for individual
values in encrypted secrets files. A directive comment of the form

    # shell: <command>

immediately above a key marks that key as managed: 'check' reports whether
the stored value matches the command's output, 'sync' rewrites values that
drifted while leaving every other byte of the file untouched.

Supported formats: YAML, dotenv, and INI. Files are decrypted and
re-encrypted through sops by default; age-encrypted and plaintext files are
supported via --backend.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := report.ValidateMode(outputMode); err != nil {
			return err
		}
		if formatName != "" {
			if _, err := types.ParseFormat(formatName); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to .sopsync.yaml config file")
	rootCmd.PersistentFlags().StringVar(&formatName, "format", "", "Force file format (yaml, env, ini) instead of detecting from extension")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Force encryption backend (sops, age, plain)")
	rootCmd.PersistentFlags().StringVar(&identityPath, "identity", "", "Age identity file for the age backend")
	rootCmd.PersistentFlags().DurationVar(&cmdTimeout, "timeout", 0, "Per-command timeout (0 disables)")
	rootCmd.PersistentFlags().StringVarP(&outputMode, "output", "o", "auto", "Output format (auto, json, human)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and maps errors to process exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(types.ExitCodeFromError(err))
	}
}

// Version info (set by ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sopsync %s (%s)\n", version, commit)
	},
}
