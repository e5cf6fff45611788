package main

import (
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [files...]",
	Short: "Report which annotated secrets are out of sync (dry run)",
	Long: `Check decrypts each file, runs every 'shell:' directive command, and
reports whether the stored values match the command output. Nothing is
modified.

Examples:
  sopsync check secrets.yaml
  sopsync check prod.env staging.env
  sopsync check --format ini legacy.conf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args, false, false)
	},
}
