package main

import (
	"github.com/spf13/cobra"
)

var syncViaSet bool

var syncCmd = &cobra.Command{
	Use:   "sync [files...]",
	Short: "Rewrite out-of-sync values and re-encrypt",
	Long: `Sync decrypts each file, runs every 'shell:' directive command, and
rewrites values whose command output differs from what is stored. Only the
affected value bytes change; comments, ordering, indentation and unrelated
entries are preserved exactly. Files with nothing to update are left
byte-identical and are not re-encrypted.

Failed commands leave their entries unchanged and are reported in the
summary.

Examples:
  sopsync sync secrets.yaml
  sopsync sync --via-set secrets.yaml   # update keys via 'sops --set'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args, true, syncViaSet)
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncViaSet, "via-set", false, "Apply updates per key through 'sops --set' instead of rewriting the whole file")
}
