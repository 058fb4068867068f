package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"ledger-bank/cmd/banksim/output"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the banksim version",
	Run: func(cmd *cobra.Command, args []string) {
		output.Info("banksim %s (%s %s/%s)", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
