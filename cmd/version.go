package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time in a full release pipeline; left as a
// constant here since build/packaging is out of scope (§1).
const Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the simulator's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
