// Package cmd wraps the simulator's launch surface in a cobra command
// tree (§10 "ambient stack"), in place of the teacher's bare `flag`
// package, the way ajroetker-go-highway/janpfeifer-go-highway structure
// their own command-line entry points.
package cmd

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "oscsim",
	Short: "OpenSCENARIO driving-scenario interpreter and simulator",
}

// Execute runs the selected subcommand, returning any error it reports.
func Execute() error {
	return rootCmd.Execute()
}
