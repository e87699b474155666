package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "caplock",
	Short: "Provenance and revocation runtime driver",
	Long: `caplock drives the provenance and revocation runtime from the
command line. The runtime itself is a library; this driver exists to
sequence the boundary scenario end to end: register an allocation, hand
its address to foreign code, revoke through the gate and watch the stale
capability fail its next check.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
