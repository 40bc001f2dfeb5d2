package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:          "slatec [subcommand]",
	Short:        "slatec\n debug/demo CLI for the Slate type-unifier core",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(UnifyCmd)
}
