package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "yanxue",
		Short: "Study-trip course authoring backend",
		Long: `yanxue serves the 研学旅行 course authoring API: course, resource and
user management plus five AI-assisted authoring steps (demand analysis,
framework, teaching content, itinerary, assessment).

Configuration comes from the environment, an optional .env file and an
optional yaml file named by CONFIG_FILE.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCreateTestUserCmd(),
		newEventsCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "yanxue version %s\n", version)
		},
	}
}
