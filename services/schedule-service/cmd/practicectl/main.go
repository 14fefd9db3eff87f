// Command practicectl is an operator tool for inspecting calendars and
// probing a running schedule-service.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "practicectl",
		Short:         "Practice calendar tooling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(monthCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(slotsCmd())
	root.AddCommand(healthCmd())
	return root
}
