// Command tariffctl is the operator tool of the parking tariff pipeline. It
// builds schedules offline from an RDW snapshot, consolidates single zone
// files and checks the integrity of published Firestore documents.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tariffctl",
		Short:         "Operate the parking tariff consolidation pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-level", "warn", "Log level (debug|info|warn|error)")
	root.PersistentFlags().String("regions", "", "Regions YAML file (default: built-in)")

	root.AddCommand(newBuildCmd(), newConsolidateCmd(), newValidateCmd())
	return root
}
