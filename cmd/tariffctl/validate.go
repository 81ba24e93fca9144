package main

import (
	"fmt"

	"github.com/couchcryptid/parking-tariff-etl/internal/adapter/firestore"
	"github.com/couchcryptid/parking-tariff-etl/internal/config"
	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var credentials, collection string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check published zone documents for price and rate consistency",
		Long: `Scan every document of the Firestore zones collection and report zones
whose price contradicts their rates. Exits non-zero when violations are found.

Examples:
  tariffctl validate
  tariffctl validate --credentials service-account.json --collection zones`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			store, err := firestore.NewStore(cmd.Context(), credentials, collection, commandLogger(cmd))
			if err != nil {
				return err
			}
			defer store.Close()

			violations, scanned, err := store.ScanIntegrity(cmd.Context())
			if err != nil {
				return err
			}
			return reportViolations(cmd, scanned, violations)
		},
	}
	cmd.Flags().StringVar(&credentials, "credentials", "service-account.json", "Firebase service account file")
	cmd.Flags().StringVar(&collection, "collection", "zones", "Firestore collection holding zone documents")
	return cmd
}

// reportViolations prints the scan result and fails when any zone is
// inconsistent.
func reportViolations(cmd *cobra.Command, scanned int, violations []domain.Violation) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "scanned %d zone documents\n", scanned)
	if len(violations) == 0 {
		fmt.Fprintln(out, "PASS: no integrity violations")
		return nil
	}

	fmt.Fprintf(out, "FAIL: %d integrity violations\n", len(violations))
	for _, v := range violations {
		fmt.Fprintf(out, "  %s\n", v)
	}
	return fmt.Errorf("%d integrity violations", len(violations))
}
