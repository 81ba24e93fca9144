package main

import (
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
	"github.com/couchcryptid/parking-tariff-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

func newConsolidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Consolidate one zone message into its weekly schedule",
		Long: `Read a zone tariffs message (as published by the collector) and print
the schedule the ETL service would build for it.

Examples:
  tariffctl consolidate --input zone.json
  kcat -C -t raw-zone-tariffs -c 1 -e | tariffctl consolidate`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var r io.Reader = cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer f.Close()
				r = f
			}
			data, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			zone, err := domain.ParseZoneTariffs(domain.RawEvent{Value: data})
			if err != nil {
				return err
			}
			regions, err := loadRegions(cmd)
			if err != nil {
				return err
			}

			transformer := pipeline.NewTransformer(nil, domain.NewFilterPolicy(regions.ExcludedUsageTypes),
				cliMetrics(), commandLogger(cmd))
			s, verdict := transformer.Evaluate(cmd.Context(), zone)
			if verdict != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "not publishable: %v\n", verdict)
			}
			return writeJSON(cmd.OutOrStdout(), "", s)
		},
	}
	cmd.Flags().StringVar(&input, "input", "-", "Zone tariffs JSON file (- for stdin)")
	return cmd
}
