package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openlawindex/harvester/internal/pipeline"
)

// newCasesCmd creates the 'cases' subcommand. It walks court listing
// pages and records relevant opinions with their constitutional
// provision cross-references.
func newCasesCmd() *cobra.Command {
	var (
		all      bool
		court    string
		fromYear int
		toYear   int
	)
	cmd := &cobra.Command{
		Use:   "cases [jurisdiction...]",
		Short: "Harvests child-welfare case law from court listing pages",
		Long: `Fetches every supreme and appellate court listing page for the named
jurisdictions, classifies each linked opinion by its case styling, and
appends the relevant ones to the per-jurisdiction case log, scored
against constitutional provision categories.`,

		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			jurisdictions, err := selectJurisdictions(a, args, all)
			if err != nil {
				return err
			}

			opts := pipeline.CaseOptions{Court: court, FromYear: fromYear, ToYear: toYear}
			for _, j := range jurisdictions {
				stats, err := a.Cases().Harvest(cmd.Context(), j, opts)
				if err != nil {
					return fmt.Errorf("harvest cases for %s: %w", j.Slug, err)
				}
				if err := printJSON(cmd, stats); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "harvest cases for every registered jurisdiction")
	cmd.Flags().StringVar(&court, "court", "", "restrict to one court slug, e.g. supreme-court")
	cmd.Flags().IntVar(&fromYear, "from", 0, "earliest listing year")
	cmd.Flags().IntVar(&toYear, "to", 0, "latest listing year")
	return cmd
}
