package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openlawindex/harvester/internal/pipeline"
)

// newHarvestCmd creates the 'harvest' subcommand. It runs the full
// enumerate/validate/extract/classify pipeline for the named
// jurisdictions and appends the results to the corpus store.
func newHarvestCmd() *cobra.Command {
	var (
		all    bool
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "harvest [jurisdiction...]",
		Short: "Harvests one or more jurisdictions into the corpus store",
		Long: `Walks every candidate URL for the named jurisdictions, checks which
pages exist, extracts and classifies them, and appends normalized records
to the store. With --dry-run the network and the store are never touched;
candidates are classified from their URLs alone and summarized.`,

		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			jurisdictions, err := selectJurisdictions(a, args, all)
			if err != nil {
				return err
			}

			results := a.Runner().RunBatch(
				cmd.Context(),
				jurisdictions,
				a.Config().Harvest.Concurrency,
				pipeline.Options{DryRun: dryRun},
			)

			failed := 0
			for _, res := range results {
				if res.Err != nil {
					failed++
					continue
				}
				if err := printJSON(cmd, res.Summary); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d jurisdiction runs failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "harvest every registered jurisdiction")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "enumerate and classify without network or store writes")
	return cmd
}

func printJSON(cmd *cobra.Command, payload any) error {
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.New("encode output")
	}
	cmd.Println(string(out))
	return nil
}
