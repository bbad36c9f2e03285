package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newDriftCmd creates the 'drift' subcommand. It refetches previously
// recorded URLs and reports the ones whose content hash moved.
func newDriftCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "drift [jurisdiction...]",
		Short: "Rechecks recorded URLs for content drift",
		Long: `Refetches every URL previously recorded for the named jurisdictions
and compares fresh content hashes against the stored hash map. Changed
URLs are reported; the hash map is updated in place so an immediate
second recheck is quiet.`,

		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			jurisdictions, err := selectJurisdictions(a, args, all)
			if err != nil {
				return err
			}

			for _, j := range jurisdictions {
				reports, err := a.Runner().RecheckDrift(cmd.Context(), j)
				if err != nil {
					return fmt.Errorf("recheck %s: %w", j.Slug, err)
				}
				cmd.Printf("%s: %d drifted\n", j.Slug, len(reports))
				for _, rep := range reports {
					if err := printJSON(cmd, rep); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "recheck every registered jurisdiction")
	return cmd
}
