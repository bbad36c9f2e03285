// Package cmd defines the CLI commands for the harvester executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/openlawindex/harvester/internal/app"
	"github.com/openlawindex/harvester/internal/jurisdiction"
)

var cfgFile string

// appKeyType keys the App in the command context.
type appKeyType struct{}

var appKey appKeyType

// newApp is a variable so tests can swap in a stub factory.
var newApp = app.New

// newRootCmd creates and configures the root command. The returned
// closer tears down the App built in PersistentPreRunE; cobra skips
// PersistentPostRun when a subcommand's RunE fails, so teardown cannot
// live in a post hook.
func newRootCmd() (*cobra.Command, func()) {
	var built *app.App
	cmd := &cobra.Command{
		Use:   "harvester",
		Short: "Harvests and classifies state legal corpora for child welfare relevance.",
		Long: `harvester enumerates a state's constitution, statute codes,
administrative rules, court opinions, and locality listings, verifies which
pages exist, classifies each one for child-welfare relevance, and appends
the results to local JSONL logs with drift tracking.`,

		SilenceUsage: true,

		// Runs after flags are parsed and before the subcommand's RunE;
		// the wired App rides the context down to the subcommand.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfgFile)
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			built = a
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, a))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (defaults apply when omitted)")

	cmd.AddCommand(newHarvestCmd())
	cmd.AddCommand(newCasesCmd())
	cmd.AddCommand(newDriftCmd())
	cmd.AddCommand(newLabelCmd())
	cmd.AddCommand(newServeCmd())

	closer := func() {
		if built != nil {
			built.Close()
			built = nil
		}
	}
	return cmd, closer
}

// Execute runs the CLI with the given base context. The App is closed on
// every exit path, including failed runs.
func Execute(ctx context.Context) {
	cmd, closeApp := newRootCmd()
	err := cmd.ExecuteContext(ctx)
	closeApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (*app.App, error) {
	a, ok := ctx.Value(appKey).(*app.App)
	if !ok || a == nil {
		return nil, errors.New("application services not initialized")
	}
	return a, nil
}

// selectJurisdictions resolves positional slugs, or every registered
// jurisdiction when all is set.
func selectJurisdictions(a *app.App, slugs []string, all bool) ([]jurisdiction.Jurisdiction, error) {
	if all {
		if len(slugs) > 0 {
			return nil, errors.New("--all and explicit slugs are mutually exclusive")
		}
		return a.Registry().All(), nil
	}
	if len(slugs) == 0 {
		return nil, fmt.Errorf("name at least one jurisdiction or pass --all (known: %v)", a.Registry().Slugs())
	}
	var out []jurisdiction.Jurisdiction
	for _, slug := range slugs {
		j, ok := a.Registry().Get(slug)
		if !ok {
			return nil, fmt.Errorf("unknown jurisdiction %q (known: %v)", slug, a.Registry().Slugs())
		}
		out = append(out, j)
	}
	return out, nil
}
