package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/openlawindex/harvester/internal/classify"
	"github.com/openlawindex/harvester/internal/corpus"
	"github.com/openlawindex/harvester/internal/jurisdiction"
)

// newLabelCmd creates the 'label' subcommand. It classifies URLs offline:
// no fetching, no store writes, records printed to stdout as JSON lines.
func newLabelCmd() *cobra.Command {
	var inputPath string
	cmd := &cobra.Command{
		Use:   "label [url...]",
		Short: "Classifies URLs offline without fetching them",
		Long: `Runs the URL grammar and relevance classifier over the given URLs
(positional arguments, or one per line via --input) and prints one
normalized record per line. Useful for spot-checking the classifier and
for labeling URL lists gathered elsewhere.`,

		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			urls := args
			if inputPath != "" {
				fromFile, err := readURLFile(inputPath)
				if err != nil {
					return err
				}
				urls = append(urls, fromFile...)
			}
			if len(urls) == 0 {
				return errors.New("no URLs given; pass them as arguments or via --input")
			}

			now := time.Now()
			for _, rawURL := range urls {
				parsed := classify.ParseURL(rawURL)
				j, ok := a.Registry().Get(parsed.State)
				if !ok {
					// Unregistered states still label; welfare-title
					// boosts just cannot apply.
					j = jurisdiction.Jurisdiction{Slug: parsed.State}
				}
				rec := a.Normalizer().Normalize(corpus.CandidateURL{
					URL:          rawURL,
					Jurisdiction: j.Slug,
				}, j, nil, now)
				if err := printJSONLine(cmd, rec); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inputPath, "input", "", "file with one URL per line")
	return cmd
}

func printJSONLine(cmd *cobra.Command, payload any) error {
	out, err := json.Marshal(payload)
	if err != nil {
		return errors.New("encode record")
	}
	cmd.Println(string(out))
	return nil
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open url list: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return urls, nil
}
