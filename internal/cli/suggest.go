package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/partstream/fitment/internal/suggest"
)

var suggestMakes string

// suggestCmd represents the suggest command
var suggestCmd = &cobra.Command{
	Use:   "suggest <vehicle phrase>",
	Short: "Propose a mapping rule for an unmatched vehicle phrase",
	Long: `Asks the configured LLM endpoint to propose a canonical
(make, vehicle code, model) identity for a vehicle phrase that matches no
configured mapping rule.

The proposal is printed for operator review; it is never applied
automatically and never consulted during validation.

Requires an API key via the suggest.apiKey config value or OPENAI_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().StringVar(&suggestMakes, "makes", "", "comma-separated allowlist of makes")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	phrase := args[0]
	cfg := loadConfig()

	if cfg.Suggest.APIKey == "" {
		return fmt.Errorf("no API key configured; set suggest.apiKey or OPENAI_API_KEY")
	}

	suggester, err := suggest.NewSuggester(suggest.Config{
		APIKey:    cfg.Suggest.APIKey,
		Model:     cfg.Suggest.Model,
		BaseURL:   cfg.Suggest.BaseURL,
		Timeout:   cfg.Suggest.Timeout,
		MaxTokens: cfg.Suggest.MaxTokens,
	})
	if err != nil {
		return err
	}

	var knownMakes []string
	if suggestMakes != "" {
		for _, m := range strings.Split(suggestMakes, ",") {
			knownMakes = append(knownMakes, strings.TrimSpace(m))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Suggest.Timeout+5)*time.Second)
	defer cancel()

	proposal, err := suggester.Suggest(ctx, phrase, knownMakes)
	if err != nil {
		return err
	}

	fmt.Printf("Phrase:       %s\n", proposal.Phrase)
	fmt.Printf("Make:         %s\n", proposal.Canonical.Make)
	fmt.Printf("Vehicle code: %s\n", proposal.Canonical.VehicleCode)
	fmt.Printf("Model:        %s\n", proposal.Canonical.Model)
	if proposal.Rationale != "" {
		fmt.Printf("Rationale:    %s\n", proposal.Rationale)
	}
	fmt.Printf("\nTo apply, add a mapping rule:\n")
	fmt.Printf("  fitment mappings import <payload.yaml>\n")

	return nil
}
