package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/partstream/fitment/internal/engine"
	"github.com/partstream/fitment/internal/model"
)

var (
	partTypeID     int64
	bestOnly       bool
	saveEntryID    string
	processTimeout time.Duration
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process <application string>",
	Short: "Resolve and validate one catalog application string",
	Long: `Parses the application string, resolves the vehicle phrase through the
configured mapping rules, expands every (year, vehicle, position) candidate
and validates each one against the reference datasets.

All candidate results are printed, not just the first valid one, so the
full search trace is visible.

Example:
  fitment process "2015-2016 Toyota Camry Front Left" --part-type 1001
  fitment process "2015 Camry" --part-type 1001 --best
  fitment process "2015 Camry Front" --part-type 1001 --save SKU-443`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().Int64Var(&partTypeID, "part-type", 0, "part type id for position validation")
	processCmd.Flags().BoolVar(&bestOnly, "best", false, "print only the best-ranked verdict")
	processCmd.Flags().StringVar(&saveEntryID, "save", "", "persist results under this catalog entry id")
	processCmd.Flags().DurationVar(&processTimeout, "timeout", 30*time.Second, "total timeout")
}

func runProcess(cmd *cobra.Command, args []string) error {
	rawText := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
	defer cancel()

	cfg := loadConfig()
	d, err := openDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Loaded %d active mapping rules\n", d.Engine.MappingCount())
	}

	results, err := d.Engine.ProcessApplication(ctx, rawText, partTypeID)
	if err != nil {
		return err
	}

	if bestOnly {
		if best := engine.BestResult(results); best != nil {
			printResults(rawText, []model.ValidationResult{*best})
		}
	} else {
		printResults(rawText, results)
	}

	if saveEntryID != "" {
		if err := d.Sink.SaveResults(ctx, saveEntryID, results); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved %d results for %s\n", len(results), saveEntryID)
	}

	return nil
}
