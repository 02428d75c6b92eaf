package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/partstream/fitment/internal/model"
	"github.com/partstream/fitment/internal/worker"
)

var (
	batchConcurrency int
	batchPartTypeID  int64
	batchTimeout     time.Duration
	batchSaveEntry   string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Resolve application strings from a file in parallel",
	Long: `Batch processes application strings concurrently:
- Read application strings from the input file (one per line)
- Process them in parallel with a configurable worker count
- A malformed or unmappable input becomes one error result for that line;
  it never aborts the rest of the batch

Example:
  fitment batch applications.txt --part-type 1001
  fitment batch applications.txt --part-type 1001 --concurrency 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().Int64Var(&batchPartTypeID, "part-type", 0, "part type id for position validation")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchSaveEntry, "save", "", "persist all results under this catalog entry id")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	rawTexts, err := worker.ReadApplicationsFromFile(file)
	if err != nil {
		return err
	}

	cfg := loadConfig()
	cfg.Concurrency.Workers = batchConcurrency

	d, err := openDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	fmt.Fprintf(os.Stderr, "Processing %d application strings with %d workers\n", len(rawTexts), batchConcurrency)

	results, err := d.Engine.BatchProcess(ctx, rawTexts, batchPartTypeID)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(results))
	for key := range results {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	valid, warnings, errs := 0, 0, 0
	var toSave []model.ValidationResult
	for _, key := range keys {
		printResults(key, results[key])
		for _, r := range results[key] {
			switch r.Status {
			case model.StatusValid:
				valid++
			case model.StatusWarning:
				warnings++
			case model.StatusError:
				errs++
			}
		}
		toSave = append(toSave, results[key]...)
	}

	if batchSaveEntry != "" {
		if err := d.Sink.SaveResults(ctx, batchSaveEntry, toSave); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "\nDone: %d valid, %d warnings, %d errors across %d inputs\n",
		valid, warnings, errs, len(results))

	if cfg.Output.Verbose {
		partTypes, positions := d.Engine.ReferenceCacheStats()
		fmt.Fprintf(os.Stderr, "Reference caches: %d part types, %d position sets\n", partTypes, positions)
	}

	if errs > 0 {
		return fmt.Errorf("%d inputs produced errors", errs)
	}
	return nil
}
