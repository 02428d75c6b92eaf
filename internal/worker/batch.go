package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/partstream/fitment/internal/model"
)

// Processor defines the interface for resolving one application string
type Processor interface {
	ProcessApplication(ctx context.Context, rawText string, partTypeID int64) ([]model.ValidationResult, error)
}

// ApplicationJob resolves and validates one application string
type ApplicationJob struct {
	RawText    string
	PartTypeID int64
	Processor  Processor
}

// Execute executes the job
func (j *ApplicationJob) Execute(ctx context.Context) Result {
	results, err := j.Processor.ProcessApplication(ctx, j.RawText, j.PartTypeID)
	return &ApplicationResult{
		RawText: j.RawText,
		Results: results,
		Error:   err,
	}
}

// ApplicationResult represents the outcome for one application string
type ApplicationResult struct {
	RawText string
	Results []model.ValidationResult
	Error   error
}

// GetError returns the error from the result
func (r *ApplicationResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple application strings concurrently
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessApplications processes application strings concurrently. Each input
// is independent; one bad string never aborts the others.
func (b *BatchProcessor) ProcessApplications(ctx context.Context, rawTexts []string, partTypeID int64) []*ApplicationResult {
	if len(rawTexts) == 0 {
		return []*ApplicationResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	jobs := make([]Job, len(rawTexts))
	for i, raw := range rawTexts {
		jobs[i] = &ApplicationJob{
			RawText:    raw,
			PartTypeID: partTypeID,
			Processor:  b.processor,
		}
	}

	results := pool.SubmitAndWait(jobs)

	appResults := make([]*ApplicationResult, len(results))
	for i, result := range results {
		appResults[i] = result.(*ApplicationResult)
	}

	return appResults
}

// ProcessFile reads application strings from a file and processes them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, partTypeID int64) ([]*ApplicationResult, error) {
	rawTexts, err := ReadApplicationsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read applications: %w", err)
	}

	return b.ProcessApplications(ctx, rawTexts, partTypeID), nil
}

// ReadApplicationsFromFile reads application strings from a file, one per
// line, skipping comments and duplicates
func ReadApplicationsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var rawTexts []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			rawTexts = append(rawTexts, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return rawTexts, nil
}
