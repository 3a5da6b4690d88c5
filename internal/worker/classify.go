package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/docketsift/internal/model"
)

// ClassifyFunc decides one case. It must only read the record.
type ClassifyFunc func(rec *model.CaseRecord) model.Decision

// ClassifyJob classifies the record at one position of a batch
type ClassifyJob struct {
	Index    int
	Record   *model.CaseRecord
	Classify ClassifyFunc
}

// Execute runs the classification
func (j *ClassifyJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &ClassifyResult{Index: j.Index, CaseID: j.Record.CaseID, Error: err}
	}
	return &ClassifyResult{
		Index:       j.Index,
		CaseID:      j.Record.CaseID,
		Decision:    j.Classify(j.Record),
		Fingerprint: j.Record.ComputeFingerprint(),
	}
}

// ClassifyResult is the outcome of a ClassifyJob
type ClassifyResult struct {
	Index       int
	CaseID      string
	Decision    model.Decision
	Fingerprint string
	Error       error
}

// GetError returns the error from the classification
func (r *ClassifyResult) GetError() error {
	return r.Error
}

// BatchClassifier classifies many records concurrently
type BatchClassifier struct {
	classify    ClassifyFunc
	concurrency int
}

// NewBatchClassifier creates a batch classifier
func NewBatchClassifier(classify ClassifyFunc, concurrency int) *BatchClassifier {
	return &BatchClassifier{
		classify:    classify,
		concurrency: concurrency,
	}
}

// ClassifyAll classifies records and returns results in input order. On
// cancellation it returns the context error and no results.
func (b *BatchClassifier) ClassifyAll(ctx context.Context, records []*model.CaseRecord) ([]*ClassifyResult, error) {
	if len(records) == 0 {
		return []*ClassifyResult{}, nil
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, rec := range records {
		if !pool.Submit(&ClassifyJob{Index: i, Record: rec, Classify: b.classify}) {
			break
		}
	}

	results := pool.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*ClassifyResult, 0, len(results))
	for _, r := range results {
		cr := r.(*ClassifyResult)
		if cr.Error != nil {
			return nil, fmt.Errorf("classify %s: %w", cr.CaseID, cr.Error)
		}
		out = append(out, cr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })

	return out, nil
}

// ReadCaseIDs reads case numbers from a file, one per line. Blank lines and
// "#" comments are skipped; duplicates are dropped.
func ReadCaseIDs(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var ids []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		id := strings.ToUpper(line)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return ids, nil
}
