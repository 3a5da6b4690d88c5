package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/docketsift/internal/pipeline"
	"github.com/ppiankov/docketsift/internal/report"
	"github.com/ppiankov/docketsift/internal/store"
	"github.com/ppiankov/docketsift/internal/worker"
)

var (
	casesFile       string
	outCSV          string
	outJSON         string
	outMD           string
	handoffPath     string
	workers         int
	force           bool
	classifyTimeout time.Duration
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Decide which stored appellate cases are eligible",
	Long: `Classify runs a triage pass over the case store:
- Fill in the judgment flag from the events table where it is missing
- Reuse stored outcomes that cannot change (stale, mandate, judgment, ...)
- Classify the rest in parallel against a snapshot of the companion docket
- Save the outcomes and write the eligible cases for downstream steps

Example:
  docketsift classify
  docketsift classify --cases review.txt --csv outcomes.csv
  docketsift classify --force --workers 8 --handoff data/eligible.json`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&casesFile, "cases", "", "file of case numbers to classify, one per line (default: all)")
	classifyCmd.Flags().StringVar(&outCSV, "csv", "", "output CSV path (optional)")
	classifyCmd.Flags().StringVar(&outJSON, "json", "", "output JSON decisions path (optional)")
	classifyCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	classifyCmd.Flags().StringVar(&handoffPath, "handoff", "", "eligible records path (default: output.handoff_path)")
	classifyCmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent workers (default: concurrency.workers)")
	classifyCmd.Flags().BoolVar(&force, "force", false, "re-classify cases with a stored terminal outcome")
	classifyCmd.Flags().DurationVar(&classifyTimeout, "timeout", 10*time.Minute, "total timeout for the pass")
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), classifyTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := pipeline.Options{Workers: workers, Force: force}
	if casesFile != "" {
		ids, err := worker.ReadCaseIDs(casesFile)
		if err != nil {
			return fmt.Errorf("read case list: %w", err)
		}
		opts.CaseIDs = ids
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Store:    %s (%s)\n", cfg.Store.Path, cfg.Store.Driver)
		fmt.Fprintf(os.Stderr, "Policy:   %s\n", cfg.Classifier.JudgmentPolicy)
		if len(opts.CaseIDs) > 0 {
			fmt.Fprintf(os.Stderr, "Cases:    %d from %s\n", len(opts.CaseIDs), casesFile)
		}
		fmt.Fprintln(os.Stderr)
	}

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	p, err := pipeline.NewPipeline(cfg, st, pipeline.WithLogger(logger))
	if err != nil {
		return err
	}

	res, err := p.Run(ctx, opts)
	if err != nil {
		return fmt.Errorf("classify failed: %w", err)
	}

	r := report.NewRenderer(cmd.OutOrStdout())
	r.RenderSummary(res, cfg.Output.Verbose)

	totals, err := store.CountByReason(ctx, st)
	if err != nil {
		return fmt.Errorf("count stored outcomes: %w", err)
	}
	r.RenderStoreCounts(totals)

	if outCSV != "" {
		if err := r.RenderCSV(res.Outcomes, outCSV); err != nil {
			return fmt.Errorf("render CSV: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote CSV: %s\n", outCSV)
	}
	if outJSON != "" {
		if err := r.RenderJSON(res.Outcomes, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
	}
	if outMD != "" {
		if err := r.RenderMarkdown(res, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
	}

	handoff := handoffPath
	if handoff == "" {
		handoff = cfg.Output.HandoffPath
	}
	if handoff != "" {
		if err := r.WriteHandoff(res.Eligible, handoff); err != nil {
			return fmt.Errorf("write handoff: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %d eligible cases: %s\n", len(res.Eligible), handoff)
	}

	return nil
}
