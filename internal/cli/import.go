package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/docketsift/internal/model"
	"github.com/ppiankov/docketsift/internal/pipeline"
)

var importTimeout time.Duration

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Ingest case records from the docket scraper",
	Long: `Import reads JSON case records (an array, or a single record per file)
and merges them into the case store by case_id.

A stored outcome is kept when the incoming record has the same
classification inputs; otherwise it is cleared so the next classify
run decides the case again.

Example:
  docketsift import scrape/coa05.json scrape/pd.json
  docketsift import cases.json --store data/cases.db`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().DurationVar(&importTimeout, "timeout", 5*time.Minute, "total timeout for the import")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), importTimeout)
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

	var records []model.CaseRecord
	for _, path := range args {
		batch, err := pipeline.ReadSupplierFile(path)
		if err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Read %d records from %s\n", len(batch), path)
		}
		records = append(records, batch...)
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

	stats, err := p.Import(ctx, records)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Imported %d records into %s (%d new, %d changed, %d unchanged, %d total)\n",
		stats.Read, cfg.Store.Path, stats.New, stats.Updated, stats.Unchanged, stats.Total)
	return nil
}
