package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/caselens/case-engine/internal/ingest"
)

// newIngestCmd creates the ingest subcommand.
func newIngestCmd() *cobra.Command {
	var (
		save    bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Ingest AAA and JAMS case exports",
		Long: `Ingest reads one or more forum case exports, maps their columns onto
the canonical schema, cleans and deduplicates the records, derives
case outcomes, and optionally saves the result to the case store.

The forum is inferred per file from its name and contents. A file
that cannot be read is skipped; the run fails only when every file
fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			var store ingest.Store
			if save {
				repo, db, err := openRepository(cfg)
				if err != nil {
					return err
				}
				defer db.Close()
				store = repo
			}

			pipeline := ingest.NewPipeline(cfg.Ingestion, store, logger)

			var progress ingest.ProgressFunc
			if !outputJSON {
				bar := newProgressBar("Ingesting")
				progress = func(fraction float64, message string) {
					bar.Describe(message)
					_ = bar.Set64(int64(fraction * 100))
				}
			}

			result, err := pipeline.Process(ctx, args, ingest.ProcessOptions{
				SaveToStore: save,
				Progress:    progress,
			})
			if err != nil {
				return fmt.Errorf("ingestion failed: %w", err)
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"runId":    result.RunID,
					"records":  result.Dataset.Len(),
					"files":    len(result.Files),
					"persist":  result.Persist,
					"duration": result.Elapsed.String(),
				})
			}

			uiSuccess("Ingestion completed in %s", result.Elapsed.Round(time.Millisecond))
			for _, f := range result.Files {
				if f.Err != nil {
					uiWarning("%s: %v", f.Path, f.Err)
					continue
				}
				uiInfo("%s (%s): %d rows read, %d kept", f.Path, f.Forum, f.Rows, f.Kept)
			}
			uiInfo("Records after dedupe: %d (removed %d by case ID, %d by attributes)",
				result.Dataset.Len(),
				result.Dedupe.Input-result.Dedupe.AfterCaseID,
				result.Dedupe.AfterCaseID-result.Dedupe.AfterAttributes)
			uiInfo("Consumer wins: %d | Business wins: %d | Settlements: %d",
				result.Enrich.ConsumerWins, result.Enrich.BusinessWins, result.Enrich.Settlements)
			if result.Enrich.NegativeDurations > 0 {
				uiWarning("%d cases closed before their filing date", result.Enrich.NegativeDurations)
			}
			if save {
				if result.Persist.Status == "success" {
					uiSuccess("Saved to case store: %d inserted, %d updated",
						result.Persist.Inserted, result.Persist.Updated)
				} else {
					uiError("Save failed: %s", result.Persist.Message)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", true, "save the result to the case store")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall run timeout")

	return cmd
}
