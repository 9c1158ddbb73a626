package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/caselens/case-engine/internal/dataset"
	"github.com/caselens/case-engine/internal/storage"
)

// newExportCmd creates the export subcommand.
func newExportCmd() *cobra.Command {
	var (
		output     string
		arbitrator string
		respondent string
		forum      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the canonical dataset to CSV",
		Long: `Export writes the persisted dataset as a CSV file with canonical
headers, optionally filtered by arbitrator, respondent, or forum.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()

			repo, db, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := repo.Load(ctx, storage.LoadFilters{})
			if err != nil {
				return fmt.Errorf("load cases: %w", err)
			}

			ds := dataset.New(records).Filter(dataset.FilterOptions{
				Arbitrator: arbitrator,
				Respondent: respondent,
				Forum:      storage.Forum(forum),
			})

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create output file: %w", err)
			}
			defer file.Close()

			if err := ds.WriteCSV(file); err != nil {
				return fmt.Errorf("write export: %w", err)
			}

			uiSuccess("Exported %d cases to %s", ds.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (required)")
	cmd.Flags().StringVar(&arbitrator, "arbitrator", "", "filter by arbitrator name")
	cmd.Flags().StringVar(&respondent, "respondent", "", "filter by respondent name")
	cmd.Flags().StringVar(&forum, "forum", "", "filter by forum (AAA or JAMS)")

	_ = cmd.MarkFlagRequired("output")

	return cmd
}
