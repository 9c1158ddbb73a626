package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/caselens/case-engine/internal/dataset"
	"github.com/caselens/case-engine/internal/storage"
)

// newStatsCmd creates the stats subcommand.
func newStatsCmd() *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dataset statistics and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
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

			ds := dataset.New(records)
			metrics := ds.ComputeMetrics()

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"metrics":         metrics,
					"top_arbitrators": ds.TopArbitrators(top),
					"top_respondents": ds.TopRespondents(top),
				})
			}

			fmt.Printf("Total cases:        %d\n", metrics.TotalCases)
			fmt.Printf("Unique arbitrators: %d\n", metrics.UniqueArbitrators)
			fmt.Printf("Unique respondents: %d\n", metrics.UniqueRespondents)
			if metrics.AverageClaim != nil {
				fmt.Printf("Average claim:      $%.2f\n", *metrics.AverageClaim)
			}
			if metrics.AverageAward != nil {
				fmt.Printf("Average award:      $%.2f\n", *metrics.AverageAward)
			}
			fmt.Printf("Settlement rate:    %.1f%%\n", metrics.SettlementRate*100)
			fmt.Printf("Consumer win rate:  %.1f%%\n", metrics.ConsumerWinRate*100)

			if len(metrics.Dispositions) > 0 {
				fmt.Println("\nDispositions:")
				for disp, n := range metrics.Dispositions {
					fmt.Printf("  %-28s %d\n", disp, n)
				}
			}

			if arbs := ds.TopArbitrators(top); len(arbs) > 0 {
				fmt.Printf("\nTop %d arbitrators:\n", top)
				for _, a := range arbs {
					fmt.Printf("  %-36s %d cases\n", a.Name, a.Count)
				}
			}
			if resps := ds.TopRespondents(top); len(resps) > 0 {
				fmt.Printf("\nTop %d respondents:\n", top)
				for _, r := range resps {
					fmt.Printf("  %-36s %d cases\n", r.Name, r.Count)
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "number of top arbitrators/respondents to show")

	return cmd
}
