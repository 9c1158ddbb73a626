package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/caselens/case-engine/internal/dataset"
)

// newDemoCmd creates the demo subcommand.
func newDemoCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Load a deterministic sample dataset into the case store",
		Long: `Demo fills the case store with generated sample cases so the query
and stats commands can be tried without real forum exports. The same
count always produces the same data.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			repo, db, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ds := dataset.Sample(count)

			sp := newSpinner(fmt.Sprintf("Saving %d sample cases", ds.Len()))
			sp.Start()
			result := repo.Save(ctx, ds.Records)
			sp.Stop()

			if result.Status != "success" {
				return fmt.Errorf("save sample data: %s", result.Message)
			}

			uiSuccess("Loaded %d sample cases (%d inserted, %d updated)",
				result.Total, result.Inserted, result.Updated)
			uiInfo(`Try: case-engine query "How many arbitrations has John Smith had?"`)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 200, "number of sample cases to generate")

	return cmd
}
