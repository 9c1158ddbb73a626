package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/caselens/case-engine/internal/dataset"
	"github.com/caselens/case-engine/internal/query"
	"github.com/caselens/case-engine/internal/storage"
)

// newQueryCmd creates the query subcommand.
func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [question]",
		Short: "Ask a natural-language question about the case data",
		Long: `Query answers questions about arbitrators and case outcomes, for example:

  case-engine query "How many arbitrations has John Smith had?"
  case-engine query "What was the average award given by Maria Gonzalez?"
  case-engine query "List the names of all the arbitrations handled by David Chen"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			question := strings.Join(args, " ")

			repo, db, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			sp := newSpinner("Loading case data")
			if !outputJSON {
				sp.Start()
			}

			records, err := repo.Load(ctx, storage.LoadFilters{})
			sp.Stop()
			if err != nil {
				return fmt.Errorf("load cases: %w", err)
			}
			if len(records) == 0 {
				uiWarning("The case store is empty; run 'case-engine ingest' or 'case-engine demo' first")
				return nil
			}

			cacheClient := openCache(cfg)
			defer cacheClient.Close()

			var opts query.Options
			if cfg.Query.CacheAnswers {
				opts.Cache = cacheClient
				opts.CacheTTL = cfg.Query.CacheTTL
			}
			engine := query.NewEngine(logger, opts)

			answer := engine.Answer(ctx, question, dataset.New(records))

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]string{
					"question": question,
					"answer":   answer,
				})
			}

			fmt.Println(answer)
			return nil
		},
	}

	return cmd
}
