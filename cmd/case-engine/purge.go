package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// newPurgeCmd creates the purge subcommand.
func newPurgeCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all cases from the case store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			if !force {
				fmt.Print("This deletes every case in the store. Continue? [y/N] ")
				reader := bufio.NewReader(os.Stdin)
				answer, _ := reader.ReadString('\n')
				if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
					fmt.Println("Aborted.")
					return nil
				}
			}

			repo, db, err := openRepository(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ok, err := repo.Exists(ctx)
			if err != nil {
				return fmt.Errorf("check case store: %w", err)
			}
			if !ok {
				uiWarning("Case store has no data yet")
				return nil
			}

			n, err := repo.Clear(ctx)
			if err != nil {
				return fmt.Errorf("purge case store: %w", err)
			}

			uiSuccess("Purged %d cases", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}
