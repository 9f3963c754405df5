package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookkeeperapp/bookkeeper-server/internal/readlog"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
)

func newSeedCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the example library into a user's log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWrite(cmd.Context(), func(c context.Context, s *session) error {
				existing, err := s.backend.ReadAll(c, s.user.ID)
				if err != nil {
					return err
				}
				if len(existing) > 0 && !force {
					return fmt.Errorf("user %s already has %d log rows; pass --force to overwrite the example days", s.user.Username, len(existing))
				}

				rows := readlog.ExampleData()
				days, err := store.ReplayDays(c, s.backend, s.user.ID, rows)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d rows over %d days for %s\n", len(rows), days, s.user.Username)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Seed even if the user already has history")
	return cmd
}
