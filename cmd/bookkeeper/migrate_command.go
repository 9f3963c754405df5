package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookkeeperapp/bookkeeper-server/internal/config"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store"
	"github.com/bookkeeperapp/bookkeeper-server/internal/store/backends"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var to, toData string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every user and log row to another backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if to != config.BackendBadger && to != config.BackendSQLite {
				return fmt.Errorf("--to must be %s or %s", config.BackendBadger, config.BackendSQLite)
			}
			if toData == "" {
				toData = cfg.Storage.DataPath
			}
			if to == cfg.Storage.Backend && toData == cfg.Storage.DataPath {
				return errors.New("source and destination are the same store")
			}

			lock, err := store.AcquireWriterLock(cfg.LockPath())
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, lock.Release()) }()

			src, err := backends.Open(cfg.Storage.Backend, cfg.Storage.DataPath, ctx.logger.Logger)
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer func() { err = errors.Join(err, src.Close()) }()

			dst, err := backends.Open(to, toData, ctx.logger.Logger)
			if err != nil {
				return fmt.Errorf("open destination: %w", err)
			}
			defer func() { err = errors.Join(err, dst.Close()) }()

			res, err := store.Migrate(cmd.Context(), src, dst)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d users, %d days, %d rows from %s to %s (%s)\n",
				res.Users, res.Days, res.Rows, src.Name(), dst.Name(), config.BackendPath(toData, to))
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Destination backend (badger or sqlite)")
	cmd.Flags().StringVar(&toData, "to-data", "", "Destination data directory (default: the source data directory)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
