package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookkeeperapp/bookkeeper-server/internal/backup"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of a user's log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := backup.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			return ctx.withRead(cmd.Context(), func(c context.Context, s *session) error {
				svc := backup.NewService(s.backend, s.log.Logger)

				var w io.Writer = cmd.OutOrStdout()
				if output != "" {
					if output == "." {
						output = backup.FileName(s.user.Username, format, time.Now())
					}
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("create %s: %w", output, err)
					}
					defer f.Close()
					w = f
				}

				res, err := svc.Export(c, w, s.user, format)
				if err != nil {
					return err
				}
				if output != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d rows to %s\n", res.Manifest.Rows, output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "json", "Backup format (json or yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file; \".\" picks a default name (default stdout)")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore days from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			var format backup.Format
			var err error
			if formatFlag != "" {
				format, err = backup.ParseFormat(formatFlag)
			} else {
				format, err = backup.FormatForPath(path)
			}
			if err != nil {
				return err
			}

			run := func(c context.Context, s *session) error {
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open %s: %w", path, err)
				}
				defer f.Close()

				res, err := backup.NewService(s.backend, s.log.Logger).Import(c, f, s.user.ID, backup.ImportOptions{
					Format: format,
					DryRun: dryRun,
				})
				if err != nil {
					return err
				}

				verb := "Imported"
				if res.DryRun {
					verb = "Would import"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d rows over %d days (export %s)\n",
					verb, res.Rows, res.Days, res.Manifest.ExportID)
				return nil
			}

			if dryRun {
				return ctx.withRead(cmd.Context(), run)
			}
			return ctx.withWrite(cmd.Context(), run)
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Backup format (default from the file extension)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the backup without writing")
	return cmd
}
