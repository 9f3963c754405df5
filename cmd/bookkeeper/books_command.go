package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/readlog"
)

func newBooksCommand(ctx *commandContext) *cobra.Command {
	var crit readlog.Criteria
	var state string
	var overview bool

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the latest state of every book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if state != "" && !domain.BookState(state).Valid() {
				return fmt.Errorf("unknown state %q (want not started, in progress or finished)", state)
			}
			return ctx.withRead(cmd.Context(), func(c context.Context, s *session) error {
				sess, err := s.load(c)
				if err != nil {
					return err
				}

				books := readlog.FilterBooks(sess.Latest, crit)
				if state != "" {
					books = readlog.Where(books, readlog.StateIs(domain.BookState(state)))
				}
				if len(books) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No books")
					return nil
				}

				if overview {
					rows := make([][]string, 0, len(books))
					for _, r := range readlog.Overview(books) {
						rows = append(rows, r.Cells())
					}
					fmt.Fprintln(cmd.OutOrStdout(), renderTable(readlog.OverviewColumns, rows,
						[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight}))
					return nil
				}

				rows := make([][]string, 0, len(books))
				for _, b := range books {
					rows = append(rows, []string{
						b.Slug,
						b.Title,
						b.Author,
						stateLabel(b.State),
						fmt.Sprintf("%d/%d", b.PageCurrent, b.PageN),
						strconv.FormatFloat(b.ProgressPercent(), 'f', 1, 64) + "%",
						dayOrDash(b.FinishDate),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Slug", "Title", "Author", "State", "Pages", "Progress", "Finished"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&crit.Authors, "author", nil, "Keep books by these authors (repeatable)")
	f.StringSliceVar(&crit.Publishers, "publisher", nil, "Keep books from these publishers (repeatable)")
	f.IntVar(&crit.YearMin, "year-min", 0, "Earliest published year")
	f.IntVar(&crit.YearMax, "year-max", 0, "Latest published year")
	f.StringVar(&state, "state", "", "Keep books in this state")
	f.BoolVar(&overview, "overview", false, "Show the overview columns instead")

	return cmd
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history <slug>",
		Short: "Show every logged snapshot of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]
			return ctx.withRead(cmd.Context(), func(c context.Context, s *session) error {
				sess, err := s.load(c)
				if err != nil {
					return err
				}

				logs := readlog.ClassifyState(readlog.LogsForBook(sess.Books, slug))
				if len(logs) == 0 {
					return fmt.Errorf("book %s not found", slug)
				}

				rows := make([][]string, 0, len(logs))
				for _, e := range logs {
					deleted := ""
					if e.Deleted {
						deleted = "deleted"
					}
					rows = append(rows, []string{
						domain.DayKey(e.LogCreatedAt),
						stateLabel(e.State),
						strconv.Itoa(e.PageCurrent),
						strconv.Itoa(e.PageN),
						dayOrDash(e.FinishDate),
						deleted,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), logs[0].Title+" by "+logs[0].Author)
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Day", "State", "Page", "Pages", "Finished", ""},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}
