package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/readlog"
	"github.com/bookkeeperapp/bookkeeper-server/internal/service"
)

func newTimelineCommand(ctx *commandContext) *cobra.Command {
	var slug, from, to string

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show the day-by-day reading grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDay, err := parseDayFlag("from", from)
			if err != nil {
				return err
			}
			toDay, err := parseDayFlag("to", to)
			if err != nil {
				return err
			}

			return ctx.withRead(cmd.Context(), func(c context.Context, s *session) error {
				sess, err := s.load(c)
				if err != nil {
					return err
				}

				grid, err := readlog.FillDenseTimeline(readlog.RemoveDeleted(sess.Books))
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(grid))
				for _, r := range grid {
					day := r.Day()
					if slug != "" && r.Entry.Slug != slug {
						continue
					}
					if (!fromDay.IsZero() && day.Before(fromDay)) || (!toDay.IsZero() && day.After(toDay)) {
						continue
					}
					marker := ""
					if r.Observed {
						marker = "*"
					}
					rows = append(rows, []string{
						domain.DayKey(day),
						r.Entry.Slug,
						strconv.Itoa(r.Entry.PageCurrent),
						stateLabel(r.Entry.State),
						marker,
					})
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No timeline rows")
					return nil
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Day", "Book", "Page", "State", "Logged"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "Only this book")
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize reading activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRead(cmd.Context(), func(c context.Context, s *session) error {
				sess, err := s.load(c)
				if err != nil {
					return err
				}
				stats, err := service.NewStatsService(s.log.Logger).GetStats(c, sess, sess.Today)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Books: %d\n", stats.TotalBooks)
				for _, sc := range stats.States {
					fmt.Fprintf(out, "  %s: %d\n", stateLabel(sc.State), sc.Count)
				}
				fmt.Fprintf(out, "Pages read: %d\n", stats.TotalPagesRead)
				fmt.Fprintf(out, "Current streak: %d days (longest %d)\n", stats.CurrentStreak, stats.LongestStreak)

				if len(stats.InProgress) > 0 {
					rows := make([][]string, 0, len(stats.InProgress))
					for _, p := range stats.InProgress {
						rows = append(rows, []string{
							p.Title,
							p.Author,
							fmt.Sprintf("%d/%d", p.PageCurrent, p.PageN),
							strconv.FormatFloat(p.Percent, 'f', 2, 64) + "%",
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"In progress", "Author", "Pages", "Progress"},
						rows,
						[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
					))
				}

				if len(stats.Velocity) > 0 {
					rows := make([][]string, 0, len(stats.Velocity))
					for _, v := range stats.Velocity {
						rows = append(rows, []string{v.Title, strconv.Itoa(v.Last7Days), strconv.Itoa(v.Last14Days)})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Book", "Last 7 days", "Last 14 days"},
						rows,
						[]columnAlignment{alignLeft, alignRight, alignRight},
					))
				}
				return nil
			})
		},
	}
}
