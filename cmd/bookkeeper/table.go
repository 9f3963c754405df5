package main

import (
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// initColor disables color when asked to or when stdout is not a terminal.
func initColor(noColor bool) {
	fd := os.Stdout.Fd()
	if noColor || (!isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)) {
		color.NoColor = true
	}
}

var (
	finishedColor   = color.New(color.FgGreen)
	inProgressColor = color.New(color.FgYellow)
	notStartedColor = color.New(color.Faint)
)

// stateLabel renders a book state for terminal output.
func stateLabel(state domain.BookState) string {
	switch state {
	case domain.StateFinished:
		return finishedColor.Sprint(string(state))
	case domain.StateInProgress:
		return inProgressColor.Sprint(string(state))
	default:
		return notStartedColor.Sprint(string(state))
	}
}

func dayOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return domain.DayKey(*t)
}
