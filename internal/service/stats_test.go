package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookkeeperapp/bookkeeper-server/internal/domain"
	"github.com/bookkeeperapp/bookkeeper-server/internal/logger"
)

func TestGetStats(t *testing.T) {
	env := setupEnv(t, false)
	env.seed(t, "u1", "2024-04-07", book("a", 200, 10), book("b", 100, 0))
	env.seed(t, "u1", "2024-04-08", book("a", 200, 30))
	done := book("c", 50, 50)
	done.FinishDate = domain.DayPtr(domain.MustParseDay("2024-04-09"))
	env.seed(t, "u1", "2024-04-09", book("a", 200, 45), done)
	env.seed(t, "u1", "2024-04-10", book("a", 200, 60), book("b", 100, 5))

	stats, err := NewStatsService(logger.Discard()).GetStats(context.Background(), env.load(t, "u1"), testToday)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalBooks)
	assert.Equal(t, 0, stats.Count(domain.StateNotStarted))
	assert.Equal(t, 2, stats.Count(domain.StateInProgress))
	assert.Equal(t, 1, stats.Count(domain.StateFinished))

	require.Len(t, stats.InProgress, 2)
	assert.Equal(t, "a", stats.InProgress[0].Slug)
	assert.InDelta(t, 30.0, stats.InProgress[0].Percent, 0.001)

	require.Len(t, stats.Daily, 4)
	assert.Equal(t, 10, stats.Daily[0].TotalPages)
	assert.Equal(t, 0, stats.Daily[0].PagesRead)
	assert.Equal(t, 20, stats.Daily[1].PagesRead)
	assert.Equal(t, 15, stats.Daily[2].PagesRead, "c's first snapshot is not counted")
	assert.Equal(t, 20, stats.Daily[3].PagesRead)
	assert.Equal(t, 2, stats.Daily[3].BooksRead)
	assert.Equal(t, 115, stats.Daily[3].TotalPages)
	assert.Equal(t, 55, stats.TotalPagesRead)

	require.Len(t, stats.Velocity, 2)
	assert.Equal(t, "a", stats.Velocity[0].Slug)
	assert.Equal(t, 60, stats.Velocity[0].Last7Days, "window before history counts from zero")
	assert.Equal(t, 60, stats.Velocity[0].Last14Days)

	assert.Equal(t, 3, stats.CurrentStreak)
	assert.Equal(t, 3, stats.LongestStreak)
}

func TestGetStats_Empty(t *testing.T) {
	env := setupEnv(t, false)

	stats, err := NewStatsService(logger.Discard()).GetStats(context.Background(), env.load(t, "u1"), testToday)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalBooks)
	assert.Empty(t, stats.Daily)
	assert.Empty(t, stats.Velocity)
	assert.Len(t, stats.States, 3)
}

func TestStreaks(t *testing.T) {
	day := func(s string, pages int) domain.DailyReading {
		return domain.DailyReading{Date: domain.MustParseDay(s), PagesRead: pages}
	}
	series := []domain.DailyReading{
		day("2024-04-01", 5), day("2024-04-02", 5), day("2024-04-03", 5),
		day("2024-04-04", 0), day("2024-04-05", 3),
	}

	current, longest := streaks(series, domain.MustParseDay("2024-04-06"))
	assert.Equal(t, 1, current)
	assert.Equal(t, 3, longest)

	current, longest = streaks(series, domain.MustParseDay("2024-04-08"))
	assert.Equal(t, 0, current, "stale streaks do not count")
	assert.Equal(t, 3, longest)

	current, longest = streaks(nil, domain.MustParseDay("2024-04-08"))
	assert.Zero(t, current)
	assert.Zero(t, longest)
}
