package timelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func TestWeekStartMovesBackToSunday(t *testing.T) {
	// 2026-10-15 is a Thursday.
	ws := WeekStart(time.Date(2026, 10, 15, 23, 30, 0, 0, time.UTC), time.UTC)
	require.Equal(t, time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC), ws)
	require.Equal(t, time.Sunday, ws.Weekday())

	// A Sunday is its own week start.
	require.Equal(t, time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC), WeekStart(day(2026, 10, 11), time.UTC))
}

func TestWeekStartUsesLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// Saturday 20:00 UTC is already Sunday in UTC+7.
	ws := WeekStart(time.Date(2026, 10, 17, 20, 0, 0, 0, time.UTC), jakarta)
	require.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, jakarta), ws)
}

func TestWeeklyRollupWarningsOnFinalTotal(t *testing.T) {
	logs := []Entry{
		{UserID: "u", Date: day(2026, 10, 12), Hours: 10},
		{UserID: "u", Date: day(2026, 10, 13), Hours: 15},
	}
	buckets := WeeklyRollup(logs, time.UTC)
	require.Len(t, buckets, 1)
	require.Equal(t, 25.0, buckets[0].TotalHours)
	require.Empty(t, buckets[0].Warning)

	logs = append(logs, Entry{UserID: "u", Date: day(2026, 10, 14), Hours: 20})
	buckets = WeeklyRollup(logs, time.UTC)
	require.Equal(t, 45.0, buckets[0].TotalHours)
	require.Equal(t, WarningExceeded, buckets[0].Warning)

	// Order of entries does not matter.
	reversed := []Entry{logs[2], logs[1], logs[0]}
	require.Equal(t, buckets, WeeklyRollup(reversed, time.UTC))
}

func TestClassifyBoundaries(t *testing.T) {
	cases := map[float64]string{
		0:     WarningUnder,
		19.99: WarningUnder,
		20:    "",
		40:    "",
		40.01: WarningExceeded,
	}
	for total, want := range cases {
		require.Equal(t, want, classify(total), total)
	}
}

func TestWeeklyRollupSplitsSourcesAndSorts(t *testing.T) {
	logs := []Entry{
		{UserID: "b", Date: day(2026, 10, 5), Hours: 8},
		{UserID: "a", Date: day(2026, 10, 12), Hours: 30},
		{UserID: "a", Date: day(2026, 10, 13), Hours: 12, External: true},
		{UserID: "a", Date: day(2026, 10, 6), Hours: 22},
		{UserID: "c", Date: day(2026, 10, 14), Hours: 21},
	}
	buckets := WeeklyRollup(logs, time.UTC)
	require.Len(t, buckets, 4)

	require.Equal(t, "a", buckets[0].UserID)
	require.Equal(t, 30.0, buckets[0].InternalHours)
	require.Equal(t, 12.0, buckets[0].ExternalHours)
	require.Equal(t, 42.0, buckets[0].TotalHours)
	require.Equal(t, WarningExceeded, buckets[0].Warning)
	require.Equal(t, "c", buckets[1].UserID)

	require.Equal(t, "a", buckets[2].UserID)
	require.Equal(t, "b", buckets[3].UserID)
	require.True(t, buckets[1].WeekStart.After(buckets[2].WeekStart))

	var in, out float64
	for _, l := range logs {
		in += l.Hours
	}
	for _, b := range buckets {
		out += b.TotalHours
	}
	require.Equal(t, in, out)
}

func TestSummarize(t *testing.T) {
	require.Equal(t, Summary{}, Summarize(nil))

	s := Summarize([]Bucket{
		{UserID: "a", TotalHours: 30},
		{UserID: "a", TotalHours: 10},
		{UserID: "b", TotalHours: 20},
	})
	require.Equal(t, 2, s.TotalUsers)
	require.Equal(t, 3, s.TotalWeeks)
	require.InDelta(t, 20.0, s.AverageHoursPerWeek, 1e-9)
}
