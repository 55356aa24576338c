package timelog

import (
	"sort"
	"time"
)

const (
	WarningExceeded = "Exceeded 40 hours per week"
	WarningUnder    = "Less than 20 hours per week"

	maxWeeklyHours = 40
	minWeeklyHours = 20
)

// Entry is one log as seen by the rollup.
type Entry struct {
	UserID   string
	Date     time.Time
	Hours    float64
	External bool
}

type Bucket struct {
	UserID        string    `json:"userId"`
	WeekStart     time.Time `json:"weekStart"`
	InternalHours float64   `json:"internalHours"`
	ExternalHours float64   `json:"externalHours"`
	TotalHours    float64   `json:"totalHours"`
	Warning       string    `json:"warning,omitempty"`
}

type Summary struct {
	TotalUsers          int     `json:"totalUsers"`
	TotalWeeks          int     `json:"totalWeeks"`
	AverageHoursPerWeek float64 `json:"averageHoursPerWeek"`
}

type CombinedRollup struct {
	Weeks   []Bucket `json:"weeks"`
	Summary Summary  `json:"summary"`
}

type bucketKey struct {
	UserID    string
	WeekStart int64
}

// WeekStart returns midnight of the Sunday on or before t, in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeeklyRollup groups entries by user and week. Warnings are decided on the
// final totals, so entry order never changes the outcome. Buckets come back
// newest week first, then by user id.
func WeeklyRollup(entries []Entry, loc *time.Location) []Bucket {
	acc := make(map[bucketKey]*Bucket)
	for _, e := range entries {
		ws := WeekStart(e.Date, loc)
		key := bucketKey{UserID: e.UserID, WeekStart: ws.Unix()}
		b, ok := acc[key]
		if !ok {
			b = &Bucket{UserID: e.UserID, WeekStart: ws}
			acc[key] = b
		}
		if e.External {
			b.ExternalHours += e.Hours
		} else {
			b.InternalHours += e.Hours
		}
	}

	out := make([]Bucket, 0, len(acc))
	for _, b := range acc {
		b.TotalHours = b.InternalHours + b.ExternalHours
		b.Warning = classify(b.TotalHours)
		out = append(out, *b)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].WeekStart.Equal(out[j].WeekStart) {
			return out[i].WeekStart.After(out[j].WeekStart)
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func classify(total float64) string {
	switch {
	case total > maxWeeklyHours:
		return WarningExceeded
	case total < minWeeklyHours:
		return WarningUnder
	default:
		return ""
	}
}

// Summarize reports an average of 0 for an empty rollup.
func Summarize(buckets []Bucket) Summary {
	users := make(map[string]struct{})
	var total float64
	for _, b := range buckets {
		users[b.UserID] = struct{}{}
		total += b.TotalHours
	}

	s := Summary{TotalUsers: len(users), TotalWeeks: len(buckets)}
	if len(buckets) > 0 {
		s.AverageHoursPerWeek = total / float64(len(buckets))
	}
	return s
}
