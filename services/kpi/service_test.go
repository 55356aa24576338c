package kpi

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/config"
	"taskforge-controlplane/pkg/db/pagination"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/services/organization"
	"taskforge-controlplane/services/project"
	"taskforge-controlplane/services/task"
	"taskforge-controlplane/services/testutil"
	"taskforge-controlplane/services/timelog"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db  *gorm.DB
	svc *Service
	seq int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t,
		&organization.Organization{}, &organization.User{},
		&project.Project{}, &task.Task{},
		&timelog.TimeLog{}, &KPIMetric{},
	)
	svc := NewService(ServiceParams{DB: db, Node: testutil.NewNode(t), Config: &config.Config{}})
	svc.now = func() time.Time { return now }

	return &fixture{db: db, svc: svc}
}

func (f *fixture) create(t *testing.T, rows ...any) {
	t.Helper()
	for _, row := range rows {
		require.NoError(t, f.db.Omit("Dependencies").Create(row).Error)
	}
}

func (f *fixture) org(t *testing.T, id string) {
	f.create(t, &organization.Organization{ID: id, Name: id, Slug: id})
}

func (f *fixture) user(t *testing.T, id, orgID string) {
	f.seq++
	f.create(t, &organization.User{
		ID:             id,
		Name:           "name-" + id,
		Email:          id + "@example.com",
		Role:           auth.RoleEmployee,
		OrganizationID: orgID,
		CreatedAt:      now.Add(time.Duration(f.seq) * time.Minute),
	})
}

func (f *fixture) project(t *testing.T, id, orgID string) {
	f.seq++
	f.create(t, &project.Project{ID: id, Name: "project-" + id, Code: "CODE-" + id, OrganizationID: orgID, CreatedAt: now.Add(time.Duration(f.seq) * time.Minute)})
}

func (f *fixture) task(t *testing.T, projectID, userID string, status task.Status, created, updated time.Time) string {
	f.seq++
	id := fmt.Sprintf("task-%03d", f.seq)
	f.create(t, &task.Task{
		ID:         id,
		Title:      id,
		Status:     status,
		WorkflowID: "wf",
		ProjectID:  projectID,
		UserID:     userID,
		Version:    1,
		CreatedAt:  created,
		UpdatedAt:  updated,
	})
	return id
}

func (f *fixture) hours(t *testing.T, taskID, userID string, h float64) {
	f.seq++
	f.create(t, &timelog.TimeLog{ID: fmt.Sprintf("log-%03d", f.seq), TaskID: taskID, UserID: userID, Hours: h, Date: now})
}

func TestWholeAndFractionalDays(t *testing.T) {
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(60 * time.Hour)
	require.Equal(t, 2.0, wholeDays(from, to))
	require.Equal(t, 2.5, fractionalDays(from, to))
	require.Equal(t, 0.0, percentage(3, 0))
	require.Equal(t, 0.0, mean(10, 0))
}

func TestGenerateKPIReportCompletionRate(t *testing.T) {
	f := newFixture(t)
	f.org(t, "org-1")
	f.user(t, "u1", "org-1")
	f.user(t, "u2", "org-1")
	f.project(t, "p1", "org-1")
	f.project(t, "p2", "org-1")

	created := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		// 2.5 days, floored to 2
		f.task(t, "p1", "u1", task.StatusCompleted, created, created.Add(60*time.Hour))
	}
	inProgress := f.task(t, "p1", "u2", task.StatusInProgress, created, created)
	for i := 0; i < 5; i++ {
		f.task(t, "p2", "u2", task.StatusPending, created, created)
	}
	f.hours(t, inProgress, "u2", 7)

	report, err := f.svc.GenerateKPIReport(context.Background(), "org-1")
	require.NoError(t, err)

	om := report.OrganizationMetrics
	require.Equal(t, 10, om.TotalTasks)
	require.Equal(t, 4, om.CompletedTasks)
	require.InDelta(t, 40.0, om.CompletionRate, 1e-9)

	require.Len(t, om.TopPerformers, 2)
	require.Equal(t, "u1", om.TopPerformers[0].UserID)
	require.Equal(t, "name-u1", om.TopPerformers[0].UserName)
	require.Equal(t, 2.0, om.TopPerformers[0].AverageTaskDuration)
	require.Equal(t, 7.0, om.TopPerformers[1].TotalHours)

	require.Len(t, report.TeamMetrics, 2)
	p1 := report.TeamMetrics[0]
	require.Equal(t, "p1", p1.ProjectID)
	require.InDelta(t, 80.0, p1.CompletionRate, 1e-9)
	require.Equal(t, 2.0, p1.AverageDuration)
	require.Equal(t, []MemberMetrics{
		{UserID: "u1", UserName: "name-u1", CompletedTasks: 4},
		{UserID: "u2", UserName: "name-u2", InProgressTasks: 1},
	}, p1.TeamMembers)

	p2 := report.TeamMetrics[1]
	require.Zero(t, p2.CompletionRate)
	require.Zero(t, p2.AverageDuration)
	require.Len(t, p2.TeamMembers, 1)

	require.Equal(t, 1.0, om.AverageProjectDuration)
}

func TestGenerateKPIReportEmptyAndMissing(t *testing.T) {
	f := newFixture(t)
	f.org(t, "org-1")

	report, err := f.svc.GenerateKPIReport(context.Background(), "org-1")
	require.NoError(t, err)
	require.Zero(t, report.OrganizationMetrics.CompletionRate)
	require.Zero(t, report.OrganizationMetrics.AverageProjectDuration)
	require.Empty(t, report.TeamMetrics)

	_, err = f.svc.GenerateKPIReport(context.Background(), "missing")
	require.True(t, errutil.Is(err, errutil.StatusNotFound))

	_, err = f.svc.GenerateKPIReport(context.Background(), "")
	require.True(t, errutil.Is(err, errutil.StatusNotFound))
}

func TestBuildReportTopPerformersStable(t *testing.T) {
	var tasks []task.Task
	created := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	completed := map[string]int{"a": 1, "b": 3, "c": 1, "d": 2, "e": 1, "f": 1, "g": 0}
	for _, u := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		tasks = append(tasks, task.Task{ID: u + "-open", ProjectID: "p", UserID: u, Status: task.StatusPending})
		for i := 0; i < completed[u]; i++ {
			tasks = append(tasks, task.Task{ID: fmt.Sprintf("%s-%d", u, i), ProjectID: "p", UserID: u, Status: task.StatusCompleted, CreatedAt: created, UpdatedAt: created})
		}
	}

	report := buildReport([]project.Project{{ID: "p"}}, tasks, nil, nil)
	var got []string
	for _, p := range report.OrganizationMetrics.TopPerformers {
		got = append(got, p.UserID)
	}
	require.Equal(t, []string{"b", "d", "a", "c", "e"}, got)
}

func TestGenerateLeaderboardBadges(t *testing.T) {
	f := newFixture(t)
	f.org(t, "org-1")
	f.user(t, "a", "org-1")
	f.user(t, "b", "org-1")
	f.user(t, "idle", "org-1")
	f.project(t, "p1", "org-1")

	for _, u := range []string{"a", "b"} {
		for i := 0; i < 3; i++ {
			f.task(t, "p1", u, task.StatusCompleted, now, now)
		}
	}
	open := f.task(t, "p1", "idle", task.StatusPending, now, now)
	f.hours(t, open, "a", 5)
	f.hours(t, open, "b", 30)

	board, err := f.svc.GenerateLeaderboard(context.Background(), LeaderboardFilter{OrganizationID: "org-1"})
	require.NoError(t, err)
	require.Len(t, board, 3)

	require.Equal(t, "a", board[0].UserID)
	require.InDelta(t, 0.6, board[0].Efficiency, 1e-9)
	require.Equal(t, []string{BadgeTopPerformer, BadgeTaskSlayer}, board[0].Badges)

	require.Equal(t, "b", board[1].UserID)
	require.InDelta(t, 0.1, board[1].Efficiency, 1e-9)
	require.Equal(t, []string{BadgeTaskSlayer, BadgeConsistentLogger}, board[1].Badges)

	require.Equal(t, "idle", board[2].UserID)
	require.Zero(t, board[2].Efficiency)
	require.Empty(t, board[2].Badges)
}

func TestRankLeaderboardZeroHours(t *testing.T) {
	board := rankLeaderboard([]LeaderboardEntry{
		{UserID: "x", CompletedTasks: 4},
		{UserID: "y"},
	})
	require.Zero(t, board[0].Efficiency)
	require.Equal(t, "x", board[0].UserID)
	require.Equal(t, []string{BadgeTopPerformer, BadgeTaskSlayer}, board[0].Badges)
	require.Empty(t, board[1].Badges)

	t.Run("no users", func(t *testing.T) {
		empty, err := newFixture(t).svc.GenerateLeaderboard(context.Background(), LeaderboardFilter{})
		require.NoError(t, err)
		require.Empty(t, empty)
	})
}

func TestRecalculateMonthlyKPIs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	oct2 := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	sep20 := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
	f.task(t, "p", "u", task.StatusCompleted, oct2, oct2.Add(60*time.Hour))
	f.task(t, "p", "u", task.StatusCompleted, sep20, sep20.AddDate(0, 0, 15))
	f.task(t, "p", "u", task.StatusPending, time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC), now)
	f.task(t, "p", "u", task.StatusCompleted, sep20, sep20.AddDate(0, 0, 1))

	res, err := f.svc.RecalculateMonthlyKPIs(ctx)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), res.WindowStart)
	require.InDelta(t, 100.0, res.CompletionRate, 1e-9)
	require.InDelta(t, 8.75, res.AvgCompletionTime, 1e-9)

	var count int64
	require.NoError(t, f.db.Model(&KPIMetric{}).Count(&count).Error)
	require.Equal(t, int64(2), count)

	_, err = f.svc.RecalculateMonthlyKPIs(ctx)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&KPIMetric{}).Count(&count).Error)
	require.Equal(t, int64(4), count)

	rows, _, err := f.svc.ListKPIMetrics(ctx, MetricAvgCompletionTime, pagination.Pagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, UnitDays, rows[0].Unit)
}

func TestRecalculateMonthlyKPIsEmptyWindow(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.RecalculateMonthlyKPIs(context.Background())
	require.NoError(t, err)
	require.Zero(t, res.CompletionRate)
	require.Zero(t, res.AvgCompletionTime)
	require.Len(t, res.Metrics, 2)
}

func TestMonthStartUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	// 2026-10-31 20:00 UTC is already November 1st at UTC+7.
	got := monthStart(time.Date(2026, 10, 31, 20, 0, 0, 0, time.UTC), loc)
	require.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, loc).UTC(), got)
}

func TestGenerateDigest(t *testing.T) {
	f := newFixture(t)

	f.task(t, "p", "u", task.StatusCompleted, now.AddDate(0, 0, -3), now)
	f.task(t, "p", "u", task.StatusOverdue, now.AddDate(0, 0, -3), now)
	f.task(t, "p", "u", task.StatusPending, now.Add(-2*time.Hour), now)
	f.task(t, "p", "u", task.StatusPending, now.Add(-30*time.Hour), now)

	d, err := f.svc.GenerateDigest(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), d.TotalTasks)
	require.Equal(t, int64(1), d.CompletedTasks)
	require.Equal(t, int64(1), d.OverdueTasks)
	require.Equal(t, int64(1), d.NewTasks)
	require.InDelta(t, 25.0, d.CompletionRate, 1e-9)

	t.Run("no tasks", func(t *testing.T) {
		empty, err := newFixture(t).svc.GenerateDigest(context.Background())
		require.NoError(t, err)
		require.Zero(t, empty.CompletionRate)
	})
}
