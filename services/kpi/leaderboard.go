package kpi

import (
	"context"
	"sort"

	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/services/organization"
	"taskforge-controlplane/services/task"

	"go.uber.org/zap"
)

type userCount struct {
	UserID string
	Total  int
}

type userHours struct {
	UserID string
	Hours  float64
}

// GenerateLeaderboard ranks users by completed tasks per logged hour. Hours
// are the user's own time logs, on any task.
func (s *Service) GenerateLeaderboard(ctx context.Context, f LeaderboardFilter) ([]LeaderboardEntry, error) {
	zapLog := logger.FromContext(ctx)
	db := s.db.WithContext(ctx)

	var users []organization.User
	q := db.Model(&organization.User{}).Order("created_at ASC").Order("id ASC")
	if f.OrganizationID != "" {
		q = q.Where("organization_id = ?", f.OrganizationID)
	}
	if err := q.Find(&users).Error; err != nil {
		zapLog.Error("failed to load users", zap.Error(err))
		return nil, errutil.Internal("failed to load users", err)
	}
	if len(users) == 0 {
		return []LeaderboardEntry{}, nil
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	var counts []userCount
	err := db.Model(&task.Task{}).
		Select("user_id, COUNT(*) AS total").
		Where("status = ? AND user_id IN ?", task.StatusCompleted, ids).
		Group("user_id").
		Scan(&counts).Error
	if err != nil {
		zapLog.Error("failed to count completed tasks", zap.Error(err))
		return nil, errutil.Internal("failed to count completed tasks", err)
	}

	var hours []userHours
	err = db.Table("time_logs").
		Select("user_id, SUM(hours) AS hours").
		Where("user_id IN ?", ids).
		Group("user_id").
		Scan(&hours).Error
	if err != nil {
		zapLog.Error("failed to sum time logs", zap.Error(err))
		return nil, errutil.Internal("failed to sum time logs", err)
	}

	completed := make(map[string]int, len(counts))
	for _, c := range counts {
		completed[c.UserID] = c.Total
	}
	logged := make(map[string]float64, len(hours))
	for _, h := range hours {
		logged[h.UserID] = h.Hours
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{
			UserID:         u.ID,
			Name:           u.Name,
			Email:          u.Email,
			CompletedTasks: completed[u.ID],
			HoursLogged:    logged[u.ID],
		})
	}
	return rankLeaderboard(entries), nil
}

// rankLeaderboard computes efficiency, sorts by it (stable, descending) and
// assigns badges. A user with no logged hours has efficiency 0.
func rankLeaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	maxCompleted := 0
	for i := range entries {
		e := &entries[i]
		if e.HoursLogged > 0 {
			e.Efficiency = float64(e.CompletedTasks) / e.HoursLogged
		}
		if e.CompletedTasks > maxCompleted {
			maxCompleted = e.CompletedTasks
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Efficiency > entries[j].Efficiency
	})

	for i := range entries {
		e := &entries[i]
		e.Badges = []string{}
		if i == 0 {
			e.Badges = append(e.Badges, BadgeTopPerformer)
		}
		if maxCompleted > 0 && e.CompletedTasks == maxCompleted {
			e.Badges = append(e.Badges, BadgeTaskSlayer)
		}
		if e.HoursLogged >= consistentLoggerHours {
			e.Badges = append(e.Badges, BadgeConsistentLogger)
		}
	}
	return entries
}
