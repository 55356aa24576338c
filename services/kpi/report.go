package kpi

import (
	"context"
	"sort"

	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/services/organization"
	"taskforge-controlplane/services/project"
	"taskforge-controlplane/services/task"

	"go.uber.org/zap"
)

type taskHours struct {
	TaskID string
	Hours  float64
}

// GenerateKPIReport summarises every task of every project of orgID. Task
// durations are floored to whole days.
func (s *Service) GenerateKPIReport(ctx context.Context, orgID string) (*KPIReport, error) {
	zapLog := logger.FromContext(ctx).With(zap.String("organization_id", orgID))

	if orgID == "" {
		return nil, errutil.NotFound("organization not found", nil)
	}
	org, err := s.orgs.FindOne(ctx, &organization.Organization{ID: orgID})
	if err != nil {
		return nil, errutil.Internal("failed to get organization", err)
	}
	if org == nil {
		return nil, errutil.NotFound("organization not found", nil, errutil.WithField("organizationId", orgID))
	}

	db := s.db.WithContext(ctx)

	var projects []project.Project
	if err := db.Where("organization_id = ?", org.ID).Order("created_at ASC").Order("id ASC").Find(&projects).Error; err != nil {
		zapLog.Error("failed to load projects", zap.Error(err))
		return nil, errutil.Internal("failed to load projects", err)
	}

	projectIDs := make([]string, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}

	var tasks []task.Task
	if len(projectIDs) > 0 {
		if err := db.Where("project_id IN ?", projectIDs).Order("created_at ASC").Order("id ASC").Find(&tasks).Error; err != nil {
			zapLog.Error("failed to load tasks", zap.Error(err))
			return nil, errutil.Internal("failed to load tasks", err)
		}
	}

	taskIDs := make([]string, 0, len(tasks))
	userIDs := make([]string, 0)
	seenUsers := make(map[string]struct{})
	for _, t := range tasks {
		taskIDs = append(taskIDs, t.ID)
		if _, ok := seenUsers[t.UserID]; !ok {
			seenUsers[t.UserID] = struct{}{}
			userIDs = append(userIDs, t.UserID)
		}
	}

	hours := make(map[string]float64)
	if len(taskIDs) > 0 {
		var rows []taskHours
		err := db.Table("time_logs").
			Select("task_id, SUM(hours) AS hours").
			Where("task_id IN ?", taskIDs).
			Group("task_id").
			Scan(&rows).Error
		if err != nil {
			zapLog.Error("failed to sum time logs", zap.Error(err))
			return nil, errutil.Internal("failed to sum time logs", err)
		}
		for _, r := range rows {
			hours[r.TaskID] = r.Hours
		}
	}

	names := make(map[string]string)
	if len(userIDs) > 0 {
		var users []organization.User
		if err := db.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
			return nil, errutil.Internal("failed to load users", err)
		}
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}

	return buildReport(projects, tasks, hours, names), nil
}

// buildReport expects projects and tasks in a stable order; that order
// decides ties among performers and the order of team members.
func buildReport(projects []project.Project, tasks []task.Task, hours map[string]float64, names map[string]string) *KPIReport {
	type userAcc struct {
		Performer
		totalDuration float64
	}

	var (
		order     []string
		perUser   = make(map[string]*userAcc)
		byProject = make(map[string][]task.Task)
		completed int
	)

	for _, t := range tasks {
		byProject[t.ProjectID] = append(byProject[t.ProjectID], t)

		acc, ok := perUser[t.UserID]
		if !ok {
			acc = &userAcc{Performer: Performer{UserID: t.UserID, UserName: names[t.UserID]}}
			perUser[t.UserID] = acc
			order = append(order, t.UserID)
		}
		if t.Status == task.StatusCompleted {
			completed++
			acc.CompletedTasks++
			acc.totalDuration += wholeDays(t.CreatedAt, t.UpdatedAt)
		}
		acc.TotalHours += hours[t.ID]
	}

	performers := make([]Performer, 0, len(order))
	for _, id := range order {
		acc := perUser[id]
		acc.AverageTaskDuration = mean(acc.totalDuration, acc.CompletedTasks)
		performers = append(performers, acc.Performer)
	}
	sort.SliceStable(performers, func(i, j int) bool {
		return performers[i].CompletedTasks > performers[j].CompletedTasks
	})
	if len(performers) > topPerformerLimit {
		performers = performers[:topPerformerLimit]
	}

	teams := make([]ProjectMetrics, 0, len(projects))
	var durationSum float64
	for _, p := range projects {
		pm := projectMetrics(p, byProject[p.ID], names)
		durationSum += pm.AverageDuration
		teams = append(teams, pm)
	}

	return &KPIReport{
		OrganizationMetrics: OrganizationMetrics{
			TotalTasks:             len(tasks),
			CompletedTasks:         completed,
			CompletionRate:         percentage(int64(completed), int64(len(tasks))),
			AverageProjectDuration: mean(durationSum, len(projects)),
			TopPerformers:          performers,
		},
		TeamMetrics: teams,
	}
}

func projectMetrics(p project.Project, tasks []task.Task, names map[string]string) ProjectMetrics {
	var (
		completed   int
		durationSum float64
		order       []string
		members     = make(map[string]*MemberMetrics)
	)

	for _, t := range tasks {
		m, ok := members[t.UserID]
		if !ok {
			m = &MemberMetrics{UserID: t.UserID, UserName: names[t.UserID]}
			members[t.UserID] = m
			order = append(order, t.UserID)
		}
		switch t.Status {
		case task.StatusCompleted:
			completed++
			durationSum += wholeDays(t.CreatedAt, t.UpdatedAt)
			m.CompletedTasks++
		case task.StatusInProgress:
			m.InProgressTasks++
		}
	}

	team := make([]MemberMetrics, 0, len(order))
	for _, id := range order {
		team = append(team, *members[id])
	}

	return ProjectMetrics{
		ProjectID:       p.ID,
		ProjectName:     p.Name,
		CompletionRate:  percentage(int64(completed), int64(len(tasks))),
		AverageDuration: mean(durationSum, completed),
		TeamMembers:     team,
	}
}
