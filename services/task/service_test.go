package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/db/pagination"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/services/audit"
	"taskforge-controlplane/services/organization"
	"taskforge-controlplane/services/project"
	"taskforge-controlplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, audit.Entry) {}

type fixture struct {
	db  *gorm.DB
	svc *Service
	pm  auth.Actor
	wf  *project.Workflow
	dev *organization.User
}

func newFixture(t *testing.T, rec audit.Recorder) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t,
		&organization.Organization{}, &organization.User{},
		&project.Project{}, &project.Workflow{},
		&Task{},
	)

	org := &organization.Organization{ID: "org-1", Name: "MarvelX Inc", Slug: "marvelx-inc"}
	pm := &organization.User{ID: "pm-1", Name: "Pam", Email: "pm@marvelx.io", Role: auth.RoleProjectManager, OrganizationID: org.ID}
	dev := &organization.User{ID: "dev-1", Name: "Dev", Email: "dev@marvelx.io", Role: auth.RoleEmployee, OrganizationID: org.ID}
	proj := &project.Project{ID: "proj-1", Name: "Website", Code: "MARV-0001", OrganizationID: org.ID}
	wf := &project.Workflow{ID: "wf-1", Name: "Build", ProjectID: proj.ID}
	for _, row := range []any{org, pm, dev, proj, wf} {
		require.NoError(t, db.Create(row).Error)
	}

	if rec == nil {
		rec = nopRecorder{}
	}
	svc := NewService(ServiceParams{DB: db, Node: testutil.NewNode(t), Audit: rec})

	return &fixture{
		db:  db,
		svc: svc,
		pm:  auth.Actor{UserID: pm.ID, Role: auth.RoleProjectManager, OrganizationID: org.ID},
		wf:  wf,
		dev: dev,
	}
}

func (f *fixture) createTask(t *testing.T, title string, deps ...string) *Task {
	t.Helper()
	task, err := f.svc.CreateTask(context.Background(), f.pm, CreateTaskRequest{
		Title:        title,
		WorkflowID:   f.wf.ID,
		UserID:       f.dev.ID,
		Dependencies: deps,
	})
	require.NoError(t, err)
	return task
}

func (f *fixture) setStatus(t *testing.T, id string, status Status) {
	t.Helper()
	require.NoError(t, f.db.Model(&Task{}).Where("id = ?", id).Update("status", status).Error)
}

func statusPtr(s Status) *Status { return &s }

func TestCreateTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := audit.NewMockRecorder(ctrl)

	var entry audit.Entry
	rec.EXPECT().Record(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e audit.Entry) {
		entry = e
	}).Times(1)

	f := newFixture(t, rec)
	deadline := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	task, err := f.svc.CreateTask(context.Background(), f.pm, CreateTaskRequest{
		Title:      "  Landing page ",
		WorkflowID: f.wf.ID,
		UserID:     f.dev.ID,
		Deadline:   &deadline,
	})
	require.NoError(t, err)
	require.Equal(t, "Landing page", task.Title)
	require.Equal(t, StatusPending, task.Status)
	require.Equal(t, f.wf.ProjectID, task.ProjectID)
	require.Equal(t, int64(1), task.Version)
	require.True(t, deadline.Equal(*task.Deadline))

	require.Equal(t, audit.ActionCreate, entry.Action)
	require.Equal(t, "task", entry.Target)
	require.Equal(t, task.ID, entry.TargetID)
	require.Equal(t, f.pm.UserID, entry.UserID)
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.CreateTask(ctx, f.pm, CreateTaskRequest{Title: "x", WorkflowID: "missing", UserID: f.dev.ID})
	require.True(t, errutil.Is(err, errutil.StatusNotFound))

	_, err = f.svc.CreateTask(ctx, f.pm, CreateTaskRequest{Title: "x", WorkflowID: f.wf.ID, UserID: "missing"})
	require.True(t, errutil.Is(err, errutil.StatusNotFound))

	_, err = f.svc.CreateTask(ctx, f.pm, CreateTaskRequest{Title: "x", WorkflowID: f.wf.ID, UserID: f.dev.ID, Dependencies: []string{"missing"}})
	require.True(t, errutil.Is(err, errutil.StatusNotFound))

	_, err = f.svc.CreateTask(ctx, f.pm, CreateTaskRequest{Title: " ", WorkflowID: f.wf.ID, UserID: f.dev.ID})
	require.True(t, errutil.Is(err, errutil.StatusValidationFailed))

	outsider := auth.Actor{UserID: "x", Role: auth.RoleProjectManager, OrganizationID: "org-2"}
	_, err = f.svc.CreateTask(ctx, outsider, CreateTaskRequest{Title: "x", WorkflowID: f.wf.ID, UserID: f.dev.ID})
	require.True(t, errutil.Is(err, errutil.StatusForbidden))

	_, err = f.svc.CreateTask(ctx, f.pm, CreateTaskRequest{Title: "x", UserID: f.dev.ID})
	require.True(t, errutil.Is(err, errutil.StatusValidationFailed))

	_, err = f.svc.CreateTask(ctx, f.pm, CreateTaskRequest{Title: "x", WorkflowID: f.wf.ID})
	require.True(t, errutil.Is(err, errutil.StatusValidationFailed))

	var count int64
	require.NoError(t, f.db.Model(&Task{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateTaskWithDependencies(t *testing.T) {
	f := newFixture(t, nil)
	a := f.createTask(t, "A")
	b := f.createTask(t, "B")
	c := f.createTask(t, "C", a.ID, b.ID, a.ID)

	require.ElementsMatch(t, []string{a.ID, b.ID}, c.DependencyIDs())
}

func TestGetTaskNotFound(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.GetTask(context.Background(), "missing")
	require.True(t, errutil.Is(err, errutil.StatusNotFound))
}

func TestGetOrganizationTask(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a := f.createTask(t, "A")

	got, err := f.svc.GetOrganizationTask(ctx, f.pm.OrganizationID, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	_, err = f.svc.GetOrganizationTask(ctx, "org-2", a.ID)
	require.True(t, errutil.Is(err, errutil.StatusNotFound))

	_, err = f.svc.GetOrganizationTask(ctx, "", a.ID)
	require.True(t, errutil.Is(err, errutil.StatusNotFound))

	_, err = f.svc.GetOrganizationTask(ctx, f.pm.OrganizationID, "")
	require.True(t, errutil.Is(err, errutil.StatusNotFound))
}

func TestListTasks(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	a := f.createTask(t, "A")
	f.createTask(t, "B")
	f.createTask(t, "C")
	f.setStatus(t, a.ID, StatusCompleted)

	other := &Task{ID: "foreign", Title: "F", Status: StatusPending, WorkflowID: "wf-x", ProjectID: "proj-x", UserID: f.dev.ID, Version: 1}
	require.NoError(t, f.db.Omit("Dependencies").Create(other).Error)

	tasks, _, err := f.svc.ListTasks(ctx, f.pm.OrganizationID, Filter{}, pagination.Pagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	tasks, _, err = f.svc.ListTasks(ctx, f.pm.OrganizationID, Filter{Status: StatusCompleted}, pagination.Pagination{Limit: 10})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, a.ID, tasks[0].ID)

	_, _, err = f.svc.ListTasks(ctx, f.pm.OrganizationID, Filter{Status: "DONE"}, pagination.Pagination{})
	require.True(t, errutil.Is(err, errutil.StatusValidationFailed))

	mine, info, err := f.svc.ListUserTasks(ctx, f.dev.ID, pagination.Pagination{Limit: 2})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.True(t, info.HasMore)
}

func TestErrorJSONCarriesCount(t *testing.T) {
	err := &DependencyNotSatisfiedError{TaskID: "t", Unsatisfied: []string{"a", "b"}}
	require.Equal(t, errutil.StatusDependencyNotSatisfied, errutil.StatusOf(err))

	var target *DependencyNotSatisfiedError
	require.True(t, errors.As(error(err), &target))

	body := err.JSON().(map[string]interface{})["error"].(map[string]interface{})
	require.Equal(t, 2, body["count"])
}
