package project

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/db/pagination"
	"taskforge-controlplane/pkg/errutil"
	"taskforge-controlplane/pkg/sequence"
	"taskforge-controlplane/services/organization"
	"taskforge-controlplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeGenerator struct {
	next int64
	err  error
}

func (f *fakeGenerator) NextProjectCode(_ context.Context, orgName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.next++
	return sequence.FormatProjectCode(orgName, f.next), nil
}

func newTestService(t *testing.T, gen sequence.Generator) (*Service, *gorm.DB, auth.Actor) {
	db := testutil.NewTestDB(t, &organization.Organization{}, &Project{}, &Workflow{})
	org := &organization.Organization{ID: "org-1", Name: "MarvelX Inc", Slug: "marvelx-inc"}
	require.NoError(t, db.Create(org).Error)

	svc := NewService(ServiceParams{DB: db, Node: testutil.NewNode(t), Seq: gen})
	actor := auth.Actor{UserID: "pm-1", Role: auth.RoleProjectManager, OrganizationID: org.ID}
	return svc, db, actor
}

func TestCreateProjectGeneratesCode(t *testing.T) {
	svc, _, actor := newTestService(t, &fakeGenerator{})
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, actor, CreateProjectRequest{Name: "Website"})
	require.NoError(t, err)
	require.Equal(t, sequence.FormatProjectCode("MarvelX Inc", 1), p.Code)
	require.Equal(t, actor.OrganizationID, p.OrganizationID)

	p2, err := svc.CreateProject(ctx, actor, CreateProjectRequest{Name: "Mobile"})
	require.NoError(t, err)
	require.NotEqual(t, p.Code, p2.Code)
}

func TestCreateProjectExplicitCodeConflict(t *testing.T) {
	svc, _, actor := newTestService(t, &fakeGenerator{})
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, actor, CreateProjectRequest{Name: "Website", Code: "web-1"})
	require.NoError(t, err)

	_, err = svc.CreateProject(ctx, actor, CreateProjectRequest{Name: "Other", Code: "WEB-1"})
	require.True(t, errutil.Is(err, errutil.StatusConflict))
}

func TestCreateProjectValidation(t *testing.T) {
	svc, _, actor := newTestService(t, &fakeGenerator{})
	ctx := context.Background()

	_, err := svc.CreateProject(ctx, actor, CreateProjectRequest{Name: " "})
	require.True(t, errutil.Is(err, errutil.StatusValidationFailed))

	actor.OrganizationID = "missing"
	_, err = svc.CreateProject(ctx, actor, CreateProjectRequest{Name: "Website"})
	require.True(t, errutil.Is(err, errutil.StatusNotFound))

	actor.OrganizationID = ""
	_, err = svc.CreateProject(ctx, actor, CreateProjectRequest{Name: "Website"})
	require.True(t, errutil.Is(err, errutil.StatusNotFound))
}

func TestCreateProjectGeneratorError(t *testing.T) {
	svc, _, actor := newTestService(t, &fakeGenerator{err: errors.New("redis down")})

	_, err := svc.CreateProject(context.Background(), actor, CreateProjectRequest{Name: "Website"})
	require.True(t, errutil.Is(err, errutil.StatusInternal))
}

func TestListProjectsScopedToOrganization(t *testing.T) {
	svc, db, actor := newTestService(t, &fakeGenerator{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateProject(ctx, actor, CreateProjectRequest{Name: fmt.Sprintf("P%d", i)})
		require.NoError(t, err)
	}
	require.NoError(t, db.Create(&Project{ID: "foreign", Name: "X", Code: "OTHER-1", OrganizationID: "org-2"}).Error)

	projects, info, err := svc.ListProjects(ctx, actor.OrganizationID, pagination.Pagination{Limit: 2})
	require.NoError(t, err)
	require.Len(t, projects, 2)
	require.True(t, info.HasMore)

	projects, info, err = svc.ListProjects(ctx, actor.OrganizationID, pagination.Pagination{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.False(t, info.HasMore)
}

func TestCreateWorkflow(t *testing.T) {
	svc, db, actor := newTestService(t, &fakeGenerator{})
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, actor, CreateProjectRequest{Name: "Website"})
	require.NoError(t, err)

	wf, err := svc.CreateWorkflow(ctx, actor, CreateWorkflowRequest{Name: "Design", ProjectID: p.ID})
	require.NoError(t, err)
	require.Equal(t, p.ID, wf.ProjectID)

	wfs, err := svc.ListWorkflows(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, wfs, 1)

	_, err = svc.CreateWorkflow(ctx, actor, CreateWorkflowRequest{Name: "Build", ProjectID: "missing"})
	require.True(t, errutil.Is(err, errutil.StatusNotFound))

	require.NoError(t, db.Create(&Project{ID: "foreign", Name: "X", Code: "OTHER-1", OrganizationID: "org-2"}).Error)
	_, err = svc.CreateWorkflow(ctx, actor, CreateWorkflowRequest{Name: "Build", ProjectID: "foreign"})
	require.True(t, errutil.Is(err, errutil.StatusForbidden))
}
