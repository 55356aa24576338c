package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskforge-controlplane/pkg/config"
	"taskforge-controlplane/services/organization"
	"taskforge-controlplane/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newService(t *testing.T, orgName string) *Service {
	cfg := &config.Config{}
	cfg.Platform.OrganizationName = orgName
	return NewService(ServiceParams{
		DB:     testutil.NewTestDB(t),
		Node:   testutil.NewNode(t),
		Config: cfg,
	})
}

func TestMigrateCreatesSchemaAndDefaultOrganization(t *testing.T) {
	svc := newService(t, "MarvelX Inc")
	ctx := context.Background()

	require.NoError(t, svc.Migrate(ctx))
	for _, table := range []string{"organizations", "users", "projects", "workflows", "tasks", "task_dependencies", "time_logs", "external_logs", "kpi_metrics", "audit_logs", "jobs"} {
		require.True(t, svc.db.Migrator().HasTable(table), table)
	}

	var orgs []organization.Organization
	require.NoError(t, svc.db.Find(&orgs).Error)
	require.Len(t, orgs, 1)
	require.Equal(t, "marvelx-inc", orgs[0].Slug)
	require.True(t, orgs[0].IsDefault)

	// second run is a no-op
	require.NoError(t, svc.Migrate(ctx))
	var count int64
	require.NoError(t, svc.db.Model(&organization.Organization{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestMigrateWithoutOrganizationName(t *testing.T) {
	svc := newService(t, "")
	require.NoError(t, svc.Migrate(context.Background()))

	var count int64
	require.NoError(t, svc.db.Model(&organization.Organization{}).Count(&count).Error)
	require.Zero(t, count)
}
