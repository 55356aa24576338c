package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"taskforge-controlplane/pkg/auth"
	"taskforge-controlplane/pkg/config"
	"taskforge-controlplane/pkg/db"
	"taskforge-controlplane/pkg/gen"
	"taskforge-controlplane/pkg/logger"
	"taskforge-controlplane/services/bootstrap"
	"taskforge-controlplane/services/organization"
)

const seedOrganization = "MarvelX Inc"

var seedUsers = []organization.User{
	{Name: "Ada Admin", Email: "admin@marvelx.example", Role: auth.RoleOrgAdmin},
	{Name: "Pat Manager", Email: "pm@marvelx.example", Role: auth.RoleProjectManager},
	{Name: "Dee Developer", Email: "dev@marvelx.example", Role: auth.RoleEmployee},
}

// seed migrates the schema, creates a demo organization with one user per
// role and prints a bearer token for each of them.
func main() {
	opts := []fx.Option{
		config.Module,
		logger.Module,
		db.Module,
		gen.Module,
		fx.Provide(bootstrap.NewService),
		fx.Invoke(run),
		fx.WithLogger(func() fxevent.Logger { return fxevent.NopLogger }),
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run(cfg *config.Config, gdb *gorm.DB, node *snowflake.Node, b *bootstrap.Service) error {
	ctx := context.Background()
	if err := b.Migrate(ctx); err != nil {
		return err
	}

	var org organization.Organization
	err := gdb.WithContext(ctx).Where(organization.Organization{Slug: "marvelx-inc"}).
		Attrs(organization.Organization{ID: node.Generate().String(), Name: seedOrganization}).
		FirstOrCreate(&org).Error
	if err != nil {
		return fmt.Errorf("seed organization: %w", err)
	}

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	for _, u := range seedUsers {
		user := u
		err := gdb.WithContext(ctx).Where(organization.User{Email: user.Email}).
			Attrs(organization.User{ID: node.Generate().String(), Name: user.Name, Role: user.Role, OrganizationID: org.ID}).
			FirstOrCreate(&user).Error
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}

		token, err := verifier.Sign(auth.Actor{UserID: user.ID, Role: user.Role, OrganizationID: user.OrganizationID}, 30*24*time.Hour)
		if err != nil {
			return fmt.Errorf("sign token for %s: %w", user.Email, err)
		}
		zap.L().Info("seeded user", zap.String("email", user.Email), zap.String("role", string(user.Role)))
		fmt.Printf("%-14s %-24s %s\n", user.Role, user.Email, token)
	}
	return nil
}
