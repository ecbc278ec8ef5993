//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/operatehq/operate/internal/models"
	"github.com/operatehq/operate/internal/tenant"
)

// setupPostgres starts a postgres container, applies migrations as the
// superuser, and returns two pools: adminPool (superuser, for migrations and
// catalog inspection) and appPool (unprivileged application role).
//
// The application role matters: superusers are exempt from row-level
// security no matter what, so isolation can only be observed through a
// regular role.
func setupPostgres(t *testing.T, ctx context.Context) (adminPool, appPool *pgxpool.Pool) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	adminConn := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	adminPool, err = NewPool(ctx, &PoolConfig{ConnString: adminConn, MaxConns: 4, MinConns: 1})
	require.NoError(t, err)

	require.NoError(t, Migrate(ctx, adminPool))

	// Unprivileged application role, subject to row policies.
	_, err = adminPool.Exec(ctx, `
		CREATE ROLE operate_app LOGIN PASSWORD 'operate_app' NOSUPERUSER;
		GRANT USAGE ON SCHEMA public TO operate_app;
		GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA public TO operate_app;
	`)
	require.NoError(t, err)

	appConn := fmt.Sprintf("postgres://operate_app:operate_app@%s:%s/testdb?sslmode=disable", host, port.Port())

	appPool, err = NewPool(ctx, &PoolConfig{ConnString: appConn, MaxConns: 4, MinConns: 1})
	require.NoError(t, err)

	t.Cleanup(func() {
		appPool.Close()
		adminPool.Close()
		_ = container.Terminate(ctx)
	})

	return adminPool, appPool
}

// createUser inserts a user row (users are not tenant-scoped).
func createUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool, email string) *models.User {
	t.Helper()

	now := time.Now()
	user := &models.User{
		UserID:    uuid.Must(uuid.NewV7()),
		Email:     email,
		Name:      "Test User",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, NewUserStore(pool).Create(ctx, user))
	return user
}

// createOrg creates an organization under bypass.
func createOrg(t *testing.T, ctx context.Context, pool *pgxpool.Pool, name string) *models.Organization {
	t.Helper()

	now := time.Now()
	org := &models.Organization{
		OrgID:     uuid.Must(uuid.NewV7()),
		Name:      name,
		Country:   "DE",
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := tenant.RunBypass(ctx, "test fixtures", func(bctx context.Context) error {
		return NewOrganizationStore(pool).Create(bctx, org)
	})
	require.NoError(t, err)

	return org
}

// orgCtx scopes ctx to the given organization.
func orgCtx(t *testing.T, ctx context.Context, orgID uuid.UUID) context.Context {
	t.Helper()

	scoped, err := tenant.WithOrg(ctx, orgID)
	require.NoError(t, err)
	return scoped
}

func decimalAmount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newMembership(orgID, userID uuid.UUID) *models.Membership {
	return &models.Membership{
		MembershipID: uuid.Must(uuid.NewV7()),
		OrgID:        orgID,
		UserID:       userID,
		Role:         models.RoleAccountant,
		CreatedAt:    time.Now(),
	}
}
