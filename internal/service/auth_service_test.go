package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"selfreg-backend/internal/config"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/ports"
)

func newAuthService(t *testing.T) (AuthService, *memAdmins) {
	t.Helper()
	admins := newMemAdmins()
	return AuthService{
		Config: config.Config{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
		},
		Admins: admins,
	}, admins
}

func seedAdmin(t *testing.T, admins *memAdmins, username, password string, role domain.AdminRole, active bool) *domain.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	a, err := admins.Create(context.Background(), ports.CreateAdminParams{Username: username, PasswordHash: string(hash), Role: role, IsActive: active})
	require.NoError(t, err)
	return a
}

func TestLoginIssuesUsableTokens(t *testing.T) {
	svc, admins := newAuthService(t)
	admin := seedAdmin(t, admins, "meera", "correct-horse", domain.RoleLocalAdmin, true)
	ctx := context.Background()

	res, err := svc.Login(ctx, LoginInput{Username: "meera", Password: "correct-horse"})
	require.NoError(t, err)
	require.NotNil(t, res.Admin.LastLogin)

	actor, err := svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{AdminID: admin.ID, Username: "meera", Role: domain.RoleLocalAdmin}, actor)

	_, err = svc.Authenticate(ctx, res.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh token is not an access token")

	refreshed, err := svc.Refresh(ctx, RefreshInput{RefreshToken: res.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	_, err = svc.Refresh(ctx, RefreshInput{RefreshToken: res.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLoginFailures(t *testing.T) {
	svc, admins := newAuthService(t)
	seedAdmin(t, admins, "meera", "correct-horse", domain.RoleLocalAdmin, true)
	seedAdmin(t, admins, "gone", "correct-horse", domain.RoleLocalAdmin, false)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginInput{Username: "meera", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Username: "nobody", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Username: "gone", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateRejectsForeignSignature(t *testing.T) {
	svc, admins := newAuthService(t)
	seedAdmin(t, admins, "meera", "correct-horse", domain.RoleLocalAdmin, true)
	res, err := svc.Login(context.Background(), LoginInput{Username: "meera", Password: "correct-horse"})
	require.NoError(t, err)

	other := svc
	other.Config.JWTSecret = "another-secret"
	_, err = other.Authenticate(context.Background(), res.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticateReloadsAdmin(t *testing.T) {
	ctx := context.Background()
	demoted := domain.RoleUserAdmin
	inactive := false

	cases := []struct {
		name    string
		role    domain.AdminRole
		change  func(t *testing.T, admins *memAdmins, id int64)
		wantErr bool
		want    domain.AdminRole
	}{
		{
			name: "deleted admin",
			role: domain.RoleLocalAdmin,
			change: func(t *testing.T, admins *memAdmins, id int64) {
				require.NoError(t, admins.Delete(ctx, id))
			},
			wantErr: true,
		},
		{
			name: "deactivated admin",
			role: domain.RoleLocalAdmin,
			change: func(t *testing.T, admins *memAdmins, id int64) {
				_, err := admins.Update(ctx, id, ports.UpdateAdminParams{IsActive: &inactive})
				require.NoError(t, err)
			},
			wantErr: true,
		},
		{
			name: "demoted super admin",
			role: domain.RoleSuperAdmin,
			change: func(t *testing.T, admins *memAdmins, id int64) {
				_, err := admins.Update(ctx, id, ports.UpdateAdminParams{Role: &demoted})
				require.NoError(t, err)
			},
			want: domain.RoleUserAdmin,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, admins := newAuthService(t)
			admin := seedAdmin(t, admins, "meera", "correct-horse", tc.role, true)
			res, err := svc.Login(ctx, LoginInput{Username: "meera", Password: "correct-horse"})
			require.NoError(t, err)

			actor, err := svc.Authenticate(ctx, res.AccessToken)
			require.NoError(t, err)
			require.Equal(t, tc.role, actor.Role)

			tc.change(t, admins, admin.ID)

			actor, err = svc.Authenticate(ctx, res.AccessToken)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				assert.Equal(t, domain.Actor{}, actor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, actor.Role)
			assert.Equal(t, admin.ID, actor.AdminID)
		})
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	svc, admins := newAuthService(t)
	ctx := context.Background()

	created, err := svc.EnsureBootstrapAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created, "no password configured")

	svc.Config.BootstrapAdminUsername = "admin"
	svc.Config.BootstrapAdminPassword = "first-boot-pass"
	created, err = svc.EnsureBootstrapAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, created)

	a, err := admins.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, a.Role)

	created, err = svc.EnsureBootstrapAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, created)
}
