package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"selfreg-backend/internal/config"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/ports"
	"selfreg-backend/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	Config config.Config
	Admins ports.AdminStore
	Logger *slog.Logger
	Now    func() time.Time
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Admin        domain.AdminUser
	ExpiresAt    time.Time
}

type LoginInput struct {
	Username string
	Password string
}

type RefreshInput struct {
	RefreshToken string
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	admin, err := s.Admins.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	// Deactivated accounts look the same as a wrong password.
	if !admin.IsActive {
		return nil, ErrInvalidCredentials
	}
	now := s.now()
	if err := s.Admins.TouchLastLogin(ctx, admin.ID, now); err != nil {
		if s.Logger != nil {
			s.Logger.Warn("stamp last login", "admin_id", admin.ID, "err", err)
		}
	} else {
		admin.LastLogin = &now
	}
	return s.issueTokens(admin)
}

func (s AuthService) Refresh(ctx context.Context, in RefreshInput) (*AuthResult, error) {
	claims, err := s.parse(in.RefreshToken, "refresh")
	if err != nil {
		return nil, err
	}
	adminID, err := subject(claims)
	if err != nil {
		return nil, err
	}
	admin, err := s.Admins.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrInvalidToken
	}
	return s.issueTokens(admin)
}

// Authenticate validates an access token and returns the actor it names.
// The admin row is reloaded on every call so deletion, deactivation and role
// changes take effect before the token expires.
func (s AuthService) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	claims, err := s.parse(token, "access")
	if err != nil {
		return domain.Actor{}, err
	}
	id, err := subject(claims)
	if err != nil {
		return domain.Actor{}, err
	}
	admin, err := s.Admins.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Actor{}, ErrInvalidToken
		}
		return domain.Actor{}, fmt.Errorf("load admin %d: %w", id, err)
	}
	if !admin.IsActive || !admin.Role.Valid() {
		return domain.Actor{}, ErrInvalidToken
	}
	return domain.Actor{AdminID: admin.ID, Username: admin.Username, Role: admin.Role}, nil
}

func (s AuthService) parse(raw, tokenType string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.Config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["token_type"] != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func subject(claims jwt.MapClaims) (int64, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

func (s AuthService) issueTokens(admin *domain.AdminUser) (*AuthResult, error) {
	now := s.now()
	accessExp := now.Add(s.Config.AccessTokenTTL)
	refreshExp := now.Add(s.Config.RefreshTokenTTL)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        fmt.Sprintf("%d", admin.ID),
		"username":   admin.Username,
		"role":       string(admin.Role),
		"token_type": "access",
		"exp":        accessExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        fmt.Sprintf("%d", admin.ID),
		"token_type": "refresh",
		"exp":        refreshExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Admin:        *admin,
		ExpiresAt:    accessExp,
	}, nil
}

// EnsureBootstrapAdmin creates the first super admin when the admin table is
// empty and a bootstrap password is configured.
func (s AuthService) EnsureBootstrapAdmin(ctx context.Context) (bool, error) {
	if s.Config.BootstrapAdminPassword == "" {
		return false, nil
	}
	n, err := s.Admins.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.Config.BootstrapAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	_, err = s.Admins.Create(ctx, ports.CreateAdminParams{
		Username:     s.Config.BootstrapAdminUsername,
		PasswordHash: string(hash),
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return false, nil
		}
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}
	if s.Logger != nil {
		s.Logger.Info("bootstrap admin created", "username", s.Config.BootstrapAdminUsername)
	}
	return true, nil
}
