package auth

import (
	"context"
	"errors"
	"time"

	autherrors "github.com/faisallbhr/simple-hris/internal/auth/errors"
	"github.com/faisallbhr/simple-hris/internal/shared/contextutil"
	"github.com/faisallbhr/simple-hris/internal/shared/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Login(ctx context.Context, email, password string) (accessToken, refreshToken string, resp AuthResponse, err error)

	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken, newRefreshToken string, resp AuthResponse, err error)

	GetMe(ctx context.Context, userID string) (*AuthResponse, error)
}

// PermissionLister resolves the effective permissions of a user.
type PermissionLister interface {
	PermissionsForUser(ctx context.Context, userID string) ([]string, error)
}

type RoleLister interface {
	GetRoleNamesForUser(ctx context.Context, userID string) ([]string, error)
}

type service struct {
	repo   Repository
	perms  PermissionLister
	roles  RoleLister
	ttl    TokenTTL
	logger *zap.Logger
}

func NewService(repo Repository, perms PermissionLister, roles RoleLister, ttl TokenTTL, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	if ttl.Access <= 0 {
		ttl.Access = 15 * time.Minute
	}
	if ttl.Refresh <= 0 {
		ttl.Refresh = 7 * 24 * time.Hour
	}
	return &service{repo: repo, perms: perms, roles: roles, ttl: ttl, logger: l}
}

func (s *service) Login(ctx context.Context, email, password string) (string, string, AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			contextutil.GetLogger(ctx, s.logger).Error("login lookup failed", zap.Error(err))
		}
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	return s.issue(ctx, user)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, string, AuthResponse, error) {
	claims, err := token.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrInvalidRefreshToken
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrUserNotFound
	}

	return s.issue(ctx, user)
}

func (s *service) GetMe(ctx context.Context, userID string) (*AuthResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, autherrors.ErrInvalidToken
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, autherrors.ErrUserNotFound
	}

	resp, err := s.profile(ctx, user)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) issue(ctx context.Context, user *User) (string, string, AuthResponse, error) {
	resp, err := s.profile(ctx, user)
	if err != nil {
		return "", "", AuthResponse{}, err
	}

	accessToken, err := token.Issue(user.ID.String(), token.TypeAccess, s.ttl.Access)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed.WithCause(err)
	}
	refreshToken, err := token.Issue(user.ID.String(), token.TypeRefresh, s.ttl.Refresh)
	if err != nil {
		return "", "", AuthResponse{}, autherrors.ErrTokenGenerationFailed.WithCause(err)
	}

	return accessToken, refreshToken, resp, nil
}

func (s *service) profile(ctx context.Context, user *User) (AuthResponse, error) {
	roles, err := s.roles.GetRoleNamesForUser(ctx, user.ID.String())
	if err != nil {
		return AuthResponse{}, err
	}
	perms, err := s.perms.PermissionsForUser(ctx, user.ID.String())
	if err != nil {
		return AuthResponse{}, err
	}
	if roles == nil {
		roles = []string{}
	}

	return AuthResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		Name:        user.Name,
		Roles:       roles,
		Permissions: perms,
	}, nil
}
