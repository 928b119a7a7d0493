package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresvelarde/skyfare-backend/internal/users"
	"github.com/andresvelarde/skyfare-backend/pkg/auth"
	"github.com/andresvelarde/skyfare-backend/pkg/auth/session"
	"github.com/andresvelarde/skyfare-backend/pkg/config"
	"github.com/andresvelarde/skyfare-backend/pkg/db"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	"github.com/andresvelarde/skyfare-backend/pkg/security"
	"gorm.io/gorm"
)

// Service handles registration, login, and session lifecycle.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Refresh(ctx context.Context, expiredToken, refreshToken string) (*Session, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	repo     *users.Repository
	sessions *session.Manager
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	logg     *logger.Logger
}

// NewService wires the auth service.
func NewService(repo *users.Repository, sessions *session.Manager, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, sessions: sessions, jwtCfg: jwtCfg, pwCfg: pwCfg, logg: logg}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Email:        users.NormalizeEmail(input.Email),
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Role:         enums.UserRolePassenger,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating user")
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "user registered")
	return s.issueSession(ctx, user)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "stamping last login failed")
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "user logged in")
	return s.issueSession(ctx, user)
}

func (s *service) Refresh(ctx context.Context, expiredToken, refreshToken string) (*Session, error) {
	claims, err := auth.ParseAccessTokenAllowExpired(s.jwtCfg, expiredToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account disabled")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}

	return s.mintWithRefresh(user, newAccessID, newRefresh)
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

func (s *service) issueSession(ctx context.Context, user *models.User) (*Session, error) {
	accessID := session.NewAccessID()
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating session")
	}
	return s.mintWithRefresh(user, accessID, refresh)
}

func (s *service) mintWithRefresh(user *models.User, accessID, refresh string) (*Session, error) {
	now := time.Now().UTC()
	token, err := auth.MintAccessToken(s.jwtCfg, now, auth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return &Session{
		AccessToken:  token,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		User: Profile{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
	}, nil
}
