package controllers

import (
	"net/http"
	"time"

	"github.com/andresvelarde/skyfare-backend/api/responses"
	"github.com/andresvelarde/skyfare-backend/api/validators"
	authsvc "github.com/andresvelarde/skyfare-backend/internal/auth"
	pkgAuth "github.com/andresvelarde/skyfare-backend/pkg/auth"
	"github.com/andresvelarde/skyfare-backend/pkg/config"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	"github.com/google/uuid"
)

type registerRequest struct {
	Email     string  `json:"email" validate:"required,email,max=254"`
	Password  string  `json:"password" validate:"required,min=8,max=128"`
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type sessionResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresAt    time.Time       `json:"expires_at"`
	User         profileResponse `json:"user"`
}

type profileResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
}

func AuthRegister(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Register(r.Context(), authsvc.RegisterInput{
			Email:     payload.Email,
			Password:  payload.Password,
			FirstName: validators.SanitizeString(payload.FirstName, 100),
			LastName:  validators.SanitizeString(payload.LastName, 100),
			Phone:     payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSessionResponse(session))
	}
}

func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), authsvc.LoginInput{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

func AuthRefresh(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload refreshRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Refresh(r.Context(), payload.AccessToken, payload.RefreshToken)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

func AuthLogout(svc authsvc.Service, jwtCfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessID, err := accessIDFromRequest(r, jwtCfg)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

func accessIDFromRequest(r *http.Request, jwtCfg config.JWTConfig) (string, error) {
	token := bearerToken(r)
	if token == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(jwtCfg, token)
	if err != nil || claims.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token")
	}
	return claims.ID, nil
}

func newSessionResponse(session *authsvc.Session) sessionResponse {
	if session == nil {
		return sessionResponse{}
	}
	return sessionResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
		User: profileResponse{
			ID:        session.User.ID,
			Email:     session.User.Email,
			FirstName: session.User.FirstName,
			LastName:  session.User.LastName,
			Role:      session.User.Role.String(),
		},
	}
}
