package controllers

import (
	"net/http"
	"strings"

	"github.com/andresvelarde/skyfare-backend/api/middleware"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/google/uuid"
)

// currentUserID extracts the authenticated user from the request context.
func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}
	return userID, nil
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
