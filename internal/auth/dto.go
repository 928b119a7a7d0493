package auth

import (
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	"github.com/google/uuid"
)

// RegisterInput carries a signup request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// LoginInput carries a login request.
type LoginInput struct {
	Email    string
	Password string
}

// Session is the issued credential pair plus the public profile.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         Profile
}

// Profile is the public view of a user.
type Profile struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
	Role      enums.UserRole
}
