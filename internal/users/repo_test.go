package users

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/db"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUserTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'passenger',
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, gdb.Exec(schema).Error)
	return gdb
}

func newUser(email string) *models.User {
	return &models.User{
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Role:         enums.UserRolePassenger,
		IsActive:     true,
	}
}

func TestCreateAssignsID(t *testing.T) {
	gdb := setupUserTestDB(t)
	repo := NewRepository(gdb)

	user := newUser("ada@example.com")
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEqual(t, uuid.Nil, user.ID)
}

func TestCreateDuplicateEmail(t *testing.T) {
	gdb := setupUserTestDB(t)
	repo := NewRepository(gdb)

	require.NoError(t, repo.Create(context.Background(), newUser("ada@example.com")))
	err := repo.Create(context.Background(), newUser("ada@example.com"))
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))
}

func TestFindByEmailNormalizes(t *testing.T) {
	gdb := setupUserTestDB(t)
	repo := NewRepository(gdb)

	user := newUser("ada@example.com")
	require.NoError(t, repo.Create(context.Background(), user))

	found, err := repo.FindByEmail(context.Background(), "  Ada@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestTouchLastLogin(t *testing.T) {
	gdb := setupUserTestDB(t)
	repo := NewRepository(gdb)

	user := newUser("ada@example.com")
	require.NoError(t, repo.Create(context.Background(), user))

	at := time.Now().UTC()
	require.NoError(t, repo.TouchLastLogin(context.Background(), user.ID, at))

	found, err := repo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ada@example.com", NormalizeEmail(" Ada@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}
