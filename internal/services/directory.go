// Package services – UserDirectory
//
// This file implements the user directory: the registry of every LINE user
// who has ever contacted the bot, keyed by platform user id. It wraps the
// repository's atomic upsert so the rest of the application never performs a
// read-then-write on user rows.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bcmerchant/line-bot-backend/internal/domain"
	"github.com/bcmerchant/line-bot-backend/internal/repo"
)

// UserRepo defines the repository contract required by UserDirectory.
type UserRepo interface {
	// UpsertUser atomically creates a pending user or refreshes profile
	// fields of an existing one.
	UpsertUser(ctx context.Context, db *gorm.DB, lineUserID, displayName, pictureURL string) (*domain.User, error)

	// GetUser fetches a user by LINE user id.
	GetUser(ctx context.Context, db *gorm.DB, lineUserID string) (*domain.User, error)

	// ListUsers returns all known users.
	ListUsers(ctx context.Context, db *gorm.DB) ([]domain.User, error)
}

// UserDirectory tracks known LINE users and their registration state. It is
// stateless apart from the injected store handle and safe for concurrent use.
type UserDirectory struct {
	DB   *gorm.DB
	Repo UserRepo
}

// NewUserDirectory constructs a UserDirectory bound to the given store.
func NewUserDirectory(db *gorm.DB, r UserRepo) *UserDirectory {
	return &UserDirectory{DB: db, Repo: r}
}

// EnsurePending upserts a user on webhook contact: created as pending when
// absent, profile-refreshed when present. Registration state is untouched.
func (d *UserDirectory) EnsurePending(ctx context.Context, lineUserID, displayName, pictureURL string) (*domain.User, error) {
	return d.Repo.UpsertUser(ctx, d.DB, lineUserID, displayName, pictureURL)
}

// Get returns a user or ErrUserNotFound.
func (d *UserDirectory) Get(ctx context.Context, lineUserID string) (*domain.User, error) {
	u, err := d.Repo.GetUser(ctx, d.DB, lineUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns every known user, newest first.
func (d *UserDirectory) List(ctx context.Context) ([]domain.User, error) {
	return d.Repo.ListUsers(ctx, d.DB)
}

// userRepoShim adapts the repo free functions to the UserRepo interface.
type userRepoShim struct{}

// NewUserRepo returns the default repository implementation.
func NewUserRepo() UserRepo { return userRepoShim{} }

func (userRepoShim) UpsertUser(ctx context.Context, db *gorm.DB, lineUserID, displayName, pictureURL string) (*domain.User, error) {
	return repo.UpsertUser(ctx, db, lineUserID, displayName, pictureURL)
}

func (userRepoShim) GetUser(ctx context.Context, db *gorm.DB, lineUserID string) (*domain.User, error) {
	return repo.GetUser(ctx, db, lineUserID)
}

func (userRepoShim) ListUsers(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	return repo.ListUsers(ctx, db)
}
