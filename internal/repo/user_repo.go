// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions accept a *gorm.DB handle explicitly, making them safe for use
// within transactions or connection-scoped operations. They follow the "thin
// repository" approach: no business logic, only CRUD persistence and query
// composition.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bcmerchant/line-bot-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// UpsertUser inserts a user as pending on first contact, or refreshes the
// profile fields of an existing row. The whole operation is a single atomic
// INSERT ... ON CONFLICT on the unique line_user_id column; there is no
// read-then-write window, so concurrent webhook deliveries for the same new
// user cannot race into duplicate rows. Registration state is never touched
// here.
//
// It returns the current row after the upsert.
func UpsertUser(ctx context.Context, db *gorm.DB, lineUserID, displayName, pictureURL string) (*domain.User, error) {
	now := time.Now().UTC()
	u := &domain.User{
		ID:          uuid.NewString(),
		LineUserID:  lineUserID,
		DisplayName: displayName,
		PictureURL:  pictureURL,
		Status:      domain.UserStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "line_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "picture_url", "updated_at"}),
		}).
		Create(u).Error
	if err != nil {
		return nil, err
	}
	return GetUser(ctx, db, lineUserID)
}

// GetUser fetches a user by LINE user id, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, lineUserID string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("line_user_id = ?", lineUserID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all known users, most recently created first.
func ListUsers(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// MarkUserRegistered records a successful registration claim on the user row.
// Repeating it for the same user is harmless.
func MarkUserRegistered(ctx context.Context, db *gorm.DB, lineUserID, code string, at time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.User{}).
		Where("line_user_id = ?", lineUserID).
		Updates(map[string]any{
			"status":            domain.UserStatusRegistered,
			"registration_code": code,
			"registered_at":     at,
			"updated_at":        at,
		}).Error
}
