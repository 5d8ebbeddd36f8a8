// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the registration claim operation.
//
// Registrations are provisioned by the merchant back office; this service
// only ever flips a row from pending to completed, and that flip must happen
// exactly once per row no matter how many webhook deliveries race on the
// same code.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bcmerchant/line-bot-backend/internal/domain"
)

// ClaimRegistration atomically claims the pending, unexpired registration
// matching code and binds it to lineUserID. The filter and the update run as
// one conditional UPDATE statement, so under concurrent attempts exactly one
// caller observes RowsAffected == 1; everyone else gets ErrNotFound.
//
// ErrNotFound covers wrong code, already-completed, and expired alike; the
// caller cannot and must not distinguish, and must treat a miss as a normal,
// non-retriable outcome.
func ClaimRegistration(ctx context.Context, db *gorm.DB, code, lineUserID string, now time.Time) (*domain.Registration, error) {
	res := db.WithContext(ctx).
		Model(&domain.Registration{}).
		Where("code = ? AND status = ? AND expires_at > ?", code, domain.RegistrationPending, now).
		Updates(map[string]any{
			"status":       domain.RegistrationCompleted,
			"line_user_id": lineUserID,
			"completed_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	// The winner re-reads its own row; code+user uniquely identify it now.
	var rec domain.Registration
	err := db.WithContext(ctx).
		Where("code = ? AND line_user_id = ?", code, lineUserID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRegistrationByCode fetches a registration row by code regardless of
// status. Used by tests and the admin surface; the claim path never calls it.
func GetRegistrationByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Registration, error) {
	var rec domain.Registration
	if err := db.WithContext(ctx).Where("code = ?", code).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
