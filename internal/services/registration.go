// Package services – RegistrationService
//
// This file implements the registration claim workflow: matching a
// user-typed numeric code against an externally provisioned pending
// registration, binding it to the user, and marking the user registered.
// The claim itself is a single conditional UPDATE in the repository; this
// service adds the user-side bookkeeping and error mapping.
package services

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/bcmerchant/line-bot-backend/internal/domain"
	"github.com/bcmerchant/line-bot-backend/internal/repo"
)

// RegistrationService claims registration codes on behalf of webhook users.
type RegistrationService struct {
	DB *gorm.DB
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(db *gorm.DB) *RegistrationService {
	return &RegistrationService{DB: db}
}

// Claim attempts to claim code for lineUserID. Exactly one concurrent caller
// can win a given code; everyone else, and any attempt against a completed
// or expired code, gets ErrCodeNotClaimable. A miss is terminal for this
// attempt: no retry, and the caller falls through to normal chat handling.
//
// On success the user row is marked registered as well. That second write is
// deliberately outside the claim statement: the claim is the contended
// operation, and repeating the user-side mark is idempotent-safe.
func (s *RegistrationService) Claim(ctx context.Context, code, lineUserID string) (*domain.Registration, error) {
	tr := otel.Tracer("services/RegistrationService")
	ctx, span := tr.Start(ctx, "Claim",
		trace.WithAttributes(attribute.String("user.id", lineUserID)),
	)
	defer span.End()

	now := time.Now().UTC()
	rec, err := repo.ClaimRegistration(ctx, s.DB, code, lineUserID, now)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCodeNotClaimable
		}
		return nil, err
	}

	if err := repo.MarkUserRegistered(ctx, s.DB, lineUserID, code, now); err != nil {
		// The claim already committed; the user row catches up on the next
		// successful mark. Surface the error for logging, not for rollback.
		return rec, err
	}
	return rec, nil
}
