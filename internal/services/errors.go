// Package services defines the business logic for the user directory, the
// registration claim workflow, and the conversation responder. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; the
// webhook flow translates them into user-facing replies, never into error
// responses toward the LINE platform.
package services

import "errors"

var (
	// ErrUserNotFound indicates that the requested user has never contacted
	// the bot.
	ErrUserNotFound = errors.New("user not found")

	// ErrCodeNotClaimable indicates that a registration claim missed: the
	// code is unknown, already completed, or expired. A miss is a defined,
	// terminal outcome: callers fall through to normal chat handling and
	// never retry.
	ErrCodeNotClaimable = errors.New("registration code not claimable")
)
