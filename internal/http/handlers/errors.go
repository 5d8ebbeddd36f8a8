// Package handlers defines HTTP-layer error codes used across all API
// endpoints. Codes are stable, machine-readable strings; human-readable
// messages accompany them in the ErrorResponse envelope.
package handlers

const (
	// ErrCodeBadRequest marks malformed or invalid client input.
	ErrCodeBadRequest = "bad_request"

	// ErrCodeNotFound marks a missing resource or route.
	ErrCodeNotFound = "not_found"

	// ErrCodeMethodNotAllowed marks an unsupported HTTP method on a route.
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// ErrCodeInvalidSignature marks a webhook whose signature failed strict
	// verification.
	ErrCodeInvalidSignature = "invalid_signature"

	// ErrCodeSendFailed marks an outbound LINE send that the platform
	// rejected or that timed out.
	ErrCodeSendFailed = "send_failed"

	// ErrCodeListFailed marks a failed list/query operation.
	ErrCodeListFailed = "list_failed"

	// ErrCodeInternal marks unexpected server-side failures.
	ErrCodeInternal = "internal_error"
)
