// Package line wraps the LINE Messaging API: webhook payload types, request
// signature verification, and a thin outbound client for reply/push/
// multicast/broadcast/profile calls.
package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignatureHeader is the request header carrying the webhook signature.
const SignatureHeader = "X-Line-Signature"

// ValidSignature reports whether signature matches the base64-encoded
// HMAC-SHA256 digest of body keyed by the channel secret. Comparison is
// constant time. An empty secret disables verification (weak mode for local
// and test use) and always passes. Malformed signatures simply mismatch;
// this function never fails.
func ValidSignature(secret string, body []byte, signature string) bool {
	if secret == "" {
		return true
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
