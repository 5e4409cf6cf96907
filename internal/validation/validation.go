// Package validation provides functionality for validating webhook signatures to verify request authenticity.
package validation

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// DefaultSignatureHeader is the header NetBox uses to carry the HMAC-SHA512 hex digest of the body.
const DefaultSignatureHeader = "X-Hook-Signature"

var (
	// ErrMissingSignature is returned when a secret is configured but the request carries no signature.
	ErrMissingSignature = errors.New("missing HMAC-SHA512 signature")
	// ErrSignatureMismatch is returned when the signature does not match the body.
	ErrSignatureMismatch = errors.New("HMAC-SHA512 signature mismatch")
)

// WebhookSecret represents a secret used to validate webhook signatures for verifying request authenticity.
type WebhookSecret string

// NewWebhookSecret creates a new WebhookSecret instance from the provided secret string and returns its address.
func NewWebhookSecret(secret string) *WebhookSecret {
	s := WebhookSecret(secret)
	return &s
}

// Insecure reports whether verification is bypassed because no secret is configured.
func (s *WebhookSecret) Insecure() bool {
	return s == nil || *s == ""
}

// ValidateSignature validates the HMAC-SHA512 signature found under header in the lower-cased request headers.
func (s *WebhookSecret) ValidateSignature(body []byte, headers map[string]string, header string) error {
	if s.Insecure() {
		return nil
	}
	signature, found := headers[strings.ToLower(header)]
	if !found || signature == "" {
		return ErrMissingSignature
	}
	if !Verify(body, signature, string(*s)) {
		return ErrSignatureMismatch
	}
	return nil
}

// Sign returns the lower-case hex HMAC-SHA512 digest of body keyed by secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is the HMAC-SHA512 hex digest of body keyed by secret.
// An empty secret disables verification. The comparison is constant-time.
func Verify(body []byte, signature, secret string) bool {
	if secret == "" {
		return true
	}
	if signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(body, secret)), []byte(signature))
}
