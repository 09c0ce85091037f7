// Package webhook receives GitHub issues events and feeds them, one at a
// time, to the sync engine.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// SignatureHeader carries the HMAC-SHA256 of the request body.
const SignatureHeader = "X-Hub-Signature-256"

const signaturePrefix = "sha256="

// Sign returns the X-Hub-Signature-256 value for body.
func Sign(body, secret []byte) string {
	h := hmac.New(sha256.New, secret)
	h.Write(body)
	return signaturePrefix + hex.EncodeToString(h.Sum(nil))
}

// VerifySignature checks an X-Hub-Signature-256 header against body.
func VerifySignature(header string, body, secret []byte) error {
	if header == "" {
		return errors.New("missing signature")
	}
	if !strings.HasPrefix(header, signaturePrefix) {
		return fmt.Errorf("unsupported signature format %q", header)
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}

	h := hmac.New(sha256.New, secret)
	h.Write(body)
	if !hmac.Equal(got, h.Sum(nil)) {
		return errors.New("invalid signature")
	}
	return nil
}
