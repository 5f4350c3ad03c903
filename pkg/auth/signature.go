package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// CallbackMode selects how the task network proves it sent a credit callback.
type CallbackMode string

const (
	// CallbackModeNone accepts any caller. Anyone who can reach the endpoint
	// can credit any user.
	CallbackModeNone CallbackMode = "none"
	// CallbackModeToken requires the shared secret in a header.
	CallbackModeToken CallbackMode = "token"
	// CallbackModeHMAC requires a hex HMAC-SHA256 of the raw body.
	CallbackModeHMAC CallbackMode = "hmac"
)

func ParseCallbackMode(s string) (CallbackMode, error) {
	switch mode := CallbackMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return CallbackModeHMAC, nil
	case CallbackModeNone, CallbackModeToken, CallbackModeHMAC:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown callback auth mode %q", s)
	}
}

// SignBody returns the hex HMAC-SHA256 of body under secret.
func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyBodySignature checks a hex signature, optionally prefixed with
// "sha256=", against body.
func VerifyBodySignature(secret string, body []byte, provided string) bool {
	cleaned := strings.ToLower(strings.TrimSpace(provided))
	cleaned = strings.TrimPrefix(cleaned, "sha256=")
	if cleaned == "" || secret == "" {
		return false
	}

	got, err := hex.DecodeString(cleaned)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}

// VerifyToken compares a shared-secret token in constant time.
func VerifyToken(secret, provided string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(strings.TrimSpace(provided))) == 1
}
