package tracker

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// VerifySignature checks an HMAC-SHA256 webhook signature against the raw
// payload. The header value may be hex- or base64-encoded and may carry a
// "scheme=" prefix (e.g. "sha256=<hex>"). Comparison is constant time.
func VerifySignature(secret string, payload []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}

	// Strip an optional scheme prefix.
	if idx := strings.IndexByte(signature, '='); idx != -1 {
		// Only treat it as a prefix when the left side looks like a scheme
		// name, not when '=' is base64 padding.
		if !strings.ContainsAny(signature[:idx], "+/") && idx < len(signature)-1 && idx <= 16 {
			signature = signature[idx+1:]
		}
	}
	signature = strings.TrimSpace(signature)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	if decoded, err := hex.DecodeString(signature); err == nil {
		if hmac.Equal(decoded, expected) {
			return true
		}
	}
	if decoded, err := base64.StdEncoding.DecodeString(signature); err == nil {
		if hmac.Equal(decoded, expected) {
			return true
		}
	}
	return false
}

// SignPayload produces the hex-encoded HMAC-SHA256 signature for a payload.
// Used by tests and local tooling.
func SignPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// ParseEvent decodes a webhook payload into a WebhookEvent.
func ParseEvent(payload []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}
	return &event, nil
}
