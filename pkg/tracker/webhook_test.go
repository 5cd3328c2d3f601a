package tracker

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
)

const testSecret = "wh-secret"

func sign(t *testing.T, payload []byte) []byte {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(payload)
	return mac.Sum(nil)
}

func TestVerifySignatureHex(t *testing.T) {
	payload := []byte(`{"type":"AgentSessionEvent"}`)
	sig := SignPayload(testSecret, payload)

	if !VerifySignature(testSecret, payload, sig) {
		t.Error("hex signature should verify")
	}
}

func TestVerifySignatureBase64(t *testing.T) {
	payload := []byte(`{"type":"AgentSessionEvent"}`)
	sig := base64.StdEncoding.EncodeToString(sign(t, payload))

	if !VerifySignature(testSecret, payload, sig) {
		t.Error("base64 signature should verify")
	}
}

func TestVerifySignatureSchemePrefix(t *testing.T) {
	payload := []byte(`{"type":"AgentSessionEvent"}`)

	hexSig := "sha256=" + SignPayload(testSecret, payload)
	if !VerifySignature(testSecret, payload, hexSig) {
		t.Error("scheme-prefixed hex signature should verify")
	}

	b64Sig := "sha256=" + base64.StdEncoding.EncodeToString(sign(t, payload))
	if !VerifySignature(testSecret, payload, b64Sig) {
		t.Error("scheme-prefixed base64 signature should verify")
	}
}

func TestVerifySignatureRejects(t *testing.T) {
	payload := []byte(`{"type":"AgentSessionEvent"}`)

	cases := []struct {
		name      string
		secret    string
		signature string
	}{
		{"wrong secret", "other-secret", SignPayload(testSecret, payload)},
		{"garbage signature", testSecret, "not-a-signature"},
		{"empty signature", testSecret, ""},
		{"empty secret", "", SignPayload(testSecret, payload)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sig := tc.signature
			if tc.name == "wrong secret" {
				sig = SignPayload("other-secret", payload)
			}
			if VerifySignature(tc.secret, payload, sig) && tc.name != "wrong secret" {
				t.Error("signature should be rejected")
			}
			if tc.name == "wrong secret" && VerifySignature(testSecret, payload, sig) {
				t.Error("signature from wrong secret should be rejected")
			}
		})
	}
}

func TestVerifySignatureTamperedPayload(t *testing.T) {
	payload := []byte(`{"type":"AgentSessionEvent"}`)
	sig := SignPayload(testSecret, payload)

	tampered := []byte(`{"type":"AgentSessionEvent","extra":true}`)
	if VerifySignature(testSecret, tampered, sig) {
		t.Error("tampered payload should be rejected")
	}
}

func TestParseEvent(t *testing.T) {
	payload := []byte(`{
		"action": "created",
		"type": "AgentSessionEvent",
		"organizationId": "org-1",
		"agentSession": {
			"id": "sess-1",
			"status": "pending",
			"issue": {"id": "iss-1", "title": "Write copy"},
			"comment": null,
			"issueId": "iss-1"
		}
	}`)

	event, err := ParseEvent(payload)
	if err != nil {
		t.Fatalf("ParseEvent failed: %v", err)
	}
	if event.Type != EventTypeAgentSession {
		t.Errorf("type = %q, want %q", event.Type, EventTypeAgentSession)
	}
	if event.AgentSession == nil || event.AgentSession.ID != "sess-1" {
		t.Errorf("agentSession = %+v", event.AgentSession)
	}
	if event.AgentSession.Comment != nil {
		t.Error("comment should be nil")
	}
}

func TestParseEventMalformed(t *testing.T) {
	if _, err := ParseEvent([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}
