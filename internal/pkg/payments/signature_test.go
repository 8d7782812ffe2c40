package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"
)

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"type":"payment.succeeded"}`)
	secret := "whsec_test"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	digest := mac.Sum(nil)

	v1Sig := "v1," + base64.StdEncoding.EncodeToString(digest)
	if !VerifyWebhookSignature(payload, v1Sig, secret) {
		t.Fatalf("expected v1 base64 signature to validate")
	}

	hexSig := hex.EncodeToString(digest)
	if !VerifyWebhookSignature(payload, hexSig, secret) {
		t.Fatalf("expected hex signature to validate")
	}

	// multiple space-separated candidates after key rotation
	rotated := "v1,AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA= " + v1Sig
	if !VerifyWebhookSignature(payload, rotated, secret) {
		t.Fatalf("expected rotated signature list to validate")
	}

	if VerifyWebhookSignature(payload, "deadbeef", secret) {
		t.Fatalf("expected invalid signature to fail")
	}
	if VerifyWebhookSignature(payload, v1Sig, "wrong-secret") {
		t.Fatalf("expected wrong secret to fail")
	}
	if VerifyWebhookSignature(payload, "", secret) {
		t.Fatalf("expected empty signature to fail")
	}
	if VerifyWebhookSignature(payload, v1Sig, "") {
		t.Fatalf("expected empty secret to fail")
	}
	if VerifyWebhookSignature([]byte("tampered"), v1Sig, secret) {
		t.Fatalf("expected tampered payload to fail")
	}
}
