package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// VerifyWebhookSignature checks the HMAC-SHA256 signature of a webhook
// payload against the shared secret. A failed verification must be treated
// as a hard rejection by the caller, never as a warning.
//
// Two encodings are accepted: the provider's "v1,<base64>" scheme (possibly
// listing several space-separated candidates after key rotation) and a plain
// hex digest. Comparison is constant-time in both paths.
func VerifyWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range strings.Fields(sig) {
		if raw, ok := strings.CutPrefix(candidate, "v1,"); ok {
			decoded, err := base64.StdEncoding.DecodeString(raw)
			if err != nil {
				continue
			}
			if hmac.Equal(expected, decoded) {
				return true
			}
			continue
		}

		decoded, err := hex.DecodeString(strings.ToLower(candidate))
		if err != nil {
			continue
		}
		if hmac.Equal(expected, decoded) {
			return true
		}
	}

	return false
}
