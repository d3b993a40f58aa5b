// Package webhook receives, verifies, and classifies Business API callbacks.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/whatsapp-checkout/internal/credentials"
)

// signaturePrefix is the scheme tag of the X-Hub-Signature-256 header.
const signaturePrefix = "sha256="

// Verifier checks callback authenticity: the platform signs the raw request
// body with HMAC-SHA256 keyed by the app secret.
type Verifier struct {
	creds credentials.Provider
}

// NewVerifier creates a Verifier reading the app secret from creds.
func NewVerifier(creds credentials.Provider) *Verifier {
	return &Verifier{creds: creds}
}

// Verify reports whether signatureHeader matches body. The digest is computed
// over the raw bytes exactly as received; re-serializing the body first would
// reject legitimate callbacks. Malformed headers yield false, never an error,
// and the comparison is constant-time.
func (v *Verifier) Verify(ctx context.Context, signatureHeader string, body []byte) bool {
	hexDigest, ok := strings.CutPrefix(signatureHeader, signaturePrefix)
	if !ok {
		return false
	}
	want, err := hex.DecodeString(hexDigest)
	if err != nil {
		return false
	}

	secret, err := v.creds.AppSecret()
	if err != nil {
		zctx.From(ctx).Error("App secret unavailable, rejecting callback", zap.Error(err))
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), want)
}
