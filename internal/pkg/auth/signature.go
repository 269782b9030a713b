package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrSecretMissing    = errors.New("webhook secret not configured")
)

// Options tunes signature verification.
type Options struct {
	Tolerance time.Duration
}

// SignatureVerifier checks `t=<unix>,v1=<hex>` webhook signature headers where
// the signature is HMAC-SHA256 over "<unix>.<payload>".
type SignatureVerifier struct {
	secret    []byte
	tolerance time.Duration
	now       func() time.Time
}

// NewSignatureVerifier builds a verifier for the shared webhook secret.
func NewSignatureVerifier(secret string, opts Options) *SignatureVerifier {
	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &SignatureVerifier{secret: []byte(secret), tolerance: tolerance, now: time.Now}
}

// Configured reports whether a secret is set.
func (v *SignatureVerifier) Configured() bool {
	return len(v.secret) > 0
}

// Verify validates header against payload.
func (v *SignatureVerifier) Verify(payload []byte, header string) error {
	if !v.Configured() {
		return ErrSecretMissing
	}

	var (
		timestamp  string
		signatures []string
	)
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	skew := v.now().Sub(time.Unix(unix, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.tolerance {
		return ErrInvalidSignature
	}

	expected := v.sign(timestamp, payload)
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(expected, decoded) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Header produces a signature header for payload at ts.
func (v *SignatureVerifier) Header(payload []byte, ts time.Time) string {
	timestamp := strconv.FormatInt(ts.Unix(), 10)
	return "t=" + timestamp + ",v1=" + hex.EncodeToString(v.sign(timestamp, payload))
}

func (v *SignatureVerifier) sign(timestamp string, payload []byte) []byte {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}
