package test

import (
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// KeyVerifierStub accepts exactly Key.
type KeyVerifierStub struct {
	Key string
}

// Verify rejects every key other than the configured one.
func (s KeyVerifierStub) Verify(key string) error {
	if s.Key == "" || key != s.Key {
		return domainErrors.ErrUnauthorized
	}
	return nil
}

// SignatureVerifierStub implements webhook signature checks via overrides.
type SignatureVerifierStub struct {
	Unconfigured bool
	VerifyFn     func([]byte, string) error
}

// Configured reports whether a signing secret is present.
func (s SignatureVerifierStub) Configured() bool {
	return !s.Unconfigured
}

// Verify accepts the header "valid" unless overridden.
func (s SignatureVerifierStub) Verify(payload []byte, header string) error {
	if s.VerifyFn != nil {
		return s.VerifyFn(payload, header)
	}
	if header != "valid" {
		return domainErrors.ErrInvalidSignature
	}
	return nil
}
