package auth

import (
	"errors"
	"fmt"
)

// ErrInvalidAPIKey is returned for a missing or wrong admin key.
var ErrInvalidAPIKey = errors.New("invalid api key")

// APIKeyVerifier holds only a hash of the configured admin key.
type APIKeyVerifier struct {
	hasher SecretHasher
	hash   string
}

// NewAPIKeyVerifier hashes key once. An empty key disables admin access.
func NewAPIKeyVerifier(hasher SecretHasher, key string) (*APIKeyVerifier, error) {
	v := &APIKeyVerifier{hasher: hasher}
	if key == "" {
		return v, nil
	}
	hash, err := hasher.Hash(key)
	if err != nil {
		return nil, fmt.Errorf("hash api key: %w", err)
	}
	v.hash = hash
	return v, nil
}

// Enabled reports whether an admin key is configured.
func (v *APIKeyVerifier) Enabled() bool {
	return v.hash != ""
}

// Verify checks a presented key.
func (v *APIKeyVerifier) Verify(key string) error {
	if !v.Enabled() || key == "" {
		return ErrInvalidAPIKey
	}
	if err := v.hasher.Compare(v.hash, key); err != nil {
		return ErrInvalidAPIKey
	}
	return nil
}
