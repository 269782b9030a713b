package auth

import (
	"github.com/polkiloo/storefront/internal/config"
	"go.uber.org/fx"
)

// Module provides webhook and admin authentication primitives via fx.
var Module = fx.Options(
	fx.Provide(newSecretHasher),
	fx.Provide(newSignatureVerifier),
	fx.Provide(newAPIKeyVerifier),
)

func newSecretHasher() SecretHasher {
	return NewBcryptHasher(0)
}

type verifierParams struct {
	fx.In

	Config *config.Config
	Hasher SecretHasher
}

func newSignatureVerifier(p verifierParams) *SignatureVerifier {
	return NewSignatureVerifier(p.Config.StripeWebhookSecret, Options{Tolerance: p.Config.WebhookTolerance})
}

func newAPIKeyVerifier(p verifierParams) (*APIKeyVerifier, error) {
	return NewAPIKeyVerifier(p.Hasher, p.Config.AdminAPIKey)
}
