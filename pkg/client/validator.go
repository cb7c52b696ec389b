package client

import (
	"github.com/benloe/artanis/pkg/token"
)

// Validator verifies session credentials locally. A dependent service
// only needs the shared secret; the user directory stays behind the
// auth service.
type Validator struct {
	codec *token.Codec
}

// ValidatorOption configures a Validator
type ValidatorOption func(*validatorConfig)

type validatorConfig struct {
	previousSecret string
	issuer         string
}

// WithPreviousSecret accepts credentials signed under the previous
// secret during a rotation window
func WithPreviousSecret(secret string) ValidatorOption {
	return func(c *validatorConfig) {
		c.previousSecret = secret
	}
}

// WithIssuer sets the issuer recorded in minted credentials; validation
// does not depend on it
func WithIssuer(issuer string) ValidatorOption {
	return func(c *validatorConfig) {
		c.issuer = issuer
	}
}

// NewValidator creates a Validator holding the shared secret
func NewValidator(secret string, opts ...ValidatorOption) *Validator {
	cfg := validatorConfig{issuer: "artanis"}
	for _, opt := range opts {
		opt(&cfg)
	}

	codecOpts := []token.CodecOption{}
	if cfg.previousSecret != "" {
		codecOpts = append(codecOpts, token.WithPreviousSecret(cfg.previousSecret))
	}

	return &Validator{
		codec: token.NewCodec(secret, cfg.issuer, codecOpts...),
	}
}

// Validate checks signature and expiry and returns the asserted
// identity. It never consults the auth service, so the subject may no
// longer exist; callers needing a live profile use the ProfileClient.
func (v *Validator) Validate(credential string) (token.Identity, error) {
	return v.codec.Verify(credential)
}
