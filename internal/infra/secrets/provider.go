package secrets

import (
	"encoding/base64"
	"encoding/hex"

	"examgate/internal/config"
	"examgate/internal/domain"
)

// Provider supplies the credential signing key at process start. Rotation
// is out of scope: one active key per process lifetime.
type Provider struct {
	keyBase64 string
	keyHex    string
}

func NewProviderFromConfig(cfg config.Config) *Provider {
	return &Provider{
		keyBase64: cfg.SigningKeyBase64,
		keyHex:    cfg.SigningKeyHex,
	}
}

func NewStaticProvider(key []byte) *Provider {
	return &Provider{keyBase64: base64.StdEncoding.EncodeToString(key)}
}

// SigningKey returns the configured key material. Base64 takes precedence
// over the hex form when both are set.
func (p *Provider) SigningKey() ([]byte, error) {
	if p.keyBase64 != "" {
		key, err := base64.StdEncoding.DecodeString(p.keyBase64)
		if err == nil && len(key) > 0 {
			return key, nil
		}
	}
	if p.keyHex != "" {
		key, err := hex.DecodeString(p.keyHex)
		if err == nil && len(key) > 0 {
			return key, nil
		}
	}
	return nil, domain.ErrNoSigningKey
}
