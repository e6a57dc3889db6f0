package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"

	"examgate/internal/domain"
)

// Signer computes and checks HMAC-SHA256 signatures over credential
// payloads with the single process signing key.
type Signer struct {
	key []byte
}

func NewSigner(key []byte) (*Signer, error) {
	if len(key) < 32 {
		return nil, errors.New("signing key must be at least 32 bytes")
	}
	return &Signer{key: append([]byte(nil), key...)}, nil
}

// Sign returns the MAC over the canonical form of every credential field
// except the signature itself. Binding the fingerprint into the signed
// payload prevents forging a credential with a chosen fingerprint.
func (s *Signer) Sign(cred domain.SessionCredential) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(canonicalPayload(cred))
	return mac.Sum(nil)
}

// Verify checks cred.Signature in constant time.
func (s *Signer) Verify(cred domain.SessionCredential) bool {
	expected := s.Sign(cred)
	return subtle.ConstantTimeCompare(expected, cred.Signature) == 1
}

func canonicalPayload(cred domain.SessionCredential) []byte {
	payload := fmt.Sprintf("sub:%s\nemail:%s\nfp:%s\niat:%s\nexp:%s",
		cred.SubjectID,
		cred.SubjectEmail,
		cred.DeviceFingerprint,
		strconv.FormatInt(cred.IssuedAt.Unix(), 10),
		strconv.FormatInt(cred.ExpiresAt.Unix(), 10),
	)
	return []byte(payload)
}
