package crypto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"examgate/internal/domain"
)

// Token wire form: base64url(JSON payload) "." base64url(signature).
// The payload carries Unix timestamps so re-encoding is stable across
// time zones.

type tokenPayload struct {
	SubjectID         string `json:"sub"`
	SubjectEmail      string `json:"email"`
	DeviceFingerprint string `json:"fp"`
	IssuedAt          int64  `json:"iat"`
	ExpiresAt         int64  `json:"exp"`
}

var errMalformedToken = errors.New("malformed token")

// EncodeToken renders a credential as an opaque transport token.
func EncodeToken(cred domain.SessionCredential) (string, error) {
	payload, err := json.Marshal(tokenPayload{
		SubjectID:         cred.SubjectID,
		SubjectEmail:      cred.SubjectEmail,
		DeviceFingerprint: cred.DeviceFingerprint,
		IssuedAt:          cred.IssuedAt.Unix(),
		ExpiresAt:         cred.ExpiresAt.Unix(),
	})
	if err != nil {
		return "", err
	}
	enc := base64.RawURLEncoding
	return enc.EncodeToString(payload) + "." + enc.EncodeToString(cred.Signature), nil
}

// DecodeToken parses a transport token back into a credential. It does not
// check the signature; that is the credential service's job.
func DecodeToken(token string) (domain.SessionCredential, error) {
	enc := base64.RawURLEncoding
	dot := strings.IndexByte(token, '.')
	if dot <= 0 || dot == len(token)-1 {
		return domain.SessionCredential{}, errMalformedToken
	}
	payloadRaw, err := enc.DecodeString(token[:dot])
	if err != nil {
		return domain.SessionCredential{}, errMalformedToken
	}
	sig, err := enc.DecodeString(token[dot+1:])
	if err != nil {
		return domain.SessionCredential{}, errMalformedToken
	}
	var payload tokenPayload
	if err := json.Unmarshal(payloadRaw, &payload); err != nil {
		return domain.SessionCredential{}, errMalformedToken
	}
	return domain.SessionCredential{
		SubjectID:         payload.SubjectID,
		SubjectEmail:      payload.SubjectEmail,
		DeviceFingerprint: payload.DeviceFingerprint,
		IssuedAt:          time.Unix(payload.IssuedAt, 0).UTC(),
		ExpiresAt:         time.Unix(payload.ExpiresAt, 0).UTC(),
		Signature:         sig,
	}, nil
}
