package usecase

import (
	"context"
	"time"

	"examgate/internal/domain"
)

// CredentialService issues and verifies device-bound session credentials.
// The signature covers the device fingerprint, so a credential copied to a
// second device is unusable there.
type CredentialService struct {
	signer      CredentialSigner
	ttl         time.Duration
	revocations domain.RevocationList
	now         func() time.Time
}

type CredentialServiceConfig struct {
	Signer      CredentialSigner
	TTL         time.Duration
	Revocations domain.RevocationList
	Now         func() time.Time
}

func NewCredentialService(cfg CredentialServiceConfig) *CredentialService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &CredentialService{
		signer:      cfg.Signer,
		ttl:         cfg.TTL,
		revocations: cfg.Revocations,
		now:         cfg.Now,
	}
}

// Issue always succeeds: issuedAt = now, expiresAt = now + fixed TTL.
func (s *CredentialService) Issue(subjectID, subjectEmail, deviceFingerprint string) domain.SessionCredential {
	now := s.now().UTC().Truncate(time.Second)
	cred := domain.SessionCredential{
		SubjectID:         subjectID,
		SubjectEmail:      subjectEmail,
		DeviceFingerprint: deviceFingerprint,
		IssuedAt:          now,
		ExpiresAt:         now.Add(s.ttl),
	}
	cred.Signature = s.signer.Sign(cred)
	return cred
}

// Verify checks signature, expiry, device binding, and revocation, in that
// order. Signature first: nothing else in the payload is trustworthy until
// it holds.
func (s *CredentialService) Verify(ctx context.Context, cred domain.SessionCredential, presentedFingerprint string) domain.CredentialVerdict {
	if !s.signer.Verify(cred) {
		return failure(domain.CredentialReasonSignatureInvalid)
	}
	if s.now().After(cred.ExpiresAt) {
		return failure(domain.CredentialReasonExpired)
	}
	if presentedFingerprint != cred.DeviceFingerprint {
		return failure(domain.CredentialReasonDeviceMismatch)
	}
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, credentialKey(cred))
		if err == nil && revoked {
			return failure(domain.CredentialReasonRevoked)
		}
	}
	return domain.CredentialVerdict{
		Valid:        true,
		SubjectID:    cred.SubjectID,
		SubjectEmail: cred.SubjectEmail,
	}
}

// Revoke invalidates the credential for its remaining lifetime.
func (s *CredentialService) Revoke(ctx context.Context, cred domain.SessionCredential) error {
	if s.revocations == nil {
		return nil
	}
	ttl := cred.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revocations.Revoke(ctx, credentialKey(cred), ttl)
}

func failure(reason string) domain.CredentialVerdict {
	return domain.CredentialVerdict{Valid: false, Reason: reason, ForceLogout: true}
}

// credentialKey identifies one issued credential on the revocation list.
// Subject plus issue instant is unique under one credential per login.
func credentialKey(cred domain.SessionCredential) string {
	return cred.SubjectID + ":" + cred.IssuedAt.UTC().Format(time.RFC3339)
}
