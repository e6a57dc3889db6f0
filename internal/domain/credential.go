package domain

import "time"

// SessionCredential is a signed, time-bounded proof of authenticated
// identity bound to the device fingerprint it was issued against.
// Immutable once issued; the signature covers every other field.
type SessionCredential struct {
	SubjectID         string    `json:"subject_id"`
	SubjectEmail      string    `json:"subject_email"`
	DeviceFingerprint string    `json:"device_fingerprint"`
	IssuedAt          time.Time `json:"issued_at"`
	ExpiresAt         time.Time `json:"expires_at"`
	Signature         []byte    `json:"signature"`
}

const (
	CredentialReasonSignatureInvalid = "signature invalid"
	CredentialReasonExpired          = "expired"
	CredentialReasonDeviceMismatch   = "device mismatch"
	CredentialReasonRevoked          = "revoked"
)

// CredentialVerdict is the outcome of verifying a presented credential.
// Every failure sets ForceLogout so callers tear down client session state
// instead of retrying.
type CredentialVerdict struct {
	Valid       bool
	Reason      string
	ForceLogout bool

	SubjectID    string
	SubjectEmail string
}
