package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// Metadata is the set of client signals a fingerprint is derived from.
// Missing signals stay empty; the result is still a valid, weaker
// fingerprint.
type Metadata struct {
	UserAgent      string
	AcceptLanguage string
	AcceptEncoding string
}

// FromHeaders extracts the fingerprint signals from request headers.
func FromHeaders(h http.Header) Metadata {
	return Metadata{
		UserAgent:      h.Get("User-Agent"),
		AcceptLanguage: h.Get("Accept-Language"),
		AcceptEncoding: h.Get("Accept-Encoding"),
	}
}

// Derive computes the device fingerprint: hex SHA-256 over the canonical
// signal form. Pure and deterministic; one-way by construction.
func Derive(m Metadata) string {
	sum := sha256.Sum256([]byte(canonicalize(m)))
	return hex.EncodeToString(sum[:])
}

func canonicalize(m Metadata) string {
	fields := []string{
		"ua:" + strings.TrimSpace(m.UserAgent),
		"lang:" + strings.TrimSpace(m.AcceptLanguage),
		"enc:" + strings.TrimSpace(m.AcceptEncoding),
	}
	return strings.Join(fields, "\n")
}
