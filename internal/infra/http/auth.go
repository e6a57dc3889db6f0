package http

import (
	"net/http"
	"strings"

	"examgate/internal/domain"
	"examgate/internal/infra/crypto"
	"examgate/internal/infra/fingerprint"

	"github.com/gin-gonic/gin"
)

const (
	credentialContextKey = "credential"
	verdictContextKey    = "credential_verdict"
)

// requireCredential verifies the bearer token and binds the request to its
// issuing device: the fingerprint is re-derived from this request's
// headers and must match the one signed into the credential. Every failure
// answers 401 with force_logout so the client tears down its session.
func (s *Server) requireCredential(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" {
		writeCredentialFailure(c, "missing bearer token")
		return
	}
	cred, err := crypto.DecodeToken(token)
	if err != nil {
		writeCredentialFailure(c, domain.CredentialReasonSignatureInvalid)
		return
	}
	presented := fingerprint.Derive(fingerprint.FromHeaders(c.Request.Header))
	verdict := s.credentials.Verify(c.Request.Context(), cred, presented)
	if !verdict.Valid {
		writeCredentialFailure(c, verdict.Reason)
		return
	}
	c.Set(credentialContextKey, cred)
	c.Set(verdictContextKey, verdict)
	c.Next()
}

func credentialFromContext(c *gin.Context) (domain.SessionCredential, domain.CredentialVerdict, bool) {
	rawCred, ok := c.Get(credentialContextKey)
	if !ok {
		return domain.SessionCredential{}, domain.CredentialVerdict{}, false
	}
	rawVerdict, ok := c.Get(verdictContextKey)
	if !ok {
		return domain.SessionCredential{}, domain.CredentialVerdict{}, false
	}
	cred, ok := rawCred.(domain.SessionCredential)
	if !ok {
		return domain.SessionCredential{}, domain.CredentialVerdict{}, false
	}
	verdict, ok := rawVerdict.(domain.CredentialVerdict)
	return cred, verdict, ok
}

func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}

func writeCredentialFailure(c *gin.Context, reason string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":         "UNAUTHORIZED",
		"message":      reason,
		"force_logout": true,
	})
}
