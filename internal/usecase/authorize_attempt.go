package usecase

import (
	"time"

	"examgate/internal/domain"
)

// AuthorizeAttempt is the top-level decision function. Rule order is
// load-bearing: resume precedes quota exhaustion, so a student who started
// before a policy tightened is never locked out mid-attempt; the window
// check precedes verification, so no verification runs outside the valid
// window. First matching rule wins.
func AuthorizeAttempt(
	exam domain.Exam,
	now time.Time,
	credential domain.CredentialVerdict,
	verification VerificationVerdict,
	quota domain.AttemptQuotaState,
) domain.AuthorizationVerdict {
	if !credential.Valid {
		return domain.Deny(domain.DenyReasonInvalidSession)
	}
	if !exam.InWindow(now) {
		return domain.Deny(domain.DenyReasonOutsideWindow)
	}
	if quota.HasActiveAttempt {
		return domain.AuthorizationVerdict{
			Decision: domain.DecisionResumeActive,
			Reason:   "active attempt open",
		}
	}
	if verification.Required && !verification.IsAuthorized {
		return domain.Deny(verification.UnauthorizedReason)
	}
	if quota.Exhausted() {
		return domain.Deny(domain.DenyReasonAttemptsExhausted)
	}
	return domain.AuthorizationVerdict{Decision: domain.DecisionAllowNew}
}
