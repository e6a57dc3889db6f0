package domain

type Decision string

const (
	DecisionDeny         Decision = "deny"
	DecisionAllowNew     Decision = "allow_new_attempt"
	DecisionResumeActive Decision = "resume_active_attempt"
)

const (
	DenyReasonInvalidSession    = "invalid session"
	DenyReasonOutsideWindow     = "exam not in active window"
	DenyReasonAttemptsExhausted = "attempts exhausted"
)

// AuthorizationVerdict is ephemeral, returned per request, never persisted.
type AuthorizationVerdict struct {
	Decision Decision `json:"decision"`
	Reason   string   `json:"reason,omitempty"`
}

func Deny(reason string) AuthorizationVerdict {
	return AuthorizationVerdict{Decision: DecisionDeny, Reason: reason}
}
