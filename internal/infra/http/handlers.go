package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"examgate/internal/domain"
	"examgate/internal/infra/crypto"
	"examgate/internal/infra/fingerprint"
	"examgate/internal/usecase"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type stepConfigRequest struct {
	Kind            string `json:"kind"`
	Enabled         bool   `json:"enabled"`
	Required        bool   `json:"required"`
	RecheckInterval int    `json:"recheck_interval_seconds,omitempty"`
}

type createExamRequest struct {
	Title       string              `json:"title"`
	StartDate   time.Time           `json:"start_date"`
	EndDate     time.Time           `json:"end_date"`
	MaxAttempts int                 `json:"max_attempts"`
	Steps       []stepConfigRequest `json:"steps"`
}

type issueSessionRequest struct {
	SubjectID    string `json:"subject_id"`
	SubjectEmail string `json:"subject_email"`
}

type captureRequest struct {
	MediaType      string `json:"media_type"`
	ArtifactBase64 string `json:"artifact_base64"`
	Verified       bool   `json:"verified"`
}

type outcomeResponse struct {
	Step        string    `json:"step"`
	Verified    bool      `json:"verified"`
	Skipped     bool      `json:"skipped"`
	ArtifactRef string    `json:"artifact_ref,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type sessionResponse struct {
	SessionID          string            `json:"session_id"`
	State              string            `json:"state"`
	Finalized          bool              `json:"finalized"`
	IsAuthorized       bool              `json:"is_authorized"`
	UnauthorizedReason string            `json:"unauthorized_reason,omitempty"`
	Outcomes           []outcomeResponse `json:"outcomes"`
}

func (s *Server) handleCreateExam(c *gin.Context) {
	var req createExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if req.Title == "" || req.EndDate.Before(req.StartDate) {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_EXAM", "title required and end_date must follow start_date")
		return
	}
	exam := domain.Exam{
		Title:       req.Title,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		MaxAttempts: req.MaxAttempts,
	}
	for _, step := range req.Steps {
		kind, ok := parseStepKind(step.Kind)
		if !ok {
			writeErrorCode(c, http.StatusBadRequest, "INVALID_STEP", "unknown verification step kind")
			return
		}
		exam.Steps = append(exam.Steps, domain.VerificationStepConfig{
			Kind:            kind,
			Enabled:         step.Enabled,
			Required:        step.Required,
			RecheckInterval: time.Duration(step.RecheckInterval) * time.Second,
		})
	}
	created, err := s.examAdmin.CreateExam(c.Request.Context(), exam)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"exam_id": created.ID})
}

func (s *Server) handleIssueSession(c *gin.Context) {
	var req issueSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SubjectID == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_BODY", "subject_id is required")
		return
	}
	if s.rateLimiter != nil && s.rateLimitRequests > 0 {
		decision, err := s.rateLimiter.Allow(c.Request.Context(), "issue:"+c.ClientIP(), s.rateLimitRequests, s.rateLimitWindow)
		if err == nil && !decision.Allowed {
			writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "too many session requests")
			return
		}
	}
	fp := fingerprint.Derive(fingerprint.FromHeaders(c.Request.Header))
	cred := s.credentials.Issue(req.SubjectID, req.SubjectEmail, fp)
	token, err := crypto.EncodeToken(cred)
	if err != nil {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "failed to encode credential")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"subject_id": cred.SubjectID,
		"issued_at":  cred.IssuedAt,
		"expires_at": cred.ExpiresAt,
	})
}

func (s *Server) handleVerifySession(c *gin.Context) {
	_, verdict, ok := credentialFromContext(c)
	if !ok {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "credential missing from context")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":         true,
		"subject_id":    verdict.SubjectID,
		"subject_email": verdict.SubjectEmail,
	})
}

func (s *Server) handleRevokeSession(c *gin.Context) {
	cred, _, ok := credentialFromContext(c)
	if !ok {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "credential missing from context")
		return
	}
	if err := s.credentials.Revoke(c.Request.Context(), cred); err != nil {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "failed to revoke credential")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleVerificationStep(c *gin.Context) {
	_, verdict, ok := credentialFromContext(c)
	if !ok {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "credential missing from context")
		return
	}
	step, ok := parseStepKind(c.Param("step"))
	if !ok {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_STEP", "unknown verification step")
		return
	}
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	raw, err := base64.StdEncoding.DecodeString(req.ArtifactBase64)
	if err != nil || len(raw) == 0 {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ARTIFACT", "artifact_base64 must be non-empty base64")
		return
	}
	exam, err := s.exams.GetExam(c.Request.Context(), c.Param("exam_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	session, err := s.orchestrator.SubmitCapture(c.Request.Context(), *exam, verdict.SubjectID, usecase.CaptureRequest{
		Step:      step,
		MediaType: req.MediaType,
		Raw:       raw,
		Verified:  req.Verified,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionToResponse(session))
}

func (s *Server) handleVerificationSkip(c *gin.Context) {
	_, verdict, ok := credentialFromContext(c)
	if !ok {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "credential missing from context")
		return
	}
	step, ok := parseStepKind(c.Param("step"))
	if !ok {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_STEP", "unknown verification step")
		return
	}
	exam, err := s.exams.GetExam(c.Request.Context(), c.Param("exam_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	session, err := s.orchestrator.SubmitSkip(c.Request.Context(), *exam, verdict.SubjectID, step)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionToResponse(session))
}

func (s *Server) handleVerificationReset(c *gin.Context) {
	_, verdict, ok := credentialFromContext(c)
	if !ok {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "credential missing from context")
		return
	}
	exam, err := s.exams.GetExam(c.Request.Context(), c.Param("exam_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	session, err := s.orchestrator.Reset(c.Request.Context(), *exam, verdict.SubjectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionToResponse(session))
}

func (s *Server) handleVerificationAbort(c *gin.Context) {
	_, verdict, ok := credentialFromContext(c)
	if !ok {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "credential missing from context")
		return
	}
	exam, err := s.exams.GetExam(c.Request.Context(), c.Param("exam_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	session, err := s.orchestrator.Abort(c.Request.Context(), *exam, verdict.SubjectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionToResponse(session))
}

func (s *Server) handleAuthorization(c *gin.Context) {
	_, verdict, ok := credentialFromContext(c)
	if !ok {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "credential missing from context")
		return
	}
	result, err := s.attempts.Authorize(c.Request.Context(), c.Param("exam_id"), verdict.SubjectID, verdict)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if result.Decision == domain.DecisionDeny {
		status = http.StatusForbidden
	}
	c.JSON(status, result)
}

func (s *Server) handleStartAttempt(c *gin.Context) {
	_, verdict, ok := credentialFromContext(c)
	if !ok {
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "credential missing from context")
		return
	}
	result, attempt, err := s.attempts.StartAttempt(c.Request.Context(), c.Param("exam_id"), verdict.SubjectID, verdict)
	if err != nil {
		writeError(c, err)
		return
	}
	if result.Decision == domain.DecisionDeny {
		c.JSON(http.StatusForbidden, result)
		return
	}
	body := gin.H{"decision": result.Decision, "reason": result.Reason}
	status := http.StatusOK
	if attempt != nil {
		status = http.StatusCreated
		body["attempt_id"] = attempt.ID
		body["started_at"] = attempt.StartedAt
	}
	c.JSON(status, body)
}

func sessionToResponse(session *domain.VerificationSession) sessionResponse {
	resp := sessionResponse{
		SessionID:          session.ID,
		State:              string(session.State),
		Finalized:          session.Finalized(),
		IsAuthorized:       session.IsAuthorized,
		UnauthorizedReason: session.UnauthorizedReason,
		Outcomes:           make([]outcomeResponse, 0, len(session.Outcomes)),
	}
	for _, o := range session.Outcomes {
		resp.Outcomes = append(resp.Outcomes, outcomeResponse{
			Step:        string(o.Step),
			Verified:    o.Verified,
			Skipped:     o.Skipped,
			ArtifactRef: o.ArtifactRef,
			Timestamp:   o.Timestamp,
		})
	}
	return resp
}

func parseStepKind(value string) (domain.StepKind, bool) {
	switch domain.StepKind(value) {
	case domain.StepIdentity:
		return domain.StepIdentity, true
	case domain.StepFace:
		return domain.StepFace, true
	default:
		return "", false
	}
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, errorResponse{Code: code, Message: message})
}

// writeError maps domain sentinels to HTTP statuses; anything else is a
// generic 500 so infrastructure failures never leak policy detail.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, domain.ErrConflict):
		writeErrorCode(c, http.StatusConflict, "CONFLICT", "conflict")
	case errors.Is(err, domain.ErrStepDisabled):
		writeErrorCode(c, http.StatusBadRequest, "STEP_DISABLED", "step is not enabled for this exam")
	case errors.Is(err, domain.ErrStepRequired):
		writeErrorCode(c, http.StatusBadRequest, "STEP_REQUIRED", "required step cannot be skipped")
	case errors.Is(err, domain.ErrStepNotCurrent):
		writeErrorCode(c, http.StatusConflict, "STEP_NOT_CURRENT", "step is not the current step")
	case errors.Is(err, domain.ErrSessionFinalized):
		writeErrorCode(c, http.StatusConflict, "SESSION_FINALIZED", "verification session already finalized")
	default:
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
