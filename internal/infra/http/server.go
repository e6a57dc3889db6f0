package http

import (
	"context"
	"log"
	"time"

	"examgate/internal/config"
	"examgate/internal/domain"
	"examgate/internal/infra/crypto"
	"examgate/internal/infra/db"
	"examgate/internal/infra/ratelimit"
	"examgate/internal/infra/revocation"
	"examgate/internal/infra/secrets"
	"examgate/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg config.Config
	r   *gin.Engine

	credentials  *usecase.CredentialService
	orchestrator *usecase.VerificationOrchestrator
	attempts     *usecase.AttemptService
	exams        usecase.ExamRepository
	examAdmin    ExamAdminStore

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
}

// ExamAdminStore is the small write surface the admin exam endpoint needs.
type ExamAdminStore interface {
	CreateExam(ctx context.Context, exam domain.Exam) (domain.Exam, error)
}

type ServerDeps struct {
	Credentials  *usecase.CredentialService
	Orchestrator *usecase.VerificationOrchestrator
	Attempts     *usecase.AttemptService
	Exams        usecase.ExamRepository
	ExamAdmin    ExamAdminStore
	RateLimiter  domain.RateLimiter
}

func NewServer(cfg config.Config, store *db.Store) (*Server, error) {
	signingKey, err := secrets.NewProviderFromConfig(cfg).SigningKey()
	if err != nil {
		return nil, err
	}
	signer, err := crypto.NewSigner(signingKey)
	if err != nil {
		return nil, err
	}

	var revocations domain.RevocationList
	var limiter domain.RateLimiter
	if cfg.RedisAddr != "" {
		if list, err := revocation.NewRedisList(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err == nil {
			revocations = list
		}
		if rl, err := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil); err == nil {
			limiter = rl
		}
	}
	if revocations == nil {
		revocations = revocation.NewMemoryList(nil)
	}
	if limiter == nil {
		limiter = ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{})
	}

	credentials := usecase.NewCredentialService(usecase.CredentialServiceConfig{
		Signer:      signer,
		TTL:         cfg.SessionTTL(),
		Revocations: revocations,
	})

	examRepo := db.NewExamRepository(store.DB)
	attemptRepo := db.NewAttemptRepository(store.DB)
	sessionRepo := db.NewVerificationSessionRepository(store.DB)
	artifactRepo := db.NewArtifactRepository(store.DB)

	runner := usecase.NewStepRunner(artifactRepo, nil)
	orchestrator := usecase.NewVerificationOrchestrator(sessionRepo, runner, nil)
	ledger := usecase.NewQuotaLedger(attemptRepo)
	attempts := usecase.NewAttemptService(examRepo, attemptRepo, ledger, orchestrator, nil)

	return NewServerWithDeps(cfg, ServerDeps{
		Credentials:  credentials,
		Orchestrator: orchestrator,
		Attempts:     attempts,
		Exams:        examRepo,
		ExamAdmin:    examRepo,
		RateLimiter:  limiter,
	}), nil
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:               cfg,
		r:                 r,
		credentials:       deps.Credentials,
		orchestrator:      deps.Orchestrator,
		attempts:          deps.Attempts,
		exams:             deps.Exams,
		examAdmin:         deps.ExamAdmin,
		rateLimiter:       deps.RateLimiter,
		rateLimitRequests: cfg.RateLimitRequests,
		rateLimitWindow:   cfg.RateLimitWindow(),
	}
	s.routes()
	return s
}

func (s *Server) Run() error {
	addr := s.cfg.HTTPAddr
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("examgate listening on %s", addr)
	return s.r.Run(addr)
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := s.r.Group("/v1")
	{
		v1.POST("/exams", s.handleCreateExam)

		v1.POST("/session", s.handleIssueSession)
		v1.POST("/session/verify", s.requireCredential, s.handleVerifySession)
		v1.DELETE("/session", s.requireCredential, s.handleRevokeSession)

		v1.POST("/exams/:exam_id/verification/:step", s.requireCredential, s.handleVerificationStep)
		v1.POST("/exams/:exam_id/verification/:step/skip", s.requireCredential, s.handleVerificationSkip)
		v1.POST("/exams/:exam_id/verification/reset", s.requireCredential, s.handleVerificationReset)
		v1.POST("/exams/:exam_id/verification/abort", s.requireCredential, s.handleVerificationAbort)

		v1.GET("/exams/:exam_id/authorization", s.requireCredential, s.handleAuthorization)
		v1.POST("/exams/:exam_id/attempts", s.requireCredential, s.handleStartAttempt)
	}
}
