// Package http exposes the issuance and verification API over gin. Admin
// routes are gated by the X-Admin-Key header; the verify route is public and
// rate limited per client IP.
package http

import (
	"context"
	"log"
	"net/http"
	"strings"

	"certledger/internal/config"
	"certledger/internal/domain"
	"certledger/internal/infra/blob"
	"certledger/internal/infra/crypto"
	"certledger/internal/infra/db"
	"certledger/internal/infra/ledger/evmgateway"
	"certledger/internal/infra/policy"
	"certledger/internal/infra/ratelimit"
	"certledger/internal/infra/render"
	"certledger/internal/usecase"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	r     *gin.Engine

	issueUC       *usecase.IssueCertificate
	verifyUC      *usecase.VerifyCertificate
	revocationSvc *usecase.RevocationService
	statsQ        *usecase.StatsQuery
	certs         usecase.CertificateRepository
	renderer      usecase.Renderer

	adminAPIKey string
	blobDir     string

	rateLimiter domain.RateLimiter
}

func NewServer(cfg config.Config, store *db.Store) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{cfg: cfg, store: store, r: r}
	s.initDeps()
	s.routes()
	return s
}

// ServerDeps lets tests and alternative wirings inject collaborators directly.
type ServerDeps struct {
	Issue         *usecase.IssueCertificate
	Verify        *usecase.VerifyCertificate
	RevocationSvc *usecase.RevocationService
	Stats         *usecase.StatsQuery
	Certs         usecase.CertificateRepository
	Renderer      usecase.Renderer
	AdminAPIKey   string
	RateLimiter   domain.RateLimiter
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:           cfg,
		r:             r,
		issueUC:       deps.Issue,
		verifyUC:      deps.Verify,
		revocationSvc: deps.RevocationSvc,
		statsQ:        deps.Stats,
		certs:         deps.Certs,
		renderer:      deps.Renderer,
		adminAPIKey:   deps.AdminAPIKey,
	}
	if s.certs == nil && s.issueUC != nil {
		s.certs = s.issueUC.Certs
	}
	if s.renderer == nil && s.issueUC != nil {
		s.renderer = s.issueUC.Renderer
	}
	s.initRateLimit(deps.RateLimiter)
	s.routes()
	return s
}

func (s *Server) initDeps() {
	s.adminAPIKey = s.cfg.AdminAPIKey

	cryptoSvc := crypto.NewService(nil)

	var ledger domain.Ledger
	if s.cfg.LedgerGatewayURL != "" {
		client, err := evmgateway.NewClient(s.cfg.LedgerGatewayURL, nil)
		if err != nil {
			log.Printf("ledger gateway disabled: %v", err)
		} else {
			ledger = client
		}
	}

	var blobs usecase.BlobStore
	var assets render.AssetLoader
	if fsStore, err := blob.NewFSStore(s.cfg.BlobDir, s.cfg.BlobBaseURL); err != nil {
		log.Printf("blob store disabled: %v", err)
	} else {
		blobs = fsStore
		assets = fsStore
		s.blobDir = fsStore.Dir()
	}

	s.renderer = render.NewPDFRenderer(s.cfg.VerifyURLBase, assets)

	var expiry usecase.ExpiryPolicy
	if s.cfg.PolicyBundlePath != "" {
		engine, err := policy.NewEngineFromBundlePath(context.Background(), s.cfg.PolicyBundlePath)
		if err != nil {
			log.Printf("expiry policy bundle failed to load, using date fallback: %v", err)
		} else {
			expiry = engine
		}
	}

	var certRepo *db.CertificateRepository
	var logRepo *db.VerificationLogRepository
	if s.store != nil {
		certRepo = db.NewCertificateRepository(s.store.DB)
		logRepo = db.NewVerificationLogRepository(s.store.DB)
	}
	if certRepo != nil {
		s.certs = certRepo
		s.revocationSvc = usecase.NewRevocationService(certRepo)
	}

	var logs usecase.VerificationLogRepository
	if logRepo != nil {
		logs = logRepo
	}

	s.issueUC = &usecase.IssueCertificate{
		Certs:         s.certs,
		Blobs:         blobs,
		Ledger:        ledger,
		Crypto:        cryptoSvc,
		Renderer:      s.renderer,
		LedgerTimeout: s.cfg.LedgerTimeout(),
	}
	s.verifyUC = &usecase.VerifyCertificate{
		Certs:         s.certs,
		Logs:          logs,
		Ledger:        ledger,
		Crypto:        cryptoSvc,
		Policy:        expiry,
		LedgerTimeout: s.cfg.LedgerTimeout(),
	}
	s.statsQ = &usecase.StatsQuery{
		Certs:         s.certs,
		Logs:          logs,
		Ledger:        ledger,
		LedgerTimeout: s.cfg.LedgerTimeout(),
	}

	s.initRateLimit(nil)
}

func (s *Server) initRateLimit(override domain.RateLimiter) {
	if override != nil {
		s.rateLimiter = override
		return
	}
	if s.cfg.RateLimitRequests <= 0 {
		return
	}
	if s.cfg.RedisAddr != "" {
		if limiter, err := ratelimit.NewRedisLimiter(s.cfg.RedisAddr, s.cfg.RedisPassword, s.cfg.RedisDB, s.cfg.RateLimitRequests, s.cfg.RateLimitWindow()); err == nil {
			s.rateLimiter = limiter
			return
		}
	}
	s.rateLimiter = ratelimit.NewMemoryLimiter(s.cfg.RateLimitRequests, s.cfg.RateLimitWindow())
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		dbMode := "no-db"
		if s.store != nil && s.store.DB != nil {
			dbMode = "db"
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": dbMode})
	})

	if s.blobDir != "" && strings.HasPrefix(s.cfg.BlobBaseURL, "/") {
		s.r.Static(s.cfg.BlobBaseURL, s.blobDir)
	}

	v1 := s.r.Group("/v1")
	{
		v1.GET("/verify/:certificate_id", s.handleVerify)

		v1.POST("/certificates", s.handleIssue)
		v1.GET("/certificates", s.handleList)
		v1.GET("/certificates/:certificate_id", s.handleGet)
		v1.GET("/certificates/:certificate_id/pdf", s.handlePDF)
		v1.POST("/certificates/:certificate_id/revoke", s.handleRevoke)
		v1.POST("/certificates/:certificate_id/restore", s.handleRestore)
		v1.GET("/stats", s.handleStats)
	}

	s.r.NoRoute(s.handleNoRoute)
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}
