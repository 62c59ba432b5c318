package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	red "edu-platform/internal/infra/redis"
	"edu-platform/internal/usecase"
)

// Server is the student-facing HTTP surface: storefront reads, code
// validation/redemption, wallet purchases, and entitlement-gated content.
type Server struct {
	userUC    usecase.UserUseCase
	packageUC usecase.PackageUseCase
	redeemUC  usecase.RedemptionUseCase
	entUC     usecase.EntitlementUseCase
	walletUC  usecase.WalletUseCase
	lectureUC usecase.LectureUseCase

	sessions     *SessionManager
	limiter      *red.RateLimiter
	redeemLimit  int
	redeemWindow time.Duration
	timeout      time.Duration
	log          *zerolog.Logger
}

type ServerConfig struct {
	RedeemLimit  int
	RedeemWindow time.Duration
	Timeout      time.Duration
}

func NewServer(
	userUC usecase.UserUseCase,
	packageUC usecase.PackageUseCase,
	redeemUC usecase.RedemptionUseCase,
	entUC usecase.EntitlementUseCase,
	walletUC usecase.WalletUseCase,
	lectureUC usecase.LectureUseCase,
	sessions *SessionManager,
	limiter *red.RateLimiter,
	cfg ServerConfig,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "api").Logger()
	return &Server{
		userUC:       userUC,
		packageUC:    packageUC,
		redeemUC:     redeemUC,
		entUC:        entUC,
		walletUC:     walletUC,
		lectureUC:    lectureUC,
		sessions:     sessions,
		limiter:      limiter,
		redeemLimit:  cfg.RedeemLimit,
		redeemWindow: cfg.RedeemWindow,
		timeout:      cfg.Timeout,
		log:          &l,
	}
}

// Router builds the chi router with the full middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))
	r.Use(Timeout(s.timeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/packages", s.handleListPackages)
			r.Get("/packages/{id}/lectures", s.handleLectures)
			r.Post("/codes/validate", s.handleValidateCode)
			r.Post("/codes/redeem", s.handleRedeemCode)
			r.Post("/purchases/wallet", s.handleWalletPurchase)
			r.Get("/me/entitlements", s.handleMyEntitlements)
			r.Get("/me/wallet", s.handleMyWallet)
		})
	})
	return r
}

// requireAuth resolves the bearer token to a user ID and stashes it in the
// request context. Handlers re-read the user row when they need the grade.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.sessions.ParseFromRequest(r)
		if err != nil {
			writeErrorKind(w, http.StatusUnauthorized, "unauthenticated", "missing or invalid session token")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), userID)))
	})
}
