package web

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"edu-platform/internal/usecase"
)

// Server is the operator-facing admin API. It speaks a static Bearer API key
// and runs on a separate port from the public API.
type Server struct {
	statsUC   usecase.StatsUseCase
	userUC    usecase.UserUseCase
	packageUC usecase.PackageUseCase
	lectureUC usecase.LectureUseCase
	codeUC    usecase.CodeAdminUseCase
	walletUC  usecase.WalletUseCase
	reconUC   usecase.ReconciliationUseCase
	apiKey    string
	log       *zerolog.Logger
}

func NewServer(
	statsUC usecase.StatsUseCase,
	userUC usecase.UserUseCase,
	packageUC usecase.PackageUseCase,
	lectureUC usecase.LectureUseCase,
	codeUC usecase.CodeAdminUseCase,
	walletUC usecase.WalletUseCase,
	reconUC usecase.ReconciliationUseCase,
	apiKey string,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "admin_api").Logger()
	return &Server{
		statsUC:   statsUC,
		userUC:    userUC,
		packageUC: packageUC,
		lectureUC: lectureUC,
		codeUC:    codeUC,
		walletUC:  walletUC,
		reconUC:   reconUC,
		apiKey:    apiKey,
		log:       &l,
	}
}

// RegisterRoutes sets up the routing for the admin API.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("/admin/v1/stats", s.authMiddleware(statsHandler(s.statsUC)))
	mux.Handle("/admin/v1/users", s.authMiddleware(usersListHandler(s.userUC)))
	mux.Handle("/admin/v1/wallets/topup", s.authMiddleware(walletTopUpHandler(s.walletUC)))

	codesRouter := s.authMiddleware(s.codesRouter())
	mux.Handle("/admin/v1/codes", codesRouter)

	packagesRouter := s.authMiddleware(s.packagesRouter())
	mux.Handle("/admin/v1/packages", packagesRouter)
	mux.Handle("/admin/v1/packages/", packagesRouter)

	lecturesRouter := s.authMiddleware(s.lecturesRouter())
	mux.Handle("/admin/v1/lectures", lecturesRouter)
	mux.Handle("/admin/v1/lectures/", lecturesRouter)

	reconsRouter := s.authMiddleware(s.reconciliationsRouter())
	mux.Handle("/admin/v1/reconciliations", reconsRouter)
	mux.Handle("/admin/v1/reconciliations/", reconsRouter)
}

// authMiddleware provides Bearer token authentication for the admin API.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		if tokenParts[1] != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) codesRouter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			codesGenerateHandler(s.codeUC)(w, r)
		case http.MethodGet:
			codesListHandler(s.codeUC)(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// packagesRouter acts as a sub-router for /admin/v1/packages
func (s *Server) packagesRouter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/admin/v1/packages")
		path = strings.Trim(path, "/")

		if path == "" {
			switch r.Method {
			case http.MethodGet:
				packagesListHandler(s.packageUC)(w, r)
			case http.MethodPost:
				packagesCreateHandler(s.packageUC)(w, r)
			default:
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		// Route /admin/v1/packages/{id}
		switch r.Method {
		case http.MethodGet:
			packageGetHandler(s.packageUC, path)(w, r)
		case http.MethodPut:
			packagesUpdateHandler(s.packageUC, path)(w, r)
		case http.MethodDelete:
			packagesDeleteHandler(s.packageUC, path)(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

func (s *Server) lecturesRouter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/admin/v1/lectures")
		path = strings.Trim(path, "/")

		if path == "" {
			switch r.Method {
			case http.MethodGet:
				lecturesListHandler(s.lectureUC)(w, r)
			case http.MethodPost:
				lecturesCreateHandler(s.lectureUC)(w, r)
			default:
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
			return
		}

		// Route /admin/v1/lectures/{id}
		if r.Method == http.MethodDelete {
			lecturesDeleteHandler(s.lectureUC, path)(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
}

func (s *Server) reconciliationsRouter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/admin/v1/reconciliations")
		path = strings.Trim(path, "/")

		if path == "" && r.Method == http.MethodGet {
			reconciliationsListHandler(s.reconUC)(w, r)
			return
		}

		// Route /admin/v1/reconciliations/{id}/resolve
		if strings.HasSuffix(path, "/resolve") && r.Method == http.MethodPost {
			id := strings.TrimSuffix(path, "/resolve")
			reconciliationResolveHandler(s.reconUC, id)(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
}
