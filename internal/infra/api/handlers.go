package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	red "edu-platform/internal/infra/redis"
	"edu-platform/internal/usecase"
)

// ===== request / response shapes =====

type registerRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

type loginRequest struct {
	Phone string `json:"phone"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type codeRequest struct {
	Code      string `json:"code"`
	PackageID string `json:"package_id"`
}

type walletPurchaseRequest struct {
	PackageID string `json:"package_id"`
	Price     int64  `json:"price"`
}

type packageDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PriceToman   int64  `json:"price_toman"`
	DurationDays int    `json:"duration_days"`
	Grade        string `json:"grade"`
}

type codeDTO struct {
	Code      string     `json:"code"`
	PackageID string     `json:"package_id"`
	Grade     string     `json:"grade"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type entitlementDTO struct {
	ID          string    `json:"id"`
	PackageID   string    `json:"package_id"`
	Source      string    `json:"source"`
	PurchasedAt time.Time `json:"purchased_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type lectureDTO struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Kind     string `json:"kind"`
	URL      string `json:"url"`
	Position int    `json:"position"`
}

type walletEntryDTO struct {
	ID          string    `json:"id"`
	AmountToman int64     `json:"amount_toman"`
	Kind        string    `json:"kind"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPackageDTO(p *model.Package) packageDTO {
	return packageDTO{
		ID:           p.ID,
		Name:         p.Name,
		PriceToman:   p.PriceToman,
		DurationDays: p.DurationDays,
		Grade:        p.Grade,
	}
}

func toEntitlementDTO(e *model.Entitlement) entitlementDTO {
	return entitlementDTO{
		ID:          e.ID,
		PackageID:   e.PackageID,
		Source:      string(e.Source),
		PurchasedAt: e.PurchasedAt,
		ExpiresAt:   e.ExpiresAt,
	}
}

// ===== handlers =====

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := s.userUC.Register(r.Context(), req.Phone, req.Name, req.Grade)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := s.sessions.Mint(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"user_id": user.ID,
		"token":   token,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Phone == "" {
		writeErrorKind(w, http.StatusBadRequest, "invalid_argument", "phone is required")
		return
	}
	user, err := s.userUC.GetByPhone(r.Context(), req.Phone)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := s.sessions.Mint(user.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	user, err := s.userUC.Get(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	pkgs, err := s.packageUC.ListByGrade(r.Context(), user.Grade)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]packageDTO, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, toPackageDTO(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"packages": out})
}

func (s *Server) handleValidateCode(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	code, err := s.redeemUC.ValidateCode(r.Context(), UserID(r.Context()), req.Code, req.PackageID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"code": codeDTO{
			Code:      code.Code,
			PackageID: code.PackageID,
			Grade:     code.Grade,
			ExpiresAt: code.ExpiresAt,
		},
	})
}

func (s *Server) handleRedeemCode(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	if s.limiter != nil {
		ok, err := s.limiter.Allow(r.Context(), red.RedeemAttemptKey(userID), s.redeemLimit, s.redeemWindow)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
		} else if !ok {
			s.writeError(w, r, domain.ErrRateLimited)
			return
		}
	}
	var req codeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ent, err := s.redeemUC.RedeemWithCode(r.Context(), userID, req.Code, req.PackageID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"entitlement": toEntitlementDTO(ent),
	})
}

func (s *Server) handleWalletPurchase(w http.ResponseWriter, r *http.Request) {
	var req walletPurchaseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ent, balance, err := s.redeemUC.PurchaseWithWallet(r.Context(), UserID(r.Context()), req.PackageID, req.Price)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"entitlement": toEntitlementDTO(ent),
		"new_balance": balance,
	})
}

func (s *Server) handleMyEntitlements(w http.ResponseWriter, r *http.Request) {
	ents, err := s.entUC.ListForUser(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]entitlementDTO, 0, len(ents))
	for _, e := range ents {
		out = append(out, toEntitlementDTO(e))
	}
	writeJSON(w, http.StatusOK, map[string]any{"entitlements": out})
}

func (s *Server) handleMyWallet(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	wallet, err := s.walletUC.Balance(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	history, err := s.walletUC.History(r.Context(), userID, 50)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	entries := make([]walletEntryDTO, 0, len(history))
	for _, e := range history {
		entries = append(entries, walletEntryDTO{
			ID:          e.ID,
			AmountToman: e.AmountToman,
			Kind:        string(e.Kind),
			Note:        e.Note,
			CreatedAt:   e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance_toman": wallet.BalanceToman,
		"history":       entries,
	})
}

func (s *Server) handleLectures(w http.ResponseWriter, r *http.Request) {
	packageID := chi.URLParam(r, "id")
	lectures, err := s.lectureUC.LecturesFor(r.Context(), UserID(r.Context()), packageID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			writeErrorKind(w, http.StatusForbidden, "not_entitled", "no active entitlement for this package")
			return
		}
		s.writeError(w, r, err)
		return
	}
	out := make([]lectureDTO, 0, len(lectures))
	for _, l := range lectures {
		out = append(out, lectureDTO{
			ID:       l.ID,
			Title:    l.Title,
			Kind:     string(l.Kind),
			URL:      l.URL,
			Position: l.Position,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"lectures": out})
}

// ===== JSON plumbing and error mapping =====

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorKind(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`

	// Only set for insufficient-balance failures.
	ShortfallToman int64 `json:"shortfall_toman,omitempty"`
}

func writeErrorKind(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   errorBody{Kind: kind, Message: msg},
	})
}

// writeError is the single place domain errors turn into HTTP responses, so
// validate and redeem can never drift apart in what they report.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var insufficient *usecase.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error": errorBody{
				Kind:           "insufficient_balance",
				Message:        "wallet balance is too low for this purchase",
				ShortfallToman: insufficient.Shortfall,
			},
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrCodeNotFound):
		writeErrorKind(w, http.StatusNotFound, "code_not_found", "code does not exist")
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		writeErrorKind(w, http.StatusBadRequest, "code_used", "code has already been used")
	case errors.Is(err, domain.ErrCodeExpired):
		writeErrorKind(w, http.StatusBadRequest, "code_expired", "code has expired")
	case errors.Is(err, domain.ErrCodePackageMismatch):
		writeErrorKind(w, http.StatusBadRequest, "code_package_mismatch", "code belongs to a different package")
	case errors.Is(err, domain.ErrGradeMismatch):
		writeErrorKind(w, http.StatusBadRequest, "grade_mismatch", "package is not available for your grade")
	case errors.Is(err, domain.ErrPackageInactive):
		writeErrorKind(w, http.StatusBadRequest, "package_inactive", "package is no longer available")
	case errors.Is(err, domain.ErrAlreadyEntitled):
		writeErrorKind(w, http.StatusBadRequest, "already_entitled", "you already own this package")
	case errors.Is(err, domain.ErrInsufficientBalance):
		writeErrorKind(w, http.StatusBadRequest, "insufficient_balance", "wallet balance is too low for this purchase")
	case errors.Is(err, domain.ErrWalletNotFound):
		writeErrorKind(w, http.StatusNotFound, "wallet_not_found", "no wallet for this user")
	case errors.Is(err, domain.ErrRateLimited):
		writeErrorKind(w, http.StatusTooManyRequests, "rate_limited", "too many attempts, try again later")
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorKind(w, http.StatusUnauthorized, "unauthenticated", "authentication required")
	case errors.Is(err, domain.ErrInvalidArgument):
		writeErrorKind(w, http.StatusBadRequest, "invalid_argument", "invalid request")
	case errors.Is(err, domain.ErrNotFound):
		writeErrorKind(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeErrorKind(w, http.StatusConflict, "already_exists", "resource already exists")
	default:
		// Covers ErrInconsistentState too. The details stay in logs and the
		// reconciliation queue; the client only learns to retry.
		l := s.log.With().Str("path", r.URL.Path).Logger()
		l.Error().Err(err).Msg("request failed")
		writeErrorKind(w, http.StatusInternalServerError, "internal", "something went wrong, please try again later")
	}
}
