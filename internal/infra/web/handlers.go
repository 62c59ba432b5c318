package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/usecase"
)

// statsHandler serves the admin dashboard snapshot.
func statsHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		totals, err := statsUC.Totals(r.Context())
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}

		response := struct {
			TotalUsers          int            `json:"total_users"`
			ActiveByPackage     map[string]int `json:"active_entitlements_by_package"`
			WalletRevenueToman  int64          `json:"wallet_revenue_toman"`
			CodesIssued         int            `json:"codes_issued"`
			CodesUsed           int            `json:"codes_used"`
			OpenReconciliations int            `json:"open_reconciliations"`
		}{
			TotalUsers:          totals.Users,
			ActiveByPackage:     totals.ActiveByPackage,
			WalletRevenueToman:  totals.WalletRevenueToman,
			CodesIssued:         totals.CodesIssued,
			CodesUsed:           totals.CodesUsed,
			OpenReconciliations: totals.OpenReconciliations,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

// usersListHandler returns a paginated list of users.
// It accepts 'offset' and 'limit' query parameters.
func usersListHandler(userUC usecase.UserUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}

		users, err := userUC.List(ctx, offset, limit)
		if err != nil {
			http.Error(w, "Failed to list users", http.StatusInternalServerError)
			return
		}

		total, err := userUC.Count(ctx)
		if err != nil {
			http.Error(w, "Failed to count users", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data   []*model.User `json:"data"`
			Total  int           `json:"total"`
			Limit  int           `json:"limit"`
			Offset int           `json:"offset"`
		}{
			Data:   users,
			Total:  total,
			Limit:  limit,
			Offset: offset,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

type codeGenerateRequest struct {
	PackageID string     `json:"package_id"`
	Grade     string     `json:"grade"`
	Count     int        `json:"count"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// codesGenerateHandler mints a batch of single-use codes for a package.
func codesGenerateHandler(codeUC usecase.CodeAdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req codeGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		codes, err := codeUC.Generate(r.Context(), req.PackageID, req.Grade, req.Count, req.ExpiresAt)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) || errors.Is(err, domain.ErrGradeMismatch) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Package not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to generate codes", http.StatusInternalServerError)
			return
		}

		// The operator needs the plaintext codes exactly once, at mint time.
		out := make([]string, 0, len(codes))
		for _, c := range codes {
			out = append(out, c.Code)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(struct {
			Codes []string `json:"codes"`
		}{Codes: out})
	}
}

func codesListHandler(codeUC usecase.CodeAdminUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 {
			limit = 100
		}
		if offset < 0 {
			offset = 0
		}

		codes, err := codeUC.List(ctx, offset, limit)
		if err != nil {
			http.Error(w, "Failed to list codes", http.StatusInternalServerError)
			return
		}

		total, used, err := codeUC.Stats(ctx)
		if err != nil {
			http.Error(w, "Failed to count codes", http.StatusInternalServerError)
			return
		}

		response := struct {
			Data   []*model.Code `json:"data"`
			Total  int           `json:"total"`
			Used   int           `json:"used"`
			Limit  int           `json:"limit"`
			Offset int           `json:"offset"`
		}{
			Data:   codes,
			Total:  total,
			Used:   used,
			Limit:  limit,
			Offset: offset,
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)
	}
}

type packageCreateRequest struct {
	Name         string `json:"name"`
	PriceToman   int64  `json:"price_toman"`
	DurationDays int    `json:"duration_days"`
	Grade        string `json:"grade"`
}

func packagesCreateHandler(packageUC usecase.PackageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req packageCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		pkg, err := packageUC.Create(r.Context(), req.Name, req.PriceToman, req.DurationDays, req.Grade)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to create package", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(pkg)
	}
}

func packagesListHandler(packageUC usecase.PackageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pkgs, err := packageUC.ListAll(r.Context())
		if err != nil {
			http.Error(w, "Failed to list packages", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(struct {
			Data []*model.Package `json:"data"`
		}{Data: pkgs})
	}
}

func packageGetHandler(packageUC usecase.PackageUseCase, id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pkg, err := packageUC.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Package not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to get package", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(pkg)
	}
}

type packageUpdateRequest struct {
	Name         *string `json:"name,omitempty"`
	PriceToman   *int64  `json:"price_toman,omitempty"`
	DurationDays *int    `json:"duration_days,omitempty"`
	Grade        *string `json:"grade,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

// packagesUpdateHandler applies a partial update. Only fields present in the
// body change.
func packagesUpdateHandler(packageUC usecase.PackageUseCase, id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req packageUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		pkg, err := packageUC.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Package not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to get package", http.StatusInternalServerError)
			return
		}

		if req.Name != nil {
			pkg.Name = *req.Name
		}
		if req.PriceToman != nil {
			pkg.PriceToman = *req.PriceToman
		}
		if req.DurationDays != nil {
			pkg.DurationDays = *req.DurationDays
		}
		if req.Grade != nil {
			pkg.Grade = *req.Grade
		}
		if req.Active != nil {
			pkg.Active = *req.Active
		}

		if err := packageUC.Update(r.Context(), pkg); err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to update package", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(pkg)
	}
}

func packagesDeleteHandler(packageUC usecase.PackageUseCase, id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := packageUC.Delete(r.Context(), id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Package not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to delete package", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type lectureCreateRequest struct {
	PackageID string `json:"package_id"`
	Title     string `json:"title"`
	Kind      string `json:"kind"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
}

func lecturesCreateHandler(lectureUC usecase.LectureUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lectureCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		lecture, err := lectureUC.Create(r.Context(), req.PackageID, req.Title, model.LectureKind(req.Kind), req.URL, req.Position)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Package not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to create lecture", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(lecture)
	}
}

// lecturesListHandler requires a 'package_id' query parameter.
func lecturesListHandler(lectureUC usecase.LectureUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		packageID := r.URL.Query().Get("package_id")
		if packageID == "" {
			http.Error(w, "package_id is required", http.StatusBadRequest)
			return
		}

		lectures, err := lectureUC.ListByPackage(r.Context(), packageID)
		if err != nil {
			http.Error(w, "Failed to list lectures", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(struct {
			Data []*model.Lecture `json:"data"`
		}{Data: lectures})
	}
}

func lecturesDeleteHandler(lectureUC usecase.LectureUseCase, id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := lectureUC.Delete(r.Context(), id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Lecture not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to delete lecture", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type walletTopUpRequest struct {
	UserID      string `json:"user_id"`
	AmountToman int64  `json:"amount_toman"`
	Note        string `json:"note"`
}

func walletTopUpHandler(walletUC usecase.WalletUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req walletTopUpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		wallet, err := walletUC.TopUp(r.Context(), req.UserID, req.AmountToman, req.Note)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidArgument) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, domain.ErrWalletNotFound) {
				http.Error(w, "Wallet not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to top up wallet", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(struct {
			UserID       string `json:"user_id"`
			BalanceToman int64  `json:"balance_toman"`
		}{UserID: wallet.UserID, BalanceToman: wallet.BalanceToman})
	}
}

func reconciliationsListHandler(reconUC usecase.ReconciliationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recons, err := reconUC.ListOpen(r.Context())
		if err != nil {
			http.Error(w, "Failed to list reconciliations", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(struct {
			Data []*model.Reconciliation `json:"data"`
		}{Data: recons})
	}
}

func reconciliationResolveHandler(reconUC usecase.ReconciliationUseCase, id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := reconUC.Resolve(r.Context(), id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Reconciliation not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to resolve reconciliation", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
