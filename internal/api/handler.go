// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github-handler/internal/database"
	"github-handler/internal/model"
)

// UserFetcher looks up a single GitHub user profile.
type UserFetcher interface {
	GetUserDetails(ctx context.Context, username string) (*model.GitHubUser, error)
}

// ContributorAggregator ranks the commit authors of a repository.
type ContributorAggregator interface {
	AggregateContributors(ctx context.Context, owner, repo string) ([]model.Contributor, error)
}

// Handler is the container for API dependencies.
type Handler struct {
	db           database.Querier
	users        UserFetcher
	contributors ContributorAggregator
	logger       *slog.Logger
}

type syncStatusResponse struct {
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	SyncResult    bool   `json:"sync_result"`
	TotalPrograms int64  `json:"total_programs"`
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db database.Querier, users UserFetcher, contributors ContributorAggregator, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:           db,
		users:        users,
		contributors: contributors,
		logger:       logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/users/{username}", h.getUser)
		r.Get("/repos/{owner}/{name}/contributors", h.getContributors)
		r.Get("/sync/status", h.getSyncStatus)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getUser proxies a user profile lookup to GitHub.
// GET /v1/users/{username}
func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.users.GetUserDetails(r.Context(), username)
	if err != nil {
		h.logger.Error("Failed to get user details", "username", username, "error", err)
		respondWithError(w, http.StatusBadGateway, "Failed to fetch user from GitHub")
		return
	}

	respondWithJSON(w, http.StatusOK, user)
}

// getContributors aggregates commit authors for a repository.
// GET /v1/repos/{owner}/{name}/contributors?limit=N
func (h *Handler) getContributors(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	name := chi.URLParam(r, "name")

	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "10" // Default limit
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 100 {
		respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter. Must be an integer between 1 and 100.")
		return
	}

	contributors, err := h.contributors.AggregateContributors(r.Context(), owner, name)
	if err != nil {
		h.logger.Error("Failed to aggregate contributors", "owner", owner, "repo", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(contributors) > limit {
		contributors = contributors[:limit]
	}

	respondWithJSON(w, http.StatusOK, contributors)
}

// getSyncStatus reports whether a sync window completed.
// GET /v1/sync/status?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handler) getSyncStatus(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if !validDate(start) || !validDate(end) {
		respondWithError(w, http.StatusBadRequest, "Parameters 'start' and 'end' must be dates formatted as YYYY-MM-DD.")
		return
	}

	status, err := h.db.GetSyncStatus(r.Context(), start, end)
	if err != nil {
		h.logger.Error("Failed to get sync status", "start", start, "end", end, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if status == nil {
		respondWithError(w, http.StatusNotFound, "Sync window not found")
		return
	}

	total, err := h.db.CountPrograms(r.Context())
	if err != nil {
		h.logger.Error("Failed to count programs", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, syncStatusResponse{
		StartDate:     status.StartDate,
		EndDate:       status.EndDate,
		SyncResult:    status.SyncResult,
		TotalPrograms: total,
	})
}

func validDate(s string) bool {
	_, err := time.Parse(model.DateLayout, s)
	return err == nil
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
