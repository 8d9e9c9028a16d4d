package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/EngSenku/ensat/internal/httputil"
	"github.com/EngSenku/ensat/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
	metrics   *metrics.Metrics
}

func NewHandler(service *Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		validator: validator.New(),
		metrics:   m,
	}
}

// RegisterRoutes mounts the unauthenticated auth endpoints.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.Login)
}

// RegisterProtectedRoutes mounts the endpoints that need a live session.
func (h *Handler) RegisterProtectedRoutes(router chi.Router) {
	router.Post("/auth/logout", h.Logout)
	router.Post("/auth/logout-all", h.LogoutAll)
}

// Login exchanges a Google identity assertion for a session token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	assertion := IdentityAssertion{
		DisplayName:       req.DisplayName,
		Email:             req.Email,
		ProviderSubjectID: req.ProviderSubjectID,
	}
	if req.Credential != "" {
		parsed, err := ParseCredential(req.Credential)
		if err != nil {
			h.logger.Warn("unparseable credential", "error", err)
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		assertion = parsed
	}

	resp, err := h.service.Login(r.Context(), assertion)
	if err != nil {
		if errors.Is(err, ErrInvalidAssertion) {
			httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("login failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user logged in", "user_id", resp.User.ID, "email", resp.User.Email)
	h.metrics.Roster.RecordLogin(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, resp)
}

// Logout revokes the session token of the current request
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := BearerToken(r)

	if err := h.service.Logout(r.Context(), token); err != nil {
		h.logger.Error("logout failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user logged out")
	h.metrics.Roster.RecordLogout(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll revokes every session of the current user, including the one
// authenticating this request
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.service.LogoutAll(r.Context(), user.ID); err != nil {
		h.logger.Error("logout-all failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("all user sessions revoked", "user_id", user.ID)
	h.metrics.Roster.RecordLogout(r.Context())

	w.WriteHeader(http.StatusNoContent)
}
