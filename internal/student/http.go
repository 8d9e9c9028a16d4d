package student

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/EngSenku/ensat/internal/events"
	"github.com/EngSenku/ensat/internal/httputil"
	"github.com/EngSenku/ensat/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *metrics.Metrics
	events   *events.Service
}

func NewHandler(service Service, logger *slog.Logger, m *metrics.Metrics, ev *events.Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
		metrics:  m,
		events:   ev,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/students", h.CreateStudent)
	router.Get("/students", h.GetAllStudents)
	router.Get("/students/{id}", h.GetStudent)
	router.Put("/students/{id}", h.UpdateStudent)
	router.Delete("/students/{id}", h.DeleteStudent)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "creating student", "email", req.Email)

	created, err := h.service.CreateStudent(r.Context(), &Student{
		Name:  req.Name,
		Email: req.Email,
		Major: req.Major,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.Roster.RecordStudentCreated(r.Context())
	h.events.StudentCreated(r.Context(), events.StudentPayload{
		ID:    created.ID,
		Name:  created.Name,
		Email: created.Email,
		Major: created.Major,
	})

	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetAllStudents(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "fetching all students")

	students, err := h.service.GetAllStudents(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.Roster.RecordRosterViewed(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student ID")
		return
	}

	h.logger.InfoContext(r.Context(), "fetching student by ID", "id", id)

	student, err := h.service.GetStudentByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student ID")
		return
	}

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	updated := &Student{
		ID:    id,
		Name:  req.Name,
		Email: req.Email,
		Major: req.Major,
	}

	h.logger.InfoContext(r.Context(), "updating student", "id", id, "email", req.Email)

	if err := h.service.UpdateStudent(r.Context(), updated); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.Roster.RecordStudentUpdated(r.Context())
	h.events.StudentUpdated(r.Context(), events.StudentPayload{
		ID:    updated.ID,
		Name:  updated.Name,
		Email: updated.Email,
		Major: updated.Major,
	})

	httputil.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student ID")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting student", "id", id)

	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.Roster.RecordStudentDeleted(r.Context())
	h.events.StudentDeleted(r.Context(), events.StudentPayload{ID: id})

	httputil.RespondWithMessage(w, http.StatusOK, "student deleted")
}

// decodeRequest decodes and validates the allow-listed student fields.
// Responds with field-level detail on validation failure.
func (h *Handler) decodeRequest(w http.ResponseWriter, r *http.Request) (Request, bool) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}

	if err := h.validate.Struct(req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return req, false
	}

	return req, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrStudentNotFound) {
		h.logger.Info("student not found")
		httputil.RespondWithError(w, http.StatusNotFound, "student not found")
		return
	}
	if errors.Is(err, ErrInvalidInput) {
		h.logger.Info("invalid input")
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.ErrorContext(r.Context(), "internal error", "error", err)
	httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}
