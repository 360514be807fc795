package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dom/college-tracker/internal/api/middleware"
	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type ApplicationHandler struct {
	applicationService *service.ApplicationService
	validate           *validator.Validate
}

func NewApplicationHandler(applicationService *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
		validate:           validator.New(),
	}
}

type CreateApplicationRequest struct {
	UniversityID    string  `json:"universityId" validate:"required,uuid"`
	Program         string  `json:"program" validate:"required"`
	ApplicationType string  `json:"applicationType" validate:"omitempty,oneof=early_decision early_action regular_decision rolling_admission"`
	Status          string  `json:"status" validate:"omitempty,oneof=not_started in_progress submitted"`
	Deadline        string  `json:"deadline" validate:"required"`
	Notes           *string `json:"notes"`
}

type UpdateStatusRequest struct {
	Status       string  `json:"status" validate:"required,oneof=not_started in_progress submitted under_review decided"`
	DecisionType *string `json:"decisionType" validate:"omitempty,oneof=accepted rejected waitlisted"`
	DecisionDate *string `json:"decisionDate"`
}

type CreateRequirementRequest struct {
	RequirementType string  `json:"requirementType" validate:"required"`
	Status          string  `json:"status" validate:"omitempty,oneof=not_started in_progress completed"`
	Deadline        *string `json:"deadline"`
	Notes           *string `json:"notes"`
}

type UpdateRequirementRequest struct {
	Status string  `json:"status" validate:"required,oneof=not_started in_progress completed"`
	Notes  *string `json:"notes"`
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates (UTC midnight).
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := parseDate(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	deadline, err := parseDate(req.Deadline)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid deadline")
		return
	}

	app, err := h.applicationService.Create(r.Context(), userID, service.CreateApplicationInput{
		UniversityID:    uuid.MustParse(req.UniversityID),
		Program:         req.Program,
		ApplicationType: domain.ApplicationType(req.ApplicationType),
		Status:          domain.ApplicationStatus(req.Status),
		Deadline:        deadline,
		Notes:           req.Notes,
	})
	if err != nil {
		h.handleError(w, "Create", err)
		return
	}

	writeJSON(w, http.StatusCreated, app)
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	apps, err := h.applicationService.List(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		h.handleError(w, "List", err)
		return
	}

	writeJSON(w, http.StatusOK, apps)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	app, err := h.applicationService.Get(r.Context(), userID, id)
	if err != nil {
		h.handleError(w, "Get", err)
		return
	}

	writeJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	decisionDate, err := parseOptionalDate(req.DecisionDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid decision date")
		return
	}

	input := service.UpdateStatusInput{
		Status:       domain.ApplicationStatus(req.Status),
		DecisionDate: decisionDate,
	}
	if req.DecisionType != nil {
		decision := domain.DecisionType(*req.DecisionType)
		input.DecisionType = &decision
	}

	app, err := h.applicationService.UpdateStatus(r.Context(), userID, id, input)
	if err != nil {
		h.handleError(w, "UpdateStatus", err)
		return
	}

	writeJSON(w, http.StatusOK, app)
}

func (h *ApplicationHandler) AddRequirement(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}

	var req CreateRequirementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	deadline, err := parseOptionalDate(req.Deadline)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid deadline")
		return
	}

	requirement, err := h.applicationService.AddRequirement(r.Context(), userID, id, service.AddRequirementInput{
		RequirementType: req.RequirementType,
		Status:          domain.RequirementStatus(req.Status),
		Deadline:        deadline,
		Notes:           req.Notes,
	})
	if err != nil {
		h.handleError(w, "AddRequirement", err)
		return
	}

	writeJSON(w, http.StatusCreated, requirement)
}

func (h *ApplicationHandler) UpdateRequirement(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid application ID")
		return
	}
	requirementID, err := uuid.Parse(chi.URLParam(r, "requirementId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid requirement ID")
		return
	}

	var req UpdateRequirementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	requirement, err := h.applicationService.UpdateRequirement(r.Context(), userID, id, requirementID, service.UpdateRequirementInput{
		Status: domain.RequirementStatus(req.Status),
		Notes:  req.Notes,
	})
	if err != nil {
		h.handleError(w, "UpdateRequirement", err)
		return
	}

	writeJSON(w, http.StatusOK, requirement)
}

// Deadlines returns the calendar for ?year=&month=, defaulting to the current month.
func (h *ApplicationHandler) Deadlines(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	now := time.Now().UTC()
	year, month := now.Year(), now.Month()

	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year")
			return
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month")
			return
		}
		month = time.Month(parsed)
	}

	deadlines, err := h.applicationService.DeadlinesForMonth(r.Context(), userID, year, month, time.UTC)
	if err != nil {
		h.handleError(w, "Deadlines", err)
		return
	}

	writeJSON(w, http.StatusOK, deadlines)
}

func (h *ApplicationHandler) handleError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrApplicationNotFound):
		writeError(w, http.StatusNotFound, "Application not found")
	case errors.Is(err, service.ErrRequirementNotFound):
		writeError(w, http.StatusNotFound, "Requirement not found")
	case errors.Is(err, service.ErrUniversityNotFound):
		writeError(w, http.StatusNotFound, "University not found")
	default:
		log.Printf("ERROR [handlers.Application.%s] %v", op, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
