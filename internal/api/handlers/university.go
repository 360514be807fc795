package handlers

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dom/college-tracker/internal/domain"
	"github.com/dom/college-tracker/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type UniversityHandler struct {
	universityService *service.UniversityService
}

func NewUniversityHandler(universityService *service.UniversityService) *UniversityHandler {
	return &UniversityHandler{universityService: universityService}
}

func (h *UniversityHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, err := parseUniversityFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	universities, err := h.universityService.Search(r.Context(), filter)
	if err != nil {
		log.Printf("ERROR [handlers.University.Search] %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, universities)
}

func (h *UniversityHandler) Filters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.universityService.FilterOptions(r.Context())
	if err != nil {
		log.Printf("ERROR [handlers.University.Filters] %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, opts)
}

func (h *UniversityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid university ID")
		return
	}

	university, err := h.universityService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUniversityNotFound) {
			writeError(w, http.StatusNotFound, "University not found")
			return
		}
		log.Printf("ERROR [handlers.University.Get] %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, university)
}

func parseUniversityFilter(q url.Values) (domain.UniversityFilter, error) {
	filter := domain.UniversityFilter{
		Query:              q.Get("q"),
		Countries:          q["country"],
		States:             q["state"],
		Majors:             q["major"],
		ApplicationSystems: q["system"],
	}

	var err error
	if filter.MinAcceptance, err = parseFloatParam(q, "minAcceptance"); err != nil {
		return filter, err
	}
	if filter.MaxAcceptance, err = parseFloatParam(q, "maxAcceptance"); err != nil {
		return filter, err
	}
	if filter.MinRanking, err = parseIntParam(q, "minRanking"); err != nil {
		return filter, err
	}
	if filter.MaxRanking, err = parseIntParam(q, "maxRanking"); err != nil {
		return filter, err
	}

	limit, err := parseIntParam(q, "limit")
	if err != nil {
		return filter, err
	}
	if limit != nil {
		filter.Limit = *limit
	}
	return filter, nil
}

func parseFloatParam(q url.Values, name string) (*float64, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, errors.New("invalid " + name)
	}
	return &f, nil
}

func parseIntParam(q url.Values, name string) (*int, error) {
	v := q.Get(name)
	if v == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return nil, errors.New("invalid " + name)
	}
	return &i, nil
}
