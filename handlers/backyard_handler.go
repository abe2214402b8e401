package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/glaucius/back-to-the-loop/middleware"
	"github.com/glaucius/back-to-the-loop/models"
	"github.com/glaucius/back-to-the-loop/repositories"
	"github.com/glaucius/back-to-the-loop/services"
)

type BackyardHandler struct {
	backyardService services.BackyardService
}

func NewBackyardHandler(backyardService services.BackyardService) *BackyardHandler {
	return &BackyardHandler{backyardService: backyardService}
}

type createBackyardRequest struct {
	OrganizacaoID int `json:"organizacao_id"`
	services.CreateBackyardInput
}

// CreateHandler handles POST /backyards
func (h *BackyardHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required to create backyard")
		return
	}

	var input createBackyardRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.OrganizacaoID <= 0 {
		badRequestResponse(w, r, errors.New("organizacao_id is required"))
		return
	}

	backyard, err := h.backyardService.Create(r.Context(), input.OrganizacaoID, input.CreateBackyardInput)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"backyard": backyard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /backyards/{backyardID}
func (h *BackyardHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "backyardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	backyard, err := h.backyardService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"backyard": backyard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /backyards
func (h *BackyardHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	var filter repositories.ListBackyardsFilter
	query := r.URL.Query()

	if orgIDStr := query.Get("organizacao_id"); orgIDStr != "" {
		if id, err := strconv.Atoi(orgIDStr); err == nil && id > 0 {
			filter.OrganizacaoID = &id
		} else {
			badRequestResponse(w, r, errors.New("invalid organizacao_id query parameter"))
			return
		}
	}
	if statusStr := query.Get("status"); statusStr != "" {
		status := models.BackyardStatus(statusStr)
		if !status.Valid() {
			badRequestResponse(w, r, fmt.Errorf("invalid status query parameter: %q", statusStr))
			return
		}
		filter.Status = &status
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		} else {
			badRequestResponse(w, r, errors.New("invalid limit query parameter"))
			return
		}
	} else {
		filter.Limit = 20
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		} else {
			badRequestResponse(w, r, errors.New("invalid offset query parameter"))
			return
		}
	}

	backyards, err := h.backyardService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"backyards": backyards}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler handles PUT /backyards/{backyardID}
func (h *BackyardHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "backyardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateBackyardInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	backyard, err := h.backyardService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"backyard": backyard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadImageHandler handles POST /backyards/{backyardID}/images/{kind}
func (h *BackyardHandler) UploadImageHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "backyardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	kind, err := getKindFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get image file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for image"))
		return
	}

	backyard, err := h.backyardService.UploadImage(r.Context(), id, kind, file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"backyard": backyard}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /backyards/{backyardID}
func (h *BackyardHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "backyardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.backyardService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
