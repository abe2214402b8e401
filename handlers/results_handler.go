package handlers

import (
	"net/http"

	"github.com/glaucius/back-to-the-loop/services"
)

type ResultsHandler struct {
	resultsService services.ResultsService
}

func NewResultsHandler(resultsService services.ResultsService) *ResultsHandler {
	return &ResultsHandler{resultsService: resultsService}
}

// LiveViewHandler handles GET /backyards/{backyardID}/live
func (h *ResultsHandler) LiveViewHandler(w http.ResponseWriter, r *http.Request) {
	backyardID, err := getIDFromURL(r, "backyardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.resultsService.GetLiveView(r.Context(), backyardID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LoopResultsHandler handles GET /loops/{loopID}/results
func (h *ResultsHandler) LoopResultsHandler(w http.ResponseWriter, r *http.Request) {
	loopID, err := getIDFromURL(r, "loopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	loop, atletas, err := h.resultsService.GetLoopResults(r.Context(), loopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"loop": loop, "atletas": atletas}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
