package handlers

import (
	"errors"
	"net/http"

	"github.com/glaucius/back-to-the-loop/models"
	"github.com/glaucius/back-to-the-loop/services"
)

// RaceHandler exposes the loop lifecycle engine to the backoffice. Every
// route here sits behind the organizer/admin authorization group.
type RaceHandler struct {
	raceService services.RaceService
}

func NewRaceHandler(raceService services.RaceService) *RaceHandler {
	return &RaceHandler{raceService: raceService}
}

// StartEventHandler handles POST /backyards/{backyardID}/start
func (h *RaceHandler) StartEventHandler(w http.ResponseWriter, r *http.Request) {
	backyardID, err := getIDFromURL(r, "backyardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.raceService.StartEvent(r.Context(), backyardID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StartLoopHandler handles POST /loops/{loopID}/start
func (h *RaceHandler) StartLoopHandler(w http.ResponseWriter, r *http.Request) {
	loopID, err := getIDFromURL(r, "loopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	loop, err := h.raceService.StartLoop(r.Context(), loopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"loop": loop}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CompleteAthleteLoopHandler handles POST /atleta-loops/{atletaLoopID}/complete
func (h *RaceHandler) CompleteAthleteLoopHandler(w http.ResponseWriter, r *http.Request) {
	atletaLoopID, err := getIDFromURL(r, "atletaLoopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CompleteAthleteLoopInput
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	result, err := h.raceService.CompleteAthleteLoop(r.Context(), atletaLoopID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EliminateAthleteHandler handles POST /atleta-loops/{atletaLoopID}/eliminate
func (h *RaceHandler) EliminateAthleteHandler(w http.ResponseWriter, r *http.Request) {
	atletaLoopID, err := getIDFromURL(r, "atletaLoopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	atletaLoop, err := h.raceService.EliminateAthlete(r.Context(), atletaLoopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"atleta_loop": atletaLoop}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EliminateByTimeHandler handles POST /loops/{loopID}/eliminate-by-time
func (h *RaceHandler) EliminateByTimeHandler(w http.ResponseWriter, r *http.Request) {
	loopID, err := getIDFromURL(r, "loopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	eliminated, err := h.raceService.EliminateAthletesByTime(r.Context(), loopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"eliminated": eliminated}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AdvanceLoopHandler handles POST /loops/{loopID}/advance
func (h *RaceHandler) AdvanceLoopHandler(w http.ResponseWriter, r *http.Request) {
	loopID, err := getIDFromURL(r, "loopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.raceService.AdvanceLoop(r.Context(), loopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type changeStatusRequest struct {
	Status      string `json:"status"`
	Observacoes string `json:"observacoes,omitempty"`
}

// ChangeStatusHandler handles PATCH /atleta-loops/{atletaLoopID}/status
func (h *RaceHandler) ChangeStatusHandler(w http.ResponseWriter, r *http.Request) {
	atletaLoopID, err := getIDFromURL(r, "atletaLoopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input changeStatusRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Status == "" {
		badRequestResponse(w, r, errors.New("status is required"))
		return
	}

	atletaLoop, err := h.raceService.ChangeAthleteStatus(r.Context(), atletaLoopID, models.AtletaLoopStatus(input.Status), input.Observacoes)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"atleta_loop": atletaLoop}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type editTimeRequest struct {
	TempoTotal  string `json:"tempo_total"`
	Observacoes string `json:"observacoes,omitempty"`
}

// EditTimeHandler handles PATCH /atleta-loops/{atletaLoopID}/time
func (h *RaceHandler) EditTimeHandler(w http.ResponseWriter, r *http.Request) {
	atletaLoopID, err := getIDFromURL(r, "atletaLoopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input editTimeRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TempoTotal == "" {
		badRequestResponse(w, r, errors.New("tempo_total is required"))
		return
	}

	atletaLoop, err := h.raceService.EditTime(r.Context(), atletaLoopID, input.TempoTotal, input.Observacoes)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"atleta_loop": atletaLoop}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
