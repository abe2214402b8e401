package handlers

import (
	"net/http"

	"github.com/glaucius/back-to-the-loop/middleware"
	"github.com/glaucius/back-to-the-loop/services"
)

type InscricaoHandler struct {
	inscricaoService services.InscricaoService
	bibService       services.BibService
}

func NewInscricaoHandler(inscricaoService services.InscricaoService, bibService services.BibService) *InscricaoHandler {
	return &InscricaoHandler{
		inscricaoService: inscricaoService,
		bibService:       bibService,
	}
}

// RegisterHandler handles POST /backyards/{backyardID}/inscricoes. The
// athlete comes from the token, not the body.
func (h *InscricaoHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	backyardID, err := getIDFromURL(r, "backyardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	atletaID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to register")
		return
	}

	inscricao, err := h.inscricaoService.Register(r.Context(), atletaID, backyardID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"inscricao": inscricao}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelHandler handles DELETE /backyards/{backyardID}/inscricoes
func (h *InscricaoHandler) CancelHandler(w http.ResponseWriter, r *http.Request) {
	backyardID, err := getIDFromURL(r, "backyardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	atletaID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to cancel registration")
		return
	}

	if err := h.inscricaoService.Cancel(r.Context(), atletaID, backyardID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListHandler handles GET /backyards/{backyardID}/inscricoes
func (h *InscricaoHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	backyardID, err := getIDFromURL(r, "backyardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	inscricoes, err := h.inscricaoService.ListByBackyard(r.Context(), backyardID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"inscricoes": inscricoes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// VagasHandler handles GET /backyards/{backyardID}/vagas
func (h *InscricaoHandler) VagasHandler(w http.ResponseWriter, r *http.Request) {
	backyardID, err := getIDFromURL(r, "backyardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	vagas, err := h.inscricaoService.VagasRestantes(r.Context(), backyardID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"vagas_restantes": vagas}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBibsHandler handles POST /backyards/{backyardID}/bibs/generate
func (h *InscricaoHandler) GenerateBibsHandler(w http.ResponseWriter, r *http.Request) {
	backyardID, err := getIDFromURL(r, "backyardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bibService.GenerateBibNumbers(r.Context(), backyardID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// NextBibHandler handles GET /backyards/{backyardID}/bibs/next
func (h *InscricaoHandler) NextBibHandler(w http.ResponseWriter, r *http.Request) {
	backyardID, err := getIDFromURL(r, "backyardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	next, err := h.bibService.NextBibNumber(r.Context(), backyardID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"proximo_numero": next}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
