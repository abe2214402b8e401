package handlers

import (
	"net/http"

	"github.com/glaucius/back-to-the-loop/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterAtletaHandler handles POST /auth/atletas/register
func (h *AuthHandler) RegisterAtletaHandler(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterAtletaInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	atleta, token, err := h.authService.RegisterAtleta(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"atleta": atleta, "token": token}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LoginAtletaHandler handles POST /auth/atletas/login
func (h *AuthHandler) LoginAtletaHandler(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	atleta, token, err := h.authService.LoginAtleta(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"atleta": atleta, "token": token}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LoginUserHandler handles POST /auth/login for backoffice users.
func (h *AuthHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, token, err := h.authService.LoginUser(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"user": user, "token": token}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
