package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	httpmiddleware "github.com/uema/repositorio/internal/http/middleware"
	"github.com/uema/repositorio/internal/model"
)

type loginResponse struct {
	Token    string     `json:"token"`
	ExpiraEm time.Time  `json:"expiraEm"`
	Usuario  model.User `json:"usuario"`
}

// Login troca e-mail e senha por um token de acesso.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if strings.TrimSpace(payload.Email) == "" || payload.Senha == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "email e senha são obrigatórios", nil)
		return
	}

	result, err := h.auth.Login(r.Context(), payload.Email, payload.Senha)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{
		Token:    result.AccessToken,
		ExpiraEm: result.ExpiresAt,
		Usuario:  result.User,
	})
}

// Me devolve o perfil atual do dono do token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := httpmiddleware.GetPrincipal(r.Context())
	if principal == nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "token ausente", nil)
		return
	}

	user, err := h.auth.Me(r.Context(), principal.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, user)
}
