package http

import (
	"net/http"
	"strconv"
	"strings"

	httpmiddleware "github.com/uema/repositorio/internal/http/middleware"
)

// ListPendingApprovals devolve a fila de aprovação.
func (h *Handler) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	items, err := h.approvals.Pending(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, items)
}

// DecideApproval aplica ?aprovado=true|false&comentario=... ao fluxo.
func (h *Handler) DecideApproval(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	query := r.URL.Query()
	aprovado, err := strconv.ParseBool(strings.TrimSpace(query.Get("aprovado")))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "aprovado deve ser true ou false", map[string]string{"field": "aprovado"})
		return
	}

	if err := h.approvals.Decide(r.Context(), httpmiddleware.GetPrincipal(r.Context()), id, aprovado, query.Get("comentario")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
