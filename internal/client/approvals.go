package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/uema/repositorio/internal/model"
)

// ListPending devolve a fila de aprovação.
func (c *Client) ListPending(ctx context.Context) ([]model.ApprovalItem, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/aprovacoes/pendentes", nil)
	if err != nil {
		return nil, err
	}
	var items []model.ApprovalItem
	if err := c.do(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Decide registra a decisão do gestor sobre um fluxo.
func (c *Client) Decide(ctx context.Context, idFluxo int64, aprovado bool, comentario string) error {
	q := url.Values{}
	q.Set("aprovado", strconv.FormatBool(aprovado))
	if comentario != "" {
		q.Set("comentario", comentario)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, fmt.Sprintf("/aprovacoes/%d?%s", idFluxo, q.Encode()), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
