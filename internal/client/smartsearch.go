package client

import (
	"context"
	"net/http"

	"github.com/uema/repositorio/internal/model"
)

// SmartSearch envia uma consulta em linguagem natural ao serviço semântico.
func (c *Client) SmartSearch(ctx context.Context, query string) ([]model.Document, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/smart-search", map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	var docs []model.Document
	if err := c.do(req, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
