package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/uema/repositorio/internal/model"
)

// Upload é um arquivo a ser enviado no campo "arquivo".
type Upload struct {
	Name   string
	Reader io.Reader
}

// ListDocuments devolve o catálogo visível ao chamador.
func (c *Client) ListDocuments(ctx context.Context) ([]model.Document, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/documentos", nil)
	if err != nil {
		return nil, err
	}
	var docs []model.Document
	if err := c.do(req, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CreateDocument envia um novo documento com seu arquivo.
func (c *Client) CreateDocument(ctx context.Context, fields model.DocumentFields, file *Upload) (model.Document, error) {
	return c.sendDocument(ctx, http.MethodPost, "/documentos", fields, file)
}

// UpdateDocument altera metadados; file nil mantém o arquivo armazenado.
func (c *Client) UpdateDocument(ctx context.Context, id int64, fields model.DocumentFields, file *Upload) (model.Document, error) {
	return c.sendDocument(ctx, http.MethodPut, fmt.Sprintf("/documentos/%d", id), fields, file)
}

// DeleteDocument remove o documento definitivamente.
func (c *Client) DeleteDocument(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/documentos/%d", id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// ListPrograms devolve os programas cadastrados.
func (c *Client) ListPrograms(ctx context.Context) ([]model.Program, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/programas", nil)
	if err != nil {
		return nil, err
	}
	var programs []model.Program
	if err := c.do(req, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func (c *Client) sendDocument(ctx context.Context, method, path string, fields model.DocumentFields, file *Upload) (model.Document, error) {
	body, contentType, err := encodeDocumentForm(fields, file)
	if err != nil {
		return model.Document{}, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return model.Document{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	c.authorize(req, "")

	var doc model.Document
	if err := c.do(req, &doc); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

func encodeDocumentForm(fields model.DocumentFields, file *Upload) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	form := multipart.NewWriter(buf)

	values := [][2]string{
		{"titulo", fields.Titulo},
		{"descricao", fields.Descricao},
		{"tipo", string(fields.Tipo)},
		{"dataPublicacao", fields.DataPublicacao},
	}
	if fields.ProgramaID > 0 {
		values = append(values, [2]string{"programaId", strconv.FormatInt(fields.ProgramaID, 10)})
	}
	for _, kv := range values {
		if err := form.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}

	if file != nil && file.Reader != nil {
		part, err := form.CreateFormFile("arquivo", filepath.Base(file.Name))
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, "", fmt.Errorf("falha ao ler arquivo: %w", err)
		}
	}

	if err := form.Close(); err != nil {
		return nil, "", err
	}
	return buf, form.FormDataContentType(), nil
}
