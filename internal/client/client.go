// Package client fala HTTP com o backend do repositório e com o serviço de busca semântica.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/uema/repositorio/internal/apperr"
)

const defaultTimeout = 15 * time.Second

// TokenSource fornece o token da sessão atual; string vazia significa chamada anônima.
type TokenSource interface {
	Token() string
}

// Config descreve onde o backend está.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client encapsula chamadas a um backend do repositório.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

// New cria um cliente. tokens pode ser nil para uso apenas anônimo.
func New(cfg Config, tokens TokenSource) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("client: url base obrigatória")
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, errors.New("client: url base deve incluir protocolo http/https")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{httpClient: httpClient, baseURL: base, tokens: tokens}, nil
}

// BaseURL devolve a url base configurada.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req, "")
	return req, nil
}

// authorize injeta o bearer; override tem precedência sobre a sessão.
func (c *Client) authorize(req *http.Request, override string) {
	token := override
	if token == "" && c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return &apperr.TransportError{Kind: apperr.Unreachable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}

	if v == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &apperr.TransportError{Kind: apperr.ServerError, Status: resp.StatusCode, Message: "resposta inválida", Err: err}
	}
	return nil
}

type errorEnvelope struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Detail string `json:"detail"`
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := ""
	var envelope errorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Error != nil {
			message = envelope.Error.Message
		} else {
			message = envelope.Detail
		}
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}

	switch resp.StatusCode {
	case http.StatusConflict:
		return &apperr.ConflictError{Message: message}
	case http.StatusNotFound:
		return &apperr.NotFoundError{Message: message}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &apperr.ValidationError{Message: fmt.Sprintf("requisição recusada: %s", message)}
	default:
		return &apperr.TransportError{Kind: apperr.ServerError, Status: resp.StatusCode, Message: message}
	}
}

// StatusOf extrai o status HTTP de um erro de servidor, ou 0.
func StatusOf(err error) int {
	var transportErr *apperr.TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Status
	}
	var validationErr *apperr.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}
	return 0
}
