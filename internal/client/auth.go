package client

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/uema/repositorio/internal/apperr"
	"github.com/uema/repositorio/internal/model"
)

// Login troca e-mail e senha por um token de acesso.
func (c *Client) Login(ctx context.Context, email, senha string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/login", map[string]string{
		"email": strings.TrimSpace(email),
		"senha": senha,
	})
	if err != nil {
		return "", err
	}
	req.Header.Del("Authorization")

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", loginError(err)
	}
	if strings.TrimSpace(resp.Token) == "" {
		return "", &apperr.AuthError{Kind: apperr.InvalidCredentials, Err: errors.New("token ausente na resposta")}
	}
	return resp.Token, nil
}

func loginError(err error) error {
	if apperr.IsUnreachable(err) {
		return &apperr.AuthError{Kind: apperr.Network, Err: err}
	}
	if apperr.IsValidation(err) {
		return &apperr.AuthError{Kind: apperr.InvalidCredentials, Err: err}
	}
	switch StatusOf(err) {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &apperr.AuthError{Kind: apperr.InvalidCredentials, Err: err}
	}
	return err
}

// Me busca o perfil do dono do token informado.
func (c *Client) Me(ctx context.Context, token string) (model.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/usuarios/me", nil)
	if err != nil {
		return model.User{}, err
	}
	c.authorize(req, token)

	var user model.User
	if err := c.do(req, &user); err != nil {
		return model.User{}, loginError(err)
	}
	return user, nil
}

// Register solicita uma conta pelo cadastro público.
func (c *Client) Register(ctx context.Context, input model.NewUser) (model.User, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/usuarios/registro-publico", input)
	if err != nil {
		return model.User{}, err
	}
	req.Header.Del("Authorization")

	var user model.User
	if err := c.do(req, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}
