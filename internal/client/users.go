package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/uema/repositorio/internal/model"
)

// ListUsers devolve todas as contas.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/usuarios", nil)
	if err != nil {
		return nil, err
	}
	var users []model.User
	if err := c.do(req, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser cria uma conta já ativa.
func (c *Client) CreateUser(ctx context.Context, input model.NewUser) (model.User, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/usuarios", input)
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := c.do(req, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// UpdateUser aplica alteração parcial; senha omitida não é alterada.
func (c *Client) UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (model.User, error) {
	req, err := c.newRequest(ctx, http.MethodPut, fmt.Sprintf("/usuarios/%d", id), patch)
	if err != nil {
		return model.User{}, err
	}
	var user model.User
	if err := c.do(req, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// DeleteUser remove a conta.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/usuarios/%d", id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// ActivateUser ativa uma conta pendente.
func (c *Client) ActivateUser(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodPatch, fmt.Sprintf("/usuarios/%d/ativar", id), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
