// Package useradmin administra contas: listagem, criação, edição, exclusão e ativação.
package useradmin

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/uema/repositorio/internal/apperr"
	"github.com/uema/repositorio/internal/confirm"
	"github.com/uema/repositorio/internal/model"
)

// Backend é o lado HTTP das contas.
type Backend interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, input model.NewUser) (model.User, error)
	UpdateUser(ctx context.Context, id int64, patch model.UserPatch) (model.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ActivateUser(ctx context.Context, id int64) error
	Register(ctx context.Context, input model.NewUser) (model.User, error)
}

// Service mantém a lista de trabalho da tela de usuários, sempre atualizada
// depois da confirmação do backend.
type Service struct {
	backend Backend
	confirm confirm.Confirmer

	mu    sync.Mutex
	users []model.User
}

func NewService(backend Backend, confirmer confirm.Confirmer) *Service {
	return &Service{backend: backend, confirm: confirmer}
}

func (s *Service) List(ctx context.Context) ([]model.User, error) {
	users, err := s.backend.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.users = append([]model.User(nil), users...)
	s.mu.Unlock()
	return s.Users(), nil
}

// Users devolve a lista de trabalho atual.
func (s *Service) Users() []model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.User(nil), s.users...)
}

// Create exige nome, e-mail, senha e perfil antes de chamar o backend.
func (s *Service) Create(ctx context.Context, input model.NewUser) (model.User, error) {
	input, err := validateNew(input)
	if err != nil {
		return model.User{}, err
	}
	user, err := s.backend.CreateUser(ctx, input)
	if err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	s.users = append(s.users, user)
	s.mu.Unlock()
	return user, nil
}

// Register pede uma conta pelo cadastro público. O backend cria a conta inativa,
// com o perfil mais baixo.
func (s *Service) Register(ctx context.Context, nome, email, senha string) (model.User, error) {
	input, err := validateNew(model.NewUser{Nome: nome, Email: email, Senha: senha, Perfil: model.RoleFuncionario})
	if err != nil {
		return model.User{}, err
	}
	return s.backend.Register(ctx, input)
}

// Update altera só os campos preenchidos; senha nil mantém a atual.
func (s *Service) Update(ctx context.Context, id int64, patch model.UserPatch) (model.User, error) {
	if id <= 0 {
		return model.User{}, apperr.Invalid("id", "id inválido")
	}
	if patch.Nome != nil {
		nome := strings.TrimSpace(*patch.Nome)
		if nome == "" {
			return model.User{}, apperr.Missing("nome")
		}
		patch.Nome = &nome
	}
	if patch.Email != nil {
		email, err := normalizeEmail(*patch.Email)
		if err != nil {
			return model.User{}, err
		}
		patch.Email = &email
	}
	if patch.Senha != nil && *patch.Senha == "" {
		patch.Senha = nil
	}
	if patch.Perfil != nil {
		role, ok := model.ParseRole(string(*patch.Perfil))
		if !ok {
			return model.User{}, apperr.Invalid("perfil", fmt.Sprintf("perfil %q desconhecido", *patch.Perfil))
		}
		patch.Perfil = &role
	}

	user, err := s.backend.UpdateUser(ctx, id, patch)
	if err != nil {
		return model.User{}, err
	}
	s.replace(user)
	return user, nil
}

// Delete pede confirmação e remove a conta da lista só depois do backend.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.Invalid("id", "id inválido")
	}
	if err := confirm.Require(s.confirm, fmt.Sprintf("Excluir o usuário %s?", s.describe(id))); err != nil {
		return err
	}
	if err := s.backend.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.users[:0]
	for _, u := range s.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.users = kept
	return nil
}

// Activate libera o acesso de uma conta. Não existe o caminho inverso.
func (s *Service) Activate(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.Invalid("id", "id inválido")
	}
	if err := s.backend.ActivateUser(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].Ativo = true
		}
	}
	return nil
}

func (s *Service) replace(user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == user.ID {
			s.users[i] = user
			return
		}
	}
}

func (s *Service) describe(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return fmt.Sprintf("%s <%s>", u.Nome, u.Email)
		}
	}
	return fmt.Sprintf("%d", id)
}

func validateNew(input model.NewUser) (model.NewUser, error) {
	input.Nome = strings.TrimSpace(input.Nome)
	if input.Nome == "" {
		return input, apperr.Missing("nome")
	}
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return input, err
	}
	input.Email = email
	if input.Senha == "" {
		return input, apperr.Missing("senha")
	}
	role, ok := model.ParseRole(string(input.Perfil))
	if !ok {
		if strings.TrimSpace(string(input.Perfil)) == "" {
			return input, apperr.Missing("perfil")
		}
		return input, apperr.Invalid("perfil", fmt.Sprintf("perfil %q desconhecido", input.Perfil))
	}
	input.Perfil = role
	return input, nil
}

func normalizeEmail(value string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(value))
	if email == "" {
		return "", apperr.Missing("email")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperr.Invalid("email", "email inválido")
	}
	return email, nil
}
