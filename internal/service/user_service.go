package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/uema/repositorio/internal/auth"
	"github.com/uema/repositorio/internal/config"
	"github.com/uema/repositorio/internal/model"
	"github.com/uema/repositorio/internal/repo"
	"github.com/uema/repositorio/internal/util"
)

var (
	// ErrUserNotFound indica conta inexistente.
	ErrUserNotFound = errors.New("usuário não encontrado")
	// ErrEmailInUse indica e-mail já cadastrado.
	ErrEmailInUse = errors.New("email já cadastrado")
	// ErrUserInUse indica conta com documentos ou decisões vinculadas.
	ErrUserInUse = errors.New("usuário possui documentos ou aprovações vinculadas")
	// ErrSelfDelete impede que a conta logada remova a si mesma.
	ErrSelfDelete = errors.New("não é possível excluir o próprio usuário")
)

type userRepository interface {
	ListUsuarios(ctx context.Context) ([]repo.Usuario, error)
	GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error)
	CreateUsuario(ctx context.Context, arg repo.CreateUsuarioParams) (repo.Usuario, error)
	UpdateUsuario(ctx context.Context, arg repo.UpdateUsuarioParams) (repo.Usuario, error)
	ActivateUsuario(ctx context.Context, id int64) (repo.Usuario, error)
	DeleteUsuario(ctx context.Context, id int64) error
}

// UserService centraliza a administração de contas.
type UserService struct {
	repo userRepository
}

// NewUserService cria nova instância do serviço.
func NewUserService(r userRepository) *UserService {
	return &UserService{repo: r}
}

// List retorna as contas cadastradas.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListUsuarios(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, toUser(u))
	}
	return out, nil
}

// Create cria conta já ativa, pelo painel de administração.
func (s *UserService) Create(ctx context.Context, input model.NewUser) (model.User, error) {
	return s.create(ctx, input, true)
}

// Register atende o cadastro público: perfil FUNCIONARIO e conta inativa
// até um administrador ativar.
func (s *UserService) Register(ctx context.Context, input model.NewUser) (model.User, error) {
	input.Perfil = model.RoleFuncionario
	return s.create(ctx, input, false)
}

func (s *UserService) create(ctx context.Context, input model.NewUser, ativo bool) (model.User, error) {
	nome := strings.TrimSpace(input.Nome)
	if nome == "" {
		return model.User{}, missing("nome")
	}
	email, err := util.NormalizeEmail(input.Email)
	if err != nil {
		return model.User{}, invalid("email", "%s", err.Error())
	}
	if input.Senha == "" {
		return model.User{}, missing("senha")
	}
	if err := util.ValidatePassword(input.Senha); err != nil {
		return model.User{}, invalid("senha", "%s", err.Error())
	}
	role, ok := model.ParseRole(string(input.Perfil))
	if !ok {
		return model.User{}, invalid("perfil", "perfil inválido")
	}

	hash, err := auth.Hash(input.Senha)
	if err != nil {
		return model.User{}, err
	}

	created, err := s.repo.CreateUsuario(ctx, repo.CreateUsuarioParams{
		Nome:      nome,
		Email:     email,
		SenhaHash: hash,
		Perfil:    string(role),
		Ativo:     ativo,
	})
	if err != nil {
		return model.User{}, translateUserErr(err)
	}
	return toUser(created), nil
}

// Update altera só os campos informados; senha ausente mantém a atual.
func (s *UserService) Update(ctx context.Context, id int64, patch model.UserPatch) (model.User, error) {
	arg := repo.UpdateUsuarioParams{ID: id}

	if patch.Nome != nil {
		nome := strings.TrimSpace(*patch.Nome)
		if nome == "" {
			return model.User{}, missing("nome")
		}
		arg.Nome = &nome
	}
	if patch.Email != nil {
		email, err := util.NormalizeEmail(*patch.Email)
		if err != nil {
			return model.User{}, invalid("email", "%s", err.Error())
		}
		arg.Email = &email
	}
	if patch.Senha != nil && *patch.Senha != "" {
		if err := util.ValidatePassword(*patch.Senha); err != nil {
			return model.User{}, invalid("senha", "%s", err.Error())
		}
		hash, err := auth.Hash(*patch.Senha)
		if err != nil {
			return model.User{}, err
		}
		arg.SenhaHash = &hash
	}
	if patch.Perfil != nil {
		role, ok := model.ParseRole(string(*patch.Perfil))
		if !ok {
			return model.User{}, invalid("perfil", "perfil inválido")
		}
		perfil := string(role)
		arg.Perfil = &perfil
	}

	updated, err := s.repo.UpdateUsuario(ctx, arg)
	if err != nil {
		return model.User{}, translateUserErr(err)
	}
	return toUser(updated), nil
}

// Activate libera o login da conta. Não há operação inversa.
func (s *UserService) Activate(ctx context.Context, id int64) (model.User, error) {
	user, err := s.repo.ActivateUsuario(ctx, id)
	if err != nil {
		return model.User{}, translateUserErr(err)
	}
	return toUser(user), nil
}

// Delete remove definitivamente a conta.
func (s *UserService) Delete(ctx context.Context, actor *Principal, id int64) error {
	if actor != nil && actor.ID == id {
		return ErrSelfDelete
	}
	return translateUserErr(s.repo.DeleteUsuario(ctx, id))
}

// SeedAdmin cria o administrador inicial quando o e-mail ainda não existe.
func (s *UserService) SeedAdmin(ctx context.Context, seed config.AdminSeed) (bool, error) {
	if !seed.Enabled() {
		return false, nil
	}

	_, err := s.repo.GetUsuarioByEmail(ctx, seed.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return false, err
	}

	nome := seed.Nome
	if nome == "" {
		nome = "Administrador"
	}
	if _, err := s.create(ctx, model.NewUser{Nome: nome, Email: seed.Email, Senha: seed.Senha, Perfil: model.RoleAdmin}, true); err != nil {
		return false, err
	}
	log.Info().Str("email", seed.Email).Msg("administrador inicial criado")
	return true, nil
}

func translateUserErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return ErrUserNotFound
	case errors.Is(err, repo.ErrDuplicate):
		return ErrEmailInUse
	case errors.Is(err, repo.ErrInUse):
		return ErrUserInUse
	}
	return err
}
