package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/uema/repositorio/internal/auth"
	"github.com/uema/repositorio/internal/metrics"
	"github.com/uema/repositorio/internal/model"
	"github.com/uema/repositorio/internal/repo"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta ainda não ativada.
	ErrAccountDisabled = errors.New("conta aguardando ativação")
)

type authRepository interface {
	GetUsuarioByEmail(ctx context.Context, email string) (repo.Usuario, error)
	GetUsuarioByID(ctx context.Context, id int64) (repo.Usuario, error)
}

// AuthService concentra login e a consulta "quem sou eu".
type AuthService struct {
	repo    authRepository
	jwt     *auth.JWTManager
	metrics metrics.Recorder
}

// NewAuthService cria novo serviço.
func NewAuthService(r authRepository, jwtMgr *auth.JWTManager, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &AuthService{repo: r, jwt: jwtMgr, metrics: recorder}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult é o retorno de um login bem-sucedido.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        model.User
}

// Login valida e-mail e senha e emite o token de acesso com o perfil assinado.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.metrics.RecordLogin("invalid")
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUsuarioByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			auth.VerifyMissing(password)
			log.Warn().Msg("login: usuário não encontrado")
			s.metrics.RecordLogin("invalid")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, user.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Int64("usuario_id", user.ID).Msg("login: verify password failed")
		s.metrics.RecordLogin("invalid")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Int64("usuario_id", user.ID).Msg("login: senha inválida")
		s.metrics.RecordLogin("invalid")
		return nil, ErrInvalidCredentials
	}
	if !user.Ativo {
		s.metrics.RecordLogin("disabled")
		return nil, ErrAccountDisabled
	}

	token, expires, err := s.jwt.GenerateAccessToken(user.ID, user.Email, user.Perfil)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin("ok")
	return &LoginResult{AccessToken: token, ExpiresAt: expires, User: toUser(user)}, nil
}

// Me devolve o perfil atual do usuário do token. Conta removida ou desativada
// depois da emissão do token deixa de ser aceita.
func (s *AuthService) Me(ctx context.Context, userID int64) (model.User, error) {
	user, err := s.repo.GetUsuarioByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if !user.Ativo {
		return model.User{}, ErrAccountDisabled
	}
	return toUser(user), nil
}

func toUser(u repo.Usuario) model.User {
	return model.User{
		ID:     u.ID,
		Nome:   u.Nome,
		Email:  u.Email,
		Perfil: model.Role(u.Perfil),
		Ativo:  u.Ativo,
	}
}
