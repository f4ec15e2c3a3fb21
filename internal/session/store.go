// Package session mantém o token e a identidade do usuário entre execuções do cliente.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/uema/repositorio/internal/apperr"
	"github.com/uema/repositorio/internal/model"
)

// Authenticator é o lado do backend usado no login.
type Authenticator interface {
	Login(ctx context.Context, email, senha string) (string, error)
	Me(ctx context.Context, token string) (model.User, error)
}

// Session é um retrato imutável do estado de autenticação.
type Session struct {
	Token string
	User  *model.Identity
}

// Authenticated informa se há token e identidade.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Privileged informa se a identidade pertence a ADMIN ou GESTOR.
func (s Session) Privileged() bool {
	return s.Authenticated() && s.User.Privileged()
}

// Store é o dono único da sessão do processo. Deve ser criado com Open e repassado
// explicitamente aos componentes que precisam dele.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	auth    Authenticator
	logger  zerolog.Logger
	now     func() time.Time
	current Session
}

// Open cria o store e restaura a sessão persistida sem acessar a rede.
func Open(ctx context.Context, storage Storage, auth Authenticator, logger zerolog.Logger) *Store {
	s := &Store{
		storage: storage,
		auth:    auth,
		logger:  logger,
		now:     time.Now,
	}
	s.Restore(ctx)
	return s
}

// Restore reconstrói a sessão a partir do armazenamento. Qualquer inconsistência
// derruba a sessão e limpa as duas chaves; nunca devolve erro.
func (s *Store) Restore(ctx context.Context) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored, reason := s.load(ctx)
	if reason != "" {
		s.logger.Debug().Str("motivo", reason).Msg("sessão persistida descartada")
		if err := s.storage.Delete(ctx, KeyToken, KeyUser); err != nil {
			s.logger.Debug().Err(err).Msg("falha ao limpar sessão persistida")
		}
		restored = Session{}
	}
	s.current = restored
	return restored
}

func (s *Store) load(ctx context.Context) (Session, string) {
	token, tokenErr := s.storage.Get(ctx, KeyToken)
	rawUser, userErr := s.storage.Get(ctx, KeyUser)

	if tokenErr != nil && !errors.Is(tokenErr, ErrNotFound) {
		return Session{}, "erro lendo token: " + tokenErr.Error()
	}
	if userErr != nil && !errors.Is(userErr, ErrNotFound) {
		return Session{}, "erro lendo usuário: " + userErr.Error()
	}

	hasToken := tokenErr == nil && strings.TrimSpace(token) != ""
	hasUser := userErr == nil && strings.TrimSpace(rawUser) != ""

	switch {
	case !hasToken && !hasUser:
		if tokenErr == nil || userErr == nil {
			return Session{}, "chaves vazias"
		}
		return Session{}, ""
	case hasToken != hasUser:
		return Session{}, "token e usuário inconsistentes"
	}

	var identity model.Identity
	if err := json.Unmarshal([]byte(rawUser), &identity); err != nil {
		return Session{}, "usuário ilegível"
	}
	if strings.TrimSpace(identity.Email) == "" || !identity.Role.Valid() {
		return Session{}, "identidade inválida"
	}
	if tokenExpired(token, s.now()) {
		return Session{}, "token expirado"
	}

	return Session{Token: token, User: &identity}, ""
}

// tokenExpired lê exp sem verificar a assinatura; tokens opacos nunca expiram aqui.
func tokenExpired(token string, now time.Time) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// Login autentica no backend, busca o perfil verificado e persiste a sessão.
func (s *Store) Login(ctx context.Context, email, senha string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Session{}, apperr.Missing("email")
	}
	if senha == "" {
		return Session{}, apperr.Missing("senha")
	}

	token, err := s.auth.Login(ctx, email, senha)
	if err != nil {
		return Session{}, err
	}

	profile, err := s.auth.Me(ctx, token)
	if err != nil {
		return Session{}, err
	}
	if !profile.Perfil.Valid() {
		return Session{}, &apperr.AuthError{Kind: apperr.InvalidCredentials, Err: fmt.Errorf("perfil desconhecido %q", profile.Perfil)}
	}

	identity := model.Identity{Email: profile.Email, Role: profile.Perfil}
	if identity.Email == "" {
		identity.Email = email
	}

	encoded, err := json.Marshal(identity)
	if err != nil {
		return Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(ctx, token, string(encoded)); err != nil {
		return Session{}, err
	}
	s.current = Session{Token: token, User: &identity}
	s.logger.Info().Str("email", identity.Email).Str("perfil", string(identity.Role)).Msg("sessão iniciada")
	return s.current, nil
}

func (s *Store) persist(ctx context.Context, token, user string) error {
	if err := s.storage.Set(ctx, KeyUser, user); err != nil {
		return fmt.Errorf("persistindo sessão: %w", err)
	}
	if err := s.storage.Set(ctx, KeyToken, token); err != nil {
		_ = s.storage.Delete(ctx, KeyToken, KeyUser)
		return fmt.Errorf("persistindo sessão: %w", err)
	}
	return nil
}

// Logout apaga token, identidade e o armazenamento. Chamar deslogado não é erro.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasAuthenticated := s.current.Authenticated()
	s.current = Session{}
	if err := s.storage.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("limpando sessão: %w", err)
	}
	if wasAuthenticated {
		s.logger.Info().Msg("sessão encerrada")
	}
	return nil
}

// Current devolve uma cópia da sessão atual.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := Session{Token: s.current.Token}
	if s.current.User != nil {
		identity := *s.current.User
		out.User = &identity
	}
	return out
}

// Token implementa client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// IsAuthenticated informa se há sessão válida.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Authenticated()
}

// RoleIsPrivileged informa se o perfil atual é ADMIN ou GESTOR.
func (s *Store) RoleIsPrivileged() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Privileged()
}

// Close encerra o store, liberando o armazenamento quando ele possui recursos próprios.
// A sessão persistida continua válida para a próxima execução.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Session{}
	if closer, ok := s.storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
