package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/uema/repositorio/internal/auth"
	"github.com/uema/repositorio/internal/model"
	"github.com/uema/repositorio/internal/service"
)

type contextKey string

const ContextKeyPrincipal contextKey = "principal"

// Authenticate valida o JWT de acesso e injeta o usuário no contexto.
func Authenticate(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			principal, err := principalFromToken(jwtManager, token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			next.ServeHTTP(w, r.WithContext(SetPrincipal(r.Context(), principal)))
		})
	}
}

// OptionalAuth aceita requisições anônimas; um token presente precisa ser válido.
func OptionalAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := principalFromToken(jwtManager, token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			next.ServeHTTP(w, r.WithContext(SetPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func principalFromToken(jwtManager *auth.JWTManager, token string) (*service.Principal, error) {
	claims, err := jwtManager.ParseAndValidate(token)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	return &service.Principal{ID: id, Email: claims.Email, Perfil: model.Role(claims.Perfil)}, nil
}

// SetPrincipal injeta o usuário autenticado no contexto.
func SetPrincipal(ctx context.Context, p *service.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// GetPrincipal recupera o usuário autenticado; nil para anônimos.
func GetPrincipal(ctx context.Context) *service.Principal {
	val, _ := ctx.Value(ContextKeyPrincipal).(*service.Principal)
	return val
}

// GetSubject recupera o id do usuário como texto.
func GetSubject(ctx context.Context) string {
	p := GetPrincipal(ctx)
	if p == nil {
		return ""
	}
	return strconv.FormatInt(p.ID, 10)
}

// RequirePrivileged restringe a rota a ADMIN e GESTOR.
func RequirePrivileged(next http.Handler) http.Handler {
	return RequireRoles(model.RoleAdmin, model.RoleGestor)(next)
}

// RequireRoles garante que o usuário possua um dos perfis informados.
func RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := GetPrincipal(r.Context())
			if p == nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}
			if _, ok := allowed[p.Perfil]; !ok {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito a administradores e gestores")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
