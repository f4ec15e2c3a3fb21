package service

import (
	"errors"

	"github.com/uema/repositorio/internal/model"
)

var (
	// ErrForbidden indica ausência de permissão.
	ErrForbidden = errors.New("acesso negado")
)

// Principal é o usuário autenticado de uma requisição.
type Principal struct {
	ID     int64
	Email  string
	Perfil model.Role
}

// Privileged informa se o usuário é ADMIN ou GESTOR. Nil é anônimo.
func (p *Principal) Privileged() bool {
	return p != nil && p.Perfil.Privileged()
}

// canManageDocument libera edição e exclusão para ADMIN, GESTOR e o próprio autor.
func canManageDocument(p *Principal, autorID int64) bool {
	if p == nil {
		return false
	}
	return p.Privileged() || p.ID == autorID
}

// canSeeDocument aplica a regra de visibilidade: aprovados são públicos,
// os demais só para privilegiados e o autor.
func canSeeDocument(p *Principal, autorID int64, estado string) bool {
	if estado == string(model.EstadoAprovado) {
		return true
	}
	return canManageDocument(p, autorID)
}
