package model

import "strings"

// Role é o perfil de acesso de uma conta.
type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleGestor      Role = "GESTOR"
	RoleFuncionario Role = "FUNCIONARIO"
)

var validRoles = map[Role]struct{}{
	RoleAdmin:       {},
	RoleGestor:      {},
	RoleFuncionario: {},
}

// ParseRole normaliza o texto recebido e informa se o perfil é conhecido.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	_, ok := validRoles[role]
	return role, ok
}

// Valid informa se o perfil é suportado.
func (r Role) Valid() bool {
	_, ok := validRoles[r]
	return ok
}

// Privileged informa se o perfil pode aprovar documentos e administrar usuários.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleGestor
}

// Identity é o usuário autenticado tal como o cliente o conhece.
type Identity struct {
	Email string `json:"email"`
	Role  Role   `json:"perfil"`
}

// Privileged é um atalho para o perfil da identidade.
func (i Identity) Privileged() bool {
	return i.Role.Privileged()
}
