package util

import (
	"errors"
	"net/mail"
	"strings"
)

// Limites de senha. O teto evita hashes caros com entradas enormes.
const (
	MinPasswordLen = 6
	MaxPasswordLen = 128
)

var (
	ErrEmailRequired = errors.New("email obrigatório")
	ErrEmailInvalid  = errors.New("email inválido")
)

// NormalizeEmail devolve o e-mail em minúsculas, sem espaços, se for um endereço simples válido.
// Formas com nome ("Ana <ana@uema.br>") são recusadas.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrEmailRequired
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", ErrEmailInvalid
	}
	return email, nil
}

// ValidatePassword confere o tamanho da senha.
func ValidatePassword(password string) error {
	switch {
	case len(password) < MinPasswordLen:
		return errors.New("senha deve ter pelo menos 6 caracteres")
	case len(password) > MaxPasswordLen:
		return errors.New("senha deve ter no máximo 128 caracteres")
	}
	return nil
}
