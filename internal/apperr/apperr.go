// Package apperr define a taxonomia de erros vista pelas telas do cliente.
package apperr

import (
	"errors"
	"fmt"
)

// AuthKind classifica falhas de autenticação.
type AuthKind int

const (
	InvalidCredentials AuthKind = iota + 1
	Network
)

func (k AuthKind) String() string {
	switch k {
	case InvalidCredentials:
		return "credenciais inválidas"
	case Network:
		return "falha de rede"
	default:
		return "desconhecido"
	}
}

// AuthError é retornado por login quando o backend recusa ou não responde.
type AuthError struct {
	Kind AuthKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("autenticação: %s: %v", e.Kind, e.Err)
	}
	return "autenticação: " + e.Kind.String()
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError sinaliza campo obrigatório ausente ou inválido, antes de qualquer chamada de rede.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Field + " obrigatório"
}

// Missing cria um ValidationError de campo obrigatório.
func Missing(field string) *ValidationError {
	return &ValidationError{Field: field, Message: field + " obrigatório"}
}

// Invalid cria um ValidationError de valor inválido.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TransportKind classifica falhas de transporte.
type TransportKind int

const (
	Unreachable TransportKind = iota + 1
	ServerError
)

// TransportError cobre backend inacessível e respostas de erro não classificadas.
type TransportError struct {
	Kind    TransportKind
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Kind == Unreachable {
		if e.Err != nil {
			return "backend inacessível: " + e.Err.Error()
		}
		return "backend inacessível"
	}
	if e.Message != "" {
		return fmt.Sprintf("erro do servidor (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("erro do servidor (%d)", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ConflictError indica que o backend recusou a operação por conflito de estado (HTTP 409).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message == "" {
		return "conflito"
	}
	return "conflito: " + e.Message
}

// NotFoundError indica recurso inexistente (HTTP 404).
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message == "" {
		return "não encontrado"
	}
	return e.Message
}

// IsAuth informa se err é um AuthError do tipo indicado.
func IsAuth(err error, kind AuthKind) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Kind == kind
}

// IsValidation informa se err é um ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict informa se err é um ConflictError.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsUnreachable informa se err indica backend inacessível.
func IsUnreachable(err error) bool {
	var t *TransportError
	return errors.As(err, &t) && t.Kind == Unreachable
}
