package service

import "fmt"

// InvalidInputError descreve dado de entrada recusado antes de tocar o banco.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

func missing(field string) error {
	return &InvalidInputError{Field: field, Message: field + " obrigatório"}
}

func invalid(field, format string, args ...any) error {
	return &InvalidInputError{Field: field, Message: fmt.Sprintf(format, args...)}
}
