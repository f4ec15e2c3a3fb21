package repo

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrDuplicate indica violação de chave única (ex.: e-mail já cadastrado).
	ErrDuplicate = errors.New("registro duplicado")
	// ErrInUse indica que o registro ainda é referenciado por outro.
	ErrInUse = errors.New("registro em uso")
	// ErrNotPending indica fluxo de aprovação já decidido.
	ErrNotPending = errors.New("fluxo de aprovação já decidido")
)

// translate converte erros do pgx nos sentinelas do pacote.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicate
		case "23503":
			return ErrInUse
		}
	}
	return err
}
