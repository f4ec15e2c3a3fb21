package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indica arquivo ausente no backend de armazenamento.
var ErrNotFound = errors.New("storage: arquivo não encontrado")

// Object é o conteúdo de um arquivo armazenado.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Store guarda os arquivos dos documentos por chave.
type Store interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	Open(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}
