package storage

import (
	"context"
	"errors"
)

// ErrDisabled sinaliza que nenhum backend de armazenamento foi configurado.
var ErrDisabled = errors.New("storage: armazenamento não configurado")

// NoopStore recusa gravações; usado em ambientes sem arquivos.
type NoopStore struct{}

func (NoopStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	return ErrDisabled
}

func (NoopStore) Open(ctx context.Context, key string) (*Object, error) {
	return nil, ErrNotFound
}

func (NoopStore) Delete(ctx context.Context, key string) error {
	return nil
}
