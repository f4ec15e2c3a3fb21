// Package documents é a fachada de documentos usada pelas telas do cliente.
package documents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uema/repositorio/internal/apperr"
	"github.com/uema/repositorio/internal/client"
	"github.com/uema/repositorio/internal/confirm"
	"github.com/uema/repositorio/internal/model"
)

// Backend é o subconjunto do cliente HTTP usado aqui.
type Backend interface {
	ListDocuments(ctx context.Context) ([]model.Document, error)
	CreateDocument(ctx context.Context, fields model.DocumentFields, file *client.Upload) (model.Document, error)
	UpdateDocument(ctx context.Context, id int64, fields model.DocumentFields, file *client.Upload) (model.Document, error)
	DeleteDocument(ctx context.Context, id int64) error
	ListPrograms(ctx context.Context) ([]model.Program, error)
}

type Service struct {
	backend Backend
	confirm confirm.Confirmer
	now     func() time.Time
}

func NewService(backend Backend, confirmer confirm.Confirmer) *Service {
	return &Service{backend: backend, confirm: confirmer, now: time.Now}
}

// List devolve o catálogo visível ao chamador; o filtro por estado é feito no servidor.
func (s *Service) List(ctx context.Context) ([]model.Document, error) {
	return s.backend.ListDocuments(ctx)
}

// Programs devolve os programas para seleção no envio.
func (s *Service) Programs(ctx context.Context) ([]model.Program, error) {
	return s.backend.ListPrograms(ctx)
}

// Create valida título, tipo e arquivo antes de enviar. Data vazia assume hoje.
func (s *Service) Create(ctx context.Context, fields model.DocumentFields, file *client.Upload) (model.Document, error) {
	fields, err := s.normalize(fields)
	if err != nil {
		return model.Document{}, err
	}
	if file == nil || file.Reader == nil || strings.TrimSpace(file.Name) == "" {
		return model.Document{}, apperr.Missing("arquivo")
	}
	return s.backend.CreateDocument(ctx, fields, file)
}

// Update altera metadados; file nil preserva o arquivo atual.
func (s *Service) Update(ctx context.Context, id int64, fields model.DocumentFields, file *client.Upload) (model.Document, error) {
	if id <= 0 {
		return model.Document{}, apperr.Invalid("id", "id inválido")
	}
	fields, err := s.normalize(fields)
	if err != nil {
		return model.Document{}, err
	}
	if file != nil && file.Reader == nil {
		file = nil
	}
	return s.backend.UpdateDocument(ctx, id, fields, file)
}

// Delete é irreversível: só chama o backend depois da confirmação.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.Invalid("id", "id inválido")
	}
	if err := confirm.Require(s.confirm, fmt.Sprintf("Excluir definitivamente o documento %d?", id)); err != nil {
		return err
	}
	return s.backend.DeleteDocument(ctx, id)
}

func (s *Service) normalize(fields model.DocumentFields) (model.DocumentFields, error) {
	fields.Titulo = strings.TrimSpace(fields.Titulo)
	fields.Descricao = strings.TrimSpace(fields.Descricao)
	fields.DataPublicacao = strings.TrimSpace(fields.DataPublicacao)

	if fields.Titulo == "" {
		return fields, apperr.Missing("titulo")
	}
	if strings.TrimSpace(string(fields.Tipo)) == "" {
		return fields, apperr.Missing("tipo")
	}
	tipo, ok := model.ParseDocumentType(string(fields.Tipo))
	if !ok {
		return fields, apperr.Invalid("tipo", fmt.Sprintf("tipo %q desconhecido", fields.Tipo))
	}
	fields.Tipo = tipo

	if fields.DataPublicacao == "" {
		fields.DataPublicacao = s.now().Format(model.DateLayout)
	} else if _, err := time.Parse(model.DateLayout, fields.DataPublicacao); err != nil {
		return fields, apperr.Invalid("dataPublicacao", "dataPublicacao deve estar no formato AAAA-MM-DD")
	}
	if fields.ProgramaID < 0 {
		return fields, apperr.Invalid("programaId", "programaId inválido")
	}
	return fields, nil
}
