package documents

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/uema/repositorio/internal/apperr"
	"github.com/uema/repositorio/internal/client"
	"github.com/uema/repositorio/internal/confirm"
	"github.com/uema/repositorio/internal/model"
)

type stubBackend struct {
	created   []model.DocumentFields
	updated   map[int64]*client.Upload
	deleted   []int64
	deleteErr error
}

func (s *stubBackend) ListDocuments(ctx context.Context) ([]model.Document, error) {
	return []model.Document{{ID: 1}}, nil
}

func (s *stubBackend) CreateDocument(ctx context.Context, fields model.DocumentFields, file *client.Upload) (model.Document, error) {
	s.created = append(s.created, fields)
	return model.Document{ID: int64(len(s.created)), Titulo: fields.Titulo, Tipo: fields.Tipo}, nil
}

func (s *stubBackend) UpdateDocument(ctx context.Context, id int64, fields model.DocumentFields, file *client.Upload) (model.Document, error) {
	if s.updated == nil {
		s.updated = map[int64]*client.Upload{}
	}
	s.updated[id] = file
	return model.Document{ID: id, Titulo: fields.Titulo}, nil
}

func (s *stubBackend) DeleteDocument(ctx context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubBackend) ListPrograms(ctx context.Context) ([]model.Program, error) {
	return []model.Program{{ID: 1, Nome: "Mestrado em Computação", Sigla: "PPGEC"}}, nil
}

func pdf() *client.Upload {
	return &client.Upload{Name: "edital.pdf", Reader: strings.NewReader("%PDF")}
}

func TestCreateFailsFastOnMissingFields(t *testing.T) {
	backend := &stubBackend{}
	svc := NewService(backend, confirm.Always(true))

	cases := []struct {
		name   string
		fields model.DocumentFields
		file   *client.Upload
		field  string
	}{
		{"sem titulo", model.DocumentFields{Tipo: model.TipoEditais}, pdf(), "titulo"},
		{"sem tipo", model.DocumentFields{Titulo: "Edital"}, pdf(), "tipo"},
		{"tipo desconhecido", model.DocumentFields{Titulo: "Edital", Tipo: "editais"}, pdf(), "tipo"},
		{"sem arquivo", model.DocumentFields{Titulo: "Edital", Tipo: model.TipoEditais}, nil, "arquivo"},
		{"data inválida", model.DocumentFields{Titulo: "Edital", Tipo: model.TipoEditais, DataPublicacao: "10/01/2025"}, pdf(), "dataPublicacao"},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), tc.fields, tc.file)
		var v *apperr.ValidationError
		if !errors.As(err, &v) || v.Field != tc.field {
			t.Fatalf("%s: expected validation error on %s, got %v", tc.name, tc.field, err)
		}
	}
	if len(backend.created) != 0 {
		t.Fatalf("backend must not be called on invalid input, got %d calls", len(backend.created))
	}
}

func TestCreateDefaultsPublicationDateToToday(t *testing.T) {
	backend := &stubBackend{}
	svc := NewService(backend, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }

	if _, err := svc.Create(context.Background(), model.DocumentFields{Titulo: " Edital 01 ", Tipo: model.TipoEditais}, pdf()); err != nil {
		t.Fatalf("create: %v", err)
	}
	got := backend.created[0]
	if got.DataPublicacao != "2025-03-14" || got.Titulo != "Edital 01" {
		t.Fatalf("unexpected fields sent %+v", got)
	}
}

func TestUpdateWithoutFileKeepsStoredFile(t *testing.T) {
	backend := &stubBackend{}
	svc := NewService(backend, nil)

	if _, err := svc.Update(context.Background(), 5, model.DocumentFields{Titulo: "Novo", Tipo: model.TipoOutros, DataPublicacao: "2025-01-01"}, nil); err != nil {
		t.Fatalf("update: %v", err)
	}
	if file, ok := backend.updated[5]; !ok || file != nil {
		t.Fatalf("expected update without file, got %v", backend.updated)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	backend := &stubBackend{}

	declined := NewService(backend, confirm.Always(false))
	if err := declined.Delete(context.Background(), 3); !errors.Is(err, confirm.ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if len(backend.deleted) != 0 {
		t.Fatal("declined delete must not reach the backend")
	}

	var asked string
	accepted := NewService(backend, confirm.Func(func(prompt string) bool {
		asked = prompt
		return true
	}))
	if err := accepted.Delete(context.Background(), 3); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !strings.Contains(asked, "3") || len(backend.deleted) != 1 {
		t.Fatalf("unexpected prompt %q / deleted %v", asked, backend.deleted)
	}
}

func TestDeletePropagatesBackendError(t *testing.T) {
	backend := &stubBackend{deleteErr: &apperr.TransportError{Kind: apperr.ServerError, Status: 500}}
	svc := NewService(backend, confirm.Always(true))

	var te *apperr.TransportError
	if err := svc.Delete(context.Background(), 3); !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
}
