package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/uema/repositorio/internal/model"
	"github.com/uema/repositorio/internal/repo"
	"github.com/uema/repositorio/internal/storage"
)

type memStore struct {
	objects map[string][]byte
	deleted []string
}

func (m *memStore) Put(ctx context.Context, key, contentType string, body []byte) error {
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = append([]byte(nil), body...)
	return nil
}

func (m *memStore) Open(ctx context.Context, key string) (*storage.Object, error) {
	body, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &storage.Object{Body: io.NopCloser(bytes.NewReader(body)), Size: int64(len(body))}, nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.objects, key)
	return nil
}

type stubDocRepo struct {
	docs      map[int64]repo.Documento
	created   []repo.CreateDocumentoParams
	listArg   repo.ListDocumentosParams
	createErr error
	programas []repo.Programa
}

func (s *stubDocRepo) ListDocumentos(ctx context.Context, arg repo.ListDocumentosParams) ([]repo.Documento, error) {
	s.listArg = arg
	var out []repo.Documento
	for _, d := range s.docs {
		if arg.TodosEstados || d.Estado == "APROVADO" || d.AutorID == arg.ViewerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *stubDocRepo) SearchDocumentos(ctx context.Context, consulta string, limit int) ([]repo.Documento, error) {
	return nil, nil
}

func (s *stubDocRepo) GetDocumento(ctx context.Context, id int64) (repo.Documento, error) {
	d, ok := s.docs[id]
	if !ok {
		return repo.Documento{}, repo.ErrNotFound
	}
	return d, nil
}

func (s *stubDocRepo) CreateDocumento(ctx context.Context, arg repo.CreateDocumentoParams) (int64, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	s.created = append(s.created, arg)
	if s.docs == nil {
		s.docs = make(map[int64]repo.Documento)
	}
	id := int64(len(s.docs) + 1)
	s.docs[id] = repo.Documento{
		ID:             id,
		Titulo:         arg.Titulo,
		Tipo:           arg.Tipo,
		DataPublicacao: arg.DataPublicacao,
		ArquivoChave:   arg.Arquivo.Chave,
		ArquivoNome:    arg.Arquivo.Nome,
		ArquivoTipo:    arg.Arquivo.Tipo,
		AutorID:        arg.AutorID,
		ProgramaID:     arg.ProgramaID,
		Estado:         arg.EstadoInicial,
	}
	return id, nil
}

func (s *stubDocRepo) UpdateDocumento(ctx context.Context, arg repo.UpdateDocumentoParams) error {
	d, ok := s.docs[arg.ID]
	if !ok {
		return repo.ErrNotFound
	}
	d.Titulo = arg.Titulo
	if arg.Arquivo != nil {
		d.ArquivoChave = arg.Arquivo.Chave
		d.ArquivoNome = arg.Arquivo.Nome
	}
	s.docs[arg.ID] = d
	return nil
}

func (s *stubDocRepo) DeleteDocumento(ctx context.Context, id int64) (string, error) {
	d, ok := s.docs[id]
	if !ok {
		return "", repo.ErrNotFound
	}
	delete(s.docs, id)
	return d.ArquivoChave, nil
}

func (s *stubDocRepo) ListProgramas(ctx context.Context) ([]repo.Programa, error) {
	return s.programas, nil
}

func (s *stubDocRepo) GetPrograma(ctx context.Context, id int64) (repo.Programa, error) {
	for _, p := range s.programas {
		if p.ID == id {
			return p, nil
		}
	}
	return repo.Programa{}, repo.ErrNotFound
}

func newDocService(r *stubDocRepo, files *memStore) *DocumentService {
	svc := NewDocumentService(r, files, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC) }
	return svc
}

var pdf = &FileInput{Name: "edital final.pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.4")}

func TestCreateAutoApprovesPrivilegedAuthors(t *testing.T) {
	cases := []struct {
		perfil     model.Role
		estado     string
		comentario string
		aprovador  bool
	}{
		{model.RoleAdmin, "APROVADO", comentarioAutomatico, true},
		{model.RoleGestor, "APROVADO", comentarioAutomatico, true},
		{model.RoleFuncionario, "PENDENTE", comentarioPendente, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.perfil), func(t *testing.T) {
			r := &stubDocRepo{}
			svc := newDocService(r, &memStore{})
			author := &Principal{ID: 5, Perfil: tc.perfil}

			doc, err := svc.Create(context.Background(), author, model.DocumentFields{Titulo: "Edital 01", Tipo: model.TipoEditais}, pdf)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			arg := r.created[0]
			if arg.EstadoInicial != tc.estado || arg.Comentario != tc.comentario {
				t.Fatalf("unexpected flow %s / %s", arg.EstadoInicial, arg.Comentario)
			}
			if (arg.AprovadorID != nil) != tc.aprovador {
				t.Fatalf("aprovador = %v", arg.AprovadorID)
			}
			if tc.aprovador && *arg.AprovadorID != author.ID {
				t.Fatalf("auto approval must name the author, got %d", *arg.AprovadorID)
			}
			if doc.DataPublicacao != "2025-03-14" {
				t.Fatalf("empty date must default to today, got %q", doc.DataPublicacao)
			}
			if doc.URLDownload != "/documentos/download/1" {
				t.Fatalf("urlDownload = %q", doc.URLDownload)
			}
		})
	}
}

func TestCreateValidation(t *testing.T) {
	r := &stubDocRepo{programas: []repo.Programa{{ID: 1, Nome: "PPGEC"}}}
	files := &memStore{}
	svc := newDocService(r, files)
	author := &Principal{ID: 5, Perfil: model.RoleFuncionario}
	ctx := context.Background()

	cases := []struct {
		name   string
		fields model.DocumentFields
		file   *FileInput
		field  string
	}{
		{"sem titulo", model.DocumentFields{Tipo: model.TipoEditais}, pdf, "titulo"},
		{"sem tipo", model.DocumentFields{Titulo: "X"}, pdf, "tipo"},
		{"tipo minusculo", model.DocumentFields{Titulo: "X", Tipo: "editais"}, pdf, "tipo"},
		{"data invalida", model.DocumentFields{Titulo: "X", Tipo: model.TipoEditais, DataPublicacao: "14/03/2025"}, pdf, "dataPublicacao"},
		{"sem arquivo", model.DocumentFields{Titulo: "X", Tipo: model.TipoEditais}, nil, "arquivo"},
	}
	for _, tc := range cases {
		_, err := svc.Create(ctx, author, tc.fields, tc.file)
		var invalidErr *InvalidInputError
		if !errors.As(err, &invalidErr) || invalidErr.Field != tc.field {
			t.Fatalf("%s: expected invalid %s, got %v", tc.name, tc.field, err)
		}
	}

	_, err := svc.Create(ctx, author, model.DocumentFields{Titulo: "X", Tipo: model.TipoEditais, ProgramaID: 9}, pdf)
	if !errors.Is(err, ErrProgramNotFound) {
		t.Fatalf("expected ErrProgramNotFound, got %v", err)
	}
	if len(files.objects) != 0 || len(r.created) != 0 {
		t.Fatal("rejected uploads must not touch storage or database")
	}

	if _, err := svc.Create(ctx, nil, model.DocumentFields{Titulo: "X", Tipo: model.TipoEditais}, pdf); !errors.Is(err, ErrForbidden) {
		t.Fatalf("anonymous upload: %v", err)
	}
}

func TestCreateDiscardsFileWhenInsertFails(t *testing.T) {
	r := &stubDocRepo{createErr: errors.New("db fora")}
	files := &memStore{}
	svc := newDocService(r, files)

	if _, err := svc.Create(context.Background(), &Principal{ID: 1, Perfil: model.RoleAdmin}, model.DocumentFields{Titulo: "X", Tipo: model.TipoOutros}, pdf); err == nil {
		t.Fatal("expected error")
	}
	if len(files.objects) != 0 || len(files.deleted) != 1 {
		t.Fatalf("orphan file left behind: objects=%v deleted=%v", files.objects, files.deleted)
	}
}

func TestListVisibility(t *testing.T) {
	r := &stubDocRepo{docs: map[int64]repo.Documento{
		1: {ID: 1, AutorID: 10, Estado: "APROVADO"},
		2: {ID: 2, AutorID: 10, Estado: "PENDENTE"},
		3: {ID: 3, AutorID: 20, Estado: "PENDENTE"},
		4: {ID: 4, AutorID: 20, Estado: "REJEITADO"},
	}}
	svc := newDocService(r, &memStore{})
	ctx := context.Background()

	cases := []struct {
		name   string
		viewer *Principal
		want   int
	}{
		{"anonimo", nil, 1},
		{"autor", &Principal{ID: 10, Perfil: model.RoleFuncionario}, 2},
		{"outro funcionario", &Principal{ID: 30, Perfil: model.RoleFuncionario}, 1},
		{"gestor", &Principal{ID: 30, Perfil: model.RoleGestor}, 4},
	}
	for _, tc := range cases {
		docs, err := svc.List(ctx, tc.viewer)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if len(docs) != tc.want {
			t.Fatalf("%s: got %d documents, want %d", tc.name, len(docs), tc.want)
		}
	}
}

func TestUpdateAndDeletePermissions(t *testing.T) {
	files := &memStore{objects: map[string][]byte{"k1": []byte("a")}}
	r := &stubDocRepo{docs: map[int64]repo.Documento{
		1: {ID: 1, AutorID: 10, Estado: "PENDENTE", ArquivoChave: "k1", Tipo: "OUTROS"},
	}}
	svc := newDocService(r, files)
	ctx := context.Background()
	fields := model.DocumentFields{Titulo: "Novo", Tipo: model.TipoOutros}

	if _, err := svc.Update(ctx, &Principal{ID: 11, Perfil: model.RoleFuncionario}, 1, fields, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other user update: %v", err)
	}

	doc, err := svc.Update(ctx, &Principal{ID: 10, Perfil: model.RoleFuncionario}, 1, fields, nil)
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if doc.Titulo != "Novo" || r.docs[1].ArquivoChave != "k1" {
		t.Fatalf("update without file must keep the stored file: %+v", r.docs[1])
	}

	if _, err := svc.Update(ctx, &Principal{ID: 1, Perfil: model.RoleGestor}, 1, fields, pdf); err != nil {
		t.Fatalf("gestor update with file: %v", err)
	}
	if _, ok := files.objects["k1"]; ok {
		t.Fatal("replaced file must be removed")
	}

	if err := svc.Delete(ctx, &Principal{ID: 1, Perfil: model.RoleAdmin}, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, &Principal{ID: 1, Perfil: model.RoleAdmin}, 1); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestDownloadHidesUnapprovedDocuments(t *testing.T) {
	files := &memStore{objects: map[string][]byte{"k": []byte("%PDF")}}
	r := &stubDocRepo{docs: map[int64]repo.Documento{
		1: {ID: 1, AutorID: 10, Estado: "PENDENTE", ArquivoChave: "k", ArquivoNome: "a.pdf", ArquivoTipo: "application/pdf"},
	}}
	svc := newDocService(r, files)

	if _, _, err := svc.Download(context.Background(), nil, 1); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("anonymous download of pending document: %v", err)
	}

	obj, name, err := svc.Download(context.Background(), &Principal{ID: 10, Perfil: model.RoleFuncionario}, 1)
	if err != nil {
		t.Fatalf("author download: %v", err)
	}
	defer obj.Body.Close()
	if name != "a.pdf" || obj.ContentType != "application/pdf" {
		t.Fatalf("unexpected object %s %s", name, obj.ContentType)
	}
}

type stubApprovalRepo struct {
	pending []repo.FluxoPendente
	decided []repo.DecideFluxoParams
	err     error
}

func (s *stubApprovalRepo) ListFluxosPendentes(ctx context.Context) ([]repo.FluxoPendente, error) {
	return s.pending, nil
}

func (s *stubApprovalRepo) DecideFluxo(ctx context.Context, arg repo.DecideFluxoParams) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.decided = append(s.decided, arg)
	return 7, nil
}

func TestPendingFormatsRequestDate(t *testing.T) {
	programa := "PPGEC"
	r := &stubApprovalRepo{pending: []repo.FluxoPendente{{
		ID: 42, DocumentoID: 7, Estado: "PENDENTE", TituloDocumento: "Edital",
		NomeAutor: "Ana", NomePrograma: &programa,
		DataSolicitacao: time.Date(2025, 1, 2, 9, 5, 0, 0, time.UTC),
	}}}
	items, err := NewApprovalService(r, nil).Pending(context.Background())
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(items) != 1 || items[0].DataSolicitacao != "02/01/2025 09:05" || items[0].NomePrograma != "PPGEC" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestDecideRules(t *testing.T) {
	ctx := context.Background()
	gestor := &Principal{ID: 2, Perfil: model.RoleGestor}

	r := &stubApprovalRepo{}
	svc := NewApprovalService(r, nil)
	if err := svc.Decide(ctx, &Principal{ID: 3, Perfil: model.RoleFuncionario}, 42, true, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("funcionario decide: %v", err)
	}
	if err := svc.Decide(ctx, gestor, 42, false, " faltou assinatura "); err != nil {
		t.Fatalf("decide: %v", err)
	}
	got := r.decided[0]
	if got.Estado != "REJEITADO" || got.Comentario != "faltou assinatura" || got.AprovadorID != 2 {
		t.Fatalf("unexpected decision %+v", got)
	}

	r.err = repo.ErrNotPending
	if err := svc.Decide(ctx, gestor, 42, true, ""); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
	r.err = repo.ErrNotFound
	if err := svc.Decide(ctx, gestor, 99, true, ""); !errors.Is(err, ErrApprovalNotFound) {
		t.Fatalf("expected ErrApprovalNotFound, got %v", err)
	}
}
