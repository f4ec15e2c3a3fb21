package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/uema/repositorio/internal/metrics"
	"github.com/uema/repositorio/internal/model"
	"github.com/uema/repositorio/internal/repo"
	"github.com/uema/repositorio/internal/storage"
	"github.com/uema/repositorio/internal/util"
)

var (
	// ErrDocumentNotFound indica documento inexistente ou invisível para quem pede.
	ErrDocumentNotFound = errors.New("documento não encontrado")
	// ErrProgramNotFound indica programa inexistente.
	ErrProgramNotFound = errors.New("programa não encontrado")
)

const (
	comentarioAutomatico = "Aprovação automática"
	comentarioPendente   = "Aguardando análise"
	searchLimit          = 50
)

type documentRepository interface {
	ListDocumentos(ctx context.Context, arg repo.ListDocumentosParams) ([]repo.Documento, error)
	SearchDocumentos(ctx context.Context, consulta string, limit int) ([]repo.Documento, error)
	GetDocumento(ctx context.Context, id int64) (repo.Documento, error)
	CreateDocumento(ctx context.Context, arg repo.CreateDocumentoParams) (int64, error)
	UpdateDocumento(ctx context.Context, arg repo.UpdateDocumentoParams) error
	DeleteDocumento(ctx context.Context, id int64) (string, error)
	ListProgramas(ctx context.Context) ([]repo.Programa, error)
	GetPrograma(ctx context.Context, id int64) (repo.Programa, error)
}

// FileInput é o arquivo recebido no campo "arquivo".
type FileInput struct {
	Name        string
	ContentType string
	Body        []byte
}

// DocumentService aplica as regras de envio, edição, visibilidade e busca.
type DocumentService struct {
	repo    documentRepository
	files   storage.Store
	metrics metrics.Recorder
	now     func() time.Time
}

// NewDocumentService cria o serviço de documentos.
func NewDocumentService(r documentRepository, files storage.Store, recorder metrics.Recorder) *DocumentService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &DocumentService{repo: r, files: files, metrics: recorder, now: time.Now}
}

// List devolve o catálogo visível: privilegiados veem tudo, os demais só
// aprovados e os próprios envios; anônimos só aprovados.
func (s *DocumentService) List(ctx context.Context, viewer *Principal) ([]model.Document, error) {
	arg := repo.ListDocumentosParams{TodosEstados: viewer.Privileged()}
	if viewer != nil {
		arg.ViewerID = viewer.ID
	}
	docs, err := s.repo.ListDocumentos(ctx, arg)
	if err != nil {
		return nil, err
	}
	return toDocuments(docs), nil
}

// Search é a busca em linguagem natural sobre os documentos aprovados.
func (s *DocumentService) Search(ctx context.Context, consulta string) ([]model.Document, error) {
	consulta = strings.TrimSpace(consulta)
	if consulta == "" {
		return nil, missing("query")
	}
	docs, err := s.repo.SearchDocumentos(ctx, consulta, searchLimit)
	if err != nil {
		return nil, err
	}
	return toDocuments(docs), nil
}

// Programs lista os programas.
func (s *DocumentService) Programs(ctx context.Context) ([]model.Program, error) {
	programs, err := s.repo.ListProgramas(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Program, 0, len(programs))
	for _, p := range programs {
		out = append(out, model.Program{ID: p.ID, Nome: p.Nome, Sigla: p.Sigla})
	}
	return out, nil
}

type validFields struct {
	titulo         string
	descricao      string
	tipo           model.DocumentType
	dataPublicacao time.Time
	programaID     *int64
}

func (s *DocumentService) validate(ctx context.Context, fields model.DocumentFields) (validFields, error) {
	var out validFields

	out.titulo = util.SanitizeText(fields.Titulo)
	if out.titulo == "" {
		return out, missing("titulo")
	}
	out.descricao = util.SanitizeText(fields.Descricao)

	if strings.TrimSpace(string(fields.Tipo)) == "" {
		return out, missing("tipo")
	}
	tipo, ok := model.ParseDocumentType(string(fields.Tipo))
	if !ok {
		return out, invalid("tipo", "tipo %q desconhecido", fields.Tipo)
	}
	out.tipo = tipo

	if strings.TrimSpace(fields.DataPublicacao) == "" {
		y, m, d := s.now().Date()
		out.dataPublicacao = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	} else {
		date, err := time.Parse(model.DateLayout, strings.TrimSpace(fields.DataPublicacao))
		if err != nil {
			return out, invalid("dataPublicacao", "dataPublicacao deve estar no formato AAAA-MM-DD")
		}
		out.dataPublicacao = date
	}

	if fields.ProgramaID > 0 {
		if _, err := s.repo.GetPrograma(ctx, fields.ProgramaID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return out, ErrProgramNotFound
			}
			return out, err
		}
		id := fields.ProgramaID
		out.programaID = &id
	}
	return out, nil
}

func (s *DocumentService) store(ctx context.Context, file *FileInput) (repo.ArquivoParams, error) {
	name := util.SanitizeFileName(file.Name)
	key := util.NewFileKey(file.Name)
	contentType := strings.TrimSpace(file.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.files.Put(ctx, key, contentType, file.Body); err != nil {
		return repo.ArquivoParams{}, fmt.Errorf("gravando arquivo: %w", err)
	}
	return repo.ArquivoParams{Chave: key, Nome: name, Tipo: contentType}, nil
}

func (s *DocumentService) discard(ctx context.Context, key string) {
	if err := s.files.Delete(ctx, key); err != nil {
		log.Warn().Err(err).Str("chave", key).Msg("documentos: falha ao remover arquivo")
	}
}

// Create grava o arquivo e o documento. ADMIN e GESTOR publicam direto
// (aprovação automática); os demais entram na fila como PENDENTE.
func (s *DocumentService) Create(ctx context.Context, author *Principal, fields model.DocumentFields, file *FileInput) (model.Document, error) {
	if author == nil {
		return model.Document{}, ErrForbidden
	}
	valid, err := s.validate(ctx, fields)
	if err != nil {
		return model.Document{}, err
	}
	if file == nil || len(file.Body) == 0 {
		return model.Document{}, missing("arquivo")
	}

	arquivo, err := s.store(ctx, file)
	if err != nil {
		return model.Document{}, err
	}

	arg := repo.CreateDocumentoParams{
		Titulo:         valid.titulo,
		Descricao:      valid.descricao,
		Tipo:           string(valid.tipo),
		DataPublicacao: valid.dataPublicacao,
		Arquivo:        arquivo,
		AutorID:        author.ID,
		ProgramaID:     valid.programaID,
		EstadoInicial:  string(model.EstadoPendente),
		Comentario:     comentarioPendente,
	}
	if author.Privileged() {
		approver := author.ID
		arg.EstadoInicial = string(model.EstadoAprovado)
		arg.Comentario = comentarioAutomatico
		arg.AprovadorID = &approver
	}

	id, err := s.repo.CreateDocumento(ctx, arg)
	if err != nil {
		s.discard(ctx, arquivo.Chave)
		return model.Document{}, err
	}
	s.metrics.RecordUpload(arg.EstadoInicial)

	created, err := s.repo.GetDocumento(ctx, id)
	if err != nil {
		return model.Document{}, err
	}
	return toDocument(created), nil
}

// Update altera metadados; file nil preserva o arquivo armazenado.
func (s *DocumentService) Update(ctx context.Context, actor *Principal, id int64, fields model.DocumentFields, file *FileInput) (model.Document, error) {
	current, err := s.repo.GetDocumento(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Document{}, ErrDocumentNotFound
		}
		return model.Document{}, err
	}
	if !canManageDocument(actor, current.AutorID) {
		return model.Document{}, ErrForbidden
	}

	valid, err := s.validate(ctx, fields)
	if err != nil {
		return model.Document{}, err
	}

	arg := repo.UpdateDocumentoParams{
		ID:             id,
		Titulo:         valid.titulo,
		Descricao:      valid.descricao,
		Tipo:           string(valid.tipo),
		DataPublicacao: valid.dataPublicacao,
		ProgramaID:     valid.programaID,
	}
	if file != nil && len(file.Body) > 0 {
		arquivo, err := s.store(ctx, file)
		if err != nil {
			return model.Document{}, err
		}
		arg.Arquivo = &arquivo
	}

	if err := s.repo.UpdateDocumento(ctx, arg); err != nil {
		if arg.Arquivo != nil {
			s.discard(ctx, arg.Arquivo.Chave)
		}
		if errors.Is(err, repo.ErrNotFound) {
			return model.Document{}, ErrDocumentNotFound
		}
		return model.Document{}, err
	}
	if arg.Arquivo != nil {
		s.discard(ctx, current.ArquivoChave)
	}

	updated, err := s.repo.GetDocumento(ctx, id)
	if err != nil {
		return model.Document{}, err
	}
	return toDocument(updated), nil
}

// Delete remove o documento e, depois, o arquivo.
func (s *DocumentService) Delete(ctx context.Context, actor *Principal, id int64) error {
	current, err := s.repo.GetDocumento(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}
	if !canManageDocument(actor, current.AutorID) {
		return ErrForbidden
	}

	key, err := s.repo.DeleteDocumento(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}
	s.discard(ctx, key)
	return nil
}

// Download abre o arquivo de um documento visível para viewer.
func (s *DocumentService) Download(ctx context.Context, viewer *Principal, id int64) (*storage.Object, string, error) {
	doc, err := s.repo.GetDocumento(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrDocumentNotFound
		}
		return nil, "", err
	}
	if !canSeeDocument(viewer, doc.AutorID, doc.Estado) {
		return nil, "", ErrDocumentNotFound
	}

	obj, err := s.files.Open(ctx, doc.ArquivoChave)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrDocumentNotFound
		}
		return nil, "", err
	}
	if doc.ArquivoTipo != "" {
		obj.ContentType = doc.ArquivoTipo
	}
	return obj, doc.ArquivoNome, nil
}

func toDocument(d repo.Documento) model.Document {
	doc := model.Document{
		ID:             d.ID,
		Titulo:         d.Titulo,
		Descricao:      d.Descricao,
		Tipo:           model.DocumentType(d.Tipo),
		DataPublicacao: d.DataPublicacao.Format(model.DateLayout),
		NomeAutor:      d.NomeAutor,
		URLDownload:    fmt.Sprintf("/documentos/download/%d", d.ID),
		Status:         model.ApprovalStatus(d.Estado),
	}
	if d.ProgramaID != nil {
		doc.ProgramaID = *d.ProgramaID
	}
	if d.NomePrograma != nil {
		doc.NomePrograma = *d.NomePrograma
	}
	return doc
}

func toDocuments(docs []repo.Documento) []model.Document {
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocument(d))
	}
	return out
}
