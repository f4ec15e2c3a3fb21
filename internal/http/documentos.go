package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	httpmiddleware "github.com/uema/repositorio/internal/http/middleware"
	"github.com/uema/repositorio/internal/model"
	"github.com/uema/repositorio/internal/service"
)

// ListDocuments lista o catálogo visível para quem pede.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.List(r.Context(), httpmiddleware.GetPrincipal(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, docs)
}

// ListPrograms devolve os programas de referência.
func (h *Handler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := h.documents.Programs(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, programs)
}

// SmartSearch atende a busca em linguagem natural.
func (h *Handler) SmartSearch(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	docs, err := h.documents.Search(r.Context(), payload.Query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, docs)
}

// CreateDocument recebe o formulário multipart do envio.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	fields, file, ok := h.parseDocumentForm(w, r)
	if !ok {
		return
	}

	doc, err := h.documents.Create(r.Context(), httpmiddleware.GetPrincipal(r.Context()), fields, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, doc)
}

// UpdateDocument altera metadados e, se vier arquivo, substitui o armazenado.
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	fields, file, ok := h.parseDocumentForm(w, r)
	if !ok {
		return
	}

	doc, err := h.documents.Update(r.Context(), httpmiddleware.GetPrincipal(r.Context()), id, fields, file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, doc)
}

// DeleteDocument remove o documento e seu arquivo.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.documents.Delete(r.Context(), httpmiddleware.GetPrincipal(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DownloadDocument devolve o arquivo original como anexo.
func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	obj, filename, err := h.documents.Download(r.Context(), httpmiddleware.GetPrincipal(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer obj.Body.Close()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj.Body); err != nil {
		log.Warn().Err(err).Int64("documento_id", id).Msg("download interrompido")
	}
}

// parseDocumentForm lê os campos do formulário; arquivo ausente vira nil.
func (h *Handler) parseDocumentForm(w http.ResponseWriter, r *http.Request) (model.DocumentFields, *service.FileInput, bool) {
	limit := h.cfg.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+(1<<20))

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "VALIDATION", fmt.Sprintf("arquivo excede %d bytes", limit), nil)
			return model.DocumentFields{}, nil, false
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", "formulário inválido", nil)
		return model.DocumentFields{}, nil, false
	}

	fields := model.DocumentFields{
		Titulo:         r.FormValue("titulo"),
		Descricao:      r.FormValue("descricao"),
		Tipo:           model.DocumentType(strings.TrimSpace(r.FormValue("tipo"))),
		DataPublicacao: r.FormValue("dataPublicacao"),
	}
	if raw := strings.TrimSpace(r.FormValue("programaId")); raw != "" {
		programaID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || programaID < 0 {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "programaId inválido", map[string]string{"field": "programaId"})
			return model.DocumentFields{}, nil, false
		}
		fields.ProgramaID = programaID
	}

	header := firstFile(r.MultipartForm, "arquivo")
	if header == nil {
		return fields, nil, true
	}
	data, contentType, err := readMultipartFile(header, limit)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), map[string]string{"field": "arquivo"})
		return model.DocumentFields{}, nil, false
	}
	return fields, &service.FileInput{Name: header.Filename, ContentType: contentType, Body: data}, true
}

func firstFile(form *multipart.Form, field string) *multipart.FileHeader {
	if form == nil {
		return nil
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}

func readMultipartFile(header *multipart.FileHeader, limit int64) ([]byte, string, error) {
	file, err := header.Open()
	if err != nil {
		return nil, "", fmt.Errorf("falha ao abrir arquivo: %w", err)
	}
	defer file.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(file, limit+1)); err != nil {
		return nil, "", fmt.Errorf("falha ao ler arquivo: %w", err)
	}

	if int64(buf.Len()) > limit {
		return nil, "", fmt.Errorf("arquivo excede %d bytes", limit)
	}

	contentType := header.Header.Get("Content-Type")
	if strings.TrimSpace(contentType) == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(buf.Bytes())
	}

	return buf.Bytes(), contentType, nil
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if value == "" {
		return 0, errors.New("empty")
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("id deve ser positivo")
	}
	return id, nil
}
