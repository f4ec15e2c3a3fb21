package model

import "strings"

// DocumentType é a categoria de um documento.
type DocumentType string

const (
	TipoEditais       DocumentType = "EDITAIS"
	TipoResultados    DocumentType = "RESULTADOS"
	TipoFormularios   DocumentType = "FORMULARIOS"
	TipoOutros        DocumentType = "OUTROS"
	TipoDocumentacoes DocumentType = "DOCUMENTACOES"
	TipoResolucoes    DocumentType = "RESOLUCOES"
)

// DocumentTypes lista as categorias na ordem apresentada no envio.
var DocumentTypes = []DocumentType{
	TipoEditais,
	TipoResultados,
	TipoFormularios,
	TipoOutros,
	TipoDocumentacoes,
	TipoResolucoes,
}

// ParseDocumentType valida a categoria informada sem alterar maiúsculas.
func ParseDocumentType(value string) (DocumentType, bool) {
	value = strings.TrimSpace(value)
	for _, t := range DocumentTypes {
		if string(t) == value {
			return t, true
		}
	}
	return DocumentType(value), false
}

// DateLayout é o formato ISO usado em dataPublicacao.
const DateLayout = "2006-01-02"

// Document é o registro público de um documento do repositório.
type Document struct {
	ID             int64          `json:"id"`
	Titulo         string         `json:"titulo"`
	Descricao      string         `json:"descricao"`
	Tipo           DocumentType   `json:"tipo"`
	DataPublicacao string         `json:"dataPublicacao"`
	NomeAutor      string         `json:"nomeAutor"`
	ProgramaID     int64          `json:"programaId"`
	NomePrograma   string         `json:"nomePrograma"`
	URLDownload    string         `json:"urlDownload"`
	Status         ApprovalStatus `json:"status,omitempty"`
}

// DocumentFields são os metadados editáveis de um documento.
type DocumentFields struct {
	Titulo         string
	Descricao      string
	Tipo           DocumentType
	DataPublicacao string
	ProgramaID     int64
}

// Program é um programa de pós-graduação (dado de referência).
type Program struct {
	ID    int64  `json:"id"`
	Nome  string `json:"nome"`
	Sigla string `json:"sigla"`
}
