package search

import (
	"strings"

	"github.com/uema/repositorio/internal/model"
)

// Filters é o estado dos campos da tela de consulta.
// Query vazia seleciona o modo estruturado; preenchida, o semântico.
// Texto filtra título e descrição localmente nos dois modos.
type Filters struct {
	Query    string
	Texto    string
	Tipo     model.DocumentType
	Programa string
	// De e Ate são datas ISO AAAA-MM-DD, ambas inclusivas.
	De  string
	Ate string
}

// Semantic informa se a busca vai para o backend de linguagem natural.
func (f Filters) Semantic() bool {
	return strings.TrimSpace(f.Query) != ""
}

// IsZero informa se nenhum filtro está preenchido.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// matches aplica os filtros locais. Query nunca é comparada aqui: o backend
// semântico já ranqueou por ela.
func (f Filters) matches(doc model.Document) bool {
	if t := strings.ToLower(strings.TrimSpace(f.Texto)); t != "" {
		if !strings.Contains(strings.ToLower(doc.Titulo), t) && !strings.Contains(strings.ToLower(doc.Descricao), t) {
			return false
		}
	}
	if f.Tipo != "" && doc.Tipo != f.Tipo {
		return false
	}
	if f.Programa != "" && doc.NomePrograma != f.Programa {
		return false
	}
	// ISO AAAA-MM-DD ordena lexicograficamente na mesma ordem cronológica.
	if f.De != "" && doc.DataPublicacao < f.De {
		return false
	}
	if f.Ate != "" && doc.DataPublicacao > f.Ate {
		return false
	}
	return true
}

// Apply devolve os documentos que passam pelos filtros, preservando a ordem.
func Apply(docs []model.Document, f Filters) []model.Document {
	out := make([]model.Document, 0, len(docs))
	for _, doc := range docs {
		if f.matches(doc) {
			out = append(out, doc)
		}
	}
	return out
}
