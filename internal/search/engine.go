// Package search combina a consulta estruturada sobre o catálogo e a busca semântica
// num único conjunto de resultados.
package search

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/uema/repositorio/internal/model"
)

// ErrStale indica que uma busca mais recente começou antes desta terminar;
// o resultado foi descartado.
var ErrStale = errors.New("busca substituída por outra mais recente")

// Catalog fornece o catálogo completo para o modo estruturado.
type Catalog interface {
	ListDocuments(ctx context.Context) ([]model.Document, error)
}

// Semantic responde consultas em linguagem natural.
type Semantic interface {
	SmartSearch(ctx context.Context, query string) ([]model.Document, error)
}

type Engine struct {
	catalog  Catalog
	semantic Semantic
	logger   zerolog.Logger

	mu      sync.Mutex
	seq     uint64
	filters Filters
	results []model.Document
}

func NewEngine(catalog Catalog, semantic Semantic, logger zerolog.Logger) *Engine {
	return &Engine{catalog: catalog, semantic: semantic, logger: logger}
}

// Search executa a busca com os filtros dados. Só a busca mais recente aplica
// seu resultado; as anteriores que terminarem depois devolvem ErrStale.
// Em caso de erro os resultados anteriores são mantidos.
func (e *Engine) Search(ctx context.Context, f Filters) ([]model.Document, error) {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	e.filters = f
	e.mu.Unlock()

	docs, err := e.fetch(ctx, f)

	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.seq {
		e.logger.Debug().Uint64("seq", seq).Uint64("atual", e.seq).Msg("resultado de busca descartado")
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}

	e.results = Apply(docs, f)
	return cloneDocs(e.results), nil
}

func (e *Engine) fetch(ctx context.Context, f Filters) ([]model.Document, error) {
	if f.Semantic() {
		return e.semantic.SmartSearch(ctx, f.Query)
	}
	return e.catalog.ListDocuments(ctx)
}

// ClearFilters zera os filtros e recarrega o catálogo sem filtro.
func (e *Engine) ClearFilters(ctx context.Context) ([]model.Document, error) {
	return e.Search(ctx, Filters{})
}

// Invalidate descarta qualquer busca em andamento, como ao sair da tela.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	e.seq++
	e.mu.Unlock()
}

// Results devolve uma cópia do último resultado aplicado.
func (e *Engine) Results() []model.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneDocs(e.results)
}

// Filters devolve os filtros da última busca iniciada.
func (e *Engine) Filters() Filters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filters
}

// Categories lista os tipos distintos presentes no resultado atual.
func (e *Engine) Categories() []model.DocumentType {
	e.mu.Lock()
	defer e.mu.Unlock()

	seen := map[model.DocumentType]struct{}{}
	var out []model.DocumentType
	for _, doc := range e.results {
		if doc.Tipo == "" {
			continue
		}
		if _, ok := seen[doc.Tipo]; ok {
			continue
		}
		seen[doc.Tipo] = struct{}{}
		out = append(out, doc.Tipo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func cloneDocs(docs []model.Document) []model.Document {
	if docs == nil {
		return nil
	}
	out := make([]model.Document, len(docs))
	copy(out, docs)
	return out
}
