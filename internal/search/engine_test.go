package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/uema/repositorio/internal/model"
)

type stubCatalog struct {
	docs []model.Document
	err  error
}

func (s *stubCatalog) ListDocuments(ctx context.Context) ([]model.Document, error) {
	return s.docs, s.err
}

// stubSemantic responde cada consulta pelo canal registrado para ela.
type stubSemantic struct {
	started chan string
	replies map[string]chan []model.Document
}

func (s *stubSemantic) SmartSearch(ctx context.Context, query string) ([]model.Document, error) {
	if s.started != nil {
		s.started <- query
	}
	reply, ok := s.replies[query]
	if !ok {
		return nil, errors.New("consulta inesperada")
	}
	select {
	case docs := <-reply:
		return docs, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

var catalog = []model.Document{
	{ID: 1, Titulo: "Edital de Seleção 2025", Tipo: model.TipoEditais, NomePrograma: "PPGEC", DataPublicacao: "2025-01-10"},
	{ID: 2, Titulo: "Resultado final", Descricao: "lista de aprovados no edital", Tipo: model.TipoResultados, NomePrograma: "PPGEC", DataPublicacao: "2025-02-01"},
	{ID: 3, Titulo: "Formulário de inscrição", Tipo: model.TipoFormularios, NomePrograma: "PPGA", DataPublicacao: "2025-02-15"},
	{ID: 4, Titulo: "Edital retificado", Tipo: model.TipoEditais, NomePrograma: "PPGA", DataPublicacao: "2025-03-01"},
	{ID: 5, Titulo: "editais antigos", Tipo: "editais", NomePrograma: "PPGA", DataPublicacao: "2024-12-31"},
}

func ids(docs []model.Document) []int64 {
	out := make([]int64, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func sameIDs(got []model.Document, want ...int64) bool {
	g := ids(got)
	if len(g) != len(want) {
		return false
	}
	for i := range g {
		if g[i] != want[i] {
			return false
		}
	}
	return true
}

func TestStructuredCategoryIsExactMatch(t *testing.T) {
	engine := NewEngine(&stubCatalog{docs: catalog}, &stubSemantic{}, zerolog.Nop())

	got, err := engine.Search(context.Background(), Filters{Tipo: model.TipoEditais})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !sameIDs(got, 1, 4) {
		t.Fatalf("expected only EDITAIS documents, got %v", ids(got))
	}
	for _, doc := range got {
		if doc.Tipo != "EDITAIS" {
			t.Fatalf("unexpected tipo %q", doc.Tipo)
		}
	}
}

func TestTextFilterIsCaseInsensitiveOnTitleAndDescription(t *testing.T) {
	got := Apply(catalog, Filters{})
	if len(got) != len(catalog) {
		t.Fatalf("empty filters must keep everything, got %v", ids(got))
	}

	engine := NewEngine(&stubCatalog{docs: catalog}, &stubSemantic{}, zerolog.Nop())
	got, err := engine.Search(context.Background(), Filters{Texto: "EDITAL"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !sameIDs(got, 1, 2, 4) {
		t.Fatalf("unexpected text matches %v", ids(got))
	}

	reply := make(chan []model.Document, 1)
	reply <- catalog
	semantic := &stubSemantic{replies: map[string]chan []model.Document{"seleção": reply}}
	engine = NewEngine(&stubCatalog{}, semantic, zerolog.Nop())
	got, err = engine.Search(context.Background(), Filters{Query: "seleção", Texto: "retificado"})
	if err != nil {
		t.Fatalf("semantic search: %v", err)
	}
	if !sameIDs(got, 4) {
		t.Fatalf("text filter must narrow semantic results too, got %v", ids(got))
	}
}

func TestDateBoundsAreInclusive(t *testing.T) {
	engine := NewEngine(&stubCatalog{docs: catalog}, &stubSemantic{}, zerolog.Nop())

	got, err := engine.Search(context.Background(), Filters{De: "2025-01-10", Ate: "2025-02-15"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !sameIDs(got, 1, 2, 3) {
		t.Fatalf("documents on the bounds must be included, got %v", ids(got))
	}
}

func TestFiltersApplyToSemanticResults(t *testing.T) {
	reply := make(chan []model.Document, 1)
	reply <- catalog
	semantic := &stubSemantic{replies: map[string]chan []model.Document{"bolsas de mestrado": reply}}
	engine := NewEngine(&stubCatalog{}, semantic, zerolog.Nop())

	got, err := engine.Search(context.Background(), Filters{Query: "bolsas de mestrado", Programa: "PPGA", Tipo: model.TipoEditais})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	// a consulta não aparece no título, mas o resultado semântico é mantido
	if !sameIDs(got, 4) {
		t.Fatalf("expected semantic result narrowed by program and tipo, got %v", ids(got))
	}
}

func TestStaleSemanticResponseIsDiscarded(t *testing.T) {
	replyA := make(chan []model.Document)
	replyB := make(chan []model.Document, 1)
	semantic := &stubSemantic{
		started: make(chan string, 2),
		replies: map[string]chan []model.Document{"consulta A": replyA, "consulta B": replyB},
	}
	engine := NewEngine(&stubCatalog{}, semantic, zerolog.Nop())
	ctx := context.Background()

	errA := make(chan error, 1)
	go func() {
		_, err := engine.Search(ctx, Filters{Query: "consulta A"})
		errA <- err
	}()
	<-semantic.started

	replyB <- []model.Document{{ID: 20, Tipo: model.TipoOutros}}
	got, err := engine.Search(ctx, Filters{Query: "consulta B"})
	<-semantic.started
	if err != nil || !sameIDs(got, 20) {
		t.Fatalf("search B: %v %v", ids(got), err)
	}

	replyA <- []model.Document{{ID: 10, Tipo: model.TipoOutros}}
	select {
	case err := <-errA:
		if !errors.Is(err, ErrStale) {
			t.Fatalf("late response A must be stale, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("search A did not finish")
	}

	if final := engine.Results(); !sameIDs(final, 20) {
		t.Fatalf("final results must be B's, got %v", ids(final))
	}
}

func TestInvalidateDiscardsInFlightSearch(t *testing.T) {
	reply := make(chan []model.Document)
	semantic := &stubSemantic{started: make(chan string, 1), replies: map[string]chan []model.Document{"q": reply}}
	engine := NewEngine(&stubCatalog{}, semantic, zerolog.Nop())

	done := make(chan error, 1)
	go func() {
		_, err := engine.Search(context.Background(), Filters{Query: "q"})
		done <- err
	}()
	<-semantic.started
	engine.Invalidate()
	reply <- []model.Document{{ID: 1}}

	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale after Invalidate, got %v", err)
	}
	if len(engine.Results()) != 0 {
		t.Fatalf("invalidated search must not apply results, got %v", ids(engine.Results()))
	}
}

func TestFailedSearchKeepsPreviousResults(t *testing.T) {
	cat := &stubCatalog{docs: catalog}
	engine := NewEngine(cat, &stubSemantic{}, zerolog.Nop())
	ctx := context.Background()

	if _, err := engine.Search(ctx, Filters{Tipo: model.TipoEditais}); err != nil {
		t.Fatalf("search: %v", err)
	}
	cat.err = errors.New("backend fora do ar")
	if _, err := engine.Search(ctx, Filters{}); err == nil {
		t.Fatal("expected error")
	}
	if !sameIDs(engine.Results(), 1, 4) {
		t.Fatalf("previous results must survive a failure, got %v", ids(engine.Results()))
	}
}

func TestClearFiltersReloadsCatalog(t *testing.T) {
	engine := NewEngine(&stubCatalog{docs: catalog}, &stubSemantic{}, zerolog.Nop())
	ctx := context.Background()

	if _, err := engine.Search(ctx, Filters{Programa: "PPGEC"}); err != nil {
		t.Fatalf("search: %v", err)
	}
	got, err := engine.ClearFilters(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(got) != len(catalog) || !engine.Filters().IsZero() {
		t.Fatalf("expected full catalog and zero filters, got %v %+v", ids(got), engine.Filters())
	}
	cats := engine.Categories()
	if len(cats) != 4 || cats[0] != model.TipoEditais {
		t.Fatalf("unexpected categories %v", cats)
	}
}
