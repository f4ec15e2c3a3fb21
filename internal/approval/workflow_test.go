package approval

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/uema/repositorio/internal/apperr"
	"github.com/uema/repositorio/internal/confirm"
	"github.com/uema/repositorio/internal/model"
)

type decision struct {
	id         int64
	aprovado   bool
	comentario string
}

type stubBackend struct {
	items     []model.ApprovalItem
	decideErr error
	decisions []decision
}

func (s *stubBackend) ListPending(ctx context.Context) ([]model.ApprovalItem, error) {
	return s.items, nil
}

func (s *stubBackend) Decide(ctx context.Context, idFluxo int64, aprovado bool, comentario string) error {
	s.decisions = append(s.decisions, decision{idFluxo, aprovado, comentario})
	return s.decideErr
}

func pendingItems() []model.ApprovalItem {
	return []model.ApprovalItem{
		{IDFluxo: 41, IDDocumento: 1, Estado: model.EstadoPendente, TituloDocumento: "Edital 01"},
		{IDFluxo: 42, IDDocumento: 2, Estado: model.EstadoPendente, TituloDocumento: "Resultado"},
		{IDFluxo: 43, IDDocumento: 3, Estado: model.EstadoPendente, TituloDocumento: "Formulário"},
	}
}

func loaded(t *testing.T, backend *stubBackend, c confirm.Confirmer) *Workflow {
	t.Helper()
	w := NewWorkflow(backend, c, zerolog.Nop())
	if _, err := w.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return w
}

func TestProcessRemovesExactlyDecidedItem(t *testing.T) {
	backend := &stubBackend{items: pendingItems()}
	w := loaded(t, backend, confirm.Always(true))

	item, err := w.Process(context.Background(), 42, true, "ok")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if item.Estado != model.EstadoAprovado {
		t.Fatalf("expected APROVADO, got %s", item.Estado)
	}

	left := w.Pending()
	if len(left) != 2 || left[0].IDFluxo != 41 || left[1].IDFluxo != 43 {
		t.Fatalf("expected 41 and 43 to remain, got %+v", left)
	}
	if len(backend.decisions) != 1 || backend.decisions[0] != (decision{42, true, "ok"}) {
		t.Fatalf("unexpected backend calls %+v", backend.decisions)
	}
}

func TestProcessFailureLeavesPendingUnchanged(t *testing.T) {
	backend := &stubBackend{items: pendingItems(), decideErr: &apperr.TransportError{Kind: apperr.ServerError, Status: 500}}
	w := loaded(t, backend, confirm.Always(true))
	before := w.Pending()

	_, err := w.Process(context.Background(), 42, true, "ok")
	var te *apperr.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}

	after := w.Pending()
	if len(after) != len(before) {
		t.Fatalf("pending set changed on failure: %+v", after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("item %d changed: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestProcessDeclinedMakesNoCall(t *testing.T) {
	backend := &stubBackend{items: pendingItems()}
	w := loaded(t, backend, confirm.Always(false))

	if _, err := w.Process(context.Background(), 42, false, "incompleto"); !errors.Is(err, confirm.ErrDeclined) {
		t.Fatalf("expected ErrDeclined, got %v", err)
	}
	if len(backend.decisions) != 0 || len(w.Pending()) != 3 {
		t.Fatalf("declined decision must not mutate anything")
	}
}

func TestProcessUnknownItem(t *testing.T) {
	backend := &stubBackend{items: pendingItems()}
	w := loaded(t, backend, confirm.Always(true))

	if _, err := w.Process(context.Background(), 99, true, ""); !errors.Is(err, ErrNotPending) {
		t.Fatalf("expected ErrNotPending, got %v", err)
	}
	if len(backend.decisions) != 0 {
		t.Fatal("unknown item must not reach the backend")
	}
}

func TestLoadSkipsResolvedItems(t *testing.T) {
	items := append(pendingItems(), model.ApprovalItem{IDFluxo: 50, Estado: model.EstadoAprovado})
	w := loaded(t, &stubBackend{items: items}, nil)

	if got := w.Pending(); len(got) != 3 {
		t.Fatalf("resolved item must be skipped, got %+v", got)
	}
}
