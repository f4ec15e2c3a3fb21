// Package approval mantém a fila de aprovações pendentes e aplica as decisões do operador.
package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/uema/repositorio/internal/confirm"
	"github.com/uema/repositorio/internal/model"
)

// ErrNotPending indica que o fluxo não está na fila carregada.
var ErrNotPending = errors.New("fluxo de aprovação não está pendente")

// Backend é o lado HTTP das aprovações.
type Backend interface {
	ListPending(ctx context.Context) ([]model.ApprovalItem, error)
	Decide(ctx context.Context, idFluxo int64, aprovado bool, comentario string) error
}

type Workflow struct {
	backend Backend
	confirm confirm.Confirmer
	logger  zerolog.Logger

	mu      sync.Mutex
	pending []model.ApprovalItem
}

func NewWorkflow(backend Backend, confirmer confirm.Confirmer, logger zerolog.Logger) *Workflow {
	return &Workflow{backend: backend, confirm: confirmer, logger: logger}
}

// Load substitui a fila local pela lista atual do backend.
// Itens já resolvidos que o backend ainda devolva são ignorados.
func (w *Workflow) Load(ctx context.Context) ([]model.ApprovalItem, error) {
	items, err := w.backend.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	pending := make([]model.ApprovalItem, 0, len(items))
	for _, item := range items {
		if item.Estado != "" && item.Estado.Terminal() {
			continue
		}
		pending = append(pending, item)
	}

	w.mu.Lock()
	w.pending = pending
	w.mu.Unlock()
	return w.Pending(), nil
}

// Pending devolve uma cópia da fila.
func (w *Workflow) Pending() []model.ApprovalItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]model.ApprovalItem, len(w.pending))
	copy(out, w.pending)
	return out
}

// Process confirma com o operador, envia a decisão e só então retira o item da fila.
// Se o backend falhar a fila fica como estava.
func (w *Workflow) Process(ctx context.Context, idFluxo int64, aprovado bool, comentario string) (model.ApprovalItem, error) {
	item, ok := w.find(idFluxo)
	if !ok {
		return model.ApprovalItem{}, ErrNotPending
	}

	verb := "Rejeitar"
	if aprovado {
		verb = "Aprovar"
	}
	prompt := fmt.Sprintf("%s o documento %q (fluxo %d)?", verb, item.TituloDocumento, idFluxo)
	if err := confirm.Require(w.confirm, prompt); err != nil {
		return model.ApprovalItem{}, err
	}

	if err := w.backend.Decide(ctx, idFluxo, aprovado, strings.TrimSpace(comentario)); err != nil {
		w.logger.Warn().Err(err).Int64("id_fluxo", idFluxo).Msg("falha ao registrar decisão")
		return model.ApprovalItem{}, err
	}

	w.remove(idFluxo)
	item.Estado = model.EstadoRejeitado
	if aprovado {
		item.Estado = model.EstadoAprovado
	}
	w.logger.Info().Int64("id_fluxo", idFluxo).Str("estado", string(item.Estado)).Msg("decisão registrada")
	return item, nil
}

func (w *Workflow) find(idFluxo int64) (model.ApprovalItem, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, item := range w.pending {
		if item.IDFluxo == idFluxo {
			return item, true
		}
	}
	return model.ApprovalItem{}, false
}

func (w *Workflow) remove(idFluxo int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.pending[:0]
	for _, item := range w.pending {
		if item.IDFluxo != idFluxo {
			kept = append(kept, item)
		}
	}
	w.pending = kept
}
