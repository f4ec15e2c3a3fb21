package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/uema/repositorio/internal/metrics"
	"github.com/uema/repositorio/internal/model"
	"github.com/uema/repositorio/internal/repo"
)

var (
	// ErrApprovalNotFound indica fluxo inexistente.
	ErrApprovalNotFound = errors.New("fluxo de aprovação não encontrado")
	// ErrAlreadyDecided indica fluxo que já saiu de PENDENTE.
	ErrAlreadyDecided = errors.New("documento já foi analisado")
)

// SolicitacaoLayout formata dataSolicitacao como dd/MM/yyyy HH:mm.
const SolicitacaoLayout = "02/01/2006 15:04"

type approvalRepository interface {
	ListFluxosPendentes(ctx context.Context) ([]repo.FluxoPendente, error)
	DecideFluxo(ctx context.Context, arg repo.DecideFluxoParams) (int64, error)
}

// ApprovalService conduz a fila de aprovação: PENDENTE vai para APROVADO ou
// REJEITADO uma única vez.
type ApprovalService struct {
	repo    approvalRepository
	metrics metrics.Recorder
}

func NewApprovalService(r approvalRepository, recorder metrics.Recorder) *ApprovalService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &ApprovalService{repo: r, metrics: recorder}
}

// Pending lista os fluxos aguardando decisão.
func (s *ApprovalService) Pending(ctx context.Context) ([]model.ApprovalItem, error) {
	rows, err := s.repo.ListFluxosPendentes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.ApprovalItem, 0, len(rows))
	for _, f := range rows {
		item := model.ApprovalItem{
			IDFluxo:         f.ID,
			IDDocumento:     f.DocumentoID,
			Estado:          model.ApprovalStatus(f.Estado),
			TituloDocumento: f.TituloDocumento,
			NomeAutor:       f.NomeAutor,
			DataSolicitacao: f.DataSolicitacao.Format(SolicitacaoLayout),
		}
		if f.NomePrograma != nil {
			item.NomePrograma = *f.NomePrograma
		}
		out = append(out, item)
	}
	return out, nil
}

// Decide registra a decisão de um ADMIN ou GESTOR.
func (s *ApprovalService) Decide(ctx context.Context, approver *Principal, id int64, aprovado bool, comentario string) error {
	if !approver.Privileged() {
		return ErrForbidden
	}

	estado := model.EstadoRejeitado
	if aprovado {
		estado = model.EstadoAprovado
	}

	documentoID, err := s.repo.DecideFluxo(ctx, repo.DecideFluxoParams{
		ID:          id,
		Estado:      string(estado),
		Comentario:  strings.TrimSpace(comentario),
		AprovadorID: approver.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return ErrApprovalNotFound
		case errors.Is(err, repo.ErrNotPending):
			return ErrAlreadyDecided
		}
		return err
	}

	s.metrics.RecordDecision(string(estado))
	log.Info().
		Int64("id_fluxo", id).
		Int64("documento_id", documentoID).
		Int64("aprovador_id", approver.ID).
		Str("estado", string(estado)).
		Msg("aprovação: decisão registrada")
	return nil
}
