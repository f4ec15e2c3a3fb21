package repo

import (
	"context"
	"errors"
)

// ListFluxosPendentes devolve a fila de aprovação, mais antigos primeiro.
func (q *Queries) ListFluxosPendentes(ctx context.Context) ([]FluxoPendente, error) {
	const query = `
        SELECT f.id, f.documento_id, f.estado, d.titulo, u.nome, p.nome, f.data_solicitacao
        FROM fluxo_aprovacao f
        JOIN documentos d ON d.id = f.documento_id
        JOIN usuarios u ON u.id = d.autor_id
        LEFT JOIN programas p ON p.id = d.programa_id
        WHERE f.estado = 'PENDENTE'
        ORDER BY f.data_solicitacao ASC, f.id ASC`

	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []FluxoPendente
	for rows.Next() {
		var f FluxoPendente
		if err := rows.Scan(&f.ID, &f.DocumentoID, &f.Estado, &f.TituloDocumento, &f.NomeAutor, &f.NomePrograma, &f.DataSolicitacao); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// DecideFluxo só altera fluxos ainda pendentes. Fluxo decidido devolve ErrNotPending;
// inexistente, ErrNotFound.
func (q *Queries) DecideFluxo(ctx context.Context, arg DecideFluxoParams) (int64, error) {
	const query = `
        UPDATE fluxo_aprovacao
        SET estado = $2, comentario = $3, aprovador_id = $4, data_decisao = now()
        WHERE id = $1 AND estado = 'PENDENTE'
        RETURNING documento_id`

	var documentoID int64
	err := q.db.QueryRow(ctx, query, arg.ID, arg.Estado, arg.Comentario, arg.AprovadorID).Scan(&documentoID)
	if err == nil {
		return documentoID, nil
	}
	if err = translate(err); !errors.Is(err, ErrNotFound) {
		return 0, err
	}

	var exists bool
	if err := q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM fluxo_aprovacao WHERE id = $1)`, arg.ID).Scan(&exists); err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrNotPending
	}
	return 0, ErrNotFound
}

// ListProgramas devolve os programas por nome.
func (q *Queries) ListProgramas(ctx context.Context) ([]Programa, error) {
	rows, err := q.db.Query(ctx, `SELECT id, nome, sigla FROM programas ORDER BY nome ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Programa
	for rows.Next() {
		var p Programa
		if err := rows.Scan(&p.ID, &p.Nome, &p.Sigla); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// GetPrograma recupera um programa pelo id.
func (q *Queries) GetPrograma(ctx context.Context, id int64) (Programa, error) {
	var p Programa
	err := q.db.QueryRow(ctx, `SELECT id, nome, sigla FROM programas WHERE id = $1`, id).Scan(&p.ID, &p.Nome, &p.Sigla)
	if err != nil {
		return Programa{}, translate(err)
	}
	return p, nil
}
