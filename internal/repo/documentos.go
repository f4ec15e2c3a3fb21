package repo

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/uema/repositorio/internal/db"
)

// documentoSelect junta autor, programa e o estado do fluxo mais recente.
const documentoSelect = `
        SELECT d.id, d.titulo, d.descricao, d.tipo, d.data_publicacao,
               d.arquivo_chave, d.arquivo_nome, d.arquivo_tipo,
               d.autor_id, u.nome, d.programa_id, p.nome,
               COALESCE(f.estado, 'PENDENTE'), d.criado_em
        FROM documentos d
        JOIN usuarios u ON u.id = d.autor_id
        LEFT JOIN programas p ON p.id = d.programa_id
        LEFT JOIN LATERAL (
            SELECT estado FROM fluxo_aprovacao
            WHERE documento_id = d.id
            ORDER BY id DESC
            LIMIT 1
        ) f ON TRUE`

func scanDocumento(row pgx.Row) (Documento, error) {
	var d Documento
	err := row.Scan(
		&d.ID, &d.Titulo, &d.Descricao, &d.Tipo, &d.DataPublicacao,
		&d.ArquivoChave, &d.ArquivoNome, &d.ArquivoTipo,
		&d.AutorID, &d.NomeAutor, &d.ProgramaID, &d.NomePrograma,
		&d.Estado, &d.CriadoEm,
	)
	if err != nil {
		return Documento{}, translate(err)
	}
	return d, nil
}

func collectDocumentos(rows pgx.Rows) ([]Documento, error) {
	defer rows.Close()

	var docs []Documento
	for rows.Next() {
		d, err := scanDocumento(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return docs, nil
}

// ListDocumentos aplica a regra de visibilidade no próprio SQL.
func (q *Queries) ListDocumentos(ctx context.Context, arg ListDocumentosParams) ([]Documento, error) {
	const query = documentoSelect + `
        WHERE $1 OR COALESCE(f.estado, 'PENDENTE') = 'APROVADO' OR d.autor_id = $2
        ORDER BY d.data_publicacao DESC, d.id DESC`

	rows, err := q.db.Query(ctx, query, arg.TodosEstados, arg.ViewerID)
	if err != nil {
		return nil, err
	}
	return collectDocumentos(rows)
}

// SearchDocumentos faz busca textual em português só entre os aprovados,
// ordenando pela relevância.
func (q *Queries) SearchDocumentos(ctx context.Context, consulta string, limit int) ([]Documento, error) {
	const query = documentoSelect + `
        WHERE COALESCE(f.estado, 'PENDENTE') = 'APROVADO'
          AND d.busca @@ websearch_to_tsquery('portuguese', $1)
        ORDER BY ts_rank(d.busca, websearch_to_tsquery('portuguese', $1)) DESC, d.data_publicacao DESC
        LIMIT $2`

	rows, err := q.db.Query(ctx, query, consulta, limit)
	if err != nil {
		return nil, err
	}
	return collectDocumentos(rows)
}

// GetDocumento recupera um documento pelo id.
func (q *Queries) GetDocumento(ctx context.Context, id int64) (Documento, error) {
	const query = documentoSelect + ` WHERE d.id = $1`
	return scanDocumento(q.db.QueryRow(ctx, query, id))
}

// CreateDocumento insere o documento e o primeiro fluxo de aprovação na mesma transação.
func (q *Queries) CreateDocumento(ctx context.Context, arg CreateDocumentoParams) (int64, error) {
	var id int64
	err := db.WithTx(ctx, q.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		id, err = q.WithTx(tx).insertDocumento(ctx, arg)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (q *Queries) insertDocumento(ctx context.Context, arg CreateDocumentoParams) (int64, error) {
	const insertDoc = `
        INSERT INTO documentos (titulo, descricao, tipo, data_publicacao, arquivo_chave, arquivo_nome, arquivo_tipo, autor_id, programa_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id`

	var id int64
	err := q.db.QueryRow(ctx, insertDoc,
		arg.Titulo, arg.Descricao, arg.Tipo, arg.DataPublicacao,
		arg.Arquivo.Chave, arg.Arquivo.Nome, arg.Arquivo.Tipo,
		arg.AutorID, arg.ProgramaID,
	).Scan(&id)
	if err != nil {
		return 0, translate(err)
	}

	const insertFluxo = `
        INSERT INTO fluxo_aprovacao (documento_id, estado, comentario, aprovador_id, data_decisao)
        VALUES ($1, $2, $3, $4, CASE WHEN $2 = 'PENDENTE' THEN NULL ELSE now() END)`

	if _, err := q.db.Exec(ctx, insertFluxo, id, arg.EstadoInicial, arg.Comentario, arg.AprovadorID); err != nil {
		return 0, translate(err)
	}
	return id, nil
}

// UpdateDocumento altera metadados e, se informado, o arquivo.
func (q *Queries) UpdateDocumento(ctx context.Context, arg UpdateDocumentoParams) error {
	var chave, nome, tipo *string
	if arg.Arquivo != nil {
		chave, nome, tipo = &arg.Arquivo.Chave, &arg.Arquivo.Nome, &arg.Arquivo.Tipo
	}

	const query = `
        UPDATE documentos
        SET titulo = $2,
            descricao = $3,
            tipo = $4,
            data_publicacao = $5,
            programa_id = $6,
            arquivo_chave = COALESCE($7, arquivo_chave),
            arquivo_nome = COALESCE($8, arquivo_nome),
            arquivo_tipo = COALESCE($9, arquivo_tipo)
        WHERE id = $1`

	tag, err := q.db.Exec(ctx, query, arg.ID, arg.Titulo, arg.Descricao, arg.Tipo, arg.DataPublicacao, arg.ProgramaID, chave, nome, tipo)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDocumento remove o documento (e seus fluxos) devolvendo a chave do arquivo.
func (q *Queries) DeleteDocumento(ctx context.Context, id int64) (string, error) {
	var chave string
	err := q.db.QueryRow(ctx, `DELETE FROM documentos WHERE id = $1 RETURNING arquivo_chave`, id).Scan(&chave)
	if err != nil {
		return "", translate(err)
	}
	return chave, nil
}
