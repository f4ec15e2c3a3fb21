package repo

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
)

const usuarioColumns = `id, nome, email, senha_hash, perfil, ativo, criado_em`

func scanUsuario(row pgx.Row) (Usuario, error) {
	var u Usuario
	if err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Perfil, &u.Ativo, &u.CriadoEm); err != nil {
		return Usuario{}, translate(err)
	}
	return u, nil
}

// GetUsuarioByEmail recupera conta pelo e-mail normalizado.
func (q *Queries) GetUsuarioByEmail(ctx context.Context, email string) (Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE email = $1`
	return scanUsuario(q.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// GetUsuarioByID recupera conta pelo id.
func (q *Queries) GetUsuarioByID(ctx context.Context, id int64) (Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios WHERE id = $1`
	return scanUsuario(q.db.QueryRow(ctx, query, id))
}

// ListUsuarios devolve todas as contas por ordem de criação.
func (q *Queries) ListUsuarios(ctx context.Context) ([]Usuario, error) {
	const query = `SELECT ` + usuarioColumns + ` FROM usuarios ORDER BY criado_em ASC, id ASC`

	rows, err := q.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return users, nil
}

// CreateUsuario insere conta; e-mail repetido vira ErrDuplicate.
func (q *Queries) CreateUsuario(ctx context.Context, arg CreateUsuarioParams) (Usuario, error) {
	const query = `
        INSERT INTO usuarios (nome, email, senha_hash, perfil, ativo)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + usuarioColumns

	row := q.db.QueryRow(ctx, query,
		strings.TrimSpace(arg.Nome),
		strings.ToLower(strings.TrimSpace(arg.Email)),
		arg.SenhaHash,
		arg.Perfil,
		arg.Ativo,
	)
	return scanUsuario(row)
}

// UpdateUsuario altera os campos informados.
func (q *Queries) UpdateUsuario(ctx context.Context, arg UpdateUsuarioParams) (Usuario, error) {
	const query = `
        UPDATE usuarios
        SET nome = COALESCE($2, nome),
            email = COALESCE($3, email),
            senha_hash = COALESCE($4, senha_hash),
            perfil = COALESCE($5, perfil)
        WHERE id = $1
        RETURNING ` + usuarioColumns

	var email *string
	if arg.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*arg.Email))
		email = &normalized
	}
	return scanUsuario(q.db.QueryRow(ctx, query, arg.ID, arg.Nome, email, arg.SenhaHash, arg.Perfil))
}

// ActivateUsuario marca a conta como ativa. Ativar duas vezes não é erro.
func (q *Queries) ActivateUsuario(ctx context.Context, id int64) (Usuario, error) {
	const query = `UPDATE usuarios SET ativo = TRUE WHERE id = $1 RETURNING ` + usuarioColumns
	return scanUsuario(q.db.QueryRow(ctx, query, id))
}

// DeleteUsuario remove a conta; com documentos vinculados devolve ErrInUse.
func (q *Queries) DeleteUsuario(ctx context.Context, id int64) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM usuarios WHERE id = $1`, id)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
