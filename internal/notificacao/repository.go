package notificacao

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso ao armazenamento de notificações.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de notificações.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const notificacaoColumns = `id, destinatario_id, tipo, remetente_id, remetente_nome, link, lida, criado_em`

// Create insere uma nova notificação.
func (r *Repository) Create(ctx context.Context, input CriarNotificacaoInput) (*Notificacao, error) {
	const query = `
        INSERT INTO notificacoes (destinatario_id, tipo, remetente_id, remetente_nome, link)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + notificacaoColumns + `
    `

	row := r.pool.QueryRow(ctx, query,
		input.DestinatarioID,
		input.Tipo,
		input.RemetenteID,
		input.RemetenteNome,
		input.Link,
	)

	return scanNotificacao(row)
}

// ListByDestinatario devolve as notificações mais recentes do usuário.
func (r *Repository) ListByDestinatario(ctx context.Context, destinatarioID uuid.UUID, limit int) ([]Notificacao, error) {
	const query = `
        SELECT ` + notificacaoColumns + `
        FROM notificacoes
        WHERE destinatario_id = $1
        ORDER BY criado_em DESC
        LIMIT $2
    `

	rows, err := r.pool.Query(ctx, query, destinatarioID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notificacoes []Notificacao
	for rows.Next() {
		n, err := scanNotificacao(rows)
		if err != nil {
			return nil, err
		}
		notificacoes = append(notificacoes, *n)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return notificacoes, nil
}

// CountNaoLidas conta notificações não lidas (índice parcial em lida = false).
func (r *Repository) CountNaoLidas(ctx context.Context, destinatarioID uuid.UUID) (int, error) {
	const query = `
        SELECT COUNT(*) FROM notificacoes
        WHERE destinatario_id = $1 AND lida = false
    `

	var count int
	if err := r.pool.QueryRow(ctx, query, destinatarioID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// MarcarLida marca como lida; repetir sobre notificação já lida é no-op.
func (r *Repository) MarcarLida(ctx context.Context, id, destinatarioID uuid.UUID) error {
	const query = `
        UPDATE notificacoes
        SET lida = true
        WHERE id = $1 AND destinatario_id = $2
    `

	tag, err := r.pool.Exec(ctx, query, id, destinatarioID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarcarTodasLidas marca todas as notificações do usuário como lidas.
func (r *Repository) MarcarTodasLidas(ctx context.Context, destinatarioID uuid.UUID) error {
	const query = `
        UPDATE notificacoes
        SET lida = true
        WHERE destinatario_id = $1 AND lida = false
    `

	_, err := r.pool.Exec(ctx, query, destinatarioID)
	return err
}

func scanNotificacao(row pgx.Row) (*Notificacao, error) {
	var (
		n           Notificacao
		remetenteID *uuid.UUID
	)

	if err := row.Scan(&n.ID, &n.DestinatarioID, &n.Tipo, &remetenteID, &n.RemetenteNome, &n.Link, &n.Lida, &n.CriadoEm); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	n.RemetenteID = remetenteID
	return &n, nil
}
