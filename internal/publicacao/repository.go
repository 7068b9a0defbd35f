package publicacao

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/db"
)

// Repository provê acesso ao armazenamento de publicações.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de publicações.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const publicacaoColumns = `id, cidade_id, autor_id, titulo, descricao, categoria, status, comentarios_count, reacoes_count, criado_em, atualizado_em`

// Create insere uma nova publicação com o status inicial calculado pelo serviço.
func (r *Repository) Create(ctx context.Context, input CriarPublicacaoInput, status string) (*Publicacao, error) {
	const query = `
        INSERT INTO publicacoes (cidade_id, autor_id, titulo, descricao, categoria, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + publicacaoColumns + `
    `

	row := r.pool.QueryRow(ctx, query,
		input.CidadeID,
		input.AutorID,
		strings.TrimSpace(input.Titulo),
		strings.TrimSpace(input.Descricao),
		strings.TrimSpace(strings.ToLower(input.Categoria)),
		status,
	)

	return scanPublicacao(row)
}

// GetByID busca publicação pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Publicacao, error) {
	const query = `
        SELECT ` + publicacaoColumns + `
        FROM publicacoes
        WHERE id = $1
    `

	row := r.pool.QueryRow(ctx, query, id)
	return scanPublicacao(row)
}

// UpdateStatus grava o novo status (last-writer-wins, validado no serviço).
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	const query = `
        UPDATE publicacoes
        SET status = $2,
            atualizado_em = now()
        WHERE id = $1
    `

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCascade remove a publicação, seus comentários e as reações que
// apontam para ela ou para seus comentários, numa única transação.
func (r *Repository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const delReacoes = `
            DELETE FROM reacoes
            WHERE (tipo_alvo = 'publicacao' AND alvo_id = $1)
               OR (tipo_alvo = 'comentario' AND alvo_id IN (
                    SELECT id FROM comentarios WHERE publicacao_id = $1
               ))
        `
		if _, err := tx.Exec(ctx, delReacoes, id); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM comentarios WHERE publicacao_id = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM publicacoes WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListByCidade devolve publicações da cidade, opcionalmente filtradas por status.
// O filtro de tenant faz parte do predicado, nunca é aplicado depois.
func (r *Repository) ListByCidade(ctx context.Context, cidadeID uuid.UUID, status string, limit int) ([]Publicacao, error) {
	const query = `
        SELECT ` + publicacaoColumns + `
        FROM publicacoes
        WHERE cidade_id = $1
          AND ($2 = '' OR status = $2)
        ORDER BY criado_em DESC
        LIMIT $3
    `

	rows, err := r.pool.Query(ctx, query, cidadeID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPublicacoes(rows)
}

// Search aplica filtro substring case-insensitive em título OU descrição,
// sempre restrito à cidade e a publicações ativas.
func (r *Repository) Search(ctx context.Context, cidadeID uuid.UUID, texto, categoria string, limit int) ([]Publicacao, error) {
	const query = `
        SELECT ` + publicacaoColumns + `
        FROM publicacoes
        WHERE cidade_id = $1
          AND status = 'ativo'
          AND ($2 = '' OR titulo ILIKE '%' || $2 || '%' OR descricao ILIKE '%' || $2 || '%')
          AND ($3 = '' OR categoria = $3)
        ORDER BY criado_em DESC
        LIMIT $4
    `

	rows, err := r.pool.Query(ctx, query, cidadeID, strings.TrimSpace(texto), strings.TrimSpace(strings.ToLower(categoria)), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPublicacoes(rows)
}

// CategoriaFrequencia conta categorias nas publicações mais recentes da cidade.
func (r *Repository) CategoriaFrequencia(ctx context.Context, cidadeID uuid.UUID, recentes int) (map[string]int, error) {
	const query = `
        SELECT categoria, COUNT(*)
        FROM (
            SELECT categoria
            FROM publicacoes
            WHERE cidade_id = $1
            ORDER BY criado_em DESC
            LIMIT $2
        ) sub
        GROUP BY categoria
    `

	rows, err := r.pool.Query(ctx, query, cidadeID, recentes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	freq := make(map[string]int)
	for rows.Next() {
		var (
			categoria string
			count     int
		)
		if err := rows.Scan(&categoria, &count); err != nil {
			return nil, err
		}
		freq[categoria] = count
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return freq, nil
}

func collectPublicacoes(rows pgx.Rows) ([]Publicacao, error) {
	var pubs []Publicacao
	for rows.Next() {
		p, err := scanPublicacao(rows)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, *p)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return pubs, nil
}

func scanPublicacao(row pgx.Row) (*Publicacao, error) {
	var (
		p        Publicacao
		cidadeID *uuid.UUID
	)

	if err := row.Scan(&p.ID, &cidadeID, &p.AutorID, &p.Titulo, &p.Descricao, &p.Categoria, &p.Status, &p.ComentariosCount, &p.ReacoesCount, &p.CriadoEm, &p.AtualizadoEm); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.CidadeID = cidadeID
	return &p, nil
}
