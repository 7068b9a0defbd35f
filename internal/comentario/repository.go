package comentario

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/db"
)

// Repository provê acesso ao armazenamento de comentários.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de comentários.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// PublicacaoInfo resolve dono e cidade da publicação comentada.
func (r *Repository) PublicacaoInfo(ctx context.Context, publicacaoID uuid.UUID) (*InfoPublicacao, error) {
	const query = `SELECT autor_id, cidade_id FROM publicacoes WHERE id = $1`

	var info InfoPublicacao
	if err := r.pool.QueryRow(ctx, query, publicacaoID).Scan(&info.DonoID, &info.CidadeID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &info, nil
}

// GetByID busca comentário pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Comentario, error) {
	const query = `
        SELECT c.id, c.publicacao_id, c.usuario_id, p.nome, c.parent_id, c.conteudo, c.criado_em
        FROM comentarios c
        JOIN perfis p ON p.id = c.usuario_id
        WHERE c.id = $1
    `

	var (
		c        Comentario
		parentID *uuid.UUID
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.PublicacaoID, &c.UsuarioID, &c.UsuarioNome, &parentID, &c.Conteudo, &c.CriadoEm); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}
	c.ParentID = parentID
	return &c, nil
}

// Create insere o comentário e incrementa comentarios_count na mesma transação.
func (r *Repository) Create(ctx context.Context, input CriarComentarioInput) (*Comentario, error) {
	var c Comentario

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const insert = `
            INSERT INTO comentarios (publicacao_id, usuario_id, parent_id, conteudo)
            VALUES ($1, $2, $3, $4)
            RETURNING id, publicacao_id, usuario_id, parent_id, conteudo, criado_em
        `

		var parentID *uuid.UUID
		if err := tx.QueryRow(ctx, insert,
			input.PublicacaoID,
			input.UsuarioID,
			input.ParentID,
			strings.TrimSpace(input.Conteudo),
		).Scan(&c.ID, &c.PublicacaoID, &c.UsuarioID, &parentID, &c.Conteudo, &c.CriadoEm); err != nil {
			return err
		}
		c.ParentID = parentID

		if err := tx.QueryRow(ctx, `SELECT nome FROM perfis WHERE id = $1`, input.UsuarioID).Scan(&c.UsuarioNome); err != nil {
			return err
		}

		const bump = `
            UPDATE publicacoes
            SET comentarios_count = comentarios_count + 1
            WHERE id = $1
        `
		_, err := tx.Exec(ctx, bump, input.PublicacaoID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// Delete remove o comentário e, se for de primeiro nível, suas respostas,
// além das reações que apontam para qualquer um deles. Devolve quantos
// comentários saíram para o decremento do contador.
func (r *Repository) Delete(ctx context.Context, id, publicacaoID uuid.UUID) (int, error) {
	var removidos int

	err := db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		const delReacoes = `
            DELETE FROM reacoes
            WHERE tipo_alvo = 'comentario'
              AND alvo_id IN (
                  SELECT id FROM comentarios WHERE id = $1 OR parent_id = $1
              )
        `
		if _, err := tx.Exec(ctx, delReacoes, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM comentarios WHERE id = $1 OR parent_id = $1`, id)
		if err != nil {
			return err
		}
		removidos = int(tag.RowsAffected())
		if removidos == 0 {
			return ErrNotFound
		}

		const bump = `
            UPDATE publicacoes
            SET comentarios_count = GREATEST(comentarios_count - $2, 0)
            WHERE id = $1
        `
		_, err = tx.Exec(ctx, bump, publicacaoID, removidos)
		return err
	})
	if err != nil {
		return 0, err
	}

	return removidos, nil
}

// ListByPublicacao devolve comentários da publicação em ordem de inserção,
// anotados com contagem de reações e com a reação do espectador (se houver).
func (r *Repository) ListByPublicacao(ctx context.Context, publicacaoID uuid.UUID, viewerID *uuid.UUID) ([]Comentario, error) {
	const query = `
        SELECT c.id, c.publicacao_id, c.usuario_id, p.nome, c.parent_id, c.conteudo, c.criado_em,
               (SELECT COUNT(*) FROM reacoes r
                 WHERE r.tipo_alvo = 'comentario' AND r.alvo_id = c.id) AS reacoes_count,
               ($2::uuid IS NOT NULL AND EXISTS (
                   SELECT 1 FROM reacoes r
                   WHERE r.tipo_alvo = 'comentario' AND r.alvo_id = c.id AND r.usuario_id = $2
               )) AS viewer_reagiu
        FROM comentarios c
        JOIN perfis p ON p.id = c.usuario_id
        WHERE c.publicacao_id = $1
        ORDER BY c.criado_em ASC
    `

	rows, err := r.pool.Query(ctx, query, publicacaoID, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comentarios []Comentario
	for rows.Next() {
		var (
			c        Comentario
			parentID *uuid.UUID
		)
		if err := rows.Scan(&c.ID, &c.PublicacaoID, &c.UsuarioID, &c.UsuarioNome, &parentID, &c.Conteudo, &c.CriadoEm, &c.ReacoesCount, &c.ViewerReagiu); err != nil {
			return nil, err
		}
		c.ParentID = parentID
		comentarios = append(comentarios, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return comentarios, nil
}
