package reacao

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso ao armazenamento de reações.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de reações.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// AlvoInfo resolve dono, cidade e publicação do alvo reagido.
func (r *Repository) AlvoInfo(ctx context.Context, tipo string, alvoID uuid.UUID) (*Alvo, error) {
	var (
		query string
		alvo  Alvo
	)

	switch tipo {
	case TipoPublicacao:
		query = `SELECT autor_id, cidade_id, id FROM publicacoes WHERE id = $1`
	case TipoComentario:
		query = `
            SELECT c.usuario_id, p.cidade_id, p.id
            FROM comentarios c
            JOIN publicacoes p ON p.id = c.publicacao_id
            WHERE c.id = $1
        `
	default:
		return nil, ErrValidation
	}

	if err := r.pool.QueryRow(ctx, query, alvoID).Scan(&alvo.DonoID, &alvo.CidadeID, &alvo.PublicacaoID); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &alvo, nil
}

// Toggle materializa a semântica de no-máximo-uma reação: tenta inserir;
// se a constraint única rejeitar (inclusive numa corrida entre toggles do
// mesmo usuário), o conflito vira o caminho de remoção, nunca um erro cru.
// Os contadores denormalizados são best-effort (ver política de contagem).
func (r *Repository) Toggle(ctx context.Context, tipo string, alvoID, usuarioID uuid.UUID) (bool, error) {
	const insert = `
        INSERT INTO reacoes (tipo_alvo, alvo_id, usuario_id)
        VALUES ($1, $2, $3)
    `

	_, err := r.pool.Exec(ctx, insert, tipo, alvoID, usuarioID)
	if err == nil {
		r.ajustarContador(ctx, tipo, alvoID, +1)
		return true, nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false, err
	}

	const del = `
        DELETE FROM reacoes
        WHERE tipo_alvo = $1 AND alvo_id = $2 AND usuario_id = $3
    `

	tag, err := r.pool.Exec(ctx, del, tipo, alvoID, usuarioID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		r.ajustarContador(ctx, tipo, alvoID, -1)
	}
	return false, nil
}

// JaReagiu indica reação ativa do usuário ao alvo.
func (r *Repository) JaReagiu(ctx context.Context, tipo string, alvoID, usuarioID uuid.UUID) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM reacoes
            WHERE tipo_alvo = $1 AND alvo_id = $2 AND usuario_id = $3
        )
    `

	var ok bool
	if err := r.pool.QueryRow(ctx, query, tipo, alvoID, usuarioID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ContarPara conta reações ativas do alvo (caminho de leitura derivado).
func (r *Repository) ContarPara(ctx context.Context, tipo string, alvoID uuid.UUID) (int, error) {
	const query = `
        SELECT COUNT(*) FROM reacoes
        WHERE tipo_alvo = $1 AND alvo_id = $2
    `

	var count int
	if err := r.pool.QueryRow(ctx, query, tipo, alvoID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ajustarContador mantém reacoes_count da publicação; falha não desfaz a
// escrita primária (lacuna de consistência aceita, reconciliada fora daqui).
func (r *Repository) ajustarContador(ctx context.Context, tipo string, alvoID uuid.UUID, delta int) {
	if tipo != TipoPublicacao {
		// Contagem de reações em comentários é derivada na leitura.
		return
	}

	const query = `
        UPDATE publicacoes
        SET reacoes_count = GREATEST(reacoes_count + $2, 0)
        WHERE id = $1
    `

	_, _ = r.pool.Exec(ctx, query, alvoID, delta)
}
