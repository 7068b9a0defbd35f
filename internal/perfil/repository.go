package perfil

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso ao armazenamento de perfis.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de perfis.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const perfilColumns = `id, nome, email, senha_hash, papel, cidade_id, pontos, nivel, ativo, criado_em`

// Create cadastra um novo perfil; e-mail repetido vira ErrEmailEmUso.
func (r *Repository) Create(ctx context.Context, input CriarPerfilInput) (*Perfil, error) {
	const query = `
        INSERT INTO perfis (nome, email, senha_hash, papel, cidade_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + perfilColumns + `
    `

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Nome),
		strings.TrimSpace(strings.ToLower(input.Email)),
		input.SenhaHash,
		PapelUsuario,
		input.CidadeID,
	)

	p, err := scanPerfil(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrEmailEmUso
		}
		return nil, err
	}
	return p, nil
}

// GetByEmail busca perfil pelo e-mail normalizado.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Perfil, error) {
	const query = `
        SELECT ` + perfilColumns + `
        FROM perfis
        WHERE email = $1
    `

	row := r.pool.QueryRow(ctx, query, strings.TrimSpace(strings.ToLower(email)))
	return scanPerfil(row)
}

// GetByID busca perfil pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Perfil, error) {
	const query = `
        SELECT ` + perfilColumns + `
        FROM perfis
        WHERE id = $1
    `

	row := r.pool.QueryRow(ctx, query, id)
	return scanPerfil(row)
}

// NomeDoPerfil devolve apenas o nome, usado no snapshot de notificações.
func (r *Repository) NomeDoPerfil(ctx context.Context, id uuid.UUID) (string, error) {
	const query = `SELECT nome FROM perfis WHERE id = $1`

	var nome string
	if err := r.pool.QueryRow(ctx, query, id).Scan(&nome); err != nil {
		if err == pgx.ErrNoRows {
			return "", ErrNotFound
		}
		return "", err
	}
	return nome, nil
}

// CreditarPontos soma pontos de gamificação e rederiva o nível.
func (r *Repository) CreditarPontos(ctx context.Context, id uuid.UUID, pontos int) error {
	const query = `
        UPDATE perfis
        SET pontos = pontos + $2,
            nivel = (pontos + $2) / 100 + 1
        WHERE id = $1
    `

	tag, err := r.pool.Exec(ctx, query, id, pontos)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPerfil(row pgx.Row) (*Perfil, error) {
	var (
		p        Perfil
		cidadeID *uuid.UUID
	)

	if err := row.Scan(&p.ID, &p.Nome, &p.Email, &p.SenhaHash, &p.Papel, &cidadeID, &p.Pontos, &p.Nivel, &p.Ativo, &p.CriadoEm); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.CidadeID = cidadeID
	return &p, nil
}
