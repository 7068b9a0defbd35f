package cidade

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provê acesso ao armazenamento de cidades.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria um novo repositório de cidades.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const cidadeColumns = `id, slug, nome, assinatura, tema, moderacao_ativa, criado_em, atualizado_em`

// GetBySlug busca cidade pelo slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Cidade, error) {
	const query = `
        SELECT ` + cidadeColumns + `
        FROM cidades
        WHERE slug = $1
    `

	row := r.pool.QueryRow(ctx, query, slug)
	return scanCidade(row)
}

// GetByID busca cidade pelo identificador.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Cidade, error) {
	const query = `
        SELECT ` + cidadeColumns + `
        FROM cidades
        WHERE id = $1
    `

	row := r.pool.QueryRow(ctx, query, id)
	return scanCidade(row)
}

// List devolve todas as cidades ordenadas por criação.
func (r *Repository) List(ctx context.Context) ([]Cidade, error) {
	const query = `
        SELECT ` + cidadeColumns + `
        FROM cidades
        ORDER BY criado_em DESC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cidades []Cidade
	for rows.Next() {
		c, err := scanCidade(rows)
		if err != nil {
			return nil, err
		}
		cidades = append(cidades, *c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return cidades, nil
}

// Create insere uma nova cidade e devolve os dados persistidos.
func (r *Repository) Create(ctx context.Context, input CriarCidadeInput) (*Cidade, error) {
	const query = `
        INSERT INTO cidades (slug, nome, assinatura, tema, moderacao_ativa)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + cidadeColumns + `
    `

	temaJSON, err := jsonMarshalMap(input.Tema)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(strings.ToLower(input.Slug)),
		strings.TrimSpace(input.Nome),
		strings.TrimSpace(strings.ToLower(input.Assinatura)),
		temaJSON,
		input.ModeracaoAtiva,
	)

	c, err := scanCidade(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrSlugEmUso
		}
		return nil, err
	}
	return c, nil
}

// AtualizarAssinatura aplica o status repassado pelo faturamento externo.
func (r *Repository) AtualizarAssinatura(ctx context.Context, id uuid.UUID, assinatura string) error {
	const query = `
        UPDATE cidades
        SET assinatura = $2,
            atualizado_em = now()
        WHERE id = $1
    `

	tag, err := r.pool.Exec(ctx, query, id, assinatura)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// EhAdminDaCidade verifica vínculo na associação city_admins.
func (r *Repository) EhAdminDaCidade(ctx context.Context, cidadeID, usuarioID uuid.UUID) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM cidade_admins
            WHERE cidade_id = $1 AND usuario_id = $2
        )
    `

	var ok bool
	if err := r.pool.QueryRow(ctx, query, cidadeID, usuarioID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// VincularAdmin concede administração da cidade a um usuário.
func (r *Repository) VincularAdmin(ctx context.Context, cidadeID, usuarioID uuid.UUID) error {
	const query = `
        INSERT INTO cidade_admins (cidade_id, usuario_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `

	_, err := r.pool.Exec(ctx, query, cidadeID, usuarioID)
	return err
}

func scanCidade(row pgx.Row) (*Cidade, error) {
	var (
		c       Cidade
		temaRaw []byte
	)

	if err := row.Scan(&c.ID, &c.Slug, &c.Nome, &c.Assinatura, &temaRaw, &c.ModeracaoAtiva, &c.CriadoEm, &c.AtualizadoEm); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	tema, err := decodeJSONMap(temaRaw)
	if err != nil {
		return nil, err
	}
	c.Tema = tema

	return &c, nil
}

func decodeJSONMap(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	if result == nil {
		return map[string]any{}, nil
	}
	return result, nil
}

func jsonMarshalMap(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}
