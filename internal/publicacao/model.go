package publicacao

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("publicação não encontrada")
	ErrForbidden = errors.New("sem acesso")
	// ErrValidation cobre entrada malformada; detalhes são anexados via wrap.
	ErrValidation = errors.New("dados inválidos")
	// ErrTransicaoInvalida indica violação da máquina de estados. O cliente
	// trata como estado defasado e recarrega antes de tentar de novo.
	ErrTransicaoInvalida = errors.New("transição de status inválida")
)

const (
	CategoriaAjuda   = "ajuda"
	CategoriaServico = "servico"
	CategoriaVaga    = "vaga"
	CategoriaDoacao  = "doacao"
	CategoriaAviso   = "aviso"

	StatusPendente  = "pending"
	StatusAtivo     = "ativo"
	StatusResolvido = "resolvido"
	StatusInativo   = "inativo"
	StatusOculto    = "oculto"
)

// CategoriasOrdenadas preserva a ordem de declaração, usada como desempate
// nas sugestões de busca.
var CategoriasOrdenadas = []string{
	CategoriaAjuda,
	CategoriaServico,
	CategoriaVaga,
	CategoriaDoacao,
	CategoriaAviso,
}

var categoriasValidas = map[string]struct{}{
	CategoriaAjuda:   {},
	CategoriaServico: {},
	CategoriaVaga:    {},
	CategoriaDoacao:  {},
	CategoriaAviso:   {},
}

var statusValidos = map[string]struct{}{
	StatusPendente:  {},
	StatusAtivo:     {},
	StatusResolvido: {},
	StatusInativo:   {},
	StatusOculto:    {},
}

// Ações de transição aceitas pela operação transitionPublication.
const (
	AcaoAprovar  = "aprovar"
	AcaoRejeitar = "rejeitar"
	AcaoResolver = "resolver"
	AcaoReabrir  = "reabrir"
	AcaoOcultar  = "ocultar"
	AcaoReexibir = "reexibir"
)

// Publicacao representa um anúncio comunitário no feed da cidade.
// Os contadores são denormalizados e mantidos pelos serviços de
// comentário/reação no momento da escrita.
type Publicacao struct {
	ID               uuid.UUID  `json:"id"`
	CidadeID         *uuid.UUID `json:"cidade_id,omitempty"`
	AutorID          uuid.UUID  `json:"autor_id"`
	Titulo           string     `json:"titulo"`
	Descricao        string     `json:"descricao"`
	Categoria        string     `json:"categoria"`
	Status           string     `json:"status"`
	ComentariosCount int        `json:"comentarios_count"`
	ReacoesCount     int        `json:"reacoes_count"`
	CriadoEm         time.Time  `json:"criado_em"`
	AtualizadoEm     time.Time  `json:"atualizado_em"`
}

// CriarPublicacaoInput encapsula os campos de criação.
type CriarPublicacaoInput struct {
	Titulo    string
	Descricao string
	Categoria string
	AutorID   uuid.UUID
	CidadeID  *uuid.UUID
}

// CategoriaConhecida valida a categoria contra o enum fixo.
func CategoriaConhecida(categoria string) bool {
	_, ok := categoriasValidas[strings.TrimSpace(strings.ToLower(categoria))]
	return ok
}

// StatusConhecido valida o status contra o enum fixo.
func StatusConhecido(status string) bool {
	_, ok := statusValidos[status]
	return ok
}

// transicao descreve uma aresta da máquina de estados.
type transicao struct {
	origens map[string]struct{}
	destino string
	// donoApenas restringe ao autor; caso contrário exige moderador
	// (admin da cidade ou admin da plataforma).
	donoApenas bool
}

var transicoes = map[string]transicao{
	AcaoAprovar: {
		origens: map[string]struct{}{StatusPendente: {}},
		destino: StatusAtivo,
	},
	AcaoRejeitar: {
		origens: map[string]struct{}{StatusPendente: {}},
		destino: StatusInativo,
	},
	AcaoResolver: {
		origens:    map[string]struct{}{StatusAtivo: {}},
		destino:    StatusResolvido,
		donoApenas: true,
	},
	AcaoReabrir: {
		origens:    map[string]struct{}{StatusResolvido: {}},
		destino:    StatusAtivo,
		donoApenas: true,
	},
	AcaoOcultar: {
		origens: map[string]struct{}{StatusPendente: {}, StatusAtivo: {}, StatusResolvido: {}},
		destino: StatusOculto,
	},
	AcaoReexibir: {
		origens: map[string]struct{}{StatusOculto: {}},
		destino: StatusAtivo,
	},
}
