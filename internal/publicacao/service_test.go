package publicacao

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/cidade"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/perfil"
)

type stubPubRepo struct {
	pubs     map[uuid.UUID]*Publicacao
	created  []Publicacao
	statuses map[uuid.UUID]string
	deleted  []uuid.UUID
}

func newStubPubRepo() *stubPubRepo {
	return &stubPubRepo{
		pubs:     make(map[uuid.UUID]*Publicacao),
		statuses: make(map[uuid.UUID]string),
	}
}

func (s *stubPubRepo) Create(ctx context.Context, input CriarPublicacaoInput, status string) (*Publicacao, error) {
	p := Publicacao{
		ID:        uuid.New(),
		CidadeID:  input.CidadeID,
		AutorID:   input.AutorID,
		Titulo:    input.Titulo,
		Descricao: input.Descricao,
		Categoria: input.Categoria,
		Status:    status,
	}
	s.pubs[p.ID] = &p
	s.created = append(s.created, p)
	return &p, nil
}

func (s *stubPubRepo) GetByID(ctx context.Context, id uuid.UUID) (*Publicacao, error) {
	p, ok := s.pubs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copia := *p
	return &copia, nil
}

func (s *stubPubRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	p, ok := s.pubs[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	s.statuses[id] = status
	return nil
}

func (s *stubPubRepo) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.pubs[id]; !ok {
		return ErrNotFound
	}
	delete(s.pubs, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubPubRepo) ListByCidade(ctx context.Context, cidadeID uuid.UUID, status string, limit int) ([]Publicacao, error) {
	var out []Publicacao
	for _, p := range s.pubs {
		if p.CidadeID != nil && *p.CidadeID == cidadeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type stubGuard struct {
	indisponiveis map[uuid.UUID]bool
	admins        map[uuid.UUID]bool
}

func (s *stubGuard) Disponivel(ctx context.Context, cidadeID uuid.UUID) error {
	if s.indisponiveis[cidadeID] {
		return cidade.ErrIndisponivel
	}
	return nil
}

func (s *stubGuard) EhAdmin(ctx context.Context, cidadeID, usuarioID uuid.UUID) (bool, error) {
	return s.admins[usuarioID], nil
}

type stubRecompensa struct {
	total int
}

func (s *stubRecompensa) CreditarPontos(ctx context.Context, usuarioID uuid.UUID, pontos int) error {
	s.total += pontos
	return nil
}

func cidadeAtiva(moderacao bool) *cidade.Cidade {
	return &cidade.Cidade{ID: uuid.New(), Slug: "vila-nova", Nome: "Vila Nova", Assinatura: cidade.AssinaturaAtiva, ModeracaoAtiva: moderacao}
}

func TestCreateRespeitaModeracao(t *testing.T) {
	repo := newStubPubRepo()
	recompensa := &stubRecompensa{}
	svc := NewService(repo, &stubGuard{}, recompensa)

	input := CriarPublicacaoInput{Titulo: "Furadeira emprestada", Descricao: "Preciso por um dia", Categoria: CategoriaAjuda, AutorID: uuid.New()}

	pub, err := svc.Create(context.Background(), cidadeAtiva(true), input)
	require.NoError(t, err)
	require.Equal(t, StatusPendente, pub.Status)

	pub, err = svc.Create(context.Background(), cidadeAtiva(false), input)
	require.NoError(t, err)
	require.Equal(t, StatusAtivo, pub.Status)

	require.Equal(t, 2*perfil.PontosPublicacao, recompensa.total)
}

func TestCreateBarraAssinaturaVencida(t *testing.T) {
	svc := NewService(newStubPubRepo(), &stubGuard{}, nil)

	c := cidadeAtiva(false)
	c.Assinatura = cidade.AssinaturaExpirada

	_, err := svc.Create(context.Background(), c, CriarPublicacaoInput{Titulo: "t", Descricao: "d", Categoria: CategoriaAviso, AutorID: uuid.New()})
	require.ErrorIs(t, err, cidade.ErrIndisponivel)
}

func TestCreateValidacao(t *testing.T) {
	svc := NewService(newStubPubRepo(), &stubGuard{}, nil)
	c := cidadeAtiva(false)

	casos := []CriarPublicacaoInput{
		{Titulo: "", Descricao: "d", Categoria: CategoriaAjuda},
		{Titulo: "t", Descricao: "   ", Categoria: CategoriaAjuda},
		{Titulo: "t", Descricao: "d", Categoria: "inexistente"},
	}

	for _, input := range casos {
		input.AutorID = uuid.New()
		_, err := svc.Create(context.Background(), c, input)
		require.ErrorIs(t, err, ErrValidation)
	}
}

func TestTransicionarResolverEReabrir(t *testing.T) {
	repo := newStubPubRepo()
	guard := &stubGuard{indisponiveis: map[uuid.UUID]bool{}, admins: map[uuid.UUID]bool{}}
	svc := NewService(repo, guard, nil)

	dono := uuid.New()
	cidadeID := uuid.New()
	pub := Publicacao{ID: uuid.New(), CidadeID: &cidadeID, AutorID: dono, Status: StatusAtivo}
	repo.pubs[pub.ID] = &pub

	resolvida, err := svc.Transicionar(context.Background(), pub.ID, AcaoResolver, perfil.Ator{ID: dono})
	require.NoError(t, err)
	require.Equal(t, StatusResolvido, resolvida.Status)

	// resolver de novo viola a máquina de estados
	_, err = svc.Transicionar(context.Background(), pub.ID, AcaoResolver, perfil.Ator{ID: dono})
	require.ErrorIs(t, err, ErrTransicaoInvalida)

	reaberta, err := svc.Transicionar(context.Background(), pub.ID, AcaoReabrir, perfil.Ator{ID: dono})
	require.NoError(t, err)
	require.Equal(t, StatusAtivo, reaberta.Status)
}

func TestTransicionarAutorizacaoAntesDaOrigem(t *testing.T) {
	repo := newStubPubRepo()
	admin := uuid.New()
	guard := &stubGuard{indisponiveis: map[uuid.UUID]bool{}, admins: map[uuid.UUID]bool{admin: true}}
	svc := NewService(repo, guard, nil)

	cidadeID := uuid.New()
	pub := Publicacao{ID: uuid.New(), CidadeID: &cidadeID, AutorID: uuid.New(), Status: StatusAtivo}
	repo.pubs[pub.ID] = &pub

	// admin autorizado, mas aprovar não parte de ativo
	_, err := svc.Transicionar(context.Background(), pub.ID, AcaoAprovar, perfil.Ator{ID: admin})
	require.ErrorIs(t, err, ErrTransicaoInvalida)

	// usuário comum nem chega na origem: falha por autorização
	_, err = svc.Transicionar(context.Background(), pub.ID, AcaoAprovar, perfil.Ator{ID: uuid.New()})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestTransicionarRestritaAoDono(t *testing.T) {
	repo := newStubPubRepo()
	admin := uuid.New()
	guard := &stubGuard{indisponiveis: map[uuid.UUID]bool{}, admins: map[uuid.UUID]bool{admin: true}}
	svc := NewService(repo, guard, nil)

	cidadeID := uuid.New()
	pub := Publicacao{ID: uuid.New(), CidadeID: &cidadeID, AutorID: uuid.New(), Status: StatusAtivo}
	repo.pubs[pub.ID] = &pub

	// resolver é exclusivo do autor, até para moderadores
	_, err := svc.Transicionar(context.Background(), pub.ID, AcaoResolver, perfil.Ator{ID: admin})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Transicionar(context.Background(), pub.ID, AcaoResolver, perfil.Ator{ID: uuid.New(), PlataformaAdmin: true})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestTransicionarAcaoDesconhecida(t *testing.T) {
	svc := NewService(newStubPubRepo(), &stubGuard{}, nil)

	_, err := svc.Transicionar(context.Background(), uuid.New(), "arquivar", perfil.Ator{ID: uuid.New()})
	require.ErrorIs(t, err, ErrValidation)
}

func TestTransicionarCidadeIndisponivel(t *testing.T) {
	repo := newStubPubRepo()
	cidadeID := uuid.New()
	guard := &stubGuard{indisponiveis: map[uuid.UUID]bool{cidadeID: true}}
	svc := NewService(repo, guard, nil)

	dono := uuid.New()
	pub := Publicacao{ID: uuid.New(), CidadeID: &cidadeID, AutorID: dono, Status: StatusAtivo}
	repo.pubs[pub.ID] = &pub

	_, err := svc.Transicionar(context.Background(), pub.ID, AcaoResolver, perfil.Ator{ID: dono})
	require.ErrorIs(t, err, cidade.ErrIndisponivel)
}

func TestGetCidadeIndisponivel(t *testing.T) {
	repo := newStubPubRepo()
	cidadeID := uuid.New()
	guard := &stubGuard{indisponiveis: map[uuid.UUID]bool{}}
	svc := NewService(repo, guard, nil)

	pub := Publicacao{ID: uuid.New(), CidadeID: &cidadeID, AutorID: uuid.New(), Status: StatusAtivo}
	repo.pubs[pub.ID] = &pub

	carregada, err := svc.Get(context.Background(), pub.ID)
	require.NoError(t, err)
	require.Equal(t, pub.ID, carregada.ID)

	guard.indisponiveis[cidadeID] = true

	_, err = svc.Get(context.Background(), pub.ID)
	require.ErrorIs(t, err, cidade.ErrIndisponivel)
}

func TestDeletePermissoes(t *testing.T) {
	repo := newStubPubRepo()
	adminDaCidade := uuid.New()
	guard := &stubGuard{indisponiveis: map[uuid.UUID]bool{}, admins: map[uuid.UUID]bool{adminDaCidade: true}}
	svc := NewService(repo, guard, nil)

	dono := uuid.New()
	cidadeID := uuid.New()

	nova := func() uuid.UUID {
		p := Publicacao{ID: uuid.New(), CidadeID: &cidadeID, AutorID: dono, Status: StatusAtivo}
		repo.pubs[p.ID] = &p
		return p.ID
	}

	require.ErrorIs(t, svc.Delete(context.Background(), nova(), perfil.Ator{ID: uuid.New()}), ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), nova(), perfil.Ator{ID: dono}))
	require.NoError(t, svc.Delete(context.Background(), nova(), perfil.Ator{ID: adminDaCidade}))
	require.NoError(t, svc.Delete(context.Background(), nova(), perfil.Ator{ID: uuid.New(), PlataformaAdmin: true}))
}
