package comentario

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/cidade"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/perfil"
)

type stubComentarioRepo struct {
	publicacoes map[uuid.UUID]*InfoPublicacao
	comentarios map[uuid.UUID]*Comentario
	ordem       []uuid.UUID
}

func newStubComentarioRepo() *stubComentarioRepo {
	return &stubComentarioRepo{
		publicacoes: make(map[uuid.UUID]*InfoPublicacao),
		comentarios: make(map[uuid.UUID]*Comentario),
	}
}

func (s *stubComentarioRepo) PublicacaoInfo(ctx context.Context, publicacaoID uuid.UUID) (*InfoPublicacao, error) {
	info, ok := s.publicacoes[publicacaoID]
	if !ok {
		return nil, ErrNotFound
	}
	return info, nil
}

func (s *stubComentarioRepo) GetByID(ctx context.Context, id uuid.UUID) (*Comentario, error) {
	c, ok := s.comentarios[id]
	if !ok {
		return nil, ErrNotFound
	}
	copia := *c
	return &copia, nil
}

func (s *stubComentarioRepo) Create(ctx context.Context, input CriarComentarioInput) (*Comentario, error) {
	c := Comentario{
		ID:           uuid.New(),
		PublicacaoID: input.PublicacaoID,
		UsuarioID:    input.UsuarioID,
		ParentID:     input.ParentID,
		Conteudo:     input.Conteudo,
		CriadoEm:     time.Now(),
	}
	s.comentarios[c.ID] = &c
	s.ordem = append(s.ordem, c.ID)
	return &c, nil
}

func (s *stubComentarioRepo) Delete(ctx context.Context, id, publicacaoID uuid.UUID) (int, error) {
	if _, ok := s.comentarios[id]; !ok {
		return 0, ErrNotFound
	}
	removidos := 1
	delete(s.comentarios, id)
	for cid, c := range s.comentarios {
		if c.ParentID != nil && *c.ParentID == id {
			delete(s.comentarios, cid)
			removidos++
		}
	}
	return removidos, nil
}

func (s *stubComentarioRepo) ListByPublicacao(ctx context.Context, publicacaoID uuid.UUID, viewerID *uuid.UUID) ([]Comentario, error) {
	var out []Comentario
	for _, id := range s.ordem {
		c, ok := s.comentarios[id]
		if !ok || c.PublicacaoID != publicacaoID {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

type stubGuard struct {
	indisponiveis map[uuid.UUID]bool
}

func (s *stubGuard) Disponivel(ctx context.Context, cidadeID uuid.UUID) error {
	if s.indisponiveis[cidadeID] {
		return cidade.ErrIndisponivel
	}
	return nil
}

type fanout struct {
	tipo         string
	destinatario uuid.UUID
	remetente    uuid.UUID
}

type stubNotificador struct {
	enviadas []fanout
}

func (s *stubNotificador) NotificarComentario(ctx context.Context, destinatario, remetente uuid.UUID, publicacaoID uuid.UUID) error {
	s.enviadas = append(s.enviadas, fanout{tipo: "comment", destinatario: destinatario, remetente: remetente})
	return nil
}

func (s *stubNotificador) NotificarResposta(ctx context.Context, destinatario, remetente uuid.UUID, publicacaoID uuid.UUID) error {
	s.enviadas = append(s.enviadas, fanout{tipo: "reply", destinatario: destinatario, remetente: remetente})
	return nil
}

type stubRecompensa struct {
	total int
}

func (s *stubRecompensa) CreditarPontos(ctx context.Context, usuarioID uuid.UUID, pontos int) error {
	s.total += pontos
	return nil
}

func TestCreateNotificaDonoDaPublicacao(t *testing.T) {
	repo := newStubComentarioRepo()
	notificador := &stubNotificador{}
	recompensa := &stubRecompensa{}
	svc := NewService(repo, &stubGuard{}, notificador, recompensa)

	dono := uuid.New()
	autor := uuid.New()
	publicacaoID := uuid.New()
	repo.publicacoes[publicacaoID] = &InfoPublicacao{DonoID: dono}

	c, err := svc.Create(context.Background(), CriarComentarioInput{
		PublicacaoID: publicacaoID,
		UsuarioID:    autor,
		Conteudo:     "Posso ajudar amanhã",
	})
	require.NoError(t, err)
	require.Nil(t, c.ParentID)

	require.Len(t, notificador.enviadas, 1)
	require.Equal(t, "comment", notificador.enviadas[0].tipo)
	require.Equal(t, dono, notificador.enviadas[0].destinatario)
	require.Equal(t, perfil.PontosComentario, recompensa.total)
}

func TestCreateRespostaNotificaAutorDoPai(t *testing.T) {
	repo := newStubComentarioRepo()
	notificador := &stubNotificador{}
	svc := NewService(repo, &stubGuard{}, notificador, nil)

	dono := uuid.New()
	autorPai := uuid.New()
	autorResposta := uuid.New()
	publicacaoID := uuid.New()
	repo.publicacoes[publicacaoID] = &InfoPublicacao{DonoID: dono}

	pai, err := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: autorPai, Conteudo: "primeiro"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: autorResposta, ParentID: &pai.ID, Conteudo: "resposta"})
	require.NoError(t, err)

	require.Len(t, notificador.enviadas, 2)
	require.Equal(t, "reply", notificador.enviadas[1].tipo)
	require.Equal(t, autorPai, notificador.enviadas[1].destinatario)
}

func TestCreateProfundidadeMaximaUm(t *testing.T) {
	repo := newStubComentarioRepo()
	svc := NewService(repo, &stubGuard{}, nil, nil)

	publicacaoID := uuid.New()
	repo.publicacoes[publicacaoID] = &InfoPublicacao{DonoID: uuid.New()}

	pai, err := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: uuid.New(), Conteudo: "raiz"})
	require.NoError(t, err)

	resposta, err := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: uuid.New(), ParentID: &pai.ID, Conteudo: "nível 1"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: uuid.New(), ParentID: &resposta.ID, Conteudo: "nível 2"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreatePaiDeOutraPublicacao(t *testing.T) {
	repo := newStubComentarioRepo()
	svc := NewService(repo, &stubGuard{}, nil, nil)

	pubA := uuid.New()
	pubB := uuid.New()
	repo.publicacoes[pubA] = &InfoPublicacao{DonoID: uuid.New()}
	repo.publicacoes[pubB] = &InfoPublicacao{DonoID: uuid.New()}

	pai, err := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: pubA, UsuarioID: uuid.New(), Conteudo: "na publicação A"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: pubB, UsuarioID: uuid.New(), ParentID: &pai.ID, Conteudo: "pai errado"})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateValidaConteudo(t *testing.T) {
	repo := newStubComentarioRepo()
	svc := NewService(repo, &stubGuard{}, nil, nil)

	publicacaoID := uuid.New()
	repo.publicacoes[publicacaoID] = &InfoPublicacao{DonoID: uuid.New()}

	_, err := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: uuid.New(), Conteudo: "   "})
	require.ErrorIs(t, err, ErrValidation)

	longo := strings.Repeat("a", MaxConteudo+1)
	_, err = svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: uuid.New(), Conteudo: longo})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeleteSomenteDono(t *testing.T) {
	repo := newStubComentarioRepo()
	svc := NewService(repo, &stubGuard{}, nil, nil)

	publicacaoID := uuid.New()
	repo.publicacoes[publicacaoID] = &InfoPublicacao{DonoID: uuid.New()}

	autor := uuid.New()
	c, err := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: autor, Conteudo: "meu comentário"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), c.ID, uuid.New()), ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), c.ID, autor))
}

func TestDeleteRaizLevaRespostas(t *testing.T) {
	repo := newStubComentarioRepo()
	svc := NewService(repo, &stubGuard{}, nil, nil)

	publicacaoID := uuid.New()
	repo.publicacoes[publicacaoID] = &InfoPublicacao{DonoID: uuid.New()}

	autor := uuid.New()
	pai, err := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: autor, Conteudo: "raiz"})
	require.NoError(t, err)
	r1, err := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: uuid.New(), ParentID: &pai.ID, Conteudo: "r1"})
	require.NoError(t, err)
	r2, err := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: uuid.New(), ParentID: &pai.ID, Conteudo: "r2"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), pai.ID, autor))

	for _, id := range []uuid.UUID{pai.ID, r1.ID, r2.ID} {
		_, err := repo.GetByID(context.Background(), id)
		require.ErrorIs(t, err, ErrNotFound)
	}
}

func TestListTreeMontaArvoreEmOrdem(t *testing.T) {
	repo := newStubComentarioRepo()
	svc := NewService(repo, &stubGuard{}, nil, nil)

	publicacaoID := uuid.New()
	repo.publicacoes[publicacaoID] = &InfoPublicacao{DonoID: uuid.New()}

	a, _ := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: uuid.New(), Conteudo: "a"})
	b, _ := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: uuid.New(), Conteudo: "b"})
	ra1, _ := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: uuid.New(), ParentID: &a.ID, Conteudo: "resposta a.1"})
	ra2, _ := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: uuid.New(), ParentID: &a.ID, Conteudo: "resposta a.2"})

	tree, err := svc.ListTree(context.Background(), publicacaoID, nil)
	require.NoError(t, err)

	require.Len(t, tree, 2)
	require.Equal(t, a.ID, tree[0].ID)
	require.Equal(t, b.ID, tree[1].ID)
	require.Len(t, tree[0].Respostas, 2)
	require.Equal(t, ra1.ID, tree[0].Respostas[0].ID)
	require.Equal(t, ra2.ID, tree[0].Respostas[1].ID)
	require.Empty(t, tree[1].Respostas)
}

func TestDeleteCidadeIndisponivel(t *testing.T) {
	repo := newStubComentarioRepo()
	guard := &stubGuard{indisponiveis: map[uuid.UUID]bool{}}
	svc := NewService(repo, guard, nil, nil)

	cidadeID := uuid.New()
	publicacaoID := uuid.New()
	repo.publicacoes[publicacaoID] = &InfoPublicacao{DonoID: uuid.New(), CidadeID: &cidadeID}

	autor := uuid.New()
	c, err := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: autor, Conteudo: "antes do vencimento"})
	require.NoError(t, err)

	guard.indisponiveis[cidadeID] = true

	require.ErrorIs(t, svc.Delete(context.Background(), c.ID, autor), cidade.ErrIndisponivel)

	// o comentário permanece intacto
	_, err = repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
}

func TestListTreeCidadeIndisponivel(t *testing.T) {
	repo := newStubComentarioRepo()
	guard := &stubGuard{indisponiveis: map[uuid.UUID]bool{}}
	svc := NewService(repo, guard, nil, nil)

	cidadeID := uuid.New()
	publicacaoID := uuid.New()
	repo.publicacoes[publicacaoID] = &InfoPublicacao{DonoID: uuid.New(), CidadeID: &cidadeID}

	_, err := svc.Create(context.Background(), CriarComentarioInput{PublicacaoID: publicacaoID, UsuarioID: uuid.New(), Conteudo: "visível enquanto ativa"})
	require.NoError(t, err)

	guard.indisponiveis[cidadeID] = true

	_, err = svc.ListTree(context.Background(), publicacaoID, nil)
	require.ErrorIs(t, err, cidade.ErrIndisponivel)
}

func TestListTreePublicacaoInexistente(t *testing.T) {
	svc := NewService(newStubComentarioRepo(), &stubGuard{}, nil, nil)

	_, err := svc.ListTree(context.Background(), uuid.New(), nil)
	require.ErrorIs(t, err, ErrNotFound)
}
