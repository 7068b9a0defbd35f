package reacao

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/cidade"
)

type chave struct {
	tipo      string
	alvoID    uuid.UUID
	usuarioID uuid.UUID
}

type stubReacaoRepo struct {
	alvos    map[uuid.UUID]*Alvo
	reagidos map[chave]bool
}

func newStubReacaoRepo() *stubReacaoRepo {
	return &stubReacaoRepo{alvos: make(map[uuid.UUID]*Alvo), reagidos: make(map[chave]bool)}
}

func (s *stubReacaoRepo) AlvoInfo(ctx context.Context, tipo string, alvoID uuid.UUID) (*Alvo, error) {
	a, ok := s.alvos[alvoID]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *stubReacaoRepo) Toggle(ctx context.Context, tipo string, alvoID, usuarioID uuid.UUID) (bool, error) {
	k := chave{tipo, alvoID, usuarioID}
	if s.reagidos[k] {
		delete(s.reagidos, k)
		return false, nil
	}
	s.reagidos[k] = true
	return true, nil
}

func (s *stubReacaoRepo) JaReagiu(ctx context.Context, tipo string, alvoID, usuarioID uuid.UUID) (bool, error) {
	return s.reagidos[chave{tipo, alvoID, usuarioID}], nil
}

func (s *stubReacaoRepo) ContarPara(ctx context.Context, tipo string, alvoID uuid.UUID) (int, error) {
	count := 0
	for k := range s.reagidos {
		if k.tipo == tipo && k.alvoID == alvoID {
			count++
		}
	}
	return count, nil
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

type notificacaoRegistrada struct {
	destinatario uuid.UUID
	remetente    uuid.UUID
}

type stubNotificador struct {
	enviadas []notificacaoRegistrada
}

func (s *stubNotificador) NotificarReacao(ctx context.Context, destinatario, remetente uuid.UUID, tipoAlvo string, publicacaoID uuid.UUID) error {
	s.enviadas = append(s.enviadas, notificacaoRegistrada{destinatario: destinatario, remetente: remetente})
	return nil
}

func TestToggleAlterna(t *testing.T) {
	repo := newStubReacaoRepo()
	notificador := &stubNotificador{}
	svc := NewService(repo, &stubGuard{}, notificador)

	dono := uuid.New()
	usuario := uuid.New()
	alvoID := uuid.New()
	repo.alvos[alvoID] = &Alvo{DonoID: dono, PublicacaoID: alvoID}

	result, err := svc.Toggle(context.Background(), TipoPublicacao, alvoID, usuario)
	require.NoError(t, err)
	require.True(t, result.Reagiu)

	result, err = svc.Toggle(context.Background(), TipoPublicacao, alvoID, usuario)
	require.NoError(t, err)
	require.False(t, result.Reagiu)

	result, err = svc.Toggle(context.Background(), TipoPublicacao, alvoID, usuario)
	require.NoError(t, err)
	require.True(t, result.Reagiu)

	// notifica apenas nas criações; remover não retrai
	require.Len(t, notificador.enviadas, 2)
	require.Equal(t, dono, notificador.enviadas[0].destinatario)
	require.Equal(t, usuario, notificador.enviadas[0].remetente)
}

func TestToggleTipoDesconhecido(t *testing.T) {
	svc := NewService(newStubReacaoRepo(), &stubGuard{}, nil)

	_, err := svc.Toggle(context.Background(), "figurinha", uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrValidation)
}

func TestToggleAlvoInexistente(t *testing.T) {
	svc := NewService(newStubReacaoRepo(), &stubGuard{}, nil)

	_, err := svc.Toggle(context.Background(), TipoPublicacao, uuid.New(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestToggleCidadeIndisponivel(t *testing.T) {
	repo := newStubReacaoRepo()
	cidadeID := uuid.New()
	svc := NewService(repo, &stubGuard{indisponiveis: map[uuid.UUID]bool{cidadeID: true}}, nil)

	alvoID := uuid.New()
	repo.alvos[alvoID] = &Alvo{DonoID: uuid.New(), CidadeID: &cidadeID, PublicacaoID: alvoID}

	_, err := svc.Toggle(context.Background(), TipoPublicacao, alvoID, uuid.New())
	require.ErrorIs(t, err, cidade.ErrIndisponivel)
}

func TestToggleNoProprioConteudo(t *testing.T) {
	repo := newStubReacaoRepo()
	notificador := &stubNotificador{}
	svc := NewService(repo, &stubGuard{}, notificador)

	dono := uuid.New()
	alvoID := uuid.New()
	repo.alvos[alvoID] = &Alvo{DonoID: dono, PublicacaoID: alvoID}

	result, err := svc.Toggle(context.Background(), TipoPublicacao, alvoID, dono)
	require.NoError(t, err)
	require.True(t, result.Reagiu)

	// o fan-out recebe a notificação; a exclusão de autonotificação é do
	// serviço de notificações
	require.Len(t, notificador.enviadas, 1)
}
