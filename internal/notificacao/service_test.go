package notificacao

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type stubNotificacaoRepo struct {
	criadas     []Notificacao
	lidas       map[uuid.UUID]bool
	marcarCalls int
}

func newStubNotificacaoRepo() *stubNotificacaoRepo {
	return &stubNotificacaoRepo{lidas: make(map[uuid.UUID]bool)}
}

func (s *stubNotificacaoRepo) Create(ctx context.Context, input CriarNotificacaoInput) (*Notificacao, error) {
	n := Notificacao{
		ID:             uuid.New(),
		DestinatarioID: input.DestinatarioID,
		Tipo:           input.Tipo,
		RemetenteID:    input.RemetenteID,
		RemetenteNome:  input.RemetenteNome,
		Link:           input.Link,
		CriadoEm:       time.Now(),
	}
	s.criadas = append(s.criadas, n)
	return &n, nil
}

func (s *stubNotificacaoRepo) ListByDestinatario(ctx context.Context, destinatarioID uuid.UUID, limit int) ([]Notificacao, error) {
	var out []Notificacao
	for _, n := range s.criadas {
		if n.DestinatarioID == destinatarioID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubNotificacaoRepo) CountNaoLidas(ctx context.Context, destinatarioID uuid.UUID) (int, error) {
	count := 0
	for _, n := range s.criadas {
		if n.DestinatarioID == destinatarioID && !s.lidas[n.ID] {
			count++
		}
	}
	return count, nil
}

func (s *stubNotificacaoRepo) MarcarLida(ctx context.Context, id, destinatarioID uuid.UUID) error {
	s.marcarCalls++
	for _, n := range s.criadas {
		if n.ID == id && n.DestinatarioID == destinatarioID {
			s.lidas[id] = true
			return nil
		}
	}
	return ErrNotFound
}

func (s *stubNotificacaoRepo) MarcarTodasLidas(ctx context.Context, destinatarioID uuid.UUID) error {
	for _, n := range s.criadas {
		if n.DestinatarioID == destinatarioID {
			s.lidas[n.ID] = true
		}
	}
	return nil
}

type stubPerfis struct {
	nomes map[uuid.UUID]string
}

func (s *stubPerfis) NomeDoPerfil(ctx context.Context, id uuid.UUID) (string, error) {
	return s.nomes[id], nil
}

func TestNotificarExcluiAutonotificacao(t *testing.T) {
	repo := newStubNotificacaoRepo()
	svc := NewService(repo, &stubPerfis{}, nil)

	usuario := uuid.New()
	err := svc.Notificar(context.Background(), CriarNotificacaoInput{
		DestinatarioID: usuario,
		Tipo:           TipoComentario,
		RemetenteID:    &usuario,
	})
	require.NoError(t, err)
	require.Empty(t, repo.criadas)
}

func TestNotificarPreencheSnapshotDoRemetente(t *testing.T) {
	repo := newStubNotificacaoRepo()
	remetente := uuid.New()
	perfis := &stubPerfis{nomes: map[uuid.UUID]string{remetente: "Maria Souza"}}
	svc := NewService(repo, perfis, nil)

	err := svc.Notificar(context.Background(), CriarNotificacaoInput{
		DestinatarioID: uuid.New(),
		Tipo:           TipoReacao,
		RemetenteID:    &remetente,
	})
	require.NoError(t, err)
	require.Len(t, repo.criadas, 1)
	require.Equal(t, "Maria Souza", repo.criadas[0].RemetenteNome)
}

func TestNotificarComentarioGeraLink(t *testing.T) {
	repo := newStubNotificacaoRepo()
	svc := NewService(repo, &stubPerfis{}, nil)

	publicacaoID := uuid.New()
	err := svc.NotificarComentario(context.Background(), uuid.New(), uuid.New(), publicacaoID)
	require.NoError(t, err)
	require.Len(t, repo.criadas, 1)
	require.Equal(t, TipoComentario, repo.criadas[0].Tipo)
	require.Equal(t, "/publicacoes/"+publicacaoID.String(), repo.criadas[0].Link)
}

func TestNaoLidasSemCacheConsultaRepo(t *testing.T) {
	repo := newStubNotificacaoRepo()
	svc := NewService(repo, &stubPerfis{}, nil)

	destinatario := uuid.New()
	remetente := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Notificar(context.Background(), CriarNotificacaoInput{
			DestinatarioID: destinatario,
			Tipo:           TipoSistema,
			RemetenteID:    &remetente,
		}))
	}

	count, err := svc.NaoLidas(context.Background(), destinatario)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestMarcarLidaIdempotente(t *testing.T) {
	repo := newStubNotificacaoRepo()
	svc := NewService(repo, &stubPerfis{}, nil)

	destinatario := uuid.New()
	remetente := uuid.New()
	require.NoError(t, svc.Notificar(context.Background(), CriarNotificacaoInput{
		DestinatarioID: destinatario,
		Tipo:           TipoMencao,
		RemetenteID:    &remetente,
	}))

	id := repo.criadas[0].ID
	require.NoError(t, svc.MarcarLida(context.Background(), id, destinatario))
	// repetir é no-op, não erro
	require.NoError(t, svc.MarcarLida(context.Background(), id, destinatario))

	count, err := svc.NaoLidas(context.Background(), destinatario)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestMarcarLidaDeOutroUsuario(t *testing.T) {
	repo := newStubNotificacaoRepo()
	svc := NewService(repo, &stubPerfis{}, nil)

	destinatario := uuid.New()
	remetente := uuid.New()
	require.NoError(t, svc.Notificar(context.Background(), CriarNotificacaoInput{
		DestinatarioID: destinatario,
		Tipo:           TipoMencao,
		RemetenteID:    &remetente,
	}))

	err := svc.MarcarLida(context.Background(), repo.criadas[0].ID, uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarcarTodasLidas(t *testing.T) {
	repo := newStubNotificacaoRepo()
	svc := NewService(repo, &stubPerfis{}, nil)

	destinatario := uuid.New()
	remetente := uuid.New()
	for i := 0; i < 4; i++ {
		require.NoError(t, svc.Notificar(context.Background(), CriarNotificacaoInput{
			DestinatarioID: destinatario,
			Tipo:           TipoSistema,
			RemetenteID:    &remetente,
		}))
	}

	require.NoError(t, svc.MarcarTodasLidas(context.Background(), destinatario))

	count, err := svc.NaoLidas(context.Background(), destinatario)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
