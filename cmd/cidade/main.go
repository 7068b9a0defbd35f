package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/cidade"
	"github.com/devmaster297-byte/plataforma-comunitaria-sub000/internal/db"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	_ = godotenv.Load()

	ctx := context.Background()

	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}
	if dsn == "" {
		log.Fatal().Msg("defina DB_DSN ou DATABASE_URL")
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("não foi possível conectar ao banco")
	}
	defer pool.Close()

	repo := cidade.NewRepository(pool)
	service := cidade.NewService(repo)

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "create":
		if err := runCreate(ctx, service, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao criar cidade")
		}
	case "list":
		if err := runList(ctx, service); err != nil {
			log.Fatal().Err(err).Msg("falha ao listar cidades")
		}
	case "assinatura":
		if err := runAssinatura(ctx, service, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao atualizar assinatura")
		}
	case "admin":
		if err := runAdmin(ctx, service, args); err != nil {
			log.Fatal().Err(err).Msg("falha ao vincular admin")
		}
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "cidade CLI")
	fmt.Fprintln(os.Stderr, "uso:")
	fmt.Fprintln(os.Stderr, "  cidade create --slug vila-nova --nome \"Vila Nova\" [--assinatura trial] [--moderacao] [--tema-file tema.json]")
	fmt.Fprintln(os.Stderr, "  cidade list")
	fmt.Fprintln(os.Stderr, "  cidade assinatura --id <uuid> --status active|trial|expired|none")
	fmt.Fprintln(os.Stderr, "  cidade admin --id <uuid> --usuario <uuid>")
}

func runCreate(ctx context.Context, service *cidade.Service, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		slug       = fs.String("slug", "", "slug da cidade (ex.: vila-nova)")
		nome       = fs.String("nome", "", "nome exibido")
		assinatura = fs.String("assinatura", "", "status inicial da assinatura")
		moderacao  = fs.Bool("moderacao", false, "exigir aprovação de publicações")
		temaFile   = fs.String("tema-file", "", "arquivo JSON com o tema visual")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *slug == "" || *nome == "" {
		return errors.New("slug e nome são obrigatórios")
	}

	tema := map[string]any{}
	if *temaFile != "" {
		raw, err := os.ReadFile(*temaFile)
		if err != nil {
			return fmt.Errorf("ler tema-file: %w", err)
		}
		if err := json.Unmarshal(raw, &tema); err != nil {
			return fmt.Errorf("parse tema-file: %w", err)
		}
	}

	created, err := service.Create(ctx, cidade.CriarCidadeInput{
		Slug:           *slug,
		Nome:           *nome,
		Assinatura:     *assinatura,
		Tema:           tema,
		ModeracaoAtiva: *moderacao,
	})
	if err != nil {
		return err
	}

	output, _ := json.MarshalIndent(created, "", "  ")
	fmt.Println(string(output))
	return nil
}

func runList(ctx context.Context, service *cidade.Service) error {
	cidades, err := service.List(ctx)
	if err != nil {
		return err
	}

	if len(cidades) == 0 {
		fmt.Println("nenhuma cidade cadastrada")
		return nil
	}

	encoded, _ := json.MarshalIndent(cidades, "", "  ")
	fmt.Println(string(encoded))
	return nil
}

func runAssinatura(ctx context.Context, service *cidade.Service, args []string) error {
	fs := flag.NewFlagSet("assinatura", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		id     = fs.String("id", "", "id da cidade")
		status = fs.String("status", "", "novo status da assinatura")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	cidadeID, err := uuid.Parse(*id)
	if err != nil {
		return errors.New("id inválido")
	}

	if err := service.AtualizarAssinatura(ctx, cidadeID, *status); err != nil {
		return err
	}

	fmt.Println("assinatura atualizada")
	return nil
}

func runAdmin(ctx context.Context, service *cidade.Service, args []string) error {
	fs := flag.NewFlagSet("admin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		id      = fs.String("id", "", "id da cidade")
		usuario = fs.String("usuario", "", "id do usuário")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	cidadeID, err := uuid.Parse(*id)
	if err != nil {
		return errors.New("id inválido")
	}
	usuarioID, err := uuid.Parse(*usuario)
	if err != nil {
		return errors.New("usuario inválido")
	}

	if err := service.VincularAdmin(ctx, cidadeID, usuarioID); err != nil {
		return err
	}

	fmt.Println("admin vinculado")
	return nil
}
