package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/uema/repositorio/internal/approval"
	"github.com/uema/repositorio/internal/client"
	"github.com/uema/repositorio/internal/config"
	"github.com/uema/repositorio/internal/confirm"
	"github.com/uema/repositorio/internal/documents"
	"github.com/uema/repositorio/internal/policy"
	"github.com/uema/repositorio/internal/search"
	"github.com/uema/repositorio/internal/session"
	"github.com/uema/repositorio/internal/useradmin"
)

// app é o processo cliente: dono único da sessão e dos componentes que dependem dela.
type app struct {
	store     *session.Store
	api       *client.Client
	documents *documents.Service
	search    *search.Engine
	approvals *approval.Workflow
	users     *useradmin.Service
	logger    zerolog.Logger

	in     io.Reader
	lines  *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

func newApp(ctx context.Context, cfg *config.ClientConfig, flags globalFlags, logger zerolog.Logger, in io.Reader, out, errOut io.Writer) (*app, error) {
	storage, err := newSessionStorage(cfg)
	if err != nil {
		return nil, err
	}

	clientCfg := client.Config{BaseURL: cfg.APIURL, Timeout: cfg.HTTPTimeout}

	// Login e /usuarios/me levam o token explicitamente; este cliente não precisa da sessão.
	authClient, err := client.New(clientCfg, nil)
	if err != nil {
		return nil, err
	}
	store := session.Open(ctx, storage, authClient, logger.With().Str("component", "sessao").Logger())

	api, err := client.New(clientCfg, store)
	if err != nil {
		return nil, err
	}
	semantic := api
	if cfg.SearchURL != cfg.APIURL {
		semantic, err = client.New(client.Config{BaseURL: cfg.SearchURL, Timeout: cfg.HTTPTimeout}, store)
		if err != nil {
			return nil, err
		}
	}

	var confirmer confirm.Confirmer = confirm.NewPrompter(in, errOut)
	if flags.yes {
		confirmer = confirm.Always(true)
	}

	return &app{
		store:     store,
		api:       api,
		documents: documents.NewService(api, confirmer),
		search:    search.NewEngine(api, semantic, logger.With().Str("component", "busca").Logger()),
		approvals: approval.NewWorkflow(api, confirmer, logger.With().Str("component", "aprovacao").Logger()),
		users:     useradmin.NewService(api, confirmer),
		logger:    logger,
		in:        in,
		out:       out,
		errOut:    errOut,
	}, nil
}

func newSessionStorage(cfg *config.ClientConfig) (session.Storage, error) {
	switch cfg.SessionBackend {
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis parse: %w", err)
		}
		return session.NewRedisStorage(redis.NewClient(opts), ""), nil
	default:
		path := cfg.SessionFile
		if path == "" {
			path = session.DefaultFilePath()
		}
		return session.NewFileStorage(path), nil
	}
}

func (a *app) Close() error {
	return a.store.Close()
}

// redirectError é a recusa do gate de acesso, com o destino sugerido.
type redirectError struct {
	from string
	to   string
}

func (e *redirectError) Error() string {
	switch e.to {
	case policy.PathLogin:
		return fmt.Sprintf("%s exige login: use repoctl login", e.from)
	case policy.PathDashboard:
		return fmt.Sprintf("%s indisponível para esta sessão (redirecionado para %s)", e.from, e.to)
	}
	return fmt.Sprintf("%s redirecionado para %s", e.from, e.to)
}

// enter consulta o gate antes de abrir a tela.
func (a *app) enter(screen string) error {
	dest, redirected := policy.Navigate(screen, a.store.Current())
	if redirected {
		a.logger.Debug().Str("tela", screen).Str("destino", dest).Msg("navegação desviada")
		return &redirectError{from: screen, to: dest}
	}
	return nil
}

func (a *app) printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(raw))
	return err
}

func (a *app) notice(format string, args ...any) {
	fmt.Fprintf(a.errOut, format+"\n", args...)
}

var errUsage = errors.New("argumentos inválidos")
