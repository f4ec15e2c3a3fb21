package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/uema/repositorio/internal/auth"
	"github.com/uema/repositorio/internal/config"
	httpmiddleware "github.com/uema/repositorio/internal/http/middleware"
	"github.com/uema/repositorio/internal/metrics"
	"github.com/uema/repositorio/internal/model"
	"github.com/uema/repositorio/internal/service"
	"github.com/uema/repositorio/internal/storage"
)

type authService interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Me(ctx context.Context, userID int64) (model.User, error)
}

type userService interface {
	List(ctx context.Context) ([]model.User, error)
	Create(ctx context.Context, input model.NewUser) (model.User, error)
	Register(ctx context.Context, input model.NewUser) (model.User, error)
	Update(ctx context.Context, id int64, patch model.UserPatch) (model.User, error)
	Activate(ctx context.Context, id int64) (model.User, error)
	Delete(ctx context.Context, actor *service.Principal, id int64) error
}

type documentService interface {
	List(ctx context.Context, viewer *service.Principal) ([]model.Document, error)
	Search(ctx context.Context, consulta string) ([]model.Document, error)
	Programs(ctx context.Context) ([]model.Program, error)
	Create(ctx context.Context, author *service.Principal, fields model.DocumentFields, file *service.FileInput) (model.Document, error)
	Update(ctx context.Context, actor *service.Principal, id int64, fields model.DocumentFields, file *service.FileInput) (model.Document, error)
	Delete(ctx context.Context, actor *service.Principal, id int64) error
	Download(ctx context.Context, viewer *service.Principal, id int64) (*storage.Object, string, error)
}

type approvalService interface {
	Pending(ctx context.Context) ([]model.ApprovalItem, error)
	Decide(ctx context.Context, approver *service.Principal, id int64, aprovado bool, comentario string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Deps reúne o que o roteador precisa. Redis e Gatherer são opcionais.
type Deps struct {
	Config    *config.Config
	DB        pinger
	Redis     redisPinger
	JWT       *auth.JWTManager
	Auth      authService
	Users     userService
	Documents documentService
	Approvals approvalService
	Metrics   metrics.Recorder
	Gatherer  prometheus.Gatherer
}

type Handler struct {
	cfg           *config.Config
	db            pinger
	redis         redisPinger
	auth          authService
	users         userService
	documents     documentService
	approvals     approvalService
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	userLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(deps Deps) (http.Handler, error) {
	if deps.Config == nil || deps.JWT == nil {
		return nil, errors.New("http: config e jwt são obrigatórios")
	}
	if deps.Auth == nil || deps.Users == nil || deps.Documents == nil || deps.Approvals == nil {
		return nil, errors.New("http: serviços incompletos")
	}
	recorder := deps.Metrics
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	cfg := deps.Config
	h := &Handler{
		cfg:           cfg,
		db:            deps.DB,
		redis:         deps.Redis,
		auth:          deps.Auth,
		users:         deps.Users,
		documents:     deps.Documents,
		approvals:     deps.Approvals,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		userLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.Metrics(recorder))
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))
	}

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Get("/programas", h.ListPrograms)
		public.Post("/smart-search", h.SmartSearch)

		public.Group(func(anon chi.Router) {
			anon.Use(httpmiddleware.OptionalAuth(deps.JWT))
			anon.Get("/documentos", h.ListDocuments)
			anon.Get("/documentos/download/{id}", h.DownloadDocument)
		})

		public.Group(func(login chi.Router) {
			login.Use(httpmiddleware.IPRateLimit(h.authLimiter))
			login.Post("/login", h.Login)
			login.Post("/usuarios/registro-publico", h.RegisterUser)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Authenticate(deps.JWT))
		private.Use(httpmiddleware.UserRateLimit(h.userLimiter))

		private.Get("/usuarios/me", h.Me)
		private.Post("/documentos", h.CreateDocument)
		private.Put("/documentos/{id}", h.UpdateDocument)
		private.Delete("/documentos/{id}", h.DeleteDocument)

		private.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.RequirePrivileged)

			admin.Get("/aprovacoes/pendentes", h.ListPendingApprovals)
			admin.Patch("/aprovacoes/{id}", h.DecideApproval)

			admin.Get("/usuarios", h.ListUsers)
			admin.Post("/usuarios", h.CreateUser)
			admin.Put("/usuarios/{id}", h.UpdateUser)
			admin.Delete("/usuarios/{id}", h.DeleteUser)
			admin.Patch("/usuarios/{id}/ativar", h.ActivateUser)
		})
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e, quando configurado, Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	var dbErr, redisErr error
	if h.db != nil {
		dbErr = h.db.Ping(ctx)
	}
	if h.redis != nil {
		redisErr = h.redis.Ping(ctx).Err()
	}

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

