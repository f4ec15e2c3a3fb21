package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração da API carregada do ambiente.
type Config struct {
	Port            int
	DBDSN           string
	RedisURL        string
	JWTAccessTTL    time.Duration
	JWTSecret       string
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	MaxUploadBytes  int64
	Storage         StorageConfig
	Admin           AdminSeed
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// StorageConfig escolhe onde os arquivos enviados ficam guardados.
type StorageConfig struct {
	Provider    string
	UploadDir   string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

// AdminSeed é a conta administradora criada na subida quando ainda não existe.
type AdminSeed struct {
	Nome  string
	Email string
	Senha string
}

// Enabled informa se há dados suficientes para criar o administrador.
func (a AdminSeed) Enabled() bool {
	return a.Email != "" && a.Senha != ""
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	// Redis é opcional na API: só entra na checagem de prontidão.
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 8*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	cfg.AllowOrigins = splitList(getEnv("ALLOW_ORIGINS", ""))

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 1, Burst: 5}

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "20"), 10, 64)
	if err != nil || maxUpload <= 0 {
		return nil, errors.New("MAX_UPLOAD_MB inválido")
	}
	cfg.MaxUploadBytes = maxUpload << 20

	cfg.Storage = StorageConfig{
		Provider:    strings.ToLower(strings.TrimSpace(getEnv("STORAGE_PROVIDER", "local"))),
		UploadDir:   strings.TrimSpace(getEnv("UPLOAD_DIR", "uploads")),
		S3Endpoint:  strings.TrimSpace(getEnv("S3_ENDPOINT", "")),
		S3Region:    strings.TrimSpace(getEnv("S3_REGION", "us-east-1")),
		S3Bucket:    strings.TrimSpace(getEnv("S3_BUCKET", "")),
		S3AccessKey: strings.TrimSpace(getEnv("S3_ACCESS_KEY", "")),
		S3SecretKey: strings.TrimSpace(getEnv("S3_SECRET_KEY", "")),
	}
	switch cfg.Storage.Provider {
	case "local":
		if cfg.Storage.UploadDir == "" {
			return nil, errors.New("UPLOAD_DIR obrigatório")
		}
	case "s3":
		if cfg.Storage.S3Endpoint == "" || cfg.Storage.S3Bucket == "" {
			return nil, errors.New("S3_ENDPOINT e S3_BUCKET obrigatórios com STORAGE_PROVIDER=s3")
		}
	case "noop":
	default:
		return nil, errors.New("STORAGE_PROVIDER deve ser local, s3 ou noop")
	}

	cfg.Admin = AdminSeed{
		Nome:  strings.TrimSpace(getEnv("ADMIN_NOME", "Administrador")),
		Email: strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", ""))),
		Senha: getEnv("ADMIN_PASSWORD", ""),
	}

	return cfg, nil
}

// ClientConfig é a configuração do repoctl.
type ClientConfig struct {
	APIURL         string
	SearchURL      string
	SessionBackend string
	SessionFile    string
	RedisURL       string
	HTTPTimeout    time.Duration
}

// LoadClient lê a configuração do cliente de linha de comando.
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := &ClientConfig{}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(getEnv("REPO_API_URL", "http://localhost:8080")), "/")
	if cfg.APIURL == "" {
		return nil, errors.New("REPO_API_URL obrigatório")
	}
	cfg.SearchURL = strings.TrimRight(strings.TrimSpace(getEnv("REPO_SEARCH_URL", "")), "/")
	if cfg.SearchURL == "" {
		cfg.SearchURL = cfg.APIURL
	}

	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(getEnv("REPO_SESSION_BACKEND", "file")))
	cfg.SessionFile = strings.TrimSpace(getEnv("REPO_SESSION_FILE", ""))
	cfg.RedisURL = strings.TrimSpace(getEnv("REPO_REDIS_URL", ""))
	switch cfg.SessionBackend {
	case "file":
	case "redis":
		if cfg.RedisURL == "" {
			return nil, errors.New("REPO_REDIS_URL obrigatório com REPO_SESSION_BACKEND=redis")
		}
	default:
		return nil, errors.New("REPO_SESSION_BACKEND deve ser file ou redis")
	}

	timeout, err := parseDurationEnv("REPO_HTTP_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil || dur <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
