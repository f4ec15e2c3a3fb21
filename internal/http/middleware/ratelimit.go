package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyFunc escolhe o balde da requisição; ok=false deixa passar sem limite.
type KeyFunc func(*http.Request) (key string, ok bool)

// RateLimiter guarda um token bucket por chave. Baldes sem uso há mais de idleTTL
// são varridos no máximo uma vez por sweepEvery.
type RateLimiter struct {
	limit      rate.Limit
	burst      int
	idleTTL    time.Duration
	sweepEvery time.Duration
	now        func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit:      rate.Limit(reqPerSec),
		burst:      burst,
		idleTTL:    10 * time.Minute,
		sweepEvery: time.Minute,
		now:        time.Now,
		buckets:    make(map[string]*bucket),
	}
}

// reserve consome um token; devolve quanto esperar quando o balde está vazio.
func (r *RateLimiter) reserve(key string) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if now.Sub(r.lastSweep) >= r.sweepEvery {
		for k, b := range r.buckets {
			if now.Sub(b.lastSeen) > r.idleTTL {
				delete(r.buckets, k)
			}
		}
		r.lastSweep = now
	}

	b, found := r.buckets[key]
	if !found {
		b = &bucket{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.buckets[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return time.Second, false
	}
	delay := res.DelayFrom(now)
	if delay == 0 {
		return 0, true
	}
	res.CancelAt(now)
	return delay, false
}

// Limit aplica o limitador com a chave escolhida por keyFn.
func (r *RateLimiter) Limit(keyFn KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			key, ok := keyFn(req)
			if !ok || key == "" {
				next.ServeHTTP(w, req)
				return
			}
			if wait, allowed := r.reserve(key); !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "RATE_LIMIT", "Limite de requisições excedido")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

// IPRateLimit limita por IP de origem (login, cadastro público, rotas abertas).
func IPRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return limiter.Limit(func(r *http.Request) (string, bool) {
		return realIPFromRequest(r), true
	})
}

// UserRateLimit limita pelo id do usuário autenticado.
func UserRateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return limiter.Limit(func(r *http.Request) (string, bool) {
		subject := GetSubject(r.Context())
		return subject, subject != ""
	})
}

func realIPFromRequest(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
