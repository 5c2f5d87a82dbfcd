package httpx

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines the token-bucket parameters for a rate limiter.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed per Window.
	RequestsPerWindow int
	// Window is the time window the request budget refills over.
	Window time.Duration
	// Burst is the number of requests that may be spent at once.
	Burst int
}

// Profiles for the different endpoint classes.
var (
	// StrictLimit for credential endpoints (brute force prevention).
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// LenientLimit for authenticated resource operations.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

// KeyExtractor derives the bucket key for a request.
type KeyExtractor func(r *http.Request) string

// IPKeyExtractor buckets requests by client IP.
func IPKeyExtractor(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// UserKeyExtractor buckets requests by authenticated user, falling back to
// the client IP for unauthenticated requests.
func UserKeyExtractor(r *http.Request) string {
	if uid := UserIDFromContext(r.Context()); uid != "" {
		return "user:" + uid
	}
	return "ip:" + IPKeyExtractor(r)
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterPool struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	cfg      RateLimitConfig
}

func (p *limiterPool) get(key string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	v, ok := p.visitors[key]
	if !ok {
		limit := rate.Limit(float64(p.cfg.RequestsPerWindow) / p.cfg.Window.Seconds())
		v = &visitor{limiter: rate.NewLimiter(limit, p.cfg.Burst)}
		p.visitors[key] = v
	}
	v.lastSeen = now

	// Opportunistic pruning keeps the map from growing without bound.
	if len(p.visitors) > 1024 {
		for k, vv := range p.visitors {
			if now.Sub(vv.lastSeen) > 10*p.cfg.Window {
				delete(p.visitors, k)
			}
		}
	}

	return v.limiter
}

// RateLimitMiddleware enforces cfg per key derived by extract.
func RateLimitMiddleware(cfg RateLimitConfig, extract KeyExtractor) Middleware {
	pool := &limiterPool{visitors: make(map[string]*visitor), cfg: cfg}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !pool.get(extract(r)).Allow() {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP applies cfg keyed by client IP.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}

// RateLimitByUser applies cfg keyed by authenticated user.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, UserKeyExtractor)
}
