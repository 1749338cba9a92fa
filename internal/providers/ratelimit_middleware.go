package providers

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"signalkit/internal/structures"
)

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter throttles the public tracking actions per client IP. Idle
// entries are pruned on a ticker until Stop is called.
type RateLimiter struct {
	enabled    bool
	trustProxy bool
	limit      rate.Limit
	burst      int
	idleTTL    time.Duration
	logger     Logger

	mu      sync.Mutex
	clients map[string]*clientLimiter

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewRateLimiter(conf *structures.Config, logger Logger) *RateLimiter {
	perMinute := conf.RateLimit.PerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	burst := conf.RateLimit.Burst
	if burst <= 0 {
		burst = perMinute
	}
	idleTTL := conf.RateLimit.IdleTTL
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}

	rl := &RateLimiter{
		enabled:    conf.RateLimit.Enabled,
		trustProxy: conf.RateLimit.TrustProxy,
		limit:      rate.Limit(float64(perMinute) / 60.0),
		burst:      burst,
		idleTTL:    idleTTL,
		logger:     logger,
		clients:    make(map[string]*clientLimiter),
		stopCh:     make(chan struct{}),
	}
	if rl.enabled {
		go rl.cleanupLoop()
	}
	return rl
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, rl.trustProxy)
		if !rl.Allow(ip) {
			rl.logger.Warnf(GetLogTypeByRequestType(r.Method), "rate limit exceeded for %s on %s", ip, r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"message": "Too many requests",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			rl.prune(time.Now())
		}
	}
}

func (rl *RateLimiter) prune(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.clients {
		if now.Sub(cl.lastAccess) > rl.idleTTL {
			delete(rl.clients, key)
		}
	}
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
