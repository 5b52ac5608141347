package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// chain applies middlewares so the first listed runs outermost.
func chain(next http.HandlerFunc, mws ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	h := next
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// secureHandler is the full protection chain for kernel routes.
func (a *API) secureHandler(next http.HandlerFunc) http.HandlerFunc {
	return chain(
		next,
		a.withCORS,
		a.withPanicRecovery,
		a.withRequestID,
		a.withSecurityHeaders,
		a.withRequestLogging,
		a.withConcurrencyLimit,
		a.withRateLimit,
		a.withAPIKeyAuth,
	)
}

// publicHandler is the chain for health and readiness probes.
func (a *API) publicHandler(next http.HandlerFunc) http.HandlerFunc {
	return chain(
		next,
		a.withCORS,
		a.withPanicRecovery,
		a.withRequestID,
		a.withSecurityHeaders,
		a.withRequestLogging,
		a.withConcurrencyLimit,
	)
}

func (a *API) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		next(w, r)
	}
}

func (a *API) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

func (a *API) withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			n := atomic.AddUint64(&a.reqCounter, 1)
			requestID = fmt.Sprintf("req-%d-%d", time.Now().UnixNano(), n)
		}
		w.Header().Set("X-Request-ID", requestID)
		next(w, r)
	}
}

func (a *API) withPanicRecovery(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				a.log.Error("API", fmt.Errorf("panic: %v", rec), map[string]interface{}{
					"path":  r.URL.Path,
					"stack": string(debug.Stack()),
				})
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

func (a *API) withRequestLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		a.log.Debug("API", "request handled", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}
}

func (a *API) withConcurrencyLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case a.concurrencyTokens <- struct{}{}:
			atomic.AddInt64(&a.currentInflight, 1)
			defer func() {
				<-a.concurrencyTokens
				atomic.AddInt64(&a.currentInflight, -1)
			}()
			next(w, r)
		default:
			w.Header().Set("Retry-After", "1")
			http.Error(w, "service overloaded", http.StatusServiceUnavailable)
		}
	}
}

// ConcurrencySnapshot reports in-flight request pressure.
type ConcurrencySnapshot struct {
	Current int64 `json:"current"`
	Limit   int64 `json:"limit"`
}

func (a *API) concurrencySnapshot() ConcurrencySnapshot {
	return ConcurrencySnapshot{
		Current: atomic.LoadInt64(&a.currentInflight),
		Limit:   int64(cap(a.concurrencyTokens)),
	}
}

// rateLimiter is a coarse fixed-window counter per second. Precision is
// not a goal; protecting the kernel from request floods is.
type rateLimiter struct {
	mu      sync.Mutex
	window  int64
	count   int
	perSec  int
	enabled bool
}

func newRateLimiter(perSecond int) *rateLimiter {
	return &rateLimiter{perSec: perSecond, enabled: perSecond > 0}
}

func (rl *rateLimiter) allow(now time.Time) bool {
	if !rl.enabled {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	window := now.Unix()
	if window != rl.window {
		rl.window = window
		rl.count = 0
	}
	rl.count++
	return rl.count <= rl.perSec
}

func (a *API) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.limiter.allow(time.Now()) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func (a *API) withAPIKeyAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		expected := a.apiKey()
		if expected == "" {
			http.Error(w, "kernel api key not configured", http.StatusServiceUnavailable)
			return
		}
		provided := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if provided == "" {
			auth := strings.TrimSpace(r.Header.Get("Authorization"))
			provided = strings.TrimPrefix(auth, "Bearer ")
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
