// Package api exposes the kernel over HTTP: health and readiness probes,
// mesh introspection, and guarded command execution.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/josephwere/NeuroEdge/internal/config"
	"github.com/josephwere/NeuroEdge/internal/kernel"
	"github.com/josephwere/NeuroEdge/internal/logger"
)

type API struct {
	kernel *kernel.Kernel
	log    logger.Logger

	mu     sync.RWMutex
	cfg    *config.Config
	server *http.Server

	limiter           *rateLimiter
	concurrencyTokens chan struct{}
	currentInflight   int64
	reqCounter        uint64
}

func New(cfg *config.Config, k *kernel.Kernel, log logger.Logger) *API {
	a := &API{
		kernel:            k,
		log:               log,
		cfg:               cfg,
		limiter:           newRateLimiter(cfg.RateLimit),
		concurrencyTokens: make(chan struct{}, cfg.MaxInflight),
	}
	a.server = &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           a.Routes(),
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      30 * time.Second,
		MaxHeaderBytes:    1 << 19,
	}
	return a
}

func (a *API) apiKey() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg.APIKey
}

// ApplyConfig swaps reloadable settings, used by config hot reload.
func (a *API) ApplyConfig(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (a *API) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("API", "server starting", map[string]interface{}{
			"address": a.server.Addr,
		})
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
