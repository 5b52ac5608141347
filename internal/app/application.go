// Package app assembles the desktop shell: Fyne window, kernel, HTTP API,
// store and GUI manager, with lifecycle management around them.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/josephwere/NeuroEdge/internal/api"
	"github.com/josephwere/NeuroEdge/internal/config"
	"github.com/josephwere/NeuroEdge/internal/eventbus"
	"github.com/josephwere/NeuroEdge/internal/gui"
	"github.com/josephwere/NeuroEdge/internal/kernel"
	"github.com/josephwere/NeuroEdge/internal/logger"
	"github.com/josephwere/NeuroEdge/internal/shutdown"
	"github.com/josephwere/NeuroEdge/internal/store"
	"github.com/josephwere/NeuroEdge/internal/vision"
)

const (
	AppName    = "NeuroEdge"
	AppID      = "com.neuroedge.shell"
	AppVersion = "1.0.0"

	statusRefreshInterval = 5 * time.Second
)

type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	log     logger.Logger
	cfg     *config.Config

	store   *store.Store
	kernel  *kernel.Kernel
	api     *api.API
	guiMgr  *gui.Manager
	manager *shutdown.Manager

	serveCancel context.CancelFunc
}

// NewApplication builds the shell. A missing main window or a failed
// component initialisation is unrecoverable and surfaces as an error for
// main to treat as fatal.
func NewApplication(cfg *config.Config, log logger.Logger) (*Application, error) {
	fyneapp.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})
	fyneApp := fyneapp.NewWithID(AppID)

	window := fyneApp.NewWindow(AppName)
	if window == nil {
		return nil, errors.New("main window unavailable")
	}
	window.Resize(fyne.NewSize(1100, 700))
	window.CenterOnScreen()
	window.SetMaster()

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("store initialisation failed: %w", err)
	}

	kern := kernel.New(cfg, log, st)

	if visionEngine, err := vision.NewEngine("", log); err != nil {
		log.Warning("Application", "vision engine disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		kern.SetVision(visionEngine)
	}

	a := &Application{
		fyneApp: fyneApp,
		window:  window,
		log:     log,
		cfg:     cfg,
		store:   st,
		kernel:  kern,
		api:     api.New(cfg, kern, log),
		guiMgr:  gui.NewManager(window, log),
		manager: shutdown.NewManager(log),
	}

	a.wire()

	log.Info("Application", "initialization complete", map[string]interface{}{
		"version": AppVersion,
		"listen":  cfg.ListenAddress,
	})
	return a, nil
}

func (a *Application) wire() {
	a.guiMgr.SetCommandHandler(a.handleConsoleCommand)

	feed := func(event eventbus.Event) {
		a.guiMgr.AppendEvent(fmt.Sprintf("%s  %s", event.Timestamp.Format("15:04:05"), event.Name))
	}
	a.kernel.Bus().Subscribe("command:executed", eventbus.HandlerFunc{ID: "gui-feed-commands", Fn: feed})
	a.kernel.Bus().Subscribe("compute:optimized", eventbus.HandlerFunc{ID: "gui-feed-optimizer", Fn: feed})

	a.manager.Register(shutdown.Func(a.kernel.Shutdown))
	a.manager.Register(shutdown.Func(func() {
		if err := a.store.Close(); err != nil {
			a.log.Error("Application", err, map[string]interface{}{"step": "store close"})
		}
	}))
	a.manager.Listen()

	a.window.SetCloseIntercept(func() {
		a.log.Info("Application", "shutdown requested", nil)
		a.initiateShutdown()
		a.window.Close()
	})
}

func (a *Application) handleConsoleCommand(text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	resp := a.kernel.Execute(ctx, kernel.Command{
		Type:    "chat",
		Payload: map[string]interface{}{"message": text},
	})
	if resp.Success {
		a.guiMgr.AppendTranscript(resp.Stdout)
		return
	}
	a.guiMgr.AppendTranscript("error: " + resp.Stderr)
}

// Run starts the kernel, the HTTP API and the blocking event loop. It
// returns only after the GUI session ends.
func (a *Application) Run() error {
	a.kernel.Start()

	serveCtx, cancel := context.WithCancel(context.Background())
	a.serveCancel = cancel
	a.manager.Register(shutdown.Func(cancel))

	go func() {
		if err := a.api.Serve(serveCtx); err != nil {
			a.log.Error("Application", err, map[string]interface{}{"step": "api serve"})
		}
	}()

	go a.refreshStatus(serveCtx)

	a.window.SetContent(a.guiMgr.GetMainContainer())
	a.window.Show()

	// The stacking hint is cosmetic; its failure is deliberately ignored.
	if a.cfg.Shell.AlwaysOnTop {
		_ = gui.RequestAlwaysOnTop(a.window)
	}

	a.log.Info("Application", "GUI displayed", nil)
	a.fyneApp.Run()

	a.initiateShutdown()
	return nil
}

func (a *Application) refreshStatus(ctx context.Context) {
	ticker := time.NewTicker(statusRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			statuses := a.kernel.Health().StatusesSnapshot()
			healthy := 0
			for _, s := range statuses {
				if s.Healthy {
					healthy++
				}
			}
			a.guiMgr.SetHealthSummary(healthy, len(statuses))
			a.guiMgr.SetNodes(a.kernel.Registry().Nodes())
		}
	}
}

func (a *Application) initiateShutdown() {
	a.manager.Shutdown()
}

// ShutdownContext is cancelled when the shutdown sequence begins. Long
// lived helpers such as the config watcher tie their lifetime to it.
func (a *Application) ShutdownContext() context.Context {
	return a.manager.Context()
}

// ApplyConfig propagates a hot-reloaded configuration.
func (a *Application) ApplyConfig(cfg *config.Config) {
	a.kernel.ApplyConfig(cfg)
	a.api.ApplyConfig(cfg)
}
