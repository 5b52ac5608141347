// neuroedge-kernel runs the kernel headless: the HTTP API without the
// desktop shell, for servers and edge nodes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/josephwere/NeuroEdge/internal/api"
	"github.com/josephwere/NeuroEdge/internal/config"
	"github.com/josephwere/NeuroEdge/internal/kernel"
	"github.com/josephwere/NeuroEdge/internal/logger"
	"github.com/josephwere/NeuroEdge/internal/store"
	"github.com/josephwere/NeuroEdge/internal/vision"
)

func main() {
	cmd := buildCLI()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildCLI() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to the configuration yaml file",
	}
	listenFlag := &cli.StringFlag{
		Name:    "listen",
		Aliases: []string{"l"},
		Usage:   "listen address, overrides the configuration file",
	}

	return &cli.Command{
		Name:  "neuroedge-kernel",
		Usage: "NeuroEdge kernel daemon",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the kernel HTTP API until interrupted",
				Flags: []cli.Flag{configFlag, listenFlag},
				Action: func(ctx context.Context, c *cli.Command) error {
					return serve(ctx, c.String("config"), c.String("listen"))
				},
			},
		},
	}
}

func serve(ctx context.Context, configPath, listen string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
		cfg = loaded
	}
	if listen != "" {
		cfg.ListenAddress = listen
	}

	log := logger.NewJSONLogger(logger.LevelFromEnv())

	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("store initialisation failed: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("main", err, map[string]interface{}{"step": "store close"})
		}
	}()

	kern := kernel.New(cfg, log, st)
	if visionEngine, err := vision.NewEngine("", log); err != nil {
		log.Warning("main", "vision engine disabled", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		kern.SetVision(visionEngine)
	}
	kern.Start()
	defer kern.Shutdown()

	server := api.New(cfg, kern, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(ctx)
	})
	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, log, func(next *config.Config) {
			kern.ApplyConfig(next)
			server.ApplyConfig(next)
		})
		if err != nil {
			log.Warning("main", "config hot reload disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			g.Go(func() error {
				err := watcher.Watch(ctx)
				if err == context.Canceled {
					return nil
				}
				return err
			})
		}
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
