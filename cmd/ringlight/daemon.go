package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/1broseidon/ringlight/internal/config"
	"github.com/1broseidon/ringlight/internal/controller"
	"github.com/1broseidon/ringlight/internal/daemon"
	"github.com/1broseidon/ringlight/internal/engine"
	"github.com/1broseidon/ringlight/internal/hotkeys"
	"github.com/1broseidon/ringlight/internal/ipc"
	"github.com/1broseidon/ringlight/internal/platform"
	"github.com/1broseidon/ringlight/internal/runtimepath"
	"github.com/1broseidon/ringlight/internal/settings"
	"github.com/1broseidon/ringlight/internal/uiloop"
)

const shutdownTimeout = 5 * time.Second

func runDaemon(args []string) int {
	if isHelp(args) {
		fmt.Fprintln(os.Stdout, "Usage: ringlight daemon")
		return 0
	}
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: ringlight daemon")
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if err := serve(cfg, logger); err != nil {
		logger.Error("daemon failed", "error", err)
		return 1
	}
	return 0
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return err
	}

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		return err
	}
	defer backend.Disconnect()
	backend.SetAccelerated(!cfg.Software())
	logger.Info("connected to display", "display", cfg.Display, "renderer", cfg.Renderer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := uiloop.New(logger)
	go loop.Run(ctx)

	eng := engine.New(engine.Options{
		Screens: backend,
		Windows: engine.Overlays{Surfaces: backend, Accelerator: backend},
		Loop:    loop,
		Logger:  logger,
	})

	settingsPath, err := cfg.SettingsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	store, err := settings.Open(settingsPath)
	if err != nil {
		return err
	}

	ctrl := controller.New(controller.Options{
		Engine:  eng,
		Screens: backend,
		Store:   store,
		Presets: cfg.PresetList(),
		Logger:  logger,
	})

	var startErr error
	if err := loop.Do(ctx, func() { startErr = ctrl.Start() }); err != nil {
		return err
	}
	if startErr != nil {
		logger.Warn("some overlays could not be created", "error", startErr)
	}
	logger.Info("ring light ready", "enabled", ctrl.Values().Enabled, "settings", settingsPath)

	if cfg.WatchSettings {
		store.Subscribe(func(v settings.Values) {
			loop.Post(func() {
				if err := ctrl.Apply(v); err != nil {
					logger.Warn("apply settings failed", "error", err)
				}
			})
		})
		watcher, err := settings.NewWatcher(store, logger)
		if err != nil {
			return err
		}
		if err := watcher.Start(); err != nil {
			logger.Warn("settings watcher unavailable", "error", err)
		}
		defer watcher.Stop()
	}

	keys := hotkeys.NewHandler(backend, loop, ctrl, logger)
	if err := keys.Register(hotkeys.Bindings(hotkeys.Keys{
		Toggle:   cfg.Hotkeys.Toggle,
		Warm:     cfg.Hotkeys.Warm,
		Neutral:  cfg.Hotkeys.Neutral,
		Cool:     cfg.Hotkeys.Cool,
		Brighter: cfg.Hotkeys.Brighter,
		Dimmer:   cfg.Hotkeys.Dimmer,
	}, controller.IntensityStep)); err != nil {
		logger.Warn("hotkeys partially registered", "error", err)
	}
	if cfg.Hotkeys.Menu != "" {
		if err := keys.RegisterFunc(cfg.Hotkeys.Menu, func() { launchMenu(logger) }); err != nil {
			logger.Warn("failed to register menu hotkey", "keys", cfg.Hotkeys.Menu, "error", err)
		} else {
			logger.Info("hotkey registered", "action", "menu", "keys", cfg.Hotkeys.Menu)
		}
	}

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: cfg.ResyncInterval,
		Logger:   logger,
	}, loop, eng.ScreenTopologyChanged)
	go reconciler.Run(ctx)

	server, err := ipc.NewServer(ipc.ServerOptions{
		SocketPath: socketPath,
		Controller: ctrl,
		Loop:       loop,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, reloading settings")
				loop.Post(func() {
					if err := ctrl.Reload(); err != nil {
						logger.Warn("settings reload failed", "error", err)
					}
				})
				continue
			}

			logger.Info("shutting down", "signal", sig.String())
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := loop.Do(shutdownCtx, eng.Close); err != nil {
				logger.Warn("engine close timed out", "error", err)
			}
			done()
			server.Stop()
			backend.Quit()
			return
		}
	}()

	logger.Info("entering event loop")
	backend.EventLoop()
	signal.Stop(sigCh)
	return nil
}
