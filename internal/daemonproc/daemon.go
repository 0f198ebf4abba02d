// Package daemonproc implements the daemon process lifecycle: loading
// configuration, wiring and starting the Engine, the metrics and control
// servers, PID-file management, and OS signal handling — grounded on the
// teacher's internal/daemon/daemon.go.
package daemonproc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"firestige.xyz/ingestd/internal/config"
	"firestige.xyz/ingestd/internal/control"
	"firestige.xyz/ingestd/internal/engine"
	"firestige.xyz/ingestd/internal/log"
	"firestige.xyz/ingestd/internal/metrics"
	"firestige.xyz/ingestd/internal/plugin"
)

const shutdownTimeout = 5 * time.Second

// Daemon manages the ingestd daemon process's lifecycle.
type Daemon struct {
	configPath string
	cfg        *config.Config
	plugins    *plugin.Registry

	engine        *engine.Engine
	metricsServer *metrics.Server
	controlServer *control.Server

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownChan chan struct{}
	sigChan      chan os.Signal
}

// New loads configuration from configPath and constructs an uninitialized
// Daemon bound to plugins.
func New(configPath string, plugins *plugin.Registry) (*Daemon, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("daemonproc: load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		configPath:   configPath,
		cfg:          cfg,
		plugins:      plugins,
		engine:       engine.New(plugins),
		ctx:          ctx,
		cancel:       cancel,
		shutdownChan: make(chan struct{}),
	}, nil
}

// Start brings up logging, the PID file, the metrics server, the Engine,
// and the control-plane UDS server, in that order (§9).
func (d *Daemon) Start() error {
	if err := log.Init(d.cfg.Logger); err != nil {
		return fmt.Errorf("daemonproc: init logging: %w", err)
	}

	slog.Info("starting ingestd daemon", "deploy", d.cfg.DeployName, "config", d.configPath)

	if err := d.writePIDFile(); err != nil {
		return fmt.Errorf("daemonproc: write pid file: %w", err)
	}

	if d.cfg.Metrics.Enabled {
		d.metricsServer = metrics.NewServer(d.cfg.Metrics.Listen, d.cfg.Metrics.Path)
		if err := d.metricsServer.Start(d.ctx); err != nil {
			return fmt.Errorf("daemonproc: start metrics server: %w", err)
		}
	}

	if !d.engine.Initialize(d.cfg) {
		return fmt.Errorf("daemonproc: engine failed to initialize")
	}
	if !d.engine.Start() {
		return fmt.Errorf("daemonproc: engine failed to start")
	}

	handler := control.NewCommandHandler(d.cfg.DeployName, d.engine, d.handleReload, d.handleStop)
	d.controlServer = control.NewServer(d.cfg.Control.Socket, handler)
	go func() {
		if err := d.controlServer.Start(d.ctx); err != nil {
			slog.Error("daemonproc: control server stopped with error", "error", err)
		}
	}()

	slog.Info("ingestd daemon started")
	return nil
}

// Run blocks handling OS signals and control-plane shutdown requests until
// the daemon is told to stop.
func (d *Daemon) Run() error {
	d.sigChan = make(chan os.Signal, 1)
	signal.Notify(d.sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	for {
		select {
		case sig := <-d.sigChan:
			switch sig {
			case syscall.SIGTERM, syscall.SIGINT:
				slog.Info("received shutdown signal", "signal", sig)
				d.Stop()
				return nil
			case syscall.SIGHUP:
				slog.Info("received reload signal")
				if err := d.Reload(); err != nil {
					slog.Error("reload failed", "error", err)
				}
			}
		case <-d.shutdownChan:
			slog.Info("shutdown requested via control plane")
			d.Stop()
			return nil
		case <-d.ctx.Done():
			return d.ctx.Err()
		}
	}
}

// Stop tears down the control server, the Engine, and the metrics server,
// then removes the PID file (§9, reverse of Start's order).
func (d *Daemon) Stop() {
	slog.Info("stopping ingestd daemon")

	if d.controlServer != nil {
		d.controlServer.Stop()
	}
	d.engine.Stop()
	if d.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := d.metricsServer.Stop(shutdownCtx); err != nil {
			slog.Error("error stopping metrics server", "error", err)
		}
	}

	d.cancel()
	if d.sigChan != nil {
		signal.Stop(d.sigChan)
	}
	if err := d.removePIDFile(); err != nil {
		slog.Error("error removing pid file", "error", err)
	}

	slog.Info("ingestd daemon stopped")
}

// Reload re-reads the configuration file and refreshes the route table
// out-of-cycle (§9 SIGHUP: "registry refresh + config reload"). Adding or
// removing Sources/Writers instances requires a restart; only the route
// table and logger are hot-reloadable.
func (d *Daemon) Reload() error {
	newCfg, err := config.Load(d.configPath)
	if err != nil {
		return fmt.Errorf("daemonproc: reload config: %w", err)
	}
	d.cfg = newCfg

	if err := log.Init(d.cfg.Logger); err != nil {
		slog.Error("daemonproc: failed to reinitialize logging on reload", "error", err)
	}

	d.engine.RefreshRoutes()
	slog.Info("configuration reloaded")
	return nil
}

func (d *Daemon) handleReload(context.Context) error {
	return d.Reload()
}

func (d *Daemon) handleStop(context.Context) error {
	select {
	case d.shutdownChan <- struct{}{}:
	default:
	}
	return nil
}

func (d *Daemon) writePIDFile() error {
	if d.cfg.Control.PIDFile == "" {
		return nil
	}
	data := []byte(strconv.Itoa(os.Getpid()) + "\n")
	return os.WriteFile(d.cfg.Control.PIDFile, data, 0o644)
}

func (d *Daemon) removePIDFile() error {
	if d.cfg.Control.PIDFile == "" {
		return nil
	}
	if err := os.Remove(d.cfg.Control.PIDFile); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
