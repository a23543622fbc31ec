// Package main is the entry point for posed, the glTF pose player.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/posegraph/internal/asset"
	"github.com/Faultbox/posegraph/internal/command"
	"github.com/Faultbox/posegraph/internal/config"
	"github.com/Faultbox/posegraph/internal/engine/debug"
	"github.com/Faultbox/posegraph/internal/logger"
	"github.com/Faultbox/posegraph/internal/player"
	"github.com/Faultbox/posegraph/internal/rpc"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== posed ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("posed failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("posed stopped normally")
}

func run(cfg *config.Config) error {
	if cfg.Asset.Path == "" {
		return fmt.Errorf("no asset given: set asset.path or pass -asset")
	}

	a, err := asset.Open(cfg.Asset.Path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue := command.NewQueue(cfg.RPC.QueueSize)
	p := player.New(player.Config{
		FPS:            cfg.Animation.FPS,
		Autoplay:       cfg.Animation.Autoplay,
		StartAnimation: cfg.Animation.StartAnimation,
		DebugDraw:      cfg.Debug.Enabled,
		Draw:           drawConfig(cfg.Debug),
	}, a, queue)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return p.Run(ctx)
	})
	if cfg.RPC.Enabled {
		srv := rpc.NewServer(rpc.Options{
			Addr:            cfg.RPC.Addr(),
			ShutdownTimeout: cfg.RPC.ShutdownTimeout,
			AccessLog:       cfg.Logging.Level == "debug",
		}, queue)
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}
	return g.Wait()
}

func drawConfig(c config.DebugConfig) debug.DrawConfig {
	return debug.DrawConfig{
		JointPoints:        c.JointPoints,
		BoneSegments:       c.BoneSegments,
		ChildlessExtension: c.ChildlessExtension,
		BoneAxes:           c.BoneAxes,
		MeshAnchors:        c.MeshAnchors,
		Bounds:             c.Bounds,
		ExtensionLength:    c.ExtensionLength,
		AxisLength:         c.AxisLength,
	}
}
