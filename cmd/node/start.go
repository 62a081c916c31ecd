package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/matrixforge/matrix-node/internal/api"
	"github.com/matrixforge/matrix-node/internal/config"
	"github.com/matrixforge/matrix-node/internal/device"
	"github.com/matrixforge/matrix-node/internal/logger"
	"github.com/matrixforge/matrix-node/internal/nvml"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func startCommand() *cli.Command {
	return &cli.Command{
		Name:  "start",
		Usage: "Start the matrix node",
		Action: func(c *cli.Context) error {
			cfg, err := config.LoadConfig(c.String("config"))
			if err != nil {
				return err
			}
			zapLogger, err := logger.New(cfg.Logger.Verbosity, cfg.Logger.Encoding)
			if err != nil {
				return err
			}

			myFigure := figure.NewFigure("Matrix Node", "", true)
			myFigure.Print()
			fmt.Println("")

			app := fx.New(nodeModule(cfg, zapLogger.Named("node")))
			app.Run()
			return nil
		},
	}
}

// nodeModule assembles the running node: compute manager, NVML poller, HTTP
// API and the lifecycle hooks that tie them to process start and stop.
func nodeModule(cfg *config.Config, log *zap.Logger) fx.Option {
	return fx.Options(
		fx.Supply(cfg, log),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Provide(
			newManager,
			newNVMLProvider,
			func(provider nvml.Provider) api.GPUProvider { return provider },
			newHandler,
			api.NewRouter,
		),
		fx.Invoke(
			registerPoller,
			registerServer,
		),
	)
}

func newManager(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*device.Manager, error) {
	manager, err := device.NewManager(log, device.Policy(cfg.Device.Policy))
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return manager.Cleanup()
		},
	})
	return manager, nil
}

func newNVMLProvider(lc fx.Lifecycle, log *zap.Logger) nvml.Provider {
	provider := nvml.NewProvider()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := provider.Init(); err != nil {
				// The node keeps serving /add; /gpu-info reports the failure.
				log.Warn("NVML unavailable", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := provider.Shutdown(); err != nil {
				log.Warn("failed to shut down NVML", zap.Error(err))
			}
			return nil
		},
	})
	return provider
}

func newHandler(cfg *config.Config, log *zap.Logger, manager *device.Manager, gpus api.GPUProvider) *api.Handler {
	return api.NewHandler(log, manager, gpus, cfg.MaxUploadBytes())
}

func registerPoller(lc fx.Lifecycle, provider nvml.Provider, cfg *config.Config, log *zap.Logger) {
	poller := nvml.NewPoller(provider, time.Duration(cfg.GPU.MetricsPollInterval), log)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			poller.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			poller.Stop()
			return nil
		},
	})
}

func registerServer(lc fx.Lifecycle, cfg *config.Config, router *http.ServeMux, log *zap.Logger) {
	srv := &http.Server{Handler: router}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.ListenAddr())
			if err != nil {
				return err
			}
			log.Info("Starting server on", zap.String("address", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					log.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
