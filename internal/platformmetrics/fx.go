package platformmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const pushInterval = 30 * time.Second

var Module = fx.Module("platform.metrics",
	fx.Provide(func() *prometheus.Registry {
		return prometheus.NewRegistry()
	}),
	fx.Provide(New),
	fx.Provide(NewPusher),
	fx.Invoke(registerPushLoop),
)

func registerPushLoop(lc fx.Lifecycle, pusher Pusher, registry *prometheus.Registry, logger *zap.Logger) {
	if pusher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("starting metrics push worker")
			go func() {
				ticker := time.NewTicker(pushInterval)
				defer ticker.Stop()

				for {
					select {
					case <-ticker.C:
						if err := pusher.Push(ctx, registry); err != nil {
							logger.Warn("metrics push failed", zap.Error(err))
						}
					case <-ctx.Done():
						logger.Info("stopping metrics push worker")
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
