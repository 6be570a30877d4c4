package idempotency

import (
	"context"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/leadloom/leadloom/internal/config"
)

var Module = fx.Module("idempotency",
	fx.Provide(NewStore),
	fx.Invoke(runSweeper),
)

// NewStore builds a redis-backed store when an address is configured,
// falling back to the in-process store otherwise.
func NewStore(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Store {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		log.Info("idempotency store using in-process memory")
		return NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
		DB:       cfg.RedisDB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	log.Info("idempotency store using redis", zap.String("addr", addr))
	return NewRedisStore(client)
}

func runSweeper(lc fx.Lifecycle, store Store, log *zap.Logger) {
	stop := make(chan struct{})
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-stop:
						return
					case <-ticker.C:
						removed, err := store.Sweep(context.Background())
						if err != nil {
							log.Warn("idempotency sweep failed", zap.Error(err))
							continue
						}
						if removed > 0 {
							log.Debug("idempotency sweep", zap.Int("removed", removed))
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(stop)
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}
