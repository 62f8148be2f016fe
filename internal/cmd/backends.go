package cmd

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/talentloop/portal/internal/api/handler"
	"github.com/talentloop/portal/internal/infrastructure/db/mongo"
	"github.com/talentloop/portal/internal/infrastructure/db/redis"
	"github.com/talentloop/portal/internal/infrastructure/remote"
	"github.com/talentloop/portal/internal/infrastructure/session"
)

const shutdownTimeout = 10 * time.Second

// stores are the external databases a command connected to.
type stores struct {
	redis *goredis.Client
	mongo *mongodriver.Database
}

func (s stores) deps() session.Dependencies {
	return session.Dependencies{Redis: s.redis, Mongo: s.mongo}
}

// probes lists a readiness check for each connected database.
func (s stores) probes() map[string]handler.Pinger {
	out := map[string]handler.Pinger{}
	if s.redis != nil {
		out["redis"] = handler.PingerFunc(func(ctx context.Context) error { return s.redis.Ping(ctx).Err() })
	}
	if s.mongo != nil {
		out["mongodb"] = handler.PingerFunc(func(ctx context.Context) error { return s.mongo.Client().Ping(ctx, nil) })
	}
	return out
}

func (s stores) close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.mongo.Client().Disconnect(ctx)
	}
}

// openStores connects only the databases the named drivers need.
func openStores(ctx context.Context, drivers ...string) (stores, error) {
	var s stores
	if slices.Contains(drivers, session.DriverRedis) {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     appConfig.Redis.Addr,
			Password: appConfig.Redis.Password,
			DB:       appConfig.Redis.DB,
		})
		if err != nil {
			return s, err
		}
		s.redis = rdb
	}
	if slices.Contains(drivers, session.DriverMongo) {
		_, db, err := mongo.Connect(ctx, mongo.Config{URI: appConfig.Mongo.URI, Database: appConfig.Mongo.Database})
		if err != nil {
			s.close()
			return s, err
		}
		s.mongo = db
	}
	return s, nil
}

func newRemoteClient() *remote.Client {
	return remote.NewClient(remote.Config{
		BaseURL:   appConfig.API.BaseURL,
		Timeout:   appConfig.API.Timeout,
		Endpoints: remote.Endpoints{Profile: appConfig.API.ProfilePath},
	})
}

// runServer serves e on addr until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, e *echo.Echo, addr string, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
