package session

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/talentloop/portal/internal/core/ports"
	"github.com/talentloop/portal/internal/infrastructure/db/mongo"
	"github.com/talentloop/portal/internal/infrastructure/db/redis"
)

// Driver identifiers for the session key-value backend.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Driver string
	// FilePath is used by the file driver.
	FilePath string
}

// Dependencies captures external handles required by certain drivers.
type Dependencies struct {
	Redis *goredis.Client
	Mongo *mongodriver.Database
}

// NewKV builds the key-value backend named by cfg.Driver. An empty driver
// means memory.
func NewKV(cfg Config, deps Dependencies) (ports.KeyValueStore, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemoryKV(), nil
	case DriverFile:
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file driver requires a path")
		}
		return NewFileKV(cfg.FilePath), nil
	case DriverRedis:
		if deps.Redis == nil {
			return nil, fmt.Errorf("redis driver requires a client")
		}
		return redis.NewKVStore(deps.Redis, 0), nil
	case DriverMongo:
		if deps.Mongo == nil {
			return nil, fmt.Errorf("mongo driver requires a database handle")
		}
		return mongo.NewKVStore(deps.Mongo), nil
	default:
		return nil, fmt.Errorf("unsupported session driver: %s", cfg.Driver)
	}
}
