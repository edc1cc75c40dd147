package docstore

import (
	"gorm.io/gorm"

	platformerrors "forge-server-go/internal/platform/errors"
)

// Driver identifiers supported by the document store.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config describes the high level store selection parameters.
type Config struct {
	Driver string
	Redis  *RedisConfig
}

// Dependencies captures external handles required by certain drivers.
type Dependencies struct {
	SQLiteDB *gorm.DB
}

// New creates a document store based on the provided configuration.
func New(cfg Config, deps Dependencies) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverMemory
	}

	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		if deps.SQLiteDB == nil {
			return nil, platformerrors.New(
				platformerrors.KindStorage, "docstore.factory", "sqlite driver requires database handle")
		}
		return NewSQLite(deps.SQLiteDB)
	case DriverRedis:
		return NewRedis(cfg.Redis)
	default:
		return nil, platformerrors.New(
			platformerrors.KindStorage, "docstore.factory", "unsupported store driver: "+driver)
	}
}
