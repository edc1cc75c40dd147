package storage

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	platformerrors "forge-server-go/internal/platform/errors"
)

// Open connects to the sqlite database at the given DSN and migrates the
// document schema.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, platformerrors.Wrap(
			platformerrors.KindStorage, "storage.open", "failed to open sqlite database", err)
	}
	if err := db.AutoMigrate(&DocumentRecord{}); err != nil {
		return nil, platformerrors.Wrap(
			platformerrors.KindStorage, "storage.migrate", "failed to migrate document schema", err)
	}
	return db, nil
}
