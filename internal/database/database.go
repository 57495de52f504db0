// Package database opens the embedded content archive database and keeps its
// schema current.
package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/waymarker/waymarker-backend/internal/domain"
)

// Open opens (creating if necessary) the sqlite archive database at path and
// migrates the schema. ":memory:" is accepted for tests.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// An in-memory database exists per connection, so the pool must not
	// grow past one.
	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Single writer, many readers.
	if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		return nil, err
	}
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs AutoMigrate for every engine table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.ContentItem{},
		&domain.HistoricSnapshot{},
		&domain.GenerationRun{},
		&domain.RelatedContentEdge{},
		&domain.TagExclusion{},
	)
}
