package db

import (
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BharatBattles/edurank-glow/internal/db/models"
)

// InitDB opens the SQLite database and runs migrations for the two
// append-only tables the core owns.
func InitDB(dbPath string) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := gdb.AutoMigrate(&models.RequestLog{}, &models.AuditLog{}); err != nil {
		return nil, err
	}

	return gdb, nil
}
