package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/suPer8Hu/chat-dashboard/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Connect opens the database for the given driver. For sqlite the DSN is a
// file path (or a file: URI); its parent directory is created if needed.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "", DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		dialector = gormsqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER=%q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if dialector.Name() == DriverSQLite {
		// sqlite allows a single writer
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	return gdb, nil
}

// Migrate creates or updates the users and settings tables.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&models.User{}, &models.Settings{}); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	if gdb.Dialector.Name() == DriverMySQL {
		// usernames are case-sensitive; the default utf8mb4 collation is not
		if err := gdb.Exec(usernameBinaryCollation).Error; err != nil {
			return fmt.Errorf("setting username collation: %w", err)
		}
	}
	return nil
}

const usernameBinaryCollation = "ALTER TABLE users MODIFY username VARCHAR(64) " +
	"CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL"

// Ping checks the underlying connection.
func Ping(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func ensureDir(dsn string) error {
	if strings.HasPrefix(dsn, "file:") || strings.Contains(dsn, ":memory:") {
		return nil
	}
	path := dsn
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	return nil
}
