package db

import (
	"fmt"
	"log"
	"strings"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// IsMySQL reports whether dsn is a go-sql-driver/mysql DSN
// (user:pass@tcp(host:port)/db). Anything else is treated as sqlite.
func IsMySQL(dsn string) bool {
	return strings.Contains(dsn, "@tcp(") || strings.Contains(dsn, "@unix(")
}

// Open connects to MySQL or SQLite depending on the DSN shape.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector
	if IsMySQL(dsn) {
		dialector = mysql.Open(dsn)
	} else {
		dialector = gormsqlite.Open(strings.TrimPrefix(dsn, "sqlite://"))
	}

	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}
	if IsMySQL(dsn) {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		// sqlite allows a single writer; serialize through one connection
		sqlDB.SetMaxOpenConns(1)
	}
	return gdb, nil
}

// Connect is Open for process entrypoints: it exits on failure.
func Connect(dsn string) *gorm.DB {
	gdb, err := Open(dsn)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	return gdb
}

// Migrate creates or updates the tables for the given models.
func Migrate(gdb *gorm.DB, models ...any) error {
	if err := gdb.AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
