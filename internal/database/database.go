package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"seungpyo.lee/BlogBoard/internal/config"
	"seungpyo.lee/BlogBoard/internal/domain"
	"seungpyo.lee/BlogBoard/pkg/logger"
)

// Options selects the database backend.
type Options struct {
	Driver   string // config.DBDriverPostgres or config.DBDriverSQLite
	DSN      string
	LogLevel string
}

// OptionsFromConfig builds Options from the server configuration.
func OptionsFromConfig(conf *config.ServerConfig) Options {
	opts := Options{Driver: conf.DBDriver, LogLevel: conf.LogLevel}
	switch conf.DBDriver {
	case config.DBDriverSQLite:
		opts.DSN = conf.SQLitePath
	default:
		opts.DSN = conf.PostgresDSN()
	}
	return opts
}

// Open connects to the configured database.
func Open(opts Options, l *logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case config.DBDriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case config.DBDriverSQLite:
		dialector = sqlite.Open(sqliteDSN(opts.DSN))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(opts.LogLevel, l),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	if opts.Driver == config.DBDriverSQLite {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the server uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.RefreshToken{},
		&domain.ResetToken{},
		&domain.Post{},
		&domain.PostReaction{},
		&domain.Comment{},
		&domain.Image{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func sqliteDSN(path string) string {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func newGormLogger(level string, l *logger.Logger) gormlogger.Interface {
	logLevel := gormlogger.Warn
	switch level {
	case "debug":
		logLevel = gormlogger.Info
	case "error":
		logLevel = gormlogger.Error
	}
	var writer gormlogger.Writer = log.Default()
	if l != nil {
		writer = log.New(l.Writer(), "\r\n", log.LstdFlags)
	}
	return gormlogger.New(writer, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
