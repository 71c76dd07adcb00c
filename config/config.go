package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	// pure-Go driver registered as "sqlite"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	// Database settings
	DBDriver   string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBPath     string

	HTTPAddr string

	// Where create/delete events are posted. Empty means log only.
	NotifyURL     string
	NotifyTimeout time.Duration

	LogLevel string
	Debug    bool
}

// Load reads the .env file if one exists and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	var err error

	cfg := &Config{
		DBDriver:   getenv("DB_DRIVER", DriverPostgres),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getenv("DB_NAME", "countries"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBPath:     getenv("DB_PATH", "countries.db"),
		HTTPAddr:   getenv("HTTP_ADDR", ":8080"),
		NotifyURL:  os.Getenv("NOTIFY_URL"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
	}

	if cfg.DBDriver != DriverPostgres && cfg.DBDriver != DriverSQLite {
		return nil, fmt.Errorf("invalid DB_DRIVER value %q: must be %s or %s", cfg.DBDriver, DriverPostgres, DriverSQLite)
	}

	cfg.NotifyTimeout, err = time.ParseDuration(getenv("NOTIFY_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEOUT value: %w", err)
	}

	if v := os.Getenv("DEBUG"); v != "" {
		cfg.Debug, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DEBUG value: %w", err)
		}
	}

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL value: %w", err)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

// NewLogger builds the application logger. Debug mode logs human readable
// output to stdout; otherwise JSON at LogLevel.
func (c *Config) NewLogger() (*zap.SugaredLogger, error) {
	var zc zap.Config
	if c.Debug {
		zc = zap.NewDevelopmentConfig()
		zc.OutputPaths = []string{"stdout"}
	} else {
		zc = zap.NewProductionConfig()
		level, err := zap.ParseAtomicLevel(c.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("failed to parse log level: %w", err)
		}
		zc.Level = level
	}

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return l.Sugar(), nil
}

func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.DBPath
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBPort,
	)
}

func ConnectDatabase(c *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.DBDriver {
	case DriverSQLite:
		dialector = sqlite.Dialector{DriverName: "sqlite", DSN: c.DSN()}
	default:
		dialector = postgres.Open(c.DSN())
	}

	logLevel := logger.Warn
	if c.Debug {
		logLevel = logger.Info
	}

	database, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  c.Debug,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Connection pool configuration
	sqlDB, err := database.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	if c.DBDriver == DriverSQLite {
		// a single connection keeps in-memory databases alive and serializes writers
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return database, nil
}

func GetDBStats(db *gorm.DB) sql.DBStats {
	sqlDB, err := db.DB()
	if err != nil {
		zap.S().Warnw("error getting database instance", "error", err)
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}
