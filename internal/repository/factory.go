package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/mandrykarina/GC/pkg/config"
	"github.com/mandrykarina/GC/pkg/telemetry"
)

// DBConfig holds database configuration.
type DBConfig struct {
	Type     string `mapstructure:"type"` // sqlite, postgres or mysql
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	MaxConns int    `mapstructure:"max_conns"`
	RawSQL   bool   `mapstructure:"raw_sql"`
}

// FromConfig converts the database section of the application config.
func FromConfig(cfg *config.DatabaseConfig) *DBConfig {
	return &DBConfig{
		Type:     cfg.Type,
		Path:     cfg.Path,
		Host:     cfg.Host,
		Port:     cfg.Port,
		Database: cfg.Database,
		User:     cfg.User,
		Password: cfg.Password,
		MaxConns: cfg.MaxConns,
		RawSQL:   cfg.RawSQL,
	}
}

// DBType represents the database type.
type DBType string

const (
	DBTypeSQLite   DBType = "sqlite"
	DBTypePostgres DBType = "postgres"
	DBTypeMySQL    DBType = "mysql"
)

// Dialector returns the gorm dialector for cfg.
func Dialector(cfg *DBConfig) (gorm.Dialector, error) {
	switch DBType(cfg.Type) {
	case DBTypeSQLite, DBType("sqlite3"):
		return sqlite.Open(cfg.Path), nil
	case DBTypePostgres, DBType("postgresql"):
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database,
		)
		return postgres.Open(dsn), nil
	case DBTypeMySQL:
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		)
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}

// NewGormDB creates a new GORM database connection based on configuration.
func NewGormDB(cfg *DBConfig) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable OpenTelemetry tracing if OTEL_ENABLED=true
	if telemetry.Enabled() {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, fmt.Errorf("failed to enable telemetry: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	// sqlite permits a single writer, and each :memory: connection is its own database.
	if DBType(cfg.Type) == DBTypeSQLite {
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(max(1, maxConns/2))
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Repositories holds all repository instances.
type Repositories struct {
	Runs   RunRepository
	gormDB *gorm.DB
	dbType string
}

// NewRepositories creates the repositories on gormDB. With RawSQL set,
// postgres and mysql run history bypasses GORM and uses hand written SQL on
// the same connection pool.
func NewRepositories(gormDB *gorm.DB, cfg *DBConfig) (*Repositories, error) {
	repos := &Repositories{gormDB: gormDB, dbType: cfg.Type}

	if !cfg.RawSQL {
		repos.Runs = NewGormRunRepository(gormDB)
		return repos, nil
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	switch DBType(cfg.Type) {
	case DBTypePostgres, DBType("postgresql"):
		repos.Runs = NewPostgresRunRepository(sqlDB)
	case DBTypeMySQL:
		repos.Runs = NewMySQLRunRepository(sqlDB)
	default:
		return nil, fmt.Errorf("raw SQL is not supported for %s", cfg.Type)
	}
	return repos, nil
}

// Migrate creates the tables the repositories need.
func (r *Repositories) Migrate(ctx context.Context) error {
	switch runs := r.Runs.(type) {
	case *GormRunRepository:
		return runs.Migrate(ctx)
	case *PostgresRunRepository:
		return runs.EnsureSchema(ctx)
	case *MySQLRunRepository:
		return runs.EnsureSchema(ctx)
	}
	return nil
}

// Close closes the database connection.
func (r *Repositories) Close() error {
	if r.gormDB != nil {
		sqlDB, err := r.gormDB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// HealthCheck verifies the database connection is still alive.
func (r *Repositories) HealthCheck(ctx context.Context) error {
	sqlDB, err := r.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// DB returns the underlying sql.DB connection.
func (r *Repositories) DB() *sql.DB {
	sqlDB, _ := r.gormDB.DB()
	return sqlDB
}

// GormDB returns the underlying GORM DB instance.
func (r *Repositories) GormDB() *gorm.DB {
	return r.gormDB
}

// DBType returns the configured database type.
func (r *Repositories) DBType() string {
	return r.dbType
}
