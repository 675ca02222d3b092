package persistence

import (
	"fmt"
	"time"

	"github.com/erp/barcode/internal/infrastructure/config"
	"github.com/erp/barcode/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const driverSQLite = "sqlite"

// Database owns the GORM connection the barcode repositories share
type Database struct {
	DB     *gorm.DB
	driver string
}

// NewDatabase opens the configured database with GORM logging silenced
func NewDatabase(cfg *config.DatabaseConfig) (*Database, error) {
	return NewDatabaseWithLogger(cfg, logger.Default.LogMode(logger.Silent))
}

// NewDatabaseWithLogger opens the configured database, applies the pool
// settings and verifies the connection
func NewDatabaseWithLogger(cfg *config.DatabaseConfig, gormLogger logger.Interface) (*Database, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		// sqlite shares one connection in tests, prepared statements only pay off on postgres
		PrepareStmt: cfg.Driver != driverSQLite,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driverName(cfg.Driver), err)
	}

	database := &Database{DB: db, driver: driverName(cfg.Driver)}
	if err := database.configurePool(cfg); err != nil {
		return nil, err
	}
	if err := database.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s database: %w", database.driver, err)
	}
	return database, nil
}

func openDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch driverName(cfg.Driver) {
	case driverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	case "postgres":
		return postgres.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func driverName(driver string) string {
	if driver == "" {
		return "postgres"
	}
	return driver
}

func (d *Database) configurePool(cfg *config.DatabaseConfig) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	return nil
}

// System returns the db.system name reported in traces and logs
func (d *Database) System() string {
	if d.driver == driverSQLite {
		return "sqlite"
	}
	return "postgresql"
}

// EnsureSchema creates the barcode tables from the GORM models.
// Postgres deployments run the SQL migrations instead.
func (d *Database) EnsureSchema() error {
	if err := d.DB.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("create barcode schema: %w", err)
	}
	return nil
}

// Ping checks that the database still answers
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("access connection pool: %w", err)
	}
	return sqlDB.Ping()
}

// Close releases the connection pool
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("access connection pool: %w", err)
	}
	return sqlDB.Close()
}
