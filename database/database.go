package database

import (
	"strings"
	"time"

	"folio/config"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var logger = loggo.GetLogger("folio.database")

// sqliteParams are appended to SQLite DSNs that do not set their own options.
// Foreign keys are off by default in SQLite, and the cascade deletes on
// join/child tables depend on them.
const sqliteParams = "_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"

// Open connects to the configured database. The caller owns the handle and
// must Close it.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(SQLiteDSN(cfg.DSN))
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, errors.NotValidf("database driver %q", cfg.Driver)
	}

	logLevel := gormlogger.Warn
	if cfg.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Annotatef(err, "opening %s database", cfg.Driver)
	}

	if cfg.Driver == "mysql" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Annotate(err, "getting underlying sql.DB")
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	logger.Infof("connected to %s database", cfg.Driver)
	return db, nil
}

// SQLiteDSN adds the connection options we rely on unless the DSN already
// carries a query string.
func SQLiteDSN(dsn string) string {
	if strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?" + sqliteParams
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	logger.Infof("running database migrations")
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return errors.Annotate(err, "running migrations")
	}
	return nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Errorf("failed to get database handle: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Errorf("failed to close database: %v", err)
		return
	}
	logger.Infof("database connection closed")
}
