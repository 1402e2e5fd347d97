package db

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/adaosilva/imoveis-backend/internal/platform/logger"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

type DatabaseService struct {
	db      *gorm.DB
	dialect string
	log     *logger.Logger
}

// ParseURL splits a DATABASE_URL into a gorm dialect and DSN.
// sqlite:///./leads.db and sqlite:////abs/path.db follow the SQLAlchemy
// convention; an empty sqlite path means an in-memory database.
func ParseURL(databaseURL string) (dialect, dsn string, err error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case u == "":
		return "", "", fmt.Errorf("empty database url")
	case strings.HasPrefix(u, "sqlite:"):
		rest := strings.TrimPrefix(u, "sqlite:")
		if strings.HasPrefix(rest, "///") {
			rest = rest[3:]
		} else {
			rest = strings.TrimPrefix(rest, "//")
		}
		if rest == "" || rest == ":memory:" {
			rest = "file::memory:?cache=shared"
		}
		return DialectSQLite, rest, nil
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return DialectPostgres, u, nil
	case strings.Contains(u, "host=") || strings.Contains(u, "dbname="):
		return DialectPostgres, u, nil
	default:
		return "", "", fmt.Errorf("unsupported database url scheme")
	}
}

func NewDatabaseService(ctx context.Context, logg *logger.Logger, databaseURL string) (*DatabaseService, error) {
	serviceLog := logg.With("service", "DatabaseService")

	dialect, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	var db *gorm.DB
	err = retry.Do(
		func() error {
			var openErr error
			switch dialect {
			case DialectSQLite:
				db, openErr = gorm.Open(sqlite.Open(dsn), cfg)
			default:
				db, openErr = gorm.Open(postgres.Open(dsn), cfg)
			}
			if openErr != nil {
				return openErr
			}
			sqlDB, openErr := db.DB()
			if openErr != nil {
				return openErr
			}
			return sqlDB.PingContext(ctx)
		},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			serviceLog.Warn("Database connect retrying", "attempt", n+1, "dialect", dialect, "error", err.Error())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dialect, err)
	}

	if dialect == DialectSQLite {
		// A single connection keeps in-memory databases shared and avoids
		// SQLITE_BUSY on concurrent writers.
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	serviceLog.Info("Database connected", "dialect", dialect)
	return &DatabaseService{db: db, dialect: dialect, log: serviceLog}, nil
}

func (s *DatabaseService) DB() *gorm.DB { return s.db }

func (s *DatabaseService) Dialect() string { return s.dialect }

func (s *DatabaseService) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
