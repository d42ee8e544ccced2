package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

var (
	db *gorm.DB
)

func GetDB() *gorm.DB {
	return db
}

func init() {
	// Load env from .env
	godotenv.Load()
}

type DatabaseOptions struct {
	Driver                 string `env:"DB_DRIVER" envDefault:"postgres"`
	Host                   string `env:"DB_HOST" envDefault:"localhost"`
	Port                   string `env:"DB_PORT" envDefault:"5432"`
	User                   string `env:"DB_USER" envDefault:"postgres"`
	Password               string `env:"DB_PASSWORD"`
	Name                   string `env:"DB_NAME" envDefault:"studio"`
	SSLMode                string `env:"DB_SSLMODE" envDefault:"disable"`
	MaxOpenConns           int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns           int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetimeSeconds int    `env:"DB_CONN_MAX_LIFETIME_SECONDS" envDefault:"300"`
	ConnMaxIdleTimeSeconds int    `env:"DB_CONN_MAX_IDLE_TIME_SECONDS" envDefault:"60"`
	ConnectAttempts        int    `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`
}

func LoadDatabaseOptions() (DatabaseOptions, error) {
	var opts DatabaseOptions
	if err := env.Parse(&opts); err != nil {
		return opts, errors.Wrap(err, "parse database env")
	}
	opts.Driver = strings.ToLower(strings.TrimSpace(opts.Driver))
	if opts.Driver != DriverPostgres && opts.Driver != DriverMySQL {
		return opts, errors.Errorf("unsupported DB_DRIVER %q", opts.Driver)
	}
	return opts, nil
}

// ConnectionString renders the DSN for the configured driver.
func (o DatabaseOptions) ConnectionString() string {
	if o.Driver == DriverMySQL {
		network := "tcp"
		address := fmt.Sprintf("%s:%s", o.Host, o.Port)
		// Cloud SQL: "/cloudsql/<CONNECTION_NAME>" is a unix socket from the auth proxy.
		if strings.HasPrefix(o.Host, "/cloudsql/") {
			network = "unix"
			address = o.Host
		}
		return fmt.Sprintf("%s:%s@%s(%s)/%s?multiStatements=true&parseTime=true",
			o.User, o.Password, network, address, o.Name)
	}
	// pgx treats a host starting with "/" as a socket directory, so /cloudsql works as-is.
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		o.Host, o.Port, o.User, o.Name, o.Password, o.SSLMode)
}

func (o DatabaseOptions) dialector() gorm.Dialector {
	if o.Driver == DriverMySQL {
		return mysql.Open(o.ConnectionString())
	}
	return postgres.Open(o.ConnectionString())
}

// Connect opens the database, tunes the pool and sets the global handle.
// Unlike the server, tools give up after ConnectAttempts tries.
func Connect(opts DatabaseOptions) (*gorm.DB, error) {
	attempts := opts.ConnectAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := gorm.Open(opts.dialector(), initConfig())
		if err == nil {
			if sqlDB, derr := conn.DB(); derr == nil && sqlDB != nil {
				if opts.MaxOpenConns > 0 {
					sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
				}
				if opts.MaxIdleConns >= 0 {
					sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
				}
				if opts.ConnMaxLifetimeSeconds > 0 {
					sqlDB.SetConnMaxLifetime(time.Duration(opts.ConnMaxLifetimeSeconds) * time.Second)
				}
				if opts.ConnMaxIdleTimeSeconds > 0 {
					sqlDB.SetConnMaxIdleTime(time.Duration(opts.ConnMaxIdleTimeSeconds) * time.Second)
				}
			}
			if pluginErr := conn.Use(otelgorm.NewPlugin()); pluginErr != nil {
				log.Printf("db connected but failed to install otelgorm plugin: %v", pluginErr)
			}
			db = conn
			return conn, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to connect database (attempt=%d driver=%s): %v; retrying in %s", attempt, opts.Driver, err, sleep)
		time.Sleep(sleep)
	}
	return nil, errors.Wrapf(lastErr, "connect %s database after %d attempts", opts.Driver, attempts)
}

func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func initConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         WriteGormLog(),
		NamingStrategy: initNamingStrategy(),
	}
}

func initLog() logger.Interface {
	return newGormLogger(os.Stderr)
}

// newGormLogger reports failed statements to w. Missing rows are an expected
// lookup outcome and are not logged.
func newGormLogger(w io.Writer) logger.Interface {
	return logger.New(
		log.New(w, "\r\n", log.LstdFlags),
		logger.Config{
			Colorful:                  false,
			LogLevel:                  logger.Error,
			SlowThreshold:             time.Second,
			IgnoreRecordNotFoundError: true,
		},
	)
}

func initNamingStrategy() *schema.NamingStrategy {
	return &schema.NamingStrategy{
		SingularTable: false,
		TablePrefix:   "",
	}
}

// WriteGormLog logs every statement to GORM_LOG when set; handy for reviewing a shift before committing.
func WriteGormLog() logger.Interface {
	logFile := os.Getenv("GORM_LOG")
	if logFile == "" {
		return initLog()
	}
	f, err := os.Create(logFile)
	if err != nil {
		log.Printf("cannot create GORM_LOG %s: %v", logFile, err)
		return initLog()
	}
	return logger.New(log.New(io.MultiWriter(f), "\r\n", log.LstdFlags), logger.Config{
		Colorful:      false,
		LogLevel:      logger.Info,
		SlowThreshold: time.Second,
	})
}
