package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds the connection parameters and schema description used by
// Backend.Attach. Host, Database, User, Password, and Driver are the five
// values read from the process environment.
type Config struct {
	Driver   string        `json:"driver" yaml:"driver"`
	Host     string        `json:"host" yaml:"host"`
	Database string        `json:"database" yaml:"database"`
	User     string        `json:"user" yaml:"user"`
	Password string        `json:"-" yaml:"-"`
	Schema   Schema        `json:"schema" yaml:"schema"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout"`
}

// Supported driver names. Each maps to a database/sql driver registered by
// the store package.
const (
	DriverSQLServer = "sqlserver"
	DriverMySQL     = "mysql"
	DriverPostgres  = "pgx"
	DriverSQLite    = "sqlite"
)

// DefaultDriver is used when GP_DRIVER is unset.
const DefaultDriver = DriverSQLServer

// DefaultTimeout bounds a single read or write against the store.
const DefaultTimeout = 30 * time.Second

// Config validation errors.
var (
	ErrDriverEmpty       = errors.New("driver must not be empty")
	ErrDriverUnknown     = errors.New("unknown driver")
	ErrMissingCredential = errors.New("missing required connection value")
)

// knownDrivers lists the drivers that Validate accepts.
var knownDrivers = map[string]bool{
	DriverSQLServer: true,
	DriverMySQL:     true,
	DriverPostgres:  true,
	DriverSQLite:    true,
}

// Drivers returns the accepted driver names in a stable order.
func Drivers() []string {
	return []string{DriverSQLServer, DriverMySQL, DriverPostgres, DriverSQLite}
}

// Validate checks that every value the driver needs is present and that the
// schema description is well formed. SQLite only needs Database (a file
// path); network drivers need all four credentials.
func (c Config) Validate() error {
	if c.Driver == "" {
		return ErrDriverEmpty
	}
	if !knownDrivers[c.Driver] {
		return fmt.Errorf("%w %q (want one of %s)", ErrDriverUnknown, c.Driver, strings.Join(Drivers(), ", "))
	}

	type credential struct{ env, value string }
	required := []credential{{"GP_DB", c.Database}}
	if c.Driver != DriverSQLite {
		required = append(required,
			credential{"GP_HOST", c.Host},
			credential{"GP_USER", c.User},
			credential{"GP_PASS", c.Password},
		)
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingCredential, r.env)
		}
	}

	return c.Schema.Validate()
}
