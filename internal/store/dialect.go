package store

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/mesh-intelligence/bbd/pkg/types"
)

// likeEscape is the escape character used in every LIKE clause. It is not
// special in any supported dialect's string literals, unlike backslash.
const likeEscape = '!'

// dialect captures what differs between the supported stores: the
// database/sql driver name, bind-parameter syntax, identifier quoting,
// LIKE metacharacters, and DSN layout.
type dialect struct {
	driverName  string
	placeholder func(n int) string
	quote       func(ident string) string
	likeSpecial string
	dsn         func(cfg types.Config) string
}

var dialects = map[string]dialect{
	types.DriverSQLServer: {
		driverName:  "sqlserver",
		placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
		quote:       func(ident string) string { return "[" + ident + "]" },
		likeSpecial: "%_[",
		dsn:         sqlServerDSN,
	},
	types.DriverMySQL: {
		driverName:  "mysql",
		placeholder: func(int) string { return "?" },
		quote:       func(ident string) string { return "`" + ident + "`" },
		likeSpecial: "%_",
		dsn:         mySQLDSN,
	},
	types.DriverPostgres: {
		driverName:  "pgx",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		quote:       func(ident string) string { return `"` + ident + `"` },
		likeSpecial: "%_",
		dsn:         postgresDSN,
	},
	// SQLite reads an unknown double-quoted identifier as a string literal,
	// so backticks are used to make a missing column an error.
	types.DriverSQLite: {
		driverName:  "sqlite",
		placeholder: func(int) string { return "?" },
		quote:       func(ident string) string { return "`" + ident + "`" },
		likeSpecial: "%_",
		dsn:         sqliteDSN,
	},
}

// dialectFor returns the dialect for a validated driver name.
func dialectFor(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("%w %q (want one of %s)", types.ErrDriverUnknown, driver, strings.Join(types.Drivers(), ", "))
	}
	return d, nil
}

// contains turns a filter into a LIKE pattern that matches it as a literal
// substring.
func (d dialect) contains(filter string) string {
	var sb strings.Builder
	sb.Grow(len(filter) + 2)
	sb.WriteByte('%')
	for _, r := range filter {
		if r == likeEscape || strings.ContainsRune(d.likeSpecial, r) {
			sb.WriteRune(likeEscape)
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('%')
	return sb.String()
}

// sqlServerDSN builds a go-mssqldb URL. A host of the form SERVER\INSTANCE
// addresses a named instance.
func sqlServerDSN(cfg types.Config) string {
	host, instance, _ := strings.Cut(cfg.Host, `\`)
	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   host,
		Path:   instance,
	}
	q := url.Values{}
	q.Set("database", cfg.Database)
	q.Set("app name", "bbd")
	u.RawQuery = q.Encode()
	return u.String()
}

// mySQLDSN sets ClientFoundRows so an UPDATE that writes an unchanged value
// still reports the matched row as affected.
func mySQLDSN(cfg types.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = withDefaultPort(cfg.Host, "3306")
	mc.DBName = cfg.Database
	mc.ClientFoundRows = true
	mc.ParseTime = true
	return mc.FormatDSN()
}

func postgresDSN(cfg types.Config) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   withDefaultPort(cfg.Host, "5432"),
		Path:   "/" + cfg.Database,
	}
	q := url.Values{}
	q.Set("application_name", "bbd")
	u.RawQuery = q.Encode()
	return u.String()
}

// sqliteDSN opens the file read-write without creating it, so a missing
// database fails to connect instead of leaving an empty file behind.
func sqliteDSN(cfg types.Config) string {
	u := &url.URL{
		Scheme:   "file",
		Path:     cfg.Database,
		OmitHost: true,
		RawQuery: "mode=rw",
	}
	return u.String()
}

func withDefaultPort(host, port string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, port)
}
