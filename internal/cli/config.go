package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/bbd/internal/logging"
	"github.com/mesh-intelligence/bbd/pkg/types"
)

// Environment variables holding the connection values.
const (
	envHost    = "GP_HOST"
	envDB      = "GP_DB"
	envUser    = "GP_USER"
	envPass    = "GP_PASS"
	envDriver  = "GP_DRIVER"
	envLogPath = "BBD_LOG_PATH"
)

// Config keys, as they appear in config.yaml.
const (
	cfgKeyDriver   = "db.driver"
	cfgKeyHost     = "db.host"
	cfgKeyDatabase = "db.name"
	cfgKeyUser     = "db.user"
	cfgKeyPassword = "db.password"

	cfgKeySchemaVersion  = "schema.version"
	cfgKeySchemaTable    = "schema.table"
	cfgKeyReceiptColumn  = "schema.receipt_column"
	cfgKeyItemColumn     = "schema.item_column"
	cfgKeyTrackingColumn = "schema.tracking_column"
	cfgKeyRowIDColumn    = "schema.row_id_column"

	cfgKeyLogPath       = "log.path"
	cfgKeyLogTimeFormat = "log.time_format"
	cfgKeyLogLevel      = "log.level"
	cfgKeyLogAppend     = "log.append"

	cfgKeyTimeout = "timeout"
)

var envBindings = map[string]string{
	cfgKeyDriver:   envDriver,
	cfgKeyHost:     envHost,
	cfgKeyDatabase: envDB,
	cfgKeyUser:     envUser,
	cfgKeyPassword: envPass,
	cfgKeyLogPath:  envLogPath,
}

// settings is everything resolved from .env, the environment, and
// config.yaml.
type settings struct {
	Store types.Config
	Log   logging.Config
}

// loadSettings reads envFile (if present) into the environment, then
// resolves every setting with precedence environment > config.yaml >
// default. A missing envFile or config.yaml is not an error.
func loadSettings(configDir, envFile string) (settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return settings{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return settings{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	timeout := v.GetDuration(cfgKeyTimeout)
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}

	return settings{
		Store: types.Config{
			Driver:   v.GetString(cfgKeyDriver),
			Host:     v.GetString(cfgKeyHost),
			Database: v.GetString(cfgKeyDatabase),
			User:     v.GetString(cfgKeyUser),
			Password: v.GetString(cfgKeyPassword),
			Schema: types.Schema{
				Version:        v.GetInt(cfgKeySchemaVersion),
				Table:          v.GetString(cfgKeySchemaTable),
				ReceiptColumn:  v.GetString(cfgKeyReceiptColumn),
				ItemColumn:     v.GetString(cfgKeyItemColumn),
				TrackingColumn: v.GetString(cfgKeyTrackingColumn),
				RowIDColumn:    v.GetString(cfgKeyRowIDColumn),
			},
			Timeout: timeout,
		},
		Log: logging.Config{
			Path:       v.GetString(cfgKeyLogPath),
			TimeFormat: v.GetString(cfgKeyLogTimeFormat),
			Level:      v.GetString(cfgKeyLogLevel),
			Append:     v.GetBool(cfgKeyLogAppend),
		},
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(cfgKeyDriver, types.DefaultDriver)

	s := types.DefaultSchema()
	v.SetDefault(cfgKeySchemaVersion, s.Version)
	v.SetDefault(cfgKeySchemaTable, s.Table)
	v.SetDefault(cfgKeyReceiptColumn, s.ReceiptColumn)
	v.SetDefault(cfgKeyItemColumn, s.ItemColumn)
	v.SetDefault(cfgKeyTrackingColumn, s.TrackingColumn)
	v.SetDefault(cfgKeyRowIDColumn, s.RowIDColumn)

	l := logging.DefaultConfig()
	v.SetDefault(cfgKeyLogPath, l.Path)
	v.SetDefault(cfgKeyLogTimeFormat, l.TimeFormat)
	v.SetDefault(cfgKeyLogLevel, l.Level)
	v.SetDefault(cfgKeyLogAppend, l.Append)

	v.SetDefault(cfgKeyTimeout, types.DefaultTimeout)
}
