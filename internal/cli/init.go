package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/bbd/internal/logging"
	"github.com/mesh-intelligence/bbd/internal/paths"
	"github.com/mesh-intelligence/bbd/pkg/types"
)

// configFile holds the structure written to config.yaml. Credentials are
// left to GP_USER and GP_PASS and are never written.
type configFile struct {
	DB      dbSection      `yaml:"db"`
	Schema  types.Schema   `yaml:"schema"`
	Log     logging.Config `yaml:"log"`
	Timeout string         `yaml:"timeout"`
}

type dbSection struct {
	Driver string `yaml:"driver"`
	Host   string `yaml:"host,omitempty"`
	Name   string `yaml:"name,omitempty"`
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml",
		Long:  "Create the configuration directory and write config.yaml with default\nsettings. An existing config.yaml is left untouched.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}

	path := paths.ConfigFile(configDir)
	written, err := writeConfigIfMissing(path)
	if err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	if written {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
	}
	return nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. It reports whether a file was written.
func writeConfigIfMissing(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	cfg := configFile{
		DB:      dbSection{Driver: types.DefaultDriver},
		Schema:  types.DefaultSchema(),
		Log:     logging.DefaultConfig(),
		Timeout: types.DefaultTimeout.String(),
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	return true, os.WriteFile(path, data, 0o644)
}
