// Package cli implements the bbd command-line interface. With no
// subcommand it opens the interactive grid; query and edit expose the
// same operations for scripts.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/bbd/internal/tui"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	envFile   string
	jsonMode  bool
}

var flags rootFlags

// codedError carries the process exit code for an error.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func userError(err error) error { return &codedError{code: exitUserError, err: err} }
func sysError(err error) error  { return &codedError{code: exitSysError, err: err} }

// exitCode maps an error returned by a command to a process exit code.
// Errors without a code (flag parsing, unknown commands) are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitUserError
}

// NewRootCmd creates the top-level "bbd" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags = rootFlags{}

	root := &cobra.Command{
		Use:   "bbd",
		Short: "View and correct receipt-line BBD values",
		Long:  "bbd queries receipt lines by receipt and item number and edits the\nBBD (tracking) value of a single line.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runInteractive,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: $BBD_CONFIG_DIR or the user config dir)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading GP_* variables")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newEditCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func runInteractive(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return sysError(err)
	}
	defer a.Close()

	m := tui.New(a.backend, a.logger, a.settings.Store.Timeout)
	if err := tui.Run(cmd.Context(), m); err != nil {
		a.logger.Error("interactive session failed", "err", err)
		return sysError(err)
	}
	return nil
}
