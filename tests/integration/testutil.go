// Package integration runs the bbd binary end to end against a SQLite
// receipts table.
package integration

import (
	"bytes"
	"database/sql"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

var (
	// bbdBin is the path to the built bbd binary.
	bbdBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// Row is one seeded receipt line.
type Row struct {
	Receipt  string
	Item     string
	Tracking string
	ID       int64
}

// TestEnv provides an isolated working directory, config directory, and
// SQLite database for one test.
type TestEnv struct {
	t         *testing.T
	WorkDir   string
	ConfigDir string
	DBPath    string
	Env       []string
}

// NewTestEnv creates a working directory and a database seeded with rows.
func NewTestEnv(t *testing.T, rows ...Row) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build bbd: %v", buildErr)
	}
	if bbdBin == "" {
		t.Fatal("bbd binary not built (bbdBin is empty)")
	}

	tempDir := t.TempDir()
	e := &TestEnv{
		t:         t,
		WorkDir:   filepath.Join(tempDir, "work"),
		ConfigDir: filepath.Join(tempDir, "config"),
		DBPath:    filepath.Join(tempDir, "receipts.db"),
	}
	if err := os.MkdirAll(e.WorkDir, 0o755); err != nil {
		t.Fatalf("failed to create work dir: %v", err)
	}
	e.seed(rows)
	e.Env = []string{"GP_DRIVER=sqlite", "GP_DB=" + e.DBPath}
	return e
}

func (e *TestEnv) seed(rows []Row) {
	e.t.Helper()
	db, err := sql.Open("sqlite", e.DBPath)
	if err != nil {
		e.t.Fatalf("open seed db: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE POP30310 (
    POPRCTNM TEXT NOT NULL,
    ITEMNMBR TEXT NOT NULL,
    BOLPRONUMBER TEXT NOT NULL DEFAULT '',
    DEX_ROW_ID INTEGER PRIMARY KEY
);`); err != nil {
		e.t.Fatalf("create table: %v", err)
	}
	for _, r := range rows {
		if _, err := db.Exec("INSERT INTO POP30310 VALUES (?, ?, ?, ?)", r.Receipt, r.Item, r.Tracking, r.ID); err != nil {
			e.t.Fatalf("insert row %d: %v", r.ID, err)
		}
	}
}

// Tracking reads the tracking value of one row straight from the database.
func (e *TestEnv) Tracking(id int64) string {
	e.t.Helper()
	db, err := sql.Open("sqlite", e.DBPath)
	if err != nil {
		e.t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var v string
	if err := db.QueryRow("SELECT BOLPRONUMBER FROM POP30310 WHERE DEX_ROW_ID = ?", id).Scan(&v); err != nil {
		e.t.Fatalf("read row %d: %v", id, err)
	}
	return v
}

// CmdResult holds the result of a bbd command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// cleanEnv returns os.Environ() without any variable bbd reads.
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "GP_") || strings.HasPrefix(kv, "BBD_") {
			continue
		}
		env = append(env, kv)
	}
	return env
}

// RunBBD executes bbd in the test's working directory with its config dir
// and environment.
func (e *TestEnv) RunBBD(args ...string) CmdResult {
	e.t.Helper()

	cmd := exec.Command(bbdBin, append([]string{"--config-dir", e.ConfigDir}, args...)...)
	cmd.Dir = e.WorkDir
	cmd.Env = append(cleanEnv(), e.Env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run bbd: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunBBD executes bbd and fails the test if it returns non-zero.
func (e *TestEnv) MustRunBBD(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunBBD(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("bbd %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}
