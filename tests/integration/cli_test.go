package integration

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		buildErr = err
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "bbd-test-*")
	if err != nil {
		buildErr = err
		os.Exit(1)
	}
	binPath := filepath.Join(tmpDir, "bbd")
	bbdBin = binPath

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/bbd")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		buildErr = &BuildError{Err: err, Output: string(output)}
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

var receipts = []Row{
	{Receipt: "RCT070342", Item: "MOZZS", Tracking: "BBD-2026-01", ID: 41},
	{Receipt: "RCT070342", Item: "MOZZS-LG", Tracking: "BBD-2026-02", ID: 42},
	{Receipt: "RCT070343", Item: "PARM", Tracking: "", ID: 43},
	{Receipt: "RCT080001", Item: "RICOTTA", Tracking: "BBD-2026-04", ID: 45},
}

type line struct {
	ReceiptNumber string `json:"receipt_number"`
	ItemNumber    string `json:"item_number"`
	Tracking      string `json:"tracking"`
	RowID         int64  `json:"row_id"`
}

func queryJSON(t *testing.T, e *TestEnv, args ...string) []line {
	t.Helper()
	r := e.MustRunBBD(append([]string{"--json", "query"}, args...)...)
	var lines []line
	require.NoError(t, json.Unmarshal([]byte(r.Stdout), &lines), r.Stdout)
	return lines
}

func TestQueryThenEdit(t *testing.T) {
	e := NewTestEnv(t, receipts...)

	lines := queryJSON(t, e, "--receipt", "070342", "--item", "LG")
	require.Len(t, lines, 1)
	assert.Equal(t, int64(42), lines[0].RowID)
	assert.Equal(t, "BBD-2026-02", lines[0].Tracking)

	e.MustRunBBD("edit", "--id", "42", "--value", "BOL-9981")
	assert.Equal(t, "BOL-9981", e.Tracking(42))
	assert.Equal(t, "BBD-2026-01", e.Tracking(41))

	lines = queryJSON(t, e, "--receipt", "070342", "--item", "LG")
	require.Len(t, lines, 1)
	assert.Equal(t, "BOL-9981", lines[0].Tracking)
}

func TestExitCodes(t *testing.T) {
	e := NewTestEnv(t, receipts...)

	tests := []struct {
		name string
		env  []string
		args []string
		want int
	}{
		{"query ok", nil, []string{"query", "--receipt", "RCT"}, 0},
		{"blank filters", nil, []string{"query"}, 1},
		{"unknown row", nil, []string{"edit", "--id", "999", "--value", "X"}, 1},
		{"unknown flag", nil, []string{"query", "--bogus"}, 1},
		{"missing credentials", []string{"GP_DRIVER=sqlserver"}, []string{"query", "--receipt", "RCT"}, 2},
		{"unknown driver", []string{"GP_DRIVER=oracle"}, []string{"query", "--receipt", "RCT"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := e.Env
			e.Env = append(append([]string{}, saved...), tt.env...)
			defer func() { e.Env = saved }()

			r := e.RunBBD(tt.args...)
			assert.Equal(t, tt.want, r.ExitCode, "stdout: %s\nstderr: %s", r.Stdout, r.Stderr)
		})
	}
}

func TestDotEnvAndDefaultLogFile(t *testing.T) {
	e := NewTestEnv(t, receipts...)
	e.Env = nil
	require.NoError(t, os.WriteFile(filepath.Join(e.WorkDir, ".env"),
		[]byte("GP_DRIVER=sqlite\nGP_DB="+e.DBPath+"\n"), 0o600))

	lines := queryJSON(t, e, "--item", "RICOTTA")
	require.Len(t, lines, 1)
	assert.Equal(t, int64(45), lines[0].RowID)

	logged, err := os.ReadFile(filepath.Join(e.WorkDir, "logs", "info.log"))
	require.NoError(t, err)
	assert.Regexp(t, `^\[\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}\] - INFO\. store attached`, string(logged))
}

func TestInitWritesConfig(t *testing.T) {
	e := NewTestEnv(t)
	r := e.MustRunBBD("init")
	assert.Contains(t, r.Stdout, "wrote")
	assert.FileExists(t, filepath.Join(e.ConfigDir, "config.yaml"))

	r = e.MustRunBBD("init")
	assert.Contains(t, r.Stdout, "already exists")
}
