package tui

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/bbd/internal/logging"
	"github.com/mesh-intelligence/bbd/pkg/types"
)

type memTable struct {
	lines  []types.ReceiptLine
	reads  int
	writes int
}

func (t *memTable) Read(_ context.Context, receipt, item string) ([]types.ReceiptLine, error) {
	t.reads++
	var out []types.ReceiptLine
	for _, l := range t.lines {
		if strings.Contains(l.ReceiptNumber, receipt) && strings.Contains(l.ItemNumber, item) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (t *memTable) Write(_ context.Context, rowID int64, value string) error {
	t.writes++
	for i := range t.lines {
		if t.lines[i].RowID == rowID {
			t.lines[i].Tracking = value
			return nil
		}
	}
	return types.ErrRowNotFound
}

func newTestModel(t *testing.T) (*Model, *memTable) {
	t.Helper()
	mt := &memTable{lines: []types.ReceiptLine{
		{ReceiptNumber: "RCT070342", ItemNumber: "MOZZS", Tracking: "BBD-01", RowID: 41},
		{ReceiptNumber: "RCT070342", ItemNumber: "PARM", Tracking: "BBD-02", RowID: 42},
	}}
	logger := slog.New(logging.NewHandler(&bytes.Buffer{}, logging.DefaultConfig()))
	return New(mt, logger, time.Second), mt
}

func send(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyQuery    = tea.KeyMsg{Type: tea.KeyCtrlR}
	keyClear    = tea.KeyMsg{Type: tea.KeyCtrlL}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
	keyKillLine = tea.KeyMsg{Type: tea.KeyCtrlU}
)

func TestModel_BlankQueryShowsWarning(t *testing.T) {
	m, mt := newTestModel(t)

	send(m, keyQuery)

	assert.Equal(t, modeNotice, m.mode)
	require.NotNil(t, m.notice)
	assert.False(t, m.notice.isError)
	assert.Equal(t, 0, mt.reads)
	assert.Contains(t, m.View(), "millions of rows")

	send(m, keyEnter)
	assert.Equal(t, modeBrowse, m.mode)
}

func TestModel_QueryFillsGrid(t *testing.T) {
	m, mt := newTestModel(t)

	send(m, typeText("RCT070342"), keyQuery)

	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 1, mt.reads)
	assert.Len(t, m.grid.Rows(), 2)
	assert.Equal(t, "2 row(s)", m.status)
	assert.Contains(t, m.View(), "MOZZS")
}

func TestModel_ItemFilterField(t *testing.T) {
	m, _ := newTestModel(t)

	send(m, typeText("RCT"), keyTab, typeText("PARM"), keyEnter)

	rows := m.grid.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "42", rows[0][3])
}

func TestModel_EditSelectedRow(t *testing.T) {
	m, mt := newTestModel(t)
	send(m, typeText("RCT070342"), keyQuery)

	send(m, keyTab, keyTab, keyDown, typeText("e"))
	require.Equal(t, modeMenu, m.mode)
	assert.Equal(t, int64(42), m.edit.RowID)
	assert.Contains(t, m.View(), menuEditLabel)

	send(m, keyEnter)
	require.Equal(t, modePrompt, m.mode)
	assert.Equal(t, "BBD-02", m.prompt.Value())

	send(m, keyKillLine, typeText("BOL-9981"), keyEnter)

	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 1, mt.writes)
	assert.Equal(t, 2, mt.reads, "edit refreshes the grid")
	assert.Equal(t, "BOL-9981", m.grid.Rows()[1][2])
	assert.Equal(t, "row 42 updated", m.status)
}

func TestModel_EditCancelled(t *testing.T) {
	m, mt := newTestModel(t)
	send(m, typeText("RCT070342"), keyQuery)
	before := m.grid.Rows()

	send(m, keyTab, keyTab, typeText("e"), keyEnter, keyEsc)

	assert.Equal(t, modeBrowse, m.mode)
	assert.Equal(t, 0, mt.writes)
	assert.Equal(t, before, m.grid.Rows())
	assert.Equal(t, "edit cancelled", m.status)
}

func TestModel_RightClickOpensMenu(t *testing.T) {
	m, _ := newTestModel(t)
	send(m, typeText("RCT070342"), keyQuery)

	send(m, tea.MouseMsg{Button: tea.MouseButtonRight, Action: tea.MouseActionPress})

	assert.Equal(t, modeMenu, m.mode)
	assert.Equal(t, focusGrid, m.focus)
	assert.Equal(t, int64(41), m.edit.RowID)
}

func TestModel_MenuNeedsRows(t *testing.T) {
	m, _ := newTestModel(t)

	send(m, tea.MouseMsg{Button: tea.MouseButtonRight, Action: tea.MouseActionPress})

	assert.Equal(t, modeBrowse, m.mode)
}

func TestModel_Clear(t *testing.T) {
	m, _ := newTestModel(t)
	send(m, typeText("RCT070342"), keyTab, typeText("MOZZS"), keyQuery)
	require.Len(t, m.grid.Rows(), 1)

	send(m, keyClear)

	assert.Empty(t, m.receipt.Value())
	assert.Empty(t, m.item.Value())
	assert.Empty(t, m.grid.Rows())
	assert.Equal(t, focusReceipt, m.focus)
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func rightClick(y int) tea.MouseMsg {
	return tea.MouseMsg{X: 8, Y: y, Button: tea.MouseButtonRight, Action: tea.MouseActionPress}
}

// screenLine returns the first line of the rendered view containing s.
func screenLine(t *testing.T, m *Model, s string) int {
	t.Helper()
	for i, line := range strings.Split(m.View(), "\n") {
		if strings.Contains(line, s) {
			return i
		}
	}
	t.Fatalf("%q not on screen:\n%s", s, m.View())
	return -1
}

func TestModel_MenuOpensAfterGridWasEmpty(t *testing.T) {
	tests := []struct {
		name  string
		steps []tea.Msg
	}{
		{"after clear", []tea.Msg{typeText("RCT070342"), keyQuery, keyClear}},
		{"after empty result", []tea.Msg{typeText("NOPE"), keyQuery, keyClear}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Run("right click", func(t *testing.T) {
				m, _ := newTestModel(t)
				send(m, tt.steps...)
				send(m, typeText("RCT070342"), keyQuery)
				require.Len(t, m.grid.Rows(), 2)
				assert.Equal(t, 0, m.grid.Cursor())

				send(m, rightClick(0))

				assert.Equal(t, modeMenu, m.mode)
				assert.Equal(t, int64(41), m.edit.RowID)
			})

			t.Run("edit key", func(t *testing.T) {
				m, _ := newTestModel(t)
				send(m, tt.steps...)
				send(m, typeText("RCT070342"), keyQuery)

				send(m, keyTab, keyTab, typeText("e"))

				assert.Equal(t, modeMenu, m.mode)
				assert.Equal(t, int64(41), m.edit.RowID)
			})
		})
	}
}

func TestModel_RightClickSelectsClickedRow(t *testing.T) {
	m, _ := newTestModel(t)
	send(m, typeText("RCT070342"), keyQuery)

	send(m, rightClick(screenLine(t, m, "PARM")))

	require.Equal(t, modeMenu, m.mode)
	assert.Equal(t, int64(42), m.edit.RowID)
	assert.Equal(t, 1, m.grid.Cursor())
	assert.Equal(t, "BBD-02", m.edit.Current)
}

func TestModel_MenuCancelDropsSelection(t *testing.T) {
	m, _ := newTestModel(t)
	send(m, typeText("RCT070342"), keyQuery, rightClick(0))
	require.Equal(t, modeMenu, m.mode)

	send(m, keyEsc)

	assert.Equal(t, modeBrowse, m.mode)
	_, ok := m.form.Grid().Selected()
	assert.False(t, ok)
}

func TestModel_EditRefreshUsesTypedFilters(t *testing.T) {
	m, mt := newTestModel(t)
	send(m, typeText("RCT070342"), keyQuery)
	require.Len(t, m.grid.Rows(), 2)

	send(m, keyTab, typeText("PARM"), keyTab, typeText("e"))
	require.Equal(t, int64(41), m.edit.RowID)
	send(m, keyEnter, keyKillLine, typeText("BOL-1"), keyEnter)

	assert.Equal(t, "BOL-1", mt.lines[0].Tracking)
	rows := m.grid.Rows()
	require.Len(t, rows, 1, "refresh reads the item filter now in the input")
	assert.Equal(t, "42", rows[0][3])
}

func TestModel_SortByColumn(t *testing.T) {
	m, _ := newTestModel(t)
	send(m, typeText("RCT070342"), keyQuery, keyTab, keyTab)

	send(m, typeText("4"))
	assert.Equal(t, "41", m.grid.Rows()[0][3])
	assert.Contains(t, m.View(), "DEX_ROW_ID ▲")

	send(m, typeText("4"))
	assert.Equal(t, "42", m.grid.Rows()[0][3], "second press reverses")
	assert.Contains(t, m.View(), "DEX_ROW_ID ▼")

	send(m, rightClick(screenLine(t, m, "MOZZS")))
	require.Equal(t, modeMenu, m.mode)
	assert.Equal(t, int64(41), m.edit.RowID, "click maps to the sorted row")
	send(m, keyEsc)

	send(m, keyQuery)
	assert.Equal(t, "42", m.grid.Rows()[0][3], "sort survives a new query")

	send(m, keyClear, typeText("RCT070342"), keyQuery)
	assert.Equal(t, "41", m.grid.Rows()[0][3], "clear restores store order")
	assert.NotContains(t, m.View(), "▼")
}
