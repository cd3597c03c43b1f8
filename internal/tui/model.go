// Package tui is the interactive receipt lookup form: two filter inputs, a
// results grid, Query and Clear actions, and a row menu offering "Edit BBD".
// Store calls run synchronously inside Update; the form blocks until the
// store answers, so at most one call is ever in flight.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/mesh-intelligence/bbd/internal/form"
	"github.com/mesh-intelligence/bbd/pkg/types"
)

// Title is shown at the top of the form.
const Title = "BBD Changer"

const menuEditLabel = "Edit BBD"

type mode int

const (
	modeBrowse mode = iota
	modeMenu
	modePrompt
	modeNotice
)

type focus int

const (
	focusReceipt focus = iota
	focusItem
	focusGrid
	focusCount
)

type notice struct {
	title   string
	message string
	isError bool
}

// noticeBoard implements form.Notifier. The model turns the pending notice
// into a modal dialog after each form call.
type noticeBoard struct {
	pending *notice
}

func (b *noticeBoard) Warn(title, message string) {
	b.pending = &notice{title: title, message: message}
}

func (b *noticeBoard) Error(title, message string) {
	b.pending = &notice{title: title, message: message, isError: true}
}

// Model is the bubbletea model for the lookup form.
type Model struct {
	form    *form.Form
	board   *noticeBoard
	ctx     context.Context
	timeout time.Duration

	receipt textinput.Model
	item    textinput.Model
	grid    table.Model
	prompt  textinput.Model
	help    help.Model
	keys    keyMap

	focus    focus
	mode     mode
	sortCol  int // -1 keeps store order
	sortDesc bool
	edit     form.EditRequest
	notice   *notice
	status   string

	width  int
	height int
}

// New builds the form over table. Each store call is bounded by timeout.
func New(rt types.ReceiptTable, logger *slog.Logger, timeout time.Duration) *Model {
	board := &noticeBoard{}
	f := form.New(rt, logger, board)

	receipt := textinput.New()
	receipt.Placeholder = "e.g. RCT070342"
	receipt.CharLimit = 17
	receipt.Width = 24
	receipt.Focus()

	item := textinput.New()
	item.Placeholder = "optional"
	item.CharLimit = 31
	item.Width = 24

	prompt := textinput.New()
	prompt.Prompt = "> "
	prompt.CharLimit = 31
	prompt.Width = 31

	g := table.New(
		table.WithColumns(f.Grid().Grid().TableColumns()),
		table.WithRows([]table.Row{}),
		table.WithFocused(false),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(primaryColor).
		BorderBottom(true).
		Bold(true).
		Foreground(primaryColor)
	s.Selected = s.Selected.
		Foreground(bgDark).
		Background(accentColor).
		Bold(false)
	g.SetStyles(s)

	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}

	return &Model{
		form:    f,
		board:   board,
		ctx:     context.Background(),
		timeout: timeout,
		receipt: receipt,
		item:    item,
		grid:    g,
		prompt:  prompt,
		help:    help.New(),
		keys:    keys,
		sortCol: -1,
	}
}

// Run opens the form full screen and blocks until the operator quits or ctx
// is cancelled.
func Run(ctx context.Context, m *Model) error {
	m.ctx = ctx
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if h := msg.Height - 16; h > 3 {
			m.grid.SetHeight(h)
		}
		return m, nil

	case tea.MouseMsg:
		if m.mode == modeBrowse && msg.Button == tea.MouseButtonRight && msg.Action == tea.MouseActionPress {
			m.setFocus(focusGrid)
			if i, ok := m.rowAt(msg.Y); ok {
				m.grid.SetCursor(i)
			}
			m.openMenu()
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		switch m.mode {
		case modeNotice:
			return m, m.updateNotice(msg)
		case modeMenu:
			return m, m.updateMenu(msg)
		case modePrompt:
			return m, m.updatePrompt(msg)
		default:
			return m, m.updateBrowse(msg)
		}
	}

	return m, m.updateFocused(msg)
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Query):
		m.query()
		return nil
	case key.Matches(msg, m.keys.Clear):
		m.clear()
		return nil
	case key.Matches(msg, m.keys.NextField):
		m.setFocus((m.focus + 1) % focusCount)
		return nil
	case key.Matches(msg, m.keys.PrevField):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return nil
	case m.focus == focusGrid && key.Matches(msg, m.keys.Edit):
		m.openMenu()
		return nil
	case m.focus == focusGrid && key.Matches(msg, m.keys.Sort):
		m.sortBy(int(msg.Runes[0] - '1'))
		return nil
	case m.focus != focusGrid && key.Matches(msg, m.keys.Confirm):
		m.query()
		return nil
	}
	return m.updateFocused(msg)
}

func (m *Model) updateMenu(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.prompt.SetValue(m.edit.Current)
		m.prompt.CursorEnd()
		m.mode = modePrompt
		return m.prompt.Focus()
	case key.Matches(msg, m.keys.Cancel):
		m.form.Deselect()
		m.mode = modeBrowse
	}
	return nil
}

func (m *Model) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.commitEdit(m.prompt.Value())
		return nil
	case key.Matches(msg, m.keys.Cancel):
		m.commitEdit("")
		return nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *Model) updateNotice(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Confirm) || key.Matches(msg, m.keys.Cancel) {
		m.notice = nil
		m.mode = modeBrowse
	}
	return nil
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusReceipt:
		m.receipt, cmd = m.receipt.Update(msg)
	case focusItem:
		m.item, cmd = m.item.Update(msg)
	case focusGrid:
		m.grid, cmd = m.grid.Update(msg)
	}
	return cmd
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.receipt.Blur()
	m.item.Blur()
	m.grid.Blur()
	switch f {
	case focusReceipt:
		m.receipt.Focus()
	case focusItem:
		m.item.Focus()
	case focusGrid:
		m.grid.Focus()
	}
}

func (m *Model) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, m.timeout)
}

func (m *Model) query() {
	m.form.SetFilters(m.receipt.Value(), m.item.Value())

	ctx, cancel := m.callContext()
	defer cancel()
	if err := m.form.RequestQuery(ctx); err == nil {
		m.status = fmt.Sprintf("%d row(s)", m.form.Grid().Len())
	}
	m.syncGrid()
	m.takeNotice()
}

func (m *Model) clear() {
	m.form.Clear()
	m.receipt.SetValue("")
	m.item.SetValue("")
	m.sortCol, m.sortDesc = -1, false
	m.syncGrid()
	m.status = ""
	m.setFocus(focusReceipt)
}

func (m *Model) openMenu() {
	if m.form.Grid().Len() == 0 {
		return
	}
	if err := m.form.Select(m.grid.Cursor()); err != nil {
		return
	}
	req, err := m.form.BeginEdit()
	if err != nil {
		m.status = err.Error()
		return
	}
	m.edit = req
	m.mode = modeMenu
}

// commitEdit writes value and refreshes with the filters currently typed in
// the inputs.
func (m *Model) commitEdit(value string) {
	m.prompt.Blur()
	m.mode = modeBrowse
	m.form.SetFilters(m.receipt.Value(), m.item.Value())

	ctx, cancel := m.callContext()
	defer cancel()
	err := m.form.CommitEdit(ctx, m.edit, value)
	switch {
	case value == "":
		m.form.Deselect()
		m.status = "edit cancelled"
	case err == nil:
		m.status = fmt.Sprintf("row %d updated", m.edit.RowID)
	}
	m.syncGrid()
	m.takeNotice()
}

// sortBy orders the grid by column col. Choosing the current sort column
// again reverses the order.
func (m *Model) sortBy(col int) {
	if col == m.sortCol {
		m.sortDesc = !m.sortDesc
	} else {
		m.sortCol, m.sortDesc = col, false
	}
	m.syncGrid()
}

// syncGrid applies the sort order and copies the form's rows into the table
// widget. The table reports cursor -1 once it has been empty.
func (m *Model) syncGrid() {
	if m.sortCol >= 0 {
		if err := m.form.Grid().Sort(m.sortCol, m.sortDesc); err != nil {
			m.sortCol = -1
		}
	}
	m.grid.SetColumns(m.columns())

	rows := m.form.Grid().Grid().TableRows()
	cursor := m.grid.Cursor()
	m.grid.SetRows(rows)
	switch {
	case len(rows) == 0:
	case cursor < 0:
		m.grid.SetCursor(0)
	case cursor >= len(rows):
		m.grid.SetCursor(len(rows) - 1)
	}
}

// columns returns the table columns with the sort direction marked.
func (m *Model) columns() []table.Column {
	cols := m.form.Grid().Grid().TableColumns()
	if m.sortCol >= 0 && m.sortCol < len(cols) {
		mark := " ▲"
		if m.sortDesc {
			mark = " ▼"
		}
		cols[m.sortCol].Title += mark
	}
	return cols
}

// rowAt returns the index of the grid row drawn on screen line y. Rows are
// matched by the row id in their last cell, so scrolling does not matter.
func (m *Model) rowAt(y int) (int, bool) {
	line := y - m.gridTop()
	lines := strings.Split(m.grid.View(), "\n")
	if line < 0 || line >= len(lines) {
		return 0, false
	}
	fields := strings.Fields(ansi.Strip(lines[line]))
	if len(fields) == 0 {
		return 0, false
	}
	id, err := strconv.ParseInt(fields[len(fields)-1], 10, 64)
	if err != nil {
		return 0, false
	}
	return m.form.Grid().IndexOf(id)
}

// gridTop is the screen line of the first line inside the grid border.
func (m *Model) gridTop() int {
	top := appStyle.GetPaddingTop()
	for _, s := range m.headerSections() {
		top += lipgloss.Height(s)
	}
	return top + gridStyle.GetBorderTopSize()
}

func (m *Model) takeNotice() {
	if m.board.pending == nil {
		return
	}
	m.notice = m.board.pending
	m.board.pending = nil
	m.mode = modeNotice
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := m.headerSections()

	gs := gridStyle
	if m.focus == focusGrid {
		gs = focusedGridStyle
	}
	sections = append(sections, gs.Render(m.grid.View()))

	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top,
		buttonStyle.Render("Query"),
		buttonStyle.Render("Clear"),
	))

	switch m.mode {
	case modeMenu:
		sections = append(sections, menuStyle.Render(menuItemStyle.Render(menuEditLabel)))
	case modePrompt:
		sections = append(sections, dialogStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			dialogTitleStyle.Render("New BBD Value"),
			"Enter new BBD value",
			m.prompt.View(),
		)))
	case modeNotice:
		ds := warnDialogStyle
		if m.notice.isError {
			ds = errorDialogStyle
		}
		sections = append(sections, ds.Render(lipgloss.JoinVertical(lipgloss.Left,
			dialogTitleStyle.Render(m.notice.title),
			m.notice.message,
		)))
	}

	if m.status != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys))

	return appStyle.Render(strings.Join(sections, "\n"))
}

// headerSections are the lines drawn above the grid.
func (m *Model) headerSections() []string {
	return []string{
		titleStyle.Render(Title),
		m.renderField(form.ColumnReceipt, m.receipt, m.focus == focusReceipt),
		m.renderField(form.ColumnItem, m.item, m.focus == focusItem),
	}
}

func (m *Model) renderField(label string, input textinput.Model, focused bool) string {
	st := inputStyle
	if focused {
		st = focusedInputStyle
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, labelStyle.Render(label), st.Render(input.View()))
}
