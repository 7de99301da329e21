package ui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/bigpick/bigpick/internal/config"
	"github.com/bigpick/bigpick/pkg/listcore"
)

// rowNode is the recycled per-row element. Slots carry these across
// scrolls; text is refreshed only when the binding changed.
type rowNode struct {
	abs  int
	text string
}

// Result holds what the user picked.
type Result struct {
	// Indices are the absolute indices of the accepted records, in
	// record order.
	Indices []int
	// Texts are the corresponding record texts.
	Texts []string
	// Aborted is true when the user quit without accepting.
	Aborted bool
}

// Widget drives an interactive picker session over a record collection.
type Widget struct {
	opts    Options
	list    *listcore.List[*rowNode]
	model   *pickerModel
	program *tea.Program
}

// NewWidget creates a picker over the given records.
func NewWidget(cfg *config.Config, records listcore.Records, opts Options) (*Widget, error) {
	list, err := listcore.New(cfg, func() *rowNode { return &rowNode{abs: -1} })
	if err != nil {
		return nil, err
	}
	if err := list.SetRecords(records); err != nil {
		return nil, err
	}

	styles := GetStyles(opts.NoColor || DetectNoColor())
	model := newPickerModel(list, opts, styles)

	return &Widget{
		opts:  opts,
		list:  list,
		model: model,
	}, nil
}

// Run blocks until the user accepts or aborts.
func (w *Widget) Run(ctx context.Context) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.list.Start(ctx)
	defer w.list.Stop()

	progOpts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	}
	if f, ok := w.opts.Output.(*os.File); ok {
		progOpts = append(progOpts, tea.WithOutput(f))
	}
	if w.opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(w.opts.Input))
	}

	w.program = tea.NewProgram(w.model, progOpts...)
	final, err := w.program.Run()
	if err != nil {
		return Result{Aborted: true}, err
	}

	m, ok := final.(*pickerModel)
	if !ok {
		return Result{Aborted: true}, nil
	}
	return m.result(), nil
}

// Message types for bubbletea
type searchResultMsg listcore.Response

// waitForResult blocks on the next search response.
func waitForResult(l *listcore.List[*rowNode]) tea.Cmd {
	return func() tea.Msg {
		resp, ok := <-l.Responses()
		if !ok {
			return nil
		}
		return searchResultMsg(resp)
	}
}

// pickerModel is the bubbletea model for the picker.
type pickerModel struct {
	list   *listcore.List[*rowNode]
	opts   Options
	styles Styles

	input   textinput.Model
	spin    spinner.Model
	width   int
	height  int
	lines   map[int]string
	aborted bool
	done    bool
}

// newPickerModel creates the picker model.
func newPickerModel(list *listcore.List[*rowNode], opts Options, styles Styles) *pickerModel {
	ti := textinput.New()
	ti.Prompt = opts.Prompt
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.Query
	ti.SetValue(opts.InitialQuery)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return &pickerModel{
		list:   list,
		opts:   opts,
		styles: styles,
		input:  ti,
		spin:   sp,
		width:  80,
		height: 24,
		lines:  make(map[int]string),
	}
}

// Init implements tea.Model.
func (m *pickerModel) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		m.spin.Tick,
		waitForResult(m.list),
	}
	if m.opts.InitialQuery != "" {
		m.list.Submit(m.opts.InitialQuery)
	}
	return tea.Batch(cmds...)
}

// chromeRows is the number of non-list rows: prompt, status bar and the
// optional header.
func (m *pickerModel) chromeRows() int {
	if m.opts.Header != "" {
		return 3
	}
	return 2
}

func (m *pickerModel) listHeight() int {
	h := m.height - m.chromeRows()
	if h < 1 {
		h = 1
	}
	return h
}

// Update implements tea.Model.
func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			m.done = true
			return m, tea.Quit

		case "enter":
			m.done = true
			return m, tea.Quit

		case "up", "ctrl+p":
			m.moveCursor(-1)
			return m, nil
		case "down", "ctrl+n":
			m.moveCursor(1)
			return m, nil
		case "pgup":
			m.moveCursor(-m.listHeight())
			return m, nil
		case "pgdown":
			m.moveCursor(m.listHeight())
			return m, nil
		case "home":
			m.moveCursor(-m.list.TotalVisible())
			return m, nil
		case "end":
			m.moveCursor(m.list.TotalVisible())
			return m, nil

		case "tab":
			if m.opts.Multi {
				m.list.ToggleSelect()
				m.moveCursor(1)
				return m, nil
			}
		}

		// Everything else edits the query.
		prev := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if v := m.input.Value(); v != prev {
			m.list.Submit(v)
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if err := m.list.OnResize(m.listHeight()); err != nil {
			m.aborted = true
			m.done = true
			return m, tea.Quit
		}
		m.ensureCursorVisible()
		return m, nil

	case searchResultMsg:
		// Stale generations are discarded inside Apply; either way we
		// keep listening.
		_, _ = m.list.Apply(listcore.Response(msg))
		m.ensureCursorVisible()
		return m, waitForResult(m.list)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *pickerModel) moveCursor(delta int) {
	m.list.MoveCursor(delta)
	m.ensureCursorVisible()
}

// ensureCursorVisible scrolls the minimum distance that brings the cursor
// row on screen. Row extent is one terminal row, so scroll offsets and
// visible-order positions share units.
func (m *pickerModel) ensureCursorVisible() {
	vis := m.list.CursorVisIndex()
	if vis < 0 {
		return
	}
	top := m.list.ScrollOffset()
	h := m.listHeight()
	if vis < top {
		m.list.OnScroll(vis)
	} else if vis >= top+h {
		m.list.OnScroll(vis - h + 1)
	}
}

// View implements tea.Model.
func (m *pickerModel) View() string {
	if m.done {
		return ""
	}

	var sections []string
	if m.opts.Header != "" {
		sections = append(sections, m.styles.Counter.Render(m.opts.Header))
	}

	prompt := m.input.View()
	if m.list.Searching() {
		prompt += " " + m.spin.View()
	}
	sections = append(sections, prompt)

	sections = append(sections, m.renderRows()...)
	sections = append(sections, m.renderStatusBar())

	return strings.Join(sections, "\n")
}

// renderRows reconciles the window and returns the on-screen lines. The
// pool binds overscan rows too; only rows inside the viewport print.
func (m *pickerModel) renderRows() []string {
	records := m.list.Records()
	for k := range m.lines {
		delete(m.lines, k)
	}

	err := m.list.Reconcile(func(it listcore.RenderItem[*rowNode]) {
		node := it.Slot.Element
		if it.Slot.Dirty() || node.abs != it.AbsIndex {
			node.abs = it.AbsIndex
			node.text = records.Text(it.AbsIndex)
			it.Slot.MarkClean()
		}
		m.lines[it.VisIndex] = m.renderRow(node)
	})
	if err != nil {
		return []string{m.styles.Error.Render(err.Error())}
	}

	top := m.list.ScrollOffset()
	h := m.listHeight()
	rows := make([]string, 0, h)
	for i := 0; i < h; i++ {
		line, ok := m.lines[top+i]
		if !ok {
			line = ""
		}
		rows = append(rows, line)
	}
	return rows
}

func (m *pickerModel) renderRow(node *rowNode) string {
	marker := "  "
	style := m.styles.Row
	switch {
	case node.abs == m.list.Cursor():
		marker = "> "
		style = m.styles.Cursor
	case m.list.IsSelected(node.abs):
		style = m.styles.Selected
	}
	sel := " "
	if m.list.IsSelected(node.abs) {
		sel = "*"
	}

	// Truncate by display cells, not bytes: wide glyphs and multi-byte
	// runes must survive intact.
	text := node.text
	if maxWidth := m.width - 4; maxWidth > 0 {
		text = ansi.Truncate(text, maxWidth, "…")
	}
	return m.styles.Marker.Render(marker) + sel + " " + style.Render(text)
}

func (m *pickerModel) renderStatusBar() string {
	counter := fmt.Sprintf("%d/%d", m.list.TotalVisible(), m.list.Total())
	if m.opts.Multi {
		if n := len(m.list.Selected()); n > 0 {
			counter += fmt.Sprintf(" (%d selected)", n)
		}
	}

	help := "enter accept · esc quit"
	if m.opts.Multi {
		help = "tab select · " + help
	}
	return m.styles.Counter.Render(counter) + "  " + m.styles.Dim.Render(help)
}

// result assembles the picked records after the program exits.
func (m *pickerModel) result() Result {
	if m.aborted {
		return Result{Aborted: true}
	}

	indices := m.list.Selected()
	if len(indices) == 0 {
		cur := m.list.Cursor()
		if cur < 0 {
			return Result{Aborted: true}
		}
		indices = []int{cur}
	}

	records := m.list.Records()
	texts := make([]string, len(indices))
	for i, abs := range indices {
		texts[i] = records.Text(abs)
	}
	return Result{Indices: indices, Texts: texts}
}
