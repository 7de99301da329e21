package ui

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigpick/bigpick/internal/config"
	"github.com/bigpick/bigpick/pkg/listcore"
)

type sliceRecords []string

func (r sliceRecords) Len() int          { return len(r) }
func (r sliceRecords) Text(i int) string { return r[i] }

func numbered(n int) sliceRecords {
	r := make(sliceRecords, n)
	for i := range r {
		r[i] = fmt.Sprintf("row %05d", i)
	}
	return r
}

// testModel builds a picker over records with synchronous search, sized to
// an 80x10 terminal.
func testModel(t *testing.T, records sliceRecords, opts ...Option) *pickerModel {
	t.Helper()

	cfg := config.Default()
	cfg.Search.DebounceWindow = 0
	cfg.Search.Workers = 0

	list, err := listcore.New(cfg, func() *rowNode { return &rowNode{abs: -1} })
	require.NoError(t, err)
	require.NoError(t, list.SetRecords(records))

	m := newPickerModel(list, NewOptions(&bytes.Buffer{}, opts...), NoColorStyles())
	update(t, m, tea.WindowSizeMsg{Width: 80, Height: 10})
	return m
}

func update(t *testing.T, m *pickerModel, msg tea.Msg) tea.Cmd {
	t.Helper()
	next, cmd := m.Update(msg)
	require.Same(t, m, next, "model must update in place")
	return cmd
}

// key sends a special key by type.
func key(t *testing.T, m *pickerModel, kt tea.KeyType) tea.Cmd {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: kt})
}

// typeQuery types runes and pumps each resulting search response back in.
func typeQuery(t *testing.T, m *pickerModel, s string) {
	t.Helper()
	for _, r := range s {
		update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		select {
		case resp := <-m.list.Responses():
			update(t, m, searchResultMsg(resp))
		default:
			t.Fatalf("typing %q produced no search response", r)
		}
	}
}

func TestPickerModel_InitialViewShowsRows(t *testing.T) {
	// Given: a sized picker over 100 rows
	m := testModel(t, numbered(100))

	// When: rendering
	view := m.View()

	// Then: the first rows and the counter are on screen
	assert.Contains(t, view, "row 00000")
	assert.Contains(t, view, "row 00001")
	assert.Contains(t, view, "100/100")
	assert.Contains(t, view, "> ")
}

func TestPickerModel_CursorMovesAndScrolls(t *testing.T) {
	// Given: more rows than fit the 8-row list area
	m := testModel(t, numbered(100))

	// When: moving past the bottom of the screen
	for i := 0; i < 20; i++ {
		key(t, m, tea.KeyDown)
	}

	// Then: the cursor followed and the viewport scrolled after it
	assert.Equal(t, 20, m.list.Cursor())
	assert.Equal(t, 20-m.listHeight()+1, m.list.ScrollOffset())
	assert.Contains(t, m.View(), ">   row 00020")
}

func TestPickerModel_TypingFiltersRows(t *testing.T) {
	// Given: records where only one matches "banana"
	m := testModel(t, sliceRecords{"apple pie", "banana split", "cherry cake"})

	// When: typing a query
	typeQuery(t, m, "banana")

	// Then: visibility narrowed and the view reflects it
	assert.Equal(t, 1, m.list.TotalVisible())
	view := m.View()
	assert.Contains(t, view, "banana split")
	assert.NotContains(t, view, "apple pie")
	assert.Contains(t, view, "1/3")
}

func TestPickerModel_EnterAcceptsCursorRow(t *testing.T) {
	// Given: the cursor on the third row
	m := testModel(t, numbered(10))
	key(t, m, tea.KeyDown)
	key(t, m, tea.KeyDown)

	// When: accepting
	key(t, m, tea.KeyEnter)

	// Then: the result is that single row
	res := m.result()
	assert.False(t, res.Aborted)
	assert.Equal(t, []int{2}, res.Indices)
	assert.Equal(t, []string{"row 00002"}, res.Texts)
}

func TestPickerModel_EscAborts(t *testing.T) {
	m := testModel(t, numbered(10))

	key(t, m, tea.KeyEsc)

	assert.True(t, m.result().Aborted)
}

func TestPickerModel_TabMultiSelect(t *testing.T) {
	// Given: a multi-select picker
	m := testModel(t, numbered(10), WithMulti(true))

	// When: tab-selecting the first two rows and accepting
	key(t, m, tea.KeyTab)
	key(t, m, tea.KeyTab)
	key(t, m, tea.KeyEnter)

	// Then: both rows are in the result and tab advanced the cursor
	res := m.result()
	assert.Equal(t, []int{0, 1}, res.Indices)
	assert.Equal(t, 2, m.list.Cursor())
}

func TestPickerModel_TabIgnoredInSingleSelect(t *testing.T) {
	m := testModel(t, numbered(10))

	key(t, m, tea.KeyTab)

	assert.Empty(t, m.list.Selected())
}

func TestPickerModel_SelectionSurvivesFilter(t *testing.T) {
	// Given: a selected row hidden by a later filter
	m := testModel(t, sliceRecords{"alpha", "beta", "gamma"}, WithMulti(true))
	key(t, m, tea.KeyTab) // selects "alpha"

	typeQuery(t, m, "beta")
	require.Equal(t, 1, m.list.TotalVisible())

	// When: accepting while "alpha" is filtered out
	key(t, m, tea.KeyEnter)

	// Then: the hidden selection still counts
	assert.Equal(t, []string{"alpha"}, m.result().Texts)
}

func TestPickerModel_EmptyMatchSet(t *testing.T) {
	// Given: a query matching nothing
	m := testModel(t, sliceRecords{"alpha", "beta"})
	typeQuery(t, m, "zzz")

	// Then: the view renders without rows and enter aborts
	assert.Contains(t, m.View(), "0/2")
	key(t, m, tea.KeyEnter)
	assert.True(t, m.result().Aborted)
}

func TestPickerModel_TruncatesWideRowsByDisplayWidth(t *testing.T) {
	// Given: rows of double-width and multi-byte glyphs far wider than
	// the 80-cell terminal
	m := testModel(t, sliceRecords{
		strings.Repeat("日", 100),
		strings.Repeat("é", 200),
	})

	view := m.View()

	// Then: truncation respects rune boundaries and display cells
	require.True(t, utf8.ValidString(view))
	assert.Contains(t, view, "…")
	for _, line := range strings.Split(view, "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), 80)
	}
}

func TestRunPlain_PrintsMatches(t *testing.T) {
	// Given: a synchronous plain run
	cfg := config.Default()
	var out bytes.Buffer

	// When: filtering for "banana"
	n, err := RunPlain(&out, cfg, sliceRecords{"banana bread", "cherry", "banana split"}, "banana")

	// Then: both matches print in record order
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "banana bread\nbanana split\n", out.String())
}

func TestRunPlain_EmptyQueryPrintsAll(t *testing.T) {
	cfg := config.Default()
	var out bytes.Buffer

	n, err := RunPlain(&out, cfg, numbered(5), "")

	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
