package browse

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// listShare is the fraction of the width given to the path list.
	listShare = 3
)

// Styles.
var (
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("8")).
			PaddingLeft(1)
)

// Model is the bubbletea model of the browser.
type Model struct {
	items     []Item
	visible   []int // indices of items passing the filter
	selected  int   // index into visible
	filter    textinput.Model
	filtering bool
	text      viewport.Model
	width     int
	height    int
	quitting  bool
}

// New returns a browser of items.
func New(items []Item) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "chunk path"
	ti.CharLimit = 256

	m := Model{items: items, filter: ti}
	m.resize(defaultWidth, defaultHeight)
	m.refilter()

	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}

		return m.updateList(msg)
	}

	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Accept):
		m.filtering = false
		m.filter.Blur()

		return m, nil

	case key.Matches(msg, keys.Clear):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.refilter()

		return m, nil
	}

	var cmd tea.Cmd

	m.filter, cmd = m.filter.Update(msg)
	m.refilter()

	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true

		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		m.move(-1)

	case key.Matches(msg, keys.Down):
		m.move(1)

	case key.Matches(msg, keys.Filter):
		m.filtering = true

		return m, m.filter.Focus()

	case key.Matches(msg, keys.Clear):
		m.filter.SetValue("")
		m.refilter()

	case key.Matches(msg, keys.PageUp), key.Matches(msg, keys.PageDown):
		var cmd tea.Cmd

		m.text, cmd = m.text.Update(msg)

		return m, cmd
	}

	return m, nil
}

// Selected returns the item under the cursor.
func (m Model) Selected() (Item, bool) {
	if m.selected >= len(m.visible) {
		return Item{}, false
	}

	return m.items[m.visible[m.selected]], true
}

// Visible returns the paths passing the filter, best match first.
func (m Model) Visible() []string {
	paths := make([]string, len(m.visible))
	for i, k := range m.visible {
		paths[i] = m.items[k].Path
	}

	return paths
}

func (m *Model) move(delta int) {
	n := m.selected + delta
	if n < 0 || n >= len(m.visible) {
		return
	}

	m.selected = n
	m.show()
}

// refilter applies the filter text and moves the cursor to the best match.
func (m *Model) refilter() {
	term := strings.TrimSpace(m.filter.Value())

	m.visible = make([]int, 0, len(m.items))

	if term == "" {
		for i := range m.items {
			m.visible = append(m.visible, i)
		}
	} else {
		paths := make([]string, len(m.items))
		for i, it := range m.items {
			paths[i] = it.Path
		}

		for _, match := range fuzzy.Find(term, paths) {
			m.visible = append(m.visible, match.Index)
		}
	}

	m.selected = 0
	m.show()
}

// show puts the text of the selected item in the viewport.
func (m *Model) show() {
	it, ok := m.Selected()

	switch {
	case !ok:
		m.text.SetContent(hintStyle.Render("no matching chunk"))
	case it.Err != nil:
		m.text.SetContent(errorStyle.Render(it.Err.Error()) + "\n\n" + it.Text)
	default:
		m.text.SetContent(it.Text)
	}

	m.text.GotoTop()
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.filter.Width = width - 2
	m.text.Width = width - m.listWidth() - 2
	m.text.Height = max(height-2, 1)
}

func (m Model) listWidth() int { return m.width / listShare }

// truncate shortens s to w terminal cells, marking the cut with an ellipsis.
func truncate(s string, w int) string {
	if w <= 1 {
		return s
	}

	return ansi.Truncate(s, w, "…")
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	rows := max(m.height-2, 1)
	first := max(m.selected-rows+1, 0)

	var list strings.Builder

	for i := first; i < len(m.visible) && i < first+rows; i++ {
		path := truncate(m.items[m.visible[i]].Path, m.listWidth()-1)

		if i == m.selected {
			list.WriteString(selectedStyle.Render(path))
		} else {
			list.WriteString(pathStyle.Render(path))
		}

		list.WriteByte('\n')
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.listWidth()).Render(list.String()),
		borderStyle.Render(m.text.View()),
	)

	return body + "\n" + m.footer()
}

func (m Model) footer() string {
	var parts []string

	if m.filtering {
		for _, b := range keys.help(true) {
			h := b.Help()
			parts = append(parts, h.Key+" "+h.Desc)
		}

		return m.filter.View() + "  " + hintStyle.Render(strings.Join(parts, " • "))
	}

	if term := m.filter.Value(); term != "" {
		parts = append(parts, "filter: "+term)
	}

	for _, b := range keys.help(false) {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}

	return hintStyle.Render(strings.Join(parts, " • "))
}
