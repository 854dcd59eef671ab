// Package teaview hosts the virt engine inside a bubbletea program. Key and
// wheel messages feed scroll offsets in, View renders the extracted range and
// reports real row heights back, and a frame tick drives the engine's
// cooperative clock so the scrolling debounce settles inside the program's
// own loop.
package teaview

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ayn2op/virt"
)

// Render returns the text for one list index at the given width.
type Render func(index, width int) string

// KeyMap defines the list keybindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "f"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "go to bottom"),
		),
	}
}

// FrameMsg advances the list's cooperative clock.
type FrameMsg time.Time

const framePeriod = 50 * time.Millisecond

// Model is a virtualized list component.
type Model struct {
	KeyMap KeyMap

	ItemStyle     lipgloss.Style
	SelectedStyle lipgloss.Style

	engine *virt.Virtualizer
	sched  *virt.TickScheduler
	render Render

	width    int
	height   int
	selected int
	ticking  bool
}

// New returns a list over count items rendered by render.
func New(count int, render Render) Model {
	sched := virt.NewTickScheduler(time.Now())
	engine := virt.New().
		SetScheduler(sched).
		SetEstimateSize(func(int) float64 { return 1 }).
		SetCount(count)
	return Model{
		KeyMap:        DefaultKeyMap(),
		ItemStyle:     lipgloss.NewStyle(),
		SelectedStyle: lipgloss.NewStyle().Reverse(true),
		engine:        engine,
		sched:         sched,
		render:        render,
		selected:      -1,
	}
}

// Engine exposes the underlying virtualizer for advanced configuration.
func (m Model) Engine() *virt.Virtualizer {
	return m.engine
}

// Selected returns the selected index, or -1.
func (m Model) Selected() int {
	return m.selected
}

// SetCount replaces the item count.
func (m Model) SetCount(count int) Model {
	m.engine.SetCount(count)
	if m.selected >= count {
		m.selected = count - 1
	}
	return m
}

// SetSize sets the list's width and height in cells.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	m.engine.SetViewport(float64(height))
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) frame() tea.Cmd {
	return tea.Tick(framePeriod, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// tick makes sure a frame message is in flight while engine timers are
// pending.
func (m Model) tick() (Model, tea.Cmd) {
	if m.ticking || !m.sched.Pending() {
		return m, nil
	}
	m.ticking = true
	return m, m.frame()
}

func (m Model) maxOffset() float64 {
	return max(m.engine.TotalSize()-float64(m.height), 0)
}

func (m Model) scrollBy(lines int) (Model, tea.Cmd) {
	offset := min(max(m.engine.Offset()+float64(lines), 0), m.maxOffset())
	m.engine.OnScroll(offset)
	return m.tick()
}

func (m Model) selectIndex(index int) (Model, tea.Cmd) {
	count := m.engine.Count()
	if count == 0 {
		return m, nil
	}
	m.selected = min(max(index, 0), count-1)
	m.engine.ScrollToIndex(m.selected, virt.AlignAuto)
	return m.tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil

	case FrameMsg:
		m.sched.Advance(time.Time(msg))
		if m.sched.Pending() {
			return m, m.frame()
		}
		m.ticking = false
		return m, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return asTeaModel(m.scrollBy(-3))
		case tea.MouseButtonWheelDown:
			return asTeaModel(m.scrollBy(3))
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.KeyMap.Up):
			return asTeaModel(m.selectIndex(m.selected - 1))
		case key.Matches(msg, m.KeyMap.Down):
			return asTeaModel(m.selectIndex(m.selected + 1))
		case key.Matches(msg, m.KeyMap.PageUp):
			return asTeaModel(m.scrollBy(-max(m.height, 1)))
		case key.Matches(msg, m.KeyMap.PageDown):
			return asTeaModel(m.scrollBy(max(m.height, 1)))
		case key.Matches(msg, m.KeyMap.Home):
			m.engine.ScrollToIndex(0, virt.AlignStart)
			return asTeaModel(m.tick())
		case key.Matches(msg, m.KeyMap.End):
			m.engine.ScrollToIndex(m.engine.Count()-1, virt.AlignEnd)
			return asTeaModel(m.tick())
		}
	}
	return m, nil
}

func asTeaModel(m Model, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 || m.render == nil {
		return ""
	}

	// First pass: confirm real rendered heights. This may shift offsets, so
	// the items are fetched again for drawing.
	rendered := make(map[int][]string)
	for _, item := range m.engine.VirtualItems() {
		lines := strings.Split(m.render(item.Index, m.width), "\n")
		rendered[item.Index] = lines
		item.Measured(float64(len(lines)))
	}

	rows := make([]string, m.height)
	offset := int(m.engine.Offset())
	for _, item := range m.engine.VirtualItems() {
		lines, ok := rendered[item.Index]
		if !ok {
			lines = strings.Split(m.render(item.Index, m.width), "\n")
		}
		style := m.ItemStyle
		if item.Index == m.selected {
			style = m.SelectedStyle
		}
		top := int(item.Start) - offset
		for i, line := range lines {
			row := top + i
			if row < 0 || row >= m.height {
				continue
			}
			rows[row] = style.MaxWidth(m.width).Render(line)
		}
	}
	return strings.Join(rows, "\n")
}
