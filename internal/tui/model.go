package tui

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/logpeek/logpeek/pkg/engine"
	"github.com/logpeek/logpeek/pkg/filter"
	"github.com/logpeek/logpeek/pkg/record"
	"github.com/logpeek/logpeek/pkg/severity"
	"github.com/logpeek/logpeek/pkg/source"
)

// minSeverityCycle is the order the m key walks the threshold filter.
var minSeverityCycle = []string{"", "debug", "info", "notice", "warning", "error", "crit", "alert", "emerg"}

// Options configures a viewer session.
type Options struct {
	Engine *engine.Engine
	Source string
	Params source.Params
	Fetch  engine.FetchOptions
	Buffer int

	// Filter seeds the initial criteria; all of it can be changed from
	// inside the viewer.
	Filter filter.Criteria
}

// Stream messages carry the handle they came from, so the update loop
// can drop messages from a stream that was replaced by a reload.

// streamOpenedMsg hands a freshly opened stream to the update loop.
type streamOpenedMsg struct{ s record.Stream }

// recordMsg carries one fetched record into the update loop.
type recordMsg struct {
	s   record.Stream
	rec *record.LogRecord
}

// streamDoneMsg signals the stream is exhausted.
type streamDoneMsg struct{ s record.Stream }

// streamErrMsg carries a fetch failure.
type streamErrMsg struct {
	s   record.Stream
	err error
}

// Model is the bubbletea model for the viewer.
type Model struct {
	opts   Options
	state  *State
	stream record.Stream

	width     int
	height    int
	streaming bool
	typing    bool
	err       error
	status    string
}

// NewModel creates a viewer model. Fetching starts from Init.
func NewModel(opts Options) *Model {
	if opts.Engine == nil {
		opts.Engine = engine.Default()
	}
	st := NewState(opts.Buffer)
	st.Filters = opts.Filter
	return &Model{
		opts:   opts,
		state:  st,
		status: "q quit  / search  m min-severity  c category  r raw  R reload",
	}
}

// Run starts the interactive viewer and blocks until it exits.
func Run(opts Options) error {
	_, err := tea.NewProgram(NewModel(opts), tea.WithAltScreen()).Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.openStream
}

// openStream opens the configured source; the raw-details view needs
// the original fields, so fetches always keep them. Commands run on
// their own goroutines, so the stream travels back in a message and
// only Update touches the model.
func (m *Model) openStream() tea.Msg {
	opts := m.opts.Fetch
	opts.KeepRaw = true

	s, err := m.opts.Engine.FetchLogs(m.opts.Source, m.opts.Params, opts)
	if err != nil {
		return streamErrMsg{err: err}
	}
	return streamOpenedMsg{s}
}

// readNextCmd pulls one record from the given stream. Re-armed after
// every recordMsg so the stream is consumed lazily, one record per
// update cycle; in follow mode this blocks until the journal has more
// to say. The command closes over its own handle: closing the current
// stream from a key handler never races a read in flight.
func readNextCmd(s record.Stream) tea.Cmd {
	return func() tea.Msg {
		rec, err := s.Next(context.Background())
		if err == io.EOF {
			return streamDoneMsg{s: s}
		}
		if err != nil {
			return streamErrMsg{s: s, err: err}
		}
		return recordMsg{s: s, rec: rec}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case streamOpenedMsg:
		m.stream = msg.s
		m.streaming = true
		return m, readNextCmd(msg.s)

	case recordMsg:
		if msg.s != m.stream {
			// Late message from a stream replaced by a reload.
			return m, nil
		}
		m.state.Append(msg.rec)
		return m, readNextCmd(msg.s)

	case streamDoneMsg:
		if msg.s != m.stream {
			return m, nil
		}
		m.streaming = false
		m.status = fmt.Sprintf("%d records loaded", m.state.Len())
		return m, nil

	case streamErrMsg:
		if msg.s != nil && msg.s != m.stream {
			return m, nil
		}
		m.streaming = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.typing {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.closeStream()
		return m, tea.Quit

	case "/":
		m.typing = true
		m.state.Filters.Keyword = ""
		return m, nil

	case "m":
		m.cycleMinSeverity()
		return m, nil

	case "c":
		m.state.CycleCategory()
		return m, nil

	case "r":
		m.state.ShowRaw = !m.state.ShowRaw
		return m, nil

	case "R":
		m.closeStream()
		m.state.Clear()
		m.err = nil
		return m, m.openStream

	case "esc":
		m.state.Filters.Keyword = ""
		return m, nil

	case "up", "k":
		m.moveSelection(-1)
		return m, nil

	case "down", "j":
		m.moveSelection(1)
		return m, nil
	}

	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.typing = false
	case "esc":
		m.typing = false
		m.state.Filters.Keyword = ""
	case "backspace":
		kw := m.state.Filters.Keyword
		if kw != "" {
			m.state.Filters.Keyword = kw[:len(kw)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.state.Filters.Keyword += string(msg.Runes)
		}
	}
	return m, nil
}

// cycleMinSeverity advances the threshold filter to the next level.
// The seed may use any accepted spelling ("ERROR", "err", "3"), so it
// is normalized to the cycle's canonical form before matching.
func (m *Model) cycleMinSeverity() {
	current := m.state.Filters.MinSeverity
	if current != "" {
		if sev, err := severity.Parse(current); err == nil {
			current = strings.ToLower(sev.Label())
		}
	}
	for i, level := range minSeverityCycle {
		if level == current {
			m.state.Filters.MinSeverity = minSeverityCycle[(i+1)%len(minSeverityCycle)]
			return
		}
	}
	m.state.Filters.MinSeverity = ""
}

func (m *Model) moveSelection(delta int) {
	visible := len(m.state.Visible())
	if visible == 0 {
		m.state.Selected = -1
		return
	}

	m.state.Selected += delta
	if m.state.Selected < 0 {
		m.state.Selected = 0
	}
	if m.state.Selected >= visible {
		m.state.Selected = visible - 1
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerLine())
	b.WriteString("\n")

	visible := m.state.Visible()
	rows := m.listHeight()
	if rows > len(visible) {
		rows = len(visible)
	}

	for i := 0; i < rows; i++ {
		rec := visible[i]
		marker := "  "
		if i == m.state.Selected {
			marker = "> "
		}
		b.WriteString(truncate(fmt.Sprintf("%s%s  %-7s  %-18s  %s",
			marker, rec.Timestamp, rec.Label, rec.Category, rec.Message), m.width))
		b.WriteString("\n")
	}

	if m.state.ShowRaw {
		b.WriteString(m.detailsPane(visible))
	}

	b.WriteString(m.footerLine(len(visible)))
	return b.String()
}

func (m *Model) headerLine() string {
	parts := []string{"logpeek"}
	if f := m.state.Filters; f.MinSeverity != "" {
		parts = append(parts, "min="+f.MinSeverity)
	}
	if f := m.state.Filters; f.Category != "" {
		parts = append(parts, "category="+f.Category)
	}
	if f := m.state.Filters; f.Keyword != "" || m.typing {
		parts = append(parts, "search="+f.Keyword)
		if m.typing {
			parts = append(parts, "(typing)")
		}
	}
	if m.streaming {
		parts = append(parts, "loading...")
	}
	return truncate(strings.Join(parts, "  "), m.width)
}

func (m *Model) footerLine(visible int) string {
	if m.err != nil {
		return truncate(fmt.Sprintf("error: %v", m.err), m.width)
	}
	return truncate(fmt.Sprintf("%d/%d records  %s", visible, m.state.Len(), m.status), m.width)
}

func (m *Model) detailsPane(visible []*record.LogRecord) string {
	if m.state.Selected < 0 || m.state.Selected >= len(visible) {
		return ""
	}

	rec := visible[m.state.Selected]
	var b strings.Builder
	b.WriteString("--- raw ---\n")

	keys := make([]string, 0, len(rec.Raw))
	for key := range rec.Raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(truncate(fmt.Sprintf("%s=%v", key, rec.Raw[key]), m.width))
		b.WriteString("\n")
	}
	return b.String()
}

// listHeight leaves room for the header, footer, and details pane.
func (m *Model) listHeight() int {
	h := m.height - 2
	if m.state.ShowRaw {
		h -= 10
	}
	if h < 1 {
		h = 10
	}
	return h
}

func (m *Model) closeStream() {
	if m.stream != nil {
		m.stream.Close()
		m.stream = nil
	}
}

// truncate caps a line at width terminal cells, cutting on rune
// boundaries so multibyte characters are never split.
func truncate(s string, width int) string {
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
