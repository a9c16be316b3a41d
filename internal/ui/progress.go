// Package ui renders compile progress for a directory of templates.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	bp "slyc/internal/buildpipeline"
)

// по стадиям: подпись в списке и доля готовности файла
var (
	stageVerb  = [...]string{"loading", "cache", "compiling", "compiling", "emitting", "rendering"}
	stageShare = [...]float64{0.1, 0.2, 0.5, 0.8, 0.9, 0.9}
)

var (
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleBusy    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	styleHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
)

const statusWidth = 12

type fileRow struct {
	path    string
	status  bp.Status
	stage   bp.Stage
	elapsed time.Duration
}

func (r fileRow) label() string {
	switch r.status {
	case bp.StatusDone:
		return "done"
	case bp.StatusError:
		return "error"
	case bp.StatusWorking:
		if int(r.stage) < len(stageVerb) {
			return stageVerb[r.stage]
		}
	}
	return "queued"
}

func (r fileRow) style() lipgloss.Style {
	switch r.status {
	case bp.StatusDone:
		return styleOK
	case bp.StatusError:
		return styleFailed
	case bp.StatusWorking:
		return styleBusy
	}
	return styleIdle
}

func (r fileRow) share() float64 {
	if r.status == bp.StatusDone || r.status == bp.StatusError {
		return 1
	}
	if r.status == bp.StatusWorking && int(r.stage) < len(stageShare) {
		return stageShare[r.stage]
	}
	return 0
}

type progressModel struct {
	title   string
	events  <-chan bp.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fileRow
	index   map[string]int
	phase   string // pipeline-wide stage from events without a file
	failed  int
	width   int
	done    bool
}

type eventMsg bp.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows per-template
// progress until events is closed.
func NewProgressModel(title string, files []string, events <-chan bp.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleBusy

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]fileRow, len(files)),
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.rows[i] = fileRow{path: file}
		m.index[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(bp.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		// прерывание не останавливает компиляцию, только скрывает вывод
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		updated, cmd := m.bar.Update(msg)
		m.bar = updated.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	header := m.title
	if m.phase != "" {
		header += " (" + m.phase + ")"
	}
	switch {
	case !m.done:
		header = m.spinner.View() + " " + header
	case m.failed > 0:
		header = fmt.Sprintf("done: %s, %d failed", header, m.failed)
	default:
		header = "done: " + header
	}

	var b strings.Builder
	b.WriteString(styleHeading.Render(header))
	b.WriteString("\n\n")
	nameWidth := max(m.width-statusWidth-14, 20)
	for _, row := range m.rows {
		status := row.style().Render(fmt.Sprintf("%*s", statusWidth, row.label()))
		fmt.Fprintf(&b, "  %s %s", status, truncate(row.path, nameWidth))
		if row.elapsed > 0 {
			fmt.Fprintf(&b, " %s", styleIdle.Render(row.elapsed.Round(time.Millisecond/10).String()))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev bp.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Status == bp.StatusWorking {
			m.phase = fileRow{status: ev.Status, stage: ev.Stage}.label()
		}
		return nil
	}
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[idx]
	if ev.Status == bp.StatusError && row.status != bp.StatusError {
		m.failed++
	}
	row.status, row.stage = ev.Status, ev.Stage
	if ev.Finished() {
		row.elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	total := 0.0
	for _, row := range m.rows {
		total += row.share()
	}
	return total / float64(len(m.rows))
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...") // хвост входит в width
}
