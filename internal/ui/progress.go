// Package ui renders live progress of a multi-file check in the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tao/internal/buildpipeline"
)

// fileRow is one line of the view.
type fileRow struct {
	name   string
	stage  buildpipeline.Stage
	status buildpipeline.Status
}

func (r fileRow) finished() bool {
	switch r.status {
	case buildpipeline.StatusDone, buildpipeline.StatusError, buildpipeline.StatusSkipped:
		return r.stage == buildpipeline.StageEmit || r.status != buildpipeline.StatusDone
	}
	return false
}

// label is what the status column shows.
func (r fileRow) label() string {
	switch r.status {
	case buildpipeline.StatusWorking:
		return string(r.stage)
	case buildpipeline.StatusDone:
		if r.stage == buildpipeline.StageEmit {
			return "ok"
		}
		return string(r.stage)
	case "":
		return "queued"
	}
	return string(r.status)
}

type model struct {
	title   string
	events  <-chan buildpipeline.Event
	spin    spinner.Model
	bar     progress.Model
	rows    []fileRow
	byName  map[string]int
	width   int
	done    bool
	failed  int
	skipped int
}

type eventMsg buildpipeline.Event

type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model fed by events. It quits once
// events is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	return newModel(title, files, events)
}

func newModel(title string, files []string, events <-chan buildpipeline.Event) *model {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m := &model{
		title:  title,
		events: events,
		spin:   sp,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		byName: make(map[string]int, len(files)),
		width:  80,
	}
	for _, f := range files {
		m.byName[f] = len(m.rows)
		m.rows = append(m.rows, fileRow{name: f})
	}
	m.bar.Width = m.width - 4
	return m
}

// Run shows the progress view on out until events is closed.
func Run(title string, files []string, events <-chan buildpipeline.Event, out io.Writer) error {
	p := tea.NewProgram(NewProgressModel(title, files, events), tea.WithOutput(out))
	_, err := p.Run()
	return err
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.next())
}

func (m *model) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(buildpipeline.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 10 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *model) apply(ev buildpipeline.Event) tea.Cmd {
	i, ok := m.byName[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	row.stage, row.status = ev.Stage, ev.Status
	switch ev.Status {
	case buildpipeline.StatusError:
		m.failed++
	case buildpipeline.StatusSkipped:
		m.skipped++
	}
	return m.bar.SetPercent(m.fraction())
}

// fraction is the share of stage steps completed over all files.
func (m *model) fraction() float64 {
	if len(m.rows) == 0 {
		return 1
	}
	steps := float64(len(buildpipeline.Stages))
	var sum float64
	for _, r := range m.rows {
		if r.finished() {
			sum += steps
			continue
		}
		for i, s := range buildpipeline.Stages {
			if s == r.stage {
				sum += float64(i)
				if r.status == buildpipeline.StatusDone {
					sum++
				}
			}
		}
	}
	return sum / (steps * float64(len(m.rows)))
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	busyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	idleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func (m *model) View() string {
	var b strings.Builder
	head := m.title
	if m.done {
		head = fmt.Sprintf("%s: %d files", head, len(m.rows))
		if m.failed > 0 {
			head += fmt.Sprintf(", %d failed", m.failed)
		}
	} else {
		head = m.spin.View() + " " + head
	}
	b.WriteString(titleStyle.Render(head))
	b.WriteString("\n\n")

	nameWidth := max(m.width-14, 16)
	for _, r := range m.rows {
		b.WriteString("  ")
		b.WriteString(rowStyle(r).Render(fmt.Sprintf("%-8s", r.label())))
		b.WriteString("  ")
		b.WriteString(fit(r.name, nameWidth))
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

func rowStyle(r fileRow) lipgloss.Style {
	switch r.status {
	case buildpipeline.StatusError:
		return errStyle
	case buildpipeline.StatusWorking:
		return busyStyle
	case buildpipeline.StatusDone:
		if r.stage == buildpipeline.StageEmit {
			return okStyle
		}
		return busyStyle
	}
	return idleStyle
}

// fit shortens s to width display cells, keeping the end of paths.
func fit(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	runes := []rune(s)
	for i := range runes {
		tail := string(runes[i:])
		if runewidth.StringWidth(tail)+3 <= width {
			return "..." + tail
		}
	}
	return "..."
}
