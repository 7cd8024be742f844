package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/turismolocal/poiscan/internal/engine/scanner"
	"github.com/turismolocal/poiscan/internal/tui/styles"
)

// ScanFunc runs the actual scan and returns the written dataset path.
type ScanFunc func(ctx context.Context) (string, error)

type tickMsg time.Time

type doneMsg struct {
	Path string
	Err  error
}

// Model renders live scan progress: a stats box, a progress bar and an
// ETA, polling the shared Stats counters on a ticker.
type Model struct {
	title     string
	stats     *scanner.Stats
	run       ScanFunc
	cancel    context.CancelFunc
	progress  progress.Model
	startTime time.Time

	done        bool
	confirmQuit bool
	err         error
	path        string
	width       int
}

func NewModel(title string, stats *scanner.Stats, run ScanFunc) *Model {
	return &Model{
		title: title,
		stats: stats,
		run:   run,
		progress: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(50),
		),
		startTime: time.Now(),
	}
}

// Run drives the progress view until the scan finishes or the user quits.
// Returns the dataset path on success.
func Run(title string, stats *scanner.Stats, run ScanFunc) (string, error) {
	m := NewModel(title, stats, run)
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", err
	}
	fm := final.(*Model)
	return fm.path, fm.err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.startScan(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(300*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) startScan() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	run := m.run
	return func() tea.Msg {
		path, err := run(ctx)
		return doneMsg{Path: path, Err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case "enter":
			if m.done {
				return m, tea.Quit
			}
			m.confirmQuit = false
		case "esc":
			if m.done {
				return m, tea.Quit
			}
			if m.confirmQuit {
				if m.cancel != nil {
					m.cancel()
				}
				return m, nil // wait for doneMsg so the run winds down
			}
			m.confirmQuit = true
		default:
			m.confirmQuit = false
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()
	case doneMsg:
		m.done = true
		m.path = msg.Path
		m.err = msg.Err
		return m, nil
	}

	pModel, cmd := m.progress.Update(msg)
	m.progress = pModel.(progress.Model)
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render(m.title))
	b.WriteString("\n\n")

	statsBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Muted).
		Padding(0, 1).
		Width(32).
		Render(m.renderStats())
	b.WriteString(statsBox)
	b.WriteString("\n\n")

	var pct float64
	if total := m.stats.ZonesTotal.Load(); total > 0 {
		pct = float64(m.stats.ZonesDone.Load()) / float64(total)
	}
	b.WriteString(m.progress.ViewAs(pct))
	b.WriteString("\n\n")

	switch {
	case m.done && m.err != nil && !errors.Is(m.err, context.Canceled):
		b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
		b.WriteString(styles.StatusBar.Render("enter/esc close"))
	case m.done:
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Success).Bold(true).
			Render(fmt.Sprintf("Complete! %d unique places", m.stats.UniqueRecords.Load())))
		if m.path != "" {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).
				Render("Dataset: " + m.path))
		}
		b.WriteString("\n")
		b.WriteString(styles.StatusBar.Render("enter/esc close"))
	case m.confirmQuit:
		b.WriteString(styles.ErrorText.Render("Press ESC again to stop the scan"))
		b.WriteString("\n")
		b.WriteString(styles.StatusBar.Render("esc confirm stop • any key continue"))
	default:
		b.WriteString(styles.StatusBar.Render("esc cancel • ctrl+c quit"))
	}

	return b.String()
}

func (m *Model) renderStats() string {
	var sb strings.Builder
	elapsed := time.Since(m.startTime).Truncate(time.Second)

	done := m.stats.ZonesDone.Load()
	total := m.stats.ZonesTotal.Load()
	found := m.stats.RecordsFound.Load()
	unique := m.stats.UniqueRecords.Load()
	errCount := m.stats.RequestErrors.Load()

	label := lipgloss.NewStyle().Foreground(styles.Muted).Width(12)
	value := lipgloss.NewStyle().Foreground(styles.Text).Bold(true)

	row := func(k, v string) {
		sb.WriteString(label.Render(k))
		sb.WriteString(value.Render(v))
		sb.WriteString("\n")
	}

	row("Zones:", fmt.Sprintf("%d/%d", done, total))
	row("Found:", fmt.Sprintf("%d", found))
	row("Unique:", fmt.Sprintf("%d", unique))

	errStyle := value
	if errCount > 0 {
		errStyle = lipgloss.NewStyle().Foreground(styles.Warning).Bold(true)
	}
	sb.WriteString(label.Render("Errors:"))
	sb.WriteString(errStyle.Render(fmt.Sprintf("%d", errCount)))
	sb.WriteString("\n")

	row("Elapsed:", elapsed.String())

	if done > 0 && total > 0 && !m.done {
		rate := float64(done) / elapsed.Seconds()
		if rate > 0 {
			remaining := float64(total-done) / rate
			eta := time.Duration(remaining * float64(time.Second)).Truncate(time.Second)
			row("ETA:", "~"+eta.String())
		}
	}

	return sb.String()
}
