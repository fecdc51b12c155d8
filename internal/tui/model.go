// Package tui renders a live salary race in the terminal with Bubble Tea.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/salaryrace/salaryrace-go/internal/counter"
	"github.com/salaryrace/salaryrace-go/internal/domain"
	"github.com/salaryrace/salaryrace-go/internal/money"
	"github.com/salaryrace/salaryrace-go/internal/og"
)

// DefaultInterval is the redraw interval.
const DefaultInterval = 100 * time.Millisecond

// Loader fetches the comparison to race, from the store or the HTTP API.
type Loader func(ctx context.Context) (domain.Comparison, error)

// Options configures a Model.
type Options struct {
	Interval time.Duration
	// Now is the time source for counter transitions. Defaults to time.Now.
	Now func() time.Time
}

type loadedMsg struct {
	comparison domain.Comparison
	err        error
}

type tickMsg struct{}

// Model is the Bubble Tea model for one race.
type Model struct {
	ctx      context.Context
	load     Loader
	now      func() time.Time
	interval time.Duration

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	comparison domain.Comparison
	race       counter.Race
	values     counter.Values
	loaded     bool
	err        error
	width      int
}

// NewModel returns a model that loads its comparison on Init.
func NewModel(ctx context.Context, load Loader, opts Options) *Model {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primary)
	return &Model{
		ctx:      ctx,
		load:     load,
		now:      opts.Now,
		interval: opts.Interval,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
	}
}

// Init starts loading and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd())
}

func (m *Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		c, err := m.load(m.ctx)
		return loadedMsg{comparison: c, err: err}
	}
}

func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		now := m.now()
		m.comparison = msg.comparison
		m.race = counter.NewRace(msg.comparison, now)
		m.values = m.race.Sample(now)
		m.loaded = true
		return m, m.tickCmd()

	case tickMsg:
		if !m.loaded {
			return m, nil
		}
		m.values = m.race.Sample(m.now())
		return m, m.tickCmd()

	case spinner.TickMsg:
		if m.loaded || m.err != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case !m.loaded:
	case key.Matches(msg, m.keys.Toggle):
		now := m.now()
		m.race = m.race.Toggle(now)
		m.values = m.race.Sample(now)
	case key.Matches(msg, m.keys.Replay):
		now := m.now()
		m.race = m.race.Replay(now)
		m.values = m.race.Sample(now)
	}
	return nil
}

// Paused reports whether the race is paused.
func (m *Model) Paused() bool { return m.loaded && !m.race.Running() }

// Values returns the last rendered counter values.
func (m *Model) Values() counter.Values { return m.values }

// Err returns the load error, if any.
func (m *Model) Err() error { return m.err }

// View renders the race.
func (m *Model) View() string {
	if m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n\n" + m.help.View(m.keys) + "\n"
	}
	if !m.loaded {
		return m.spinner.View() + " Loading comparison...\n"
	}

	c := m.comparison
	leader := c.Leader()
	sides := lipgloss.JoinHorizontal(lipgloss.Top,
		m.side(c.NameA, c.AnnualA, c.PerSecA, m.values.A, leader == "A"),
		"  ",
		m.side(c.NameB, c.AnnualB, c.PerSecB, m.values.B, leader == "B"),
	)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%s vs %s", c.NameA, c.NameB)))
	b.WriteString("\n")
	b.WriteString(sides)
	b.WriteString("\n\n")
	if leader != "" {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%s earns %.2fx faster", nameFor(c, leader), c.Ratio())))
		b.WriteString("\n")
	}
	if m.Paused() {
		b.WriteString(pausedStyle.Render("PAUSED"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) side(name string, annual, perSec, value float64, leading bool) string {
	style := sideStyle
	if leading {
		style = leaderStyle
	}
	body := strings.Join([]string{
		nameStyle.Render(name),
		counterStyle.Render(fmt.Sprintf("%.4f", value)),
		mutedStyle.Render(money.Format(annual, m.comparison.Currency) + " / year"),
		mutedStyle.Render(og.FormatPerSec(perSec)),
	}, "\n")
	return style.Render(body)
}

func nameFor(c domain.Comparison, side string) string {
	if side == "A" {
		return c.NameA
	}
	return c.NameB
}

// Run starts the program in the alternate screen and blocks until quit.
func Run(ctx context.Context, load Loader, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, load, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(*Model); ok && m.err != nil {
		return m.err
	}
	return nil
}
