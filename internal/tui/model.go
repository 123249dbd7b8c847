// Package tui is the terminal presentation of the game. Every input event and
// timer firing runs on the Bubble Tea update loop, so the round needs no locks.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/calvinwijaya/concentor/internal/game"
)

// Timer messages carry the round generation they were armed for.
type (
	previewDoneMsg struct{ gen uint64 }
	hideMsg        struct{ gen uint64 }
	tickMsg        struct{ gen uint64 }
)

// Model drives a round from the keyboard.
type Model struct {
	round   *game.Round
	timing  game.Timing
	columns int
	cursor  int
	log     zerolog.Logger
}

// NewModel returns a model for round. The round is started by Init.
func NewModel(round *game.Round, timing game.Timing, log zerolog.Logger) *Model {
	return &Model{
		round:   round,
		timing:  timing,
		columns: game.Columns,
		log:     log,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.arm(m.round.Start())
}

// arm schedules the preview timeout and the first tick for round gen.
func (m *Model) arm(gen uint64) tea.Cmd {
	m.log.Debug().Uint64("round", gen).Msg("round started")
	return tea.Batch(
		tea.Tick(m.timing.Preview, func(_ time.Time) tea.Msg { return previewDoneMsg{gen: gen} }),
		m.tick(gen),
	)
}

func (m *Model) tick(gen uint64) tea.Cmd {
	return tea.Tick(m.timing.Tick, func(_ time.Time) tea.Msg { return tickMsg{gen: gen} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case previewDoneMsg:
		m.round.OnPreviewTimeout(msg.gen)

	case hideMsg:
		m.round.OnHideTimeout(msg.gen)

	case tickMsg:
		if m.round.OnTick(msg.gen) {
			return m, m.tick(msg.gen)
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	tiles := len(m.round.Tiles())

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return tea.Quit
	case "left", "h":
		if m.cursor%m.columns > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor%m.columns < m.columns-1 && m.cursor+1 < tiles {
			m.cursor++
		}
	case "up", "k":
		if m.cursor-m.columns >= 0 {
			m.cursor -= m.columns
		}
	case "down", "j":
		if m.cursor+m.columns < tiles {
			m.cursor += m.columns
		}
	case "enter", " ":
		return m.selectTile(m.cursor)
	case "r":
		gen, ok := m.round.Restart()
		if !ok {
			return nil
		}
		return m.arm(gen)
	}
	return nil
}

func (m *Model) selectTile(index int) tea.Cmd {
	outcome := m.round.Select(index)
	m.log.Debug().Int("index", index).Str("outcome", string(outcome)).Msg("select")

	switch outcome {
	case game.Mismatched:
		gen := m.round.Generation()
		return tea.Tick(m.timing.Hide, func(_ time.Time) tea.Msg { return hideMsg{gen: gen} })
	case game.Completed:
		res, _ := m.round.Result()
		m.log.Info().Uint("elapsed", res.Elapsed).Uint("errors", res.Errors).Msg("round won")
	}
	return nil
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Width(17).Align(lipgloss.Center)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Width(5).Align(lipgloss.Center)
	cursorStyle  = cardStyle.BorderForeground(lipgloss.Color("11"))
	backStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	redStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	blackStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	matchedStyle = lipgloss.NewStyle().Faint(true)
	helpStyle    = lipgloss.NewStyle().Faint(true)
	wonStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Padding(1, 0)
)

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Match Cards"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statusStyle.Render(fmt.Sprintf("Errors: %d", m.round.Errors())),
		statusStyle.Render(fmt.Sprintf("Time: %ds", m.round.Elapsed())),
	))
	b.WriteString("\n")

	tiles := m.round.Tiles()
	for row := 0; row*m.columns < len(tiles); row++ {
		cells := make([]string, 0, m.columns)
		for col := 0; col < m.columns; col++ {
			i := row*m.columns + col
			if i >= len(tiles) {
				break
			}
			cells = append(cells, m.renderTile(i, tiles[i]))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	if res, won := m.round.Result(); won {
		b.WriteString(wonStyle.Render(fmt.Sprintf("You won! Time: %ds Errors: %d", res.Elapsed, res.Errors)))
		b.WriteString("\n")
	}

	restart := "r: restart (available after the preview)"
	if m.round.RestartEnabled() {
		restart = "r: restart"
	}
	b.WriteString(helpStyle.Render("arrows/hjkl: move  enter/space: flip  " + restart + "  q: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) renderTile(i int, t game.Tile) string {
	var face string
	switch {
	case t.Matched:
		face = matchedStyle.Render(t.Face.Label())
	case t.Revealed && t.Face.Red():
		face = redStyle.Render(t.Face.Label())
	case t.Revealed:
		face = blackStyle.Render(t.Face.Label())
	default:
		face = backStyle.Render("▒▒▒")
	}

	if i == m.cursor {
		return cursorStyle.Render(face)
	}
	return cardStyle.Render(face)
}
