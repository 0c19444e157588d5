// Package tui is a terminal front end to play against a trained agent.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/logrusorgru/aurora"

	"github.com/timpalpant/go-qlearn"
	"github.com/timpalpant/go-qlearn/play"
	"github.com/timpalpant/go-qlearn/tictactoe"
)

const agentDelay = 300 * time.Millisecond

type agentTurnMsg struct{}

// Model implements tea.Model for a series of games against one agent.
type Model struct {
	agent     qlearn.Opponent
	humanSeat tictactoe.Player
	starter   tictactoe.Player
	au        aurora.Aurora

	session *play.Session
	cursor  tictactoe.Action
	message string

	wins, losses, draws int
}

// New returns a Model where the human marks cells for humanSeat and
// starter moves first in the first game.
func New(agent qlearn.Opponent, humanSeat, starter tictactoe.Player, colors bool) Model {
	return Model{
		agent:     agent,
		humanSeat: humanSeat,
		starter:   starter,
		au:        aurora.NewAurora(colors),
		session:   play.NewSession(agent, humanSeat, starter),
		cursor:    4,
	}
}

// Session returns the game in progress.
func (m Model) Session() *play.Session {
	return m.session
}

// Score returns the human's wins, losses and draws so far.
func (m Model) Score() (wins, losses, draws int) {
	return m.wins, m.losses, m.draws
}

func agentTurn() tea.Cmd {
	return tea.Tick(agentDelay, func(time.Time) tea.Msg {
		return agentTurnMsg{}
	})
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if !m.session.HumanToMove() {
		return agentTurn()
	}

	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case agentTurnMsg:
		if m.session.HumanToMove() || m.session.Over() {
			return m, nil
		}

		a, err := m.session.AgentMove()
		if err != nil {
			m.message = err.Error()
			return m, nil
		}

		m.message = fmt.Sprintf("Agent plays %d.", a+1)
		m.recordResult()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor >= 3 {
			m.cursor -= 3
		}
	case "down", "j":
		if m.cursor < 6 {
			m.cursor += 3
		}
	case "left", "h":
		if m.cursor%3 > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor%3 < 2 {
			m.cursor++
		}
	case "enter", " ":
		return m.play(m.cursor)
	case "n":
		return m.newGame()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		m.cursor = tictactoe.Action(key[0] - '1')
		return m.play(m.cursor)
	}

	return m, nil
}

func (m Model) play(a tictactoe.Action) (tea.Model, tea.Cmd) {
	if m.session.Over() {
		return m.newGame()
	}

	if err := m.session.Play(a); err != nil {
		m.message = fmt.Sprintf("Cannot play cell %d: %v", a+1, err)
		return m, nil
	}

	m.message = ""
	if m.recordResult() {
		return m, nil
	}

	return m, agentTurn()
}

// newGame starts the next game, alternating the starting player.
func (m Model) newGame() (tea.Model, tea.Cmd) {
	m.starter = m.starter.Other()
	m.session = play.NewSession(m.agent, m.humanSeat, m.starter)
	m.message = ""
	return m, m.Init()
}

// recordResult updates the score if the game just ended.
func (m *Model) recordResult() bool {
	if !m.session.Over() {
		return false
	}

	switch m.session.Winner() {
	case m.humanSeat:
		m.wins++
	case m.humanSeat.Other():
		m.losses++
	default:
		m.draws++
	}

	m.message = m.session.Result() + " Press n for a new game."
	return true
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(m.au.Bold("Tic-tac-toe vs Q-learning agent").String())
	sb.WriteString("\n\n")

	s := m.session.State()
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("---+---+---\n")
		}

		for col := 0; col < 3; col++ {
			if col > 0 {
				sb.WriteString("|")
			}

			a := tictactoe.Action(3*row + col)
			sb.WriteString(m.cell(s, a))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "You are %v. Score: %d won, %d lost, %d drawn.\n",
		m.humanSeat, m.wins, m.losses, m.draws)
	if m.message != "" {
		sb.WriteString(m.message + "\n")
	}

	sb.WriteString("\narrows/1-9 move, enter play, n new game, q quit\n")
	return sb.String()
}

func (m Model) cell(s tictactoe.State, a tictactoe.Action) string {
	var v aurora.Value
	switch s.Cell(a) {
	case tictactoe.PlayerOne:
		v = m.au.Red("X").Bold()
	case tictactoe.PlayerTwo:
		v = m.au.Blue("O").Bold()
	default:
		v = m.au.Gray(12, fmt.Sprintf("%d", a+1))
	}

	if a == m.cursor && !m.session.Over() {
		return "[" + v.String() + "]"
	}

	return " " + v.String() + " "
}
