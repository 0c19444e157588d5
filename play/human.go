package play

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn/tictactoe"
)

// ErrQuit is returned by Human.ChooseAction when the player asks to stop.
var ErrQuit = errors.New("quit")

// Human implements qlearn.Opponent by asking a person for cells,
// numbered 1 to 9, one per line. It blocks until a legal cell is entered.
type Human struct {
	in  *bufio.Scanner
	out io.Writer
	au  aurora.Aurora
}

// NewHuman returns a Human reading from r and prompting on w.
func NewHuman(r io.Reader, w io.Writer, colors bool) *Human {
	return &Human{
		in:  bufio.NewScanner(r),
		out: w,
		au:  aurora.NewAurora(colors),
	}
}

// ChooseAction implements qlearn.Opponent.
func (h *Human) ChooseAction(s tictactoe.State) (tictactoe.Action, error) {
	for {
		fmt.Fprint(h.out, "Your move (1-9, q to quit): ")
		if !h.in.Scan() {
			if err := h.in.Err(); err != nil {
				return 0, err
			}

			return 0, io.EOF
		}

		line := strings.TrimSpace(h.in.Text())
		if line == "q" || line == "quit" {
			return 0, ErrQuit
		}

		n, err := strconv.Atoi(line)
		a := tictactoe.Action(n - 1)
		if err != nil || !a.Valid() {
			fmt.Fprintln(h.out, h.au.Yellow("Enter a number from 1 to 9."))
			continue
		}

		if !tictactoe.IsLegal(s, a) {
			fmt.Fprintln(h.out, h.au.Yellow(fmt.Sprintf("Cell %d is taken.", n)))
			continue
		}

		return a, nil
	}
}

// Confirm asks a yes/no question. An empty answer means yes.
func (h *Human) Confirm(question string) (bool, error) {
	for {
		fmt.Fprintf(h.out, "%s [Y/n]: ", question)
		if !h.in.Scan() {
			if err := h.in.Err(); err != nil {
				return false, err
			}

			return false, io.EOF
		}

		switch strings.ToLower(strings.TrimSpace(h.in.Text())) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		case "q", "quit":
			return false, ErrQuit
		}
	}
}

// Render draws the board with empty cells numbered 1 to 9.
func Render(au aurora.Aurora, s tictactoe.State) string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("\n---+---+---\n")
		}

		for col := 0; col < 3; col++ {
			if col > 0 {
				sb.WriteString("|")
			}

			a := tictactoe.Action(3*row + col)
			sb.WriteString(" ")
			switch s.Cell(a) {
			case tictactoe.PlayerOne:
				sb.WriteString(au.Red("X").Bold().String())
			case tictactoe.PlayerTwo:
				sb.WriteString(au.Blue("O").Bold().String())
			default:
				sb.WriteString(au.Gray(12, strconv.Itoa(int(a)+1)).String())
			}
			sb.WriteString(" ")
		}
	}

	return sb.String()
}

// Run plays one game in line mode, printing the board after every move.
func Run(s *Session, human *Human) error {
	fmt.Fprintln(human.out, Render(human.au, s.State()))
	for !s.Over() {
		if s.HumanToMove() {
			a, err := human.ChooseAction(s.State())
			if err != nil {
				return err
			}

			if err := s.Play(a); err != nil {
				return err
			}
		} else {
			a, err := s.AgentMove()
			if err != nil {
				return err
			}

			fmt.Fprintf(human.out, "Agent plays %d\n", a+1)
		}

		fmt.Fprintln(human.out, Render(human.au, s.State()))
	}

	fmt.Fprintln(human.out, human.au.Bold(s.Result()))
	return nil
}
