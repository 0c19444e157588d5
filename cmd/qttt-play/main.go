// Command qttt-play plays tic-tac-toe in the terminal against an agent
// trained with qttt-train.
package main

import (
	"bufio"
	"flag"
	"io"
	"math/rand"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn"
	"github.com/timpalpant/go-qlearn/internal/config"
	"github.com/timpalpant/go-qlearn/play"
	"github.com/timpalpant/go-qlearn/tictactoe"
	"github.com/timpalpant/go-qlearn/tui"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		glog.Fatal(err)
	}

	tablePath := flag.String("table", cfg.Table, "Path of a table saved by qttt-train")
	plain := flag.Bool("plain", false, "Play in line mode instead of the full-screen UI")
	humanStarts := flag.Bool("human_starts", true, "Whether the human moves first in the first game")
	color := flag.Bool("color", true, "Use colors")
	seed := flag.Int64("seed", cfg.Seed, "Random seed for tie-breaking (0 = time-based)")
	flag.Parse()

	table, err := loadTable(*tablePath)
	if err != nil {
		glog.Fatal(err)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	agent := qlearn.NewGreedy(table, qlearn.LearnerSeat, rand.New(rand.NewSource(*seed)))

	starter := qlearn.LearnerSeat
	if *humanStarts {
		starter = qlearn.OpponentSeat
	}

	if *plain {
		if err := playPlain(agent, starter, *color); err != nil {
			glog.Fatal(err)
		}
		return
	}

	p := tea.NewProgram(tui.New(agent, qlearn.OpponentSeat, starter, *color), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		glog.Fatal(err)
	}
}

func loadTable(path string) (*qlearn.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := qlearn.LoadTable(bufio.NewReader(f))
	return table, errors.WithMessagef(err, "failed to load table from %s", path)
}

func playPlain(agent qlearn.Opponent, starter tictactoe.Player, color bool) error {
	human := play.NewHuman(os.Stdin, os.Stdout, color)
	for {
		session := play.NewSession(agent, qlearn.OpponentSeat, starter)
		err := play.Run(session, human)
		if err == io.EOF || errors.Cause(err) == play.ErrQuit {
			return nil
		} else if err != nil {
			return err
		}

		again, err := human.Confirm("Play again?")
		if err == io.EOF || errors.Cause(err) == play.ErrQuit || (err == nil && !again) {
			return nil
		} else if err != nil {
			return err
		}

		starter = starter.Other()
	}
}
