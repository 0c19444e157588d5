package tree

import (
	"testing"

	"github.com/timpalpant/go-qlearn/tictactoe"
)

func TestCountNodes(t *testing.T) {
	root := Root(tictactoe.PlayerOne)
	if n := CountNodes(root); n != 549946 {
		t.Errorf("expected 549946 nodes, got %d", n)
	}

	if n := CountTerminalNodes(root); n != 255168 {
		t.Errorf("expected 255168 terminal nodes, got %d", n)
	}
}

func TestCountPositions(t *testing.T) {
	for _, starter := range []tictactoe.Player{tictactoe.PlayerOne, tictactoe.PlayerTwo} {
		root := Root(starter)
		if n := CountPositions(root); n != 5478 {
			t.Errorf("expected 5478 positions, got %d", n)
		}

		if n := CountTerminalPositions(root); n != 958 {
			t.Errorf("expected 958 terminal positions, got %d", n)
		}
	}

	one := CountPositions(Root(tictactoe.PlayerOne))
	both := CountPositions(Root(tictactoe.PlayerOne), Root(tictactoe.PlayerTwo))
	// The player to move tells the two starters apart.
	if both != 2*one {
		t.Errorf("expected %d positions from both starters, got %d", 2*one, both)
	}
}

func TestDecisionStates(t *testing.T) {
	roots := []Node{Root(tictactoe.PlayerOne), Root(tictactoe.PlayerTwo)}
	states := DecisionStates(tictactoe.PlayerTwo, roots...)
	seen := make(map[tictactoe.State]struct{}, len(states))
	for _, s := range states {
		if _, ok := seen[s]; ok {
			t.Fatalf("duplicate state %s", s.Key())
		}
		seen[s] = struct{}{}

		if tictactoe.IsTerminal(s) {
			t.Fatalf("terminal state %s", s.Key())
		}
	}

	if _, ok := seen[tictactoe.Initial]; !ok {
		t.Error("expected empty board to be a decision state when PlayerTwo starts")
	}

	// PlayerOne cannot hold two more marks than PlayerTwo.
	s, _ := tictactoe.ParseKey("110000000")
	if _, ok := seen[s]; ok {
		t.Errorf("unreachable state %s reported", s.Key())
	}
}

func TestChildren(t *testing.T) {
	root := Root(tictactoe.PlayerOne)
	children := root.Children()
	if len(children) != tictactoe.NumCells {
		t.Fatalf("expected %d children, got %d", tictactoe.NumCells, len(children))
	}

	for _, child := range children {
		if child.ToMove != tictactoe.PlayerTwo || child.State.NumFilled() != 1 {
			t.Errorf("unexpected child %+v", child)
		}
	}

	terminal := Node{State: mustParse(t, "111220000"), ToMove: tictactoe.PlayerTwo}
	if len(terminal.Children()) != 0 {
		t.Error("expected terminal node to have no children")
	}
}

func mustParse(t *testing.T, key string) tictactoe.State {
	s, err := tictactoe.ParseKey(key)
	if err != nil {
		t.Fatal(err)
	}

	return s
}

func BenchmarkCountPositions(b *testing.B) {
	for i := 0; i < b.N; i++ {
		CountPositions(Root(tictactoe.PlayerOne), Root(tictactoe.PlayerTwo))
	}
}
