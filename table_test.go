package qlearn

import (
	"bytes"
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/timpalpant/go-qlearn/tictactoe"
)

const tol = 1e-9

func mustParse(t testing.TB, key string) tictactoe.State {
	s, err := tictactoe.ParseKey(key)
	if err != nil {
		t.Fatal(err)
	}

	return s
}

func TestTable_FreshValues(t *testing.T) {
	table := NewTable()
	for s := tictactoe.State(0); s < tictactoe.NumStates; s++ {
		v, err := table.BestValue(s)
		if err != nil {
			t.Fatal(err)
		}

		if v != 0 {
			t.Fatalf("expected best value 0 for fresh state %s, got %v", s.Key(), v)
		}
	}

	if n := table.Untouched(); n != tictactoe.NumStates {
		t.Errorf("expected %d untouched states, got %d", tictactoe.NumStates, n)
	}
}

func TestTable_Update(t *testing.T) {
	table := NewTable()
	s := mustParse(t, "100000000")
	v, err := table.Update(Final(s, 4, 1.0), 0.1, 0.95)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(v-0.1) > tol {
		t.Errorf("expected 0.1, got %v", v)
	}

	if got, _ := table.Get(s, 4); got != v {
		t.Errorf("expected stored value %v, got %v", v, got)
	}

	if n := table.NumUpdates(s); n != 1 {
		t.Errorf("expected 1 update, got %d", n)
	}
}

func TestTable_UpdateBootstrap(t *testing.T) {
	table := NewTable()
	s := mustParse(t, "100000000")
	next := mustParse(t, "120100000")
	table.values[next] = [tictactoe.NumActions]float64{0, 0, 0.5, 0, -1, 2, 0, 0, 0}
	table.values[s][4] = 0.2

	v, err := table.Update(Bootstrap(s, 4, 0.0, next), 0.1, 0.9)
	if err != nil {
		t.Fatal(err)
	}

	expected := 0.2 + 0.1*(0.0+0.9*2-0.2)
	if math.Abs(v-expected) > tol {
		t.Errorf("expected %v, got %v", expected, v)
	}

	// Only the updated pair changes.
	for a := tictactoe.Action(0); a < tictactoe.NumActions; a++ {
		if a == 4 {
			continue
		}

		if got, _ := table.Get(s, a); got != 0 {
			t.Errorf("expected action %d to be untouched, got %v", a, got)
		}
	}

	if n := table.NumUpdates(next); n != 0 {
		t.Errorf("expected next state to be untouched, got %d updates", n)
	}
}

func TestTable_UnknownState(t *testing.T) {
	table := NewTable()
	bad := tictactoe.State(tictactoe.NumStates)
	if _, err := table.Get(bad, 0); errors.Cause(err) != ErrUnknownState {
		t.Errorf("Get: expected ErrUnknownState, got %v", err)
	}

	if _, err := table.Values(bad); errors.Cause(err) != ErrUnknownState {
		t.Errorf("Values: expected ErrUnknownState, got %v", err)
	}

	if _, err := table.BestValue(bad); errors.Cause(err) != ErrUnknownState {
		t.Errorf("BestValue: expected ErrUnknownState, got %v", err)
	}

	if _, err := table.Update(Final(bad, 0, 1), 0.1, 0.9); errors.Cause(err) != ErrUnknownState {
		t.Errorf("Update: expected ErrUnknownState, got %v", err)
	}

	if _, err := table.Update(Bootstrap(tictactoe.Initial, 0, 0, bad), 0.1, 0.9); errors.Cause(err) != ErrUnknownState {
		t.Errorf("Update with unknown next state: expected ErrUnknownState, got %v", err)
	}

	if n := table.NumUpdates(tictactoe.Initial); n != 0 {
		t.Errorf("expected failed updates to leave the table unchanged, got %d updates", n)
	}
}

func TestTable_MarshalTo(t *testing.T) {
	table := NewTable()
	s := mustParse(t, "120000000")
	if _, err := table.Update(Final(s, 8, -1), 0.5, 0.9); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := table.MarshalTo(&buf); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadTable(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if v, _ := loaded.Get(s, 8); v != -0.5 {
		t.Errorf("expected -0.5, got %v", v)
	}

	if n := loaded.NumUpdates(s); n != 1 {
		t.Errorf("expected 1 update, got %d", n)
	}

	if n := loaded.Untouched(); n != tictactoe.NumStates-1 {
		t.Errorf("expected %d untouched states, got %d", tictactoe.NumStates-1, n)
	}
}

func TestLoadTable_Garbage(t *testing.T) {
	if _, err := LoadTable(bytes.NewReader([]byte("not a table"))); err == nil {
		t.Error("expected error")
	}
}

func TestTable_Snapshot(t *testing.T) {
	table := NewTable()
	s := mustParse(t, "000010000")
	if _, err := table.Update(Final(s, 0, 1), 0.1, 0.9); err != nil {
		t.Fatal(err)
	}

	snap, err := table.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	if len(snap) != tictactoe.NumStates {
		t.Fatalf("expected %d entries, got %d", tictactoe.NumStates, len(snap))
	}

	entry := snap["000010000"]
	if entry.Updates != 1 || math.Abs(entry.Values[0]-0.1) > tol {
		t.Errorf("unexpected entry: %+v", entry)
	}

	if n := snap.Untouched(); n != tictactoe.NumStates-1 {
		t.Errorf("expected %d untouched states, got %d", tictactoe.NumStates-1, n)
	}

	// The snapshot is a copy.
	if _, err := table.Update(Final(s, 0, 1), 0.1, 0.9); err != nil {
		t.Fatal(err)
	}

	if snap["000010000"].Updates != 1 {
		t.Error("snapshot changed after update")
	}

	restored, err := NewTableFromSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}

	if v, _ := restored.Get(s, 0); math.Abs(v-0.1) > tol {
		t.Errorf("expected 0.1, got %v", v)
	}
}

func BenchmarkTable_Update(b *testing.B) {
	table := NewTable()
	s := mustParse(b, "120000000")
	next := mustParse(b, "121200000")
	tr := Bootstrap(s, 2, 0, next)
	for i := 0; i < b.N; i++ {
		if _, err := table.Update(tr, 0.1, 0.95); err != nil {
			b.Fatal(err)
		}
	}
}

func TestEntry_UnmarshalBinary_Corrupt(t *testing.T) {
	var e Entry
	if err := e.UnmarshalBinary([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated entry")
	}
}
