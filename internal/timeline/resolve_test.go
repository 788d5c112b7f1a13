package timeline

import (
	"math"
	"testing"
)

func gameplayWindow(start, end float64, index int) Window {
	return Window{Start: start, End: end, InRally: true, ShotType: ShotFullCourt, SourceIndex: index}
}

func idleWindow(start, end float64, index int) Window {
	return Window{Start: start, End: end, InRally: false, ShotType: ShotFullCourt, SourceIndex: index}
}

func TestResolveOverlapsUnionTieBreak(t *testing.T) {
	// A single gameplay window inside a longer non-gameplay one wins the
	// shared instants.
	atoms := ResolveOverlaps([]Window{
		idleWindow(0, 12, 0),
		gameplayWindow(4, 8, 1),
	})
	want := []Atom{
		{Start: 0, End: 4, Gameplay: false},
		{Start: 4, End: 8, Gameplay: true},
		{Start: 8, End: 12, Gameplay: false},
	}
	assertAtoms(t, atoms, want)
}

func TestResolveOverlapsSpecExample(t *testing.T) {
	windows := []Window{
		gameplayWindow(0, 6, 0),
		gameplayWindow(3, 9, 1),
		idleWindow(9, 15, 2),
		gameplayWindow(15, 21, 3),
		gameplayWindow(18, 24, 4),
	}
	atoms := ResolveOverlaps(windows)
	want := []Atom{
		{Start: 0, End: 9, Gameplay: true},
		{Start: 9, End: 15, Gameplay: false},
		{Start: 15, End: 24, Gameplay: true},
	}
	assertAtoms(t, atoms, want)
}

func TestResolveOverlapsSortsDefensively(t *testing.T) {
	shuffled := []Window{
		gameplayWindow(18, 24, 4),
		idleWindow(9, 15, 2),
		gameplayWindow(0, 6, 0),
		gameplayWindow(15, 21, 3),
		gameplayWindow(3, 9, 1),
	}
	atoms := ResolveOverlaps(shuffled)
	want := []Atom{
		{Start: 0, End: 9, Gameplay: true},
		{Start: 9, End: 15, Gameplay: false},
		{Start: 15, End: 24, Gameplay: true},
	}
	assertAtoms(t, atoms, want)
}

func TestResolveOverlapsCoversExactlyInputSpan(t *testing.T) {
	windows := []Window{
		gameplayWindow(0, 6, 0),
		idleWindow(3, 9, 1),
		// Gap from 9 to 20 where nothing was classified.
		idleWindow(20, 26, 2),
	}
	atoms := ResolveOverlaps(windows)
	if len(atoms) == 0 {
		t.Fatal("expected atoms")
	}
	var covered float64
	for i, atom := range atoms {
		if atom.End <= atom.Start {
			t.Fatalf("atom %d is degenerate: %+v", i, atom)
		}
		if i > 0 && atom.Start < atoms[i-1].End {
			t.Fatalf("atoms %d and %d overlap", i-1, i)
		}
		covered += atom.End - atom.Start
	}
	if math.Abs(covered-15) > 1e-9 {
		t.Fatalf("atoms cover %gs, want 15s ([0,9] plus [20,26])", covered)
	}
	if atoms[0].Start != 0 || atoms[len(atoms)-1].End != 26 {
		t.Fatalf("atoms span [%g, %g], want [0, 26]", atoms[0].Start, atoms[len(atoms)-1].End)
	}
}

func TestResolveOverlapsCoalescesSameVerdict(t *testing.T) {
	atoms := ResolveOverlaps([]Window{
		gameplayWindow(0, 6, 0),
		gameplayWindow(3, 9, 1),
		gameplayWindow(6, 12, 2),
	})
	want := []Atom{{Start: 0, End: 12, Gameplay: true}}
	assertAtoms(t, atoms, want)
}

func TestResolveOverlapsDropsDegenerateWindows(t *testing.T) {
	atoms := ResolveOverlaps([]Window{
		{Start: 5, End: 5, InRally: true, ShotType: ShotFullCourt},
		gameplayWindow(0, 6, 1),
	})
	want := []Atom{{Start: 0, End: 6, Gameplay: true}}
	assertAtoms(t, atoms, want)
}

func TestResolveOverlapsEmptyInput(t *testing.T) {
	if atoms := ResolveOverlaps(nil); len(atoms) != 0 {
		t.Fatalf("expected no atoms, got %d", len(atoms))
	}
}

func assertAtoms(t *testing.T, got, want []Atom) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d atoms %+v, want %d %+v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("atom %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
