package timeline

import (
	"errors"
	"testing"
)

func TestMergeRalliesBridgesGapWithinTolerance(t *testing.T) {
	atoms := []Atom{
		{Start: 0, End: 5, Gameplay: true},
		{Start: 5, End: 6, Gameplay: false},
		{Start: 6, End: 10, Gameplay: true},
	}
	segments, err := MergeRallies(atoms, 2)
	if err != nil {
		t.Fatalf("MergeRallies: %v", err)
	}
	assertSegments(t, segments, []RallySegment{
		{Start: 0, End: 10, Status: StatusAuto, Keep: true},
	})
}

func TestMergeRalliesGapToleranceBoundary(t *testing.T) {
	// Exactly at tolerance merges; epsilon past it does not.
	exact := []Atom{
		{Start: 0, End: 5, Gameplay: true},
		{Start: 7, End: 10, Gameplay: true},
	}
	segments, err := MergeRallies(exact, 2)
	if err != nil {
		t.Fatalf("MergeRallies: %v", err)
	}
	assertSegments(t, segments, []RallySegment{
		{Start: 0, End: 10, Status: StatusAuto, Keep: true},
	})

	beyond := []Atom{
		{Start: 0, End: 5, Gameplay: true},
		{Start: 7.001, End: 10, Gameplay: true},
	}
	segments, err = MergeRallies(beyond, 2)
	if err != nil {
		t.Fatalf("MergeRallies: %v", err)
	}
	assertSegments(t, segments, []RallySegment{
		{Start: 0, End: 5, Status: StatusAuto, Keep: true},
		{Start: 7.001, End: 10, Status: StatusAuto, Keep: true},
	})
}

func TestMergeRalliesSpecExample(t *testing.T) {
	atoms := []Atom{
		{Start: 0, End: 9, Gameplay: true},
		{Start: 9, End: 15, Gameplay: false},
		{Start: 15, End: 24, Gameplay: true},
	}
	segments, err := MergeRallies(atoms, 2)
	if err != nil {
		t.Fatalf("MergeRallies: %v", err)
	}
	assertSegments(t, segments, []RallySegment{
		{Start: 0, End: 9, Status: StatusAuto, Keep: true},
		{Start: 15, End: 24, Status: StatusAuto, Keep: true},
	})
}

func TestMergeRalliesIdempotent(t *testing.T) {
	atoms := []Atom{
		{Start: 0, End: 4, Gameplay: true},
		{Start: 5, End: 9, Gameplay: true},
		{Start: 20, End: 30, Gameplay: true},
		{Start: 33, End: 40, Gameplay: true},
	}
	first, err := MergeRallies(atoms, 2)
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	second, err := MergeRallies(Atoms(first), 2)
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	assertSegments(t, second, first)
}

func TestMergeRalliesEdgeCases(t *testing.T) {
	t.Run("no gameplay", func(t *testing.T) {
		atoms := []Atom{{Start: 0, End: 30, Gameplay: false}}
		segments, err := MergeRallies(atoms, 2)
		if err != nil {
			t.Fatalf("MergeRallies: %v", err)
		}
		if len(segments) != 0 {
			t.Fatalf("expected no segments, got %+v", segments)
		}
	})

	t.Run("single gameplay atom", func(t *testing.T) {
		atoms := []Atom{{Start: 3, End: 8, Gameplay: true}}
		segments, err := MergeRallies(atoms, 2)
		if err != nil {
			t.Fatalf("MergeRallies: %v", err)
		}
		assertSegments(t, segments, []RallySegment{
			{Start: 3, End: 8, Status: StatusAuto, Keep: true},
		})
	})

	t.Run("all gameplay", func(t *testing.T) {
		atoms := []Atom{
			{Start: 0, End: 10, Gameplay: true},
			{Start: 10, End: 20, Gameplay: true},
			{Start: 20, End: 30, Gameplay: true},
		}
		segments, err := MergeRallies(atoms, 2)
		if err != nil {
			t.Fatalf("MergeRallies: %v", err)
		}
		assertSegments(t, segments, []RallySegment{
			{Start: 0, End: 30, Status: StatusAuto, Keep: true},
		})
	})

	t.Run("empty input", func(t *testing.T) {
		segments, err := MergeRallies(nil, 2)
		if err != nil {
			t.Fatalf("MergeRallies: %v", err)
		}
		if len(segments) != 0 {
			t.Fatalf("expected no segments, got %+v", segments)
		}
	})
}

func TestMergeRalliesSortsDefensively(t *testing.T) {
	atoms := []Atom{
		{Start: 15, End: 24, Gameplay: true},
		{Start: 0, End: 9, Gameplay: true},
	}
	segments, err := MergeRallies(atoms, 2)
	if err != nil {
		t.Fatalf("MergeRallies: %v", err)
	}
	assertSegments(t, segments, []RallySegment{
		{Start: 0, End: 9, Status: StatusAuto, Keep: true},
		{Start: 15, End: 24, Status: StatusAuto, Keep: true},
	})
}

func TestMergeRalliesRejectsNegativeTolerance(t *testing.T) {
	if _, err := MergeRallies(nil, -0.5); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestFilterShort(t *testing.T) {
	segments := []RallySegment{
		{Start: 0, End: 2, Status: StatusAuto, Keep: true},
		{Start: 10, End: 18, Status: StatusAuto, Keep: true},
	}
	filtered := FilterShort(segments, 3)
	assertSegments(t, filtered, []RallySegment{
		{Start: 10, End: 18, Status: StatusAuto, Keep: true},
	})

	all := FilterShort(segments, 0)
	assertSegments(t, all, segments)
}

func assertSegments(t *testing.T, got, want []RallySegment) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d segments %+v, want %d %+v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
