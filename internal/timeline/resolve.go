package timeline

import "sort"

// Atom is a maximal non-overlapping interval with a single resolved
// gameplay verdict. Atoms cover exactly the union of the windows they were
// resolved from; time no window covered is simply absent.
type Atom struct {
	Start    float64
	End      float64
	Gameplay bool
}

// ResolveOverlaps flattens overlapping classified windows into an ordered,
// non-overlapping atom sequence. An instant is gameplay when any window
// covering it is gameplay: with no confidence ranking defined between
// windows, union semantics are the deterministic tie-break, and a single
// confident gameplay window wins over surrounding non-gameplay ones.
//
// The input is sorted defensively; zero-length windows are ignored.
func ResolveOverlaps(windows []Window) []Atom {
	sorted := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.End > w.Start {
			sorted = append(sorted, w)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].SourceIndex < sorted[j].SourceIndex
	})

	points := make([]float64, 0, len(sorted)*2)
	for _, w := range sorted {
		points = append(points, w.Start, w.End)
	}
	sort.Float64s(points)
	points = dedupeFloats(points)

	var atoms []Atom
	for i := 0; i+1 < len(points); i++ {
		lo, hi := points[i], points[i+1]

		covered := false
		gameplay := false
		for _, w := range sorted {
			if w.Start > lo {
				break
			}
			if w.End < hi {
				continue
			}
			covered = true
			if w.Gameplay() {
				gameplay = true
				break
			}
		}
		if !covered {
			continue
		}

		if n := len(atoms); n > 0 && atoms[n-1].Gameplay == gameplay && atoms[n-1].End == lo {
			atoms[n-1].End = hi
			continue
		}
		atoms = append(atoms, Atom{Start: lo, End: hi, Gameplay: gameplay})
	}
	return atoms
}

func dedupeFloats(values []float64) []float64 {
	out := values[:0]
	for i, v := range values {
		if i > 0 && v == values[i-1] {
			continue
		}
		out = append(out, v)
	}
	return out
}
