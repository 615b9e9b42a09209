package chain

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestClosestStrike(t *testing.T) {
	strikes := []float64{21800, 21900, 22000, 22100, 22200}

	tests := []struct {
		target float64
		want   float64
	}{
		{22050, 22000}, // equidistant: lower strike wins
		{22051, 22100},
		{21700, 21800}, // below range clamps to lowest
		{22500, 22200}, // above range clamps to highest
		{22000, 22000}, // exact match
	}

	for _, tt := range tests {
		got, ok := ClosestStrike(strikes, tt.target)
		if !ok {
			t.Fatalf("ClosestStrike(%v) ok=false", tt.target)
		}
		if got != tt.want {
			t.Errorf("ClosestStrike(%.0f) = %.0f, want %.0f", tt.target, got, tt.want)
		}
	}
}

func TestClosestStrikeEmpty(t *testing.T) {
	if _, ok := ClosestStrike(nil, 22000); ok {
		t.Error("ClosestStrike(nil) ok=true, want false")
	}
}

func TestWindowAroundClampsAtEdges(t *testing.T) {
	strikes := []float64{21800, 21900, 22000, 22100, 22200}

	tests := []struct {
		name   string
		center float64
		radius int
		want   []float64
	}{
		{"mid", 22000, 1, []float64{21900, 22000, 22100}},
		{"low edge", 21800, 2, []float64{21800, 21900, 22000}},
		{"high edge", 22200, 2, []float64{22000, 22100, 22200}},
		{"radius covers all", 22000, 10, strikes},
		{"radius zero", 22000, 0, []float64{22000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindowAround(strikes, tt.center, tt.radius)
			if len(got) != len(tt.want) {
				t.Fatalf("window = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("window = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

// Property: for any strike list and target, the window is sorted, no
// larger than 2*radius+1, contains the closest strike and is a
// contiguous run of the sorted input.
func TestProperty_WindowBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	strikesGen := gen.SliceOfN(30, gen.Float64Range(15000, 30000)).Map(func(s []float64) []float64 {
		sort.Float64s(s)
		return s
	})

	properties.Property("window is bounded, sorted and centered", prop.ForAll(
		func(strikes []float64, target float64, radius int) bool {
			window := WindowAround(strikes, target, radius)

			if len(window) > 2*radius+1 {
				t.Logf("window size %d exceeds %d", len(window), 2*radius+1)
				return false
			}
			if !sort.Float64sAreSorted(window) {
				t.Logf("window not sorted: %v", window)
				return false
			}

			closest, ok := ClosestStrike(strikes, target)
			if !ok {
				return len(window) == 0
			}
			found := false
			for _, s := range window {
				if s == closest {
					found = true
					break
				}
			}
			if !found {
				t.Logf("closest strike %.2f not in window %v", closest, window)
				return false
			}
			return true
		},
		strikesGen,
		gen.Float64Range(15000, 30000),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
