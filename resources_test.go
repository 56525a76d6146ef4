package admitctl

import "testing"

func TestResourcesAddSub(t *testing.T) {
	t.Parallel()

	a := Resources{Count: 3, Memory: 100}
	b := Resources{Count: 1, Memory: 40}

	if got, want := a.Add(b), (Resources{Count: 4, Memory: 140}); got != want {
		t.Errorf("Add() = %+v, want %+v", got, want)
	}
	if got, want := a.Sub(b), (Resources{Count: 2, Memory: 60}); got != want {
		t.Errorf("Sub() = %+v, want %+v", got, want)
	}
}

func TestResourcesFitsIn(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		r, capacity Resources
		want        bool
	}{
		"fits exactly":    {Resources{2, 100}, Resources{2, 100}, true},
		"fits with room":  {Resources{1, 50}, Resources{2, 100}, true},
		"count too big":   {Resources{3, 50}, Resources{2, 100}, false},
		"memory too big":  {Resources{1, 200}, Resources{2, 100}, false},
		"zero always fits": {Resources{}, Resources{0, 0}, true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := tc.r.FitsIn(tc.capacity); got != tc.want {
				t.Errorf("FitsIn() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMayProceed(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		available, r Resources
		want         bool
	}{
		"slots and memory available": {Resources{2, 100}, Resources{1, 50}, true},
		"slots exhausted":            {Resources{0, 100}, Resources{1, 50}, false},
		"memory overshoot but headroom remains": {
			Resources{10, 5}, Resources{1, 1000}, true,
		},
		"memory fully depleted blocks memory request": {
			Resources{10, 0}, Resources{1, 1}, false,
		},
		"memory fully depleted allows zero-memory request": {
			Resources{10, 0}, Resources{1, 0}, true,
		},
		"memory negative blocks memory request": {
			Resources{10, -5}, Resources{1, 1}, false,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if got := mayProceed(tc.available, tc.r); got != tc.want {
				t.Errorf("mayProceed(%+v, %+v) = %v, want %v", tc.available, tc.r, got, tc.want)
			}
		})
	}
}
