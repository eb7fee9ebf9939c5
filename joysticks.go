package joysticks

import "maps"

// State holds the last known value of every declared input channel of one
// device. Axes are normalized to [-1.0, 1.0], buttons are 0/1 and hats are
// -1/0/1. The key set of each map is fixed at build time to exactly the
// codes the device description declares.
type State struct {
	Axes    map[uint16]float32
	Buttons map[uint16]uint8
	Hats    map[uint16]int8
}

// Update is a sparse reading from a single poll: only the codes that changed
// since the previous poll are present.
type Update struct {
	Axes    map[uint16]float32
	Buttons map[uint16]uint8
	Hats    map[uint16]int8
}

func newState() *State {
	return &State{
		Axes:    make(map[uint16]float32),
		Buttons: make(map[uint16]uint8),
		Hats:    make(map[uint16]int8),
	}
}

func newUpdate() Update {
	return Update{
		Axes:    make(map[uint16]float32),
		Buttons: make(map[uint16]uint8),
		Hats:    make(map[uint16]int8),
	}
}

// Empty reports whether the update carries no readings at all.
func (u Update) Empty() bool {
	return len(u.Axes) == 0 && len(u.Buttons) == 0 && len(u.Hats) == 0
}

func (s *State) clone() *State {
	return &State{
		Axes:    maps.Clone(s.Axes),
		Buttons: maps.Clone(s.Buttons),
		Hats:    maps.Clone(s.Hats),
	}
}

// Equal reports whether both states carry identical values for identical
// key sets.
func (s State) Equal(other *State) bool {
	return maps.Equal(s.Axes, other.Axes) &&
		maps.Equal(s.Buttons, other.Buttons) &&
		maps.Equal(s.Hats, other.Hats)
}
