package playagon

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var ErrUnknownWarp = errors.New("unknown warp")

// Identity plays the signal unchanged.
func Identity() WarpFunc {
	return func(t float64) float64 { return t }
}

// Reverse plays the signal backwards.
func Reverse() WarpFunc {
	return func(t float64) float64 { return 1 - t }
}

// Freeze holds a single source position for the whole output.
func Freeze(at float64) WarpFunc {
	return func(float64) float64 { return at }
}

// Speed plays the signal factor times faster; past the end the last sample is held.
func Speed(factor float64) WarpFunc {
	return func(t float64) float64 { return t * factor }
}

// Ease bends time by t^power: power > 1 starts slow and ends fast.
func Ease(power float64) WarpFunc {
	return func(t float64) float64 { return math.Pow(t, power) }
}

// PingPong plays forwards to the end during the first half, then back.
func PingPong() WarpFunc {
	return func(t float64) float64 {
		if t < 0.5 {
			return 2 * t
		}
		return 2 - 2*t
	}
}

// Stutter splits the output into windows of repeats*grain and, inside each
// window, replays the first grain of source time starting at the window start.
func Stutter(grain float64, repeats int) WarpFunc {
	if grain <= 0 || repeats < 1 {
		return Identity()
	}
	window := grain * float64(repeats)
	return func(t float64) float64 {
		start := math.Floor(t/window) * window
		return start + math.Mod(t-start, grain)
	}
}

// Compose applies inner first, then outer.
func Compose(outer, inner WarpFunc) WarpFunc {
	return func(t float64) float64 { return outer(inner(t)) }
}

var named = map[string]func() WarpFunc{
	"identity": Identity,
	"reverse":  Reverse,
	"freeze":   func() WarpFunc { return Freeze(0) },
	"double":   func() WarpFunc { return Speed(2) },
	"ease-in":  func() WarpFunc { return Ease(2) },
	"ease-out": func() WarpFunc { return Ease(0.5) },
	"pingpong": PingPong,
	"stutter":  func() WarpFunc { return Stutter(1.0/64, 4) },
}

// ByName returns a preset warp.
func ByName(name string) (WarpFunc, error) {
	mk, ok := named[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownWarp, name, Names())
	}
	return mk(), nil
}

// Names lists the presets accepted by ByName.
func Names() []string {
	out := make([]string, 0, len(named))
	for name := range named {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
