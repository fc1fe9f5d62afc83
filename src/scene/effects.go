package scene

import (
	"math"
	"time"

	"mouse-overlay/src/input"
)

// minPeriod guards divisions by configured durations that may be zero.
const minPeriod = 1e-6

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// markerPhase returns the animation progress within the current loop, the
// strength multiplier and whether the marker has finished.
//
// While its button is held a marker runs at full strength. After release it
// stays at full strength for the effect duration, then fades out linearly.
func (s *Scene) markerPhase(m *marker, now time.Time) (progress, strength float64, done bool) {
	loop := math.Max(minPeriod, m.loopTime)
	elapsed := math.Max(0, seconds(now, m.createdAt))
	progress = math.Mod(elapsed/loop, 1)

	if s.buttonEffectActive(m.button) {
		return progress, 1, false
	}

	fade := math.Max(0, s.cfg.ClickEffectFadeDuration)
	release := m.releaseAt
	if release.IsZero() {
		release = m.createdAt
	}
	since := math.Max(0, seconds(now, release))
	switch {
	case since <= m.duration:
		return progress, 1, false
	case fade > 0 && since <= m.duration+fade:
		return progress, 1 - (since-m.duration)/fade, false
	default:
		return progress, 0, true
	}
}

// buttonEffectActive reports whether markers of button should stay at full
// strength. A left press stops counting once it turns into a drag.
func (s *Scene) buttonEffectActive(b input.Button) bool {
	if b == input.ButtonLeft {
		return s.leftDown && s.active == nil
	}
	return s.buttonDown[b]
}

// drawProgress is 0..1 while a left drag is in progress, growing over
// cursor_draw_shrink_time.
func (s *Scene) drawProgress(now time.Time) float64 {
	if !s.leftDown || s.leftPressAt.IsZero() || s.active == nil {
		return 0
	}
	shrink := math.Max(minPeriod, s.cfg.CursorDrawShrinkTime)
	return clamp01(seconds(now, s.leftPressAt) / shrink)
}

// idleAlpha fades the cursor ring once the pointer has rested longer than
// the idle timeout.
func (s *Scene) idleAlpha(now time.Time) float64 {
	if !s.haveCursor {
		return 1
	}
	timeout := math.Max(0, s.cfg.CursorIdleTimeout)
	fade := math.Max(0, s.cfg.CursorIdleFadeDuration)
	idle := math.Max(0, seconds(now, s.cursorMovedAt))
	if idle <= timeout {
		return 1
	}
	if fade <= 0 {
		return 0
	}
	return clamp01(1 - (idle-timeout)/fade)
}

// strokeAlpha is the opacity of a completed stroke of the given age: full
// until persist-fade, then a linear ramp to zero at persist.
func strokeAlpha(age, persist, fade float64) float64 {
	fade = math.Max(0, math.Min(fade, persist))
	if age <= persist-fade {
		return 1
	}
	remaining := persist - age
	if remaining <= 0 {
		return 0
	}
	if fade <= 0 {
		return 1
	}
	return clamp01(remaining / fade)
}

// ringFade dims the cursor ring while a right or middle click effect is
// running so the marker underneath stays readable.
func (s *Scene) ringFade(now time.Time) float64 {
	fade := 1.0
	for _, b := range []input.Button{input.ButtonRight, input.ButtonMiddle} {
		for _, m := range s.markers {
			if m.button != b {
				continue
			}
			progress, strength, done := s.markerPhase(m, now)
			if !done || strength > 0 {
				fade *= math.Max(0.3, 1-0.6*math.Max(strength, progress))
			}
			break
		}
	}
	return fade
}
