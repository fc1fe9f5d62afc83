package scene

import (
	"math"
	"strings"
	"time"

	"mouse-overlay/src/config"
	"mouse-overlay/src/hotkey"
)

type heldKey struct {
	id         uint32
	label      string
	pressedAt  time.Time
	releasedAt time.Time
}

// keyStrip keeps held and recently released keys in press order.
type keyStrip struct {
	entries []heldKey
}

func (k *keyStrip) clear() { k.entries = nil }

// down records a press. Auto-repeat of a held key is a no-op; pressing a
// lingering key again revives it in place.
func (k *keyStrip) down(key hotkey.Key, now time.Time, maxKeys int) {
	id := key.ID()
	for i := range k.entries {
		if k.entries[i].id == id {
			k.entries[i].releasedAt = time.Time{}
			return
		}
	}
	k.entries = append(k.entries, heldKey{
		id:        id,
		label:     hotkey.KeyLabel(key),
		pressedAt: now,
	})
	if maxKeys > 0 && len(k.entries) > maxKeys {
		k.entries = append(k.entries[:0], k.entries[len(k.entries)-maxKeys:]...)
	}
}

func (k *keyStrip) up(key hotkey.Key, now time.Time) {
	id := key.ID()
	for i := range k.entries {
		if k.entries[i].id == id && k.entries[i].releasedAt.IsZero() {
			k.entries[i].releasedAt = now
		}
	}
}

func (k *keyStrip) prune(now time.Time, opts config.KeyDisplay) {
	kept := k.entries[:0]
	for _, e := range k.entries {
		if keyAlpha(e, now, opts) > 0 {
			kept = append(kept, e)
		}
	}
	k.entries = kept
}

func keyAlpha(e heldKey, now time.Time, opts config.KeyDisplay) float64 {
	if e.releasedAt.IsZero() {
		return 1
	}
	since := seconds(now, e.releasedAt)
	linger := math.Max(0, opts.Linger)
	if since <= linger {
		return 1
	}
	if opts.Fade <= 0 {
		return 0
	}
	return clamp01(1 - (since-linger)/opts.Fade)
}

// label joins the visible keys into "Ctrl + Shift + A" and returns the
// strongest key alpha.
func (k *keyStrip) label(now time.Time, opts config.KeyDisplay) (string, float64) {
	var parts []string
	alpha := 0.0
	for _, e := range k.entries {
		a := keyAlpha(e, now, opts)
		if a <= 0 {
			continue
		}
		parts = append(parts, e.label)
		alpha = math.Max(alpha, a)
	}
	return strings.Join(parts, " + "), alpha
}
