package window

import (
	"fmt"
	"strings"
)

// Key is a keyboard chord delivered to a window.
type Key struct {
	Modifier bool
	Arrow    Direction
	IsArrow  bool
}

// ParseKey parses chords such as "ctrl+left" or "cmd+up". Ctrl, cmd, meta and
// super all count as the snap modifier.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) == 0 || parts[0] == "" {
		return Key{}, fmt.Errorf("empty key")
	}

	var k Key
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if i == len(parts)-1 {
			dir, err := ParseDirection(part)
			if err != nil {
				return Key{}, fmt.Errorf("unsupported key %q", s)
			}
			k.Arrow = dir
			k.IsArrow = true
			continue
		}
		switch part {
		case "ctrl", "control", "cmd", "command", "meta", "super":
			k.Modifier = true
		case "shift", "alt":
		default:
			return Key{}, fmt.Errorf("unsupported modifier %q in %q", part, s)
		}
	}
	return k, nil
}

// SnapDirection returns the snap a chord requests, if any.
func (k Key) SnapDirection() (Direction, bool) {
	if !k.Modifier || !k.IsArrow {
		return 0, false
	}
	return k.Arrow, true
}
