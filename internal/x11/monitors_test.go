package x11

import "testing"

func TestPickMonitor_PrefersPointer(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, Name: "DP-1", X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, Name: "HDMI-1", X: 1920, Y: 0, Width: 2560, Height: 1440},
	}

	if got := pickMonitor(monitors, 2000, 100, true); got.Name != "HDMI-1" {
		t.Fatalf("expected HDMI-1 under pointer, got %s", got.Name)
	}
	if got := pickMonitor(monitors, 2000, 100, false); got.Name != "DP-1" {
		t.Fatalf("expected first monitor without pointer, got %s", got.Name)
	}
	if got := pickMonitor(monitors, -5, -5, true); got.Name != "DP-1" {
		t.Fatalf("expected first monitor for off-screen pointer, got %s", got.Name)
	}
}

func TestClipToWorkArea(t *testing.T) {
	mon := Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}

	// 32px top panel
	got := clipToWorkArea(mon, Monitor{X: 0, Y: 32, Width: 1920, Height: 1048})
	if got.Y != 32 || got.Height != 1048 || got.Width != 1920 {
		t.Fatalf("unexpected clipped area: %+v", got)
	}

	// Disjoint work area leaves the monitor alone
	got = clipToWorkArea(mon, Monitor{X: 3000, Y: 0, Width: 100, Height: 100})
	if got != mon {
		t.Fatalf("expected monitor unchanged, got %+v", got)
	}
}
