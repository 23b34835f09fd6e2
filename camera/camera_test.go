package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Should be centered on world
	if cam.X != 1280 || cam.Y != 720 {
		t.Errorf("expected camera at (1280, 720), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	sx, sy := cam.WorldToScreen(1280, 720)
	if !near(sx, 640) || !near(sy, 360) {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(2)
	cam.Pan(300, -100)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanStaysInBounds(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	cam.Pan(-5000, -5000)
	if cam.X != 640 || cam.Y != 360 {
		t.Errorf("expected top-left clamp (640, 360), got (%f, %f)", cam.X, cam.Y)
	}
	minX, minY, _, _ := cam.VisibleWorldBounds()
	if minX != 0 || minY != 0 {
		t.Errorf("visible area leaves the map: (%f, %f)", minX, minY)
	}

	cam.Pan(50000, 50000)
	_, _, maxX, maxY := cam.VisibleWorldBounds()
	if maxX != 2560 || maxY != 1440 {
		t.Errorf("expected bottom-right clamp (2560, 1440), got (%f, %f)", maxX, maxY)
	}
}

func TestFullMapCannotPan(t *testing.T) {
	// Viewport equals the map, as in the default window
	cam := New(1280, 720, 1280, 720)
	cam.Pan(200, 200)
	if cam.X != 640 || cam.Y != 360 {
		t.Errorf("expected centered camera, got (%f, %f)", cam.X, cam.Y)
	}

	cam.SetZoom(2)
	cam.Pan(200, 0)
	if !near(cam.X, 740) {
		t.Errorf("zoomed pan X = %f, want 740", cam.X)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// MinZoom should be max(1280/2560, 720/1440) = 0.5
	if cam.MinZoom != 0.5 {
		t.Errorf("expected MinZoom 0.5, got %f", cam.MinZoom)
	}

	cam.SetZoom(0.1)
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom clamped to 0.5, got %f", cam.Zoom)
	}

	cam.SetZoom(10.0)
	if cam.Zoom != 4.0 {
		t.Errorf("expected zoom clamped to 4.0, got %f", cam.Zoom)
	}
}

func TestMinZoomPreventsDeadSpace(t *testing.T) {
	cam := New(800, 600, 1600, 800)

	// MinZoom should be max(800/1600, 600/800) = 0.75
	if !near(cam.MinZoom, 0.75) {
		t.Errorf("expected MinZoom 0.75, got %f", cam.MinZoom)
	}

	cam.SetZoom(cam.MinZoom)
	visibleH := cam.ViewportH / cam.Zoom
	if !near(visibleH, cam.WorldH) {
		t.Errorf("at min zoom, visible height %f should equal world height %f", visibleH, cam.WorldH)
	}
}

func TestZoomAtKeepsCursorPoint(t *testing.T) {
	cam := New(1280, 720, 1280, 720)

	wx, wy := cam.ScreenToWorld(400, 300)
	cam.ZoomAt(400, 300, 2)
	if cam.Zoom != 2 {
		t.Fatalf("zoom = %f, want 2", cam.Zoom)
	}
	gx, gy := cam.ScreenToWorld(400, 300)
	if !near(gx, wx) || !near(gy, wy) {
		t.Errorf("cursor point moved from (%f,%f) to (%f,%f)", wx, wy, gx, gy)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Visible range: (640, 360) to (1920, 1080)
	if !cam.IsVisible(1280, 720, 10) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(2400, 1300, 10) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(600, 720, 100) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestResizeRaisesZoom(t *testing.T) {
	cam := New(1280, 720, 1280, 720)
	cam.Resize(1920, 1080)
	if !near(cam.MinZoom, 1.5) || !near(cam.Zoom, 1.5) {
		t.Errorf("after resize MinZoom = %f Zoom = %f, want 1.5", cam.MinZoom, cam.Zoom)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(2.5)
	cam.Pan(-400, -400)

	cam.Reset()

	if cam.X != 1280 || cam.Y != 720 {
		t.Errorf("expected position (1280, 720), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}
