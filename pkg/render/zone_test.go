package render

import (
	"testing"

	"github.com/matzehuels/panetree/pkg/layout"
)

func TestHitZone(t *testing.T) {
	r := Rect{X: 10, Y: 20, W: 10, H: 10}

	tests := []struct {
		name string
		x, y int
		want layout.Position
	}{
		{"Center", 15, 25, layout.Center},
		{"Left", 10, 25, layout.Left},
		{"LeftInner", 11, 25, layout.Left},
		{"Right", 19, 25, layout.Right},
		{"RightInner", 18, 25, layout.Right},
		{"Top", 15, 20, layout.Top},
		{"Bottom", 15, 29, layout.Bottom},
		{"JustInsideCenter", 12, 22, layout.Center},
		// Side edges win in the corners.
		{"TopLeftCorner", 10, 20, layout.Left},
		{"BottomRightCorner", 19, 29, layout.Right},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HitZone(r, tt.x, tt.y); got != tt.want {
				t.Errorf("HitZone(%d, %d) = %s, want %s", tt.x, tt.y, got, tt.want)
			}
		})
	}
}
