package systems

import (
	"math"
	"testing"

	"github.com/m-rossini/beans/config"
)

func testMovement() *MovementSystem {
	return NewMovementSystem(
		Bounds{Width: 100, Height: 80},
		config.PhysicsConfig{PixelsPerUnitSpeed: 1.0, EnergyLossOnBounce: 2.0},
	)
}

func TestMovementStraight(t *testing.T) {
	s := testMovement()

	got := s.Step(50, 40, 5, 2, math.Pi/2)

	if got.Bounces != 0 {
		t.Errorf("Bounces = %d, want 0", got.Bounces)
	}
	if math.Abs(got.X-50) > 1e-9 || math.Abs(got.Y-42) > 1e-9 {
		t.Errorf("position = (%v, %v), want (50, 42)", got.X, got.Y)
	}
	if got.Heading != math.Pi/2 {
		t.Errorf("heading changed without a bounce: %v", got.Heading)
	}
}

func TestMovementWallBounce(t *testing.T) {
	tests := []struct {
		name        string
		x, y        float64
		heading     float64
		wantX       float64
		wantY       float64
		wantHeading float64
		wantBounces int
	}{
		{
			name: "left wall reflects heading",
			x:    6, y: 40, heading: math.Pi,
			wantX: 5, wantY: 40, wantHeading: 0, wantBounces: 1,
		},
		{
			name: "right wall reflects heading",
			x:    94, y: 40, heading: 0,
			wantX: 95, wantY: 40, wantHeading: math.Pi, wantBounces: 1,
		},
		{
			name: "bottom wall flips vertical component",
			x:    50, y: 6, heading: 3 * math.Pi / 2,
			wantX: 50, wantY: 5, wantHeading: math.Pi / 2, wantBounces: 1,
		},
		{
			name: "top wall flips vertical component",
			x:    50, y: 74, heading: math.Pi / 2,
			wantX: 50, wantY: 75, wantHeading: 3 * math.Pi / 2, wantBounces: 1,
		},
	}

	s := testMovement()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := s.Step(tc.x, tc.y, 5, 3, tc.heading)
			if got.Bounces != tc.wantBounces {
				t.Errorf("Bounces = %d, want %d", got.Bounces, tc.wantBounces)
			}
			if math.Abs(got.X-tc.wantX) > 1e-9 || math.Abs(got.Y-tc.wantY) > 1e-9 {
				t.Errorf("position = (%v, %v), want (%v, %v)", got.X, got.Y, tc.wantX, tc.wantY)
			}
			if math.Abs(got.Heading-tc.wantHeading) > 1e-9 {
				t.Errorf("heading = %v, want %v", got.Heading, tc.wantHeading)
			}
		})
	}
}

func TestMovementCornerDoubleBounce(t *testing.T) {
	s := testMovement()

	// Heading into the bottom-left corner crosses both walls in one step.
	got := s.Step(6, 6, 5, 4, math.Pi+math.Pi/4)

	if got.Bounces != 2 {
		t.Errorf("Bounces = %d, want 2", got.Bounces)
	}
	if got.X != 5 || got.Y != 5 {
		t.Errorf("position = (%v, %v), want (5, 5)", got.X, got.Y)
	}
	if math.Abs(got.Heading-math.Pi/4) > 1e-9 {
		t.Errorf("heading = %v, want %v", got.Heading, math.Pi/4)
	}
}

func TestMovementHeadingStaysNormalized(t *testing.T) {
	s := testMovement()

	for _, heading := range []float64{0, 1, math.Pi, 5, 6.28, 2 * math.Pi} {
		got := s.Step(6, 40, 5, 3, heading)
		if got.Heading < 0 || got.Heading >= 2*math.Pi {
			t.Errorf("heading %v not normalized: %v", heading, got.Heading)
		}
	}
}
