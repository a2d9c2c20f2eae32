package geom

import (
	"errors"
	"math"
	"testing"
)

func TestRectContains(t *testing.T) {
	r := R(10, 10, 20, 10)
	tests := []struct {
		p    Point
		want bool
	}{
		{Pt(10, 10), true},
		{Pt(29.9, 19.9), true},
		{Pt(30, 15), false},
		{Pt(15, 20), false},
		{Pt(9.9, 15), false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestRectInflate(t *testing.T) {
	r := R(10, 10, 20, 10).Inflate(4)
	want := R(6, 6, 28, 18)
	if r != want {
		t.Errorf("Inflate() = %v, want %v", r, want)
	}
	if got := R(0, 0, 20, 10).MinSide(); got != 10 {
		t.Errorf("MinSide() = %v, want 10", got)
	}
}

func TestRectUnion(t *testing.T) {
	a := R(0, 0, 10, 10)
	b := R(20, 5, 10, 10)
	want := R(0, 0, 30, 15)
	if got := a.Union(b); got != want {
		t.Errorf("Union() = %v, want %v", got, want)
	}
	if got := (Rect{}).Union(b); got != b {
		t.Errorf("empty Union() = %v, want %v", got, b)
	}
}

func TestPolygonContains(t *testing.T) {
	// L-shaped enter key
	pg := Polygon{
		Pt(0, 0), Pt(20, 0), Pt(20, 20), Pt(10, 20), Pt(10, 10), Pt(0, 10),
	}
	tests := []struct {
		p    Point
		want bool
	}{
		{Pt(5, 5), true},
		{Pt(15, 15), true},
		{Pt(5, 15), false},
		{Pt(25, 5), false},
	}
	for _, tt := range tests {
		got, err := pg.Contains(tt.p)
		if err != nil {
			t.Fatalf("Contains(%v) error: %v", tt.p, err)
		}
		if got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if b := pg.Bounds(); b != R(0, 0, 20, 20) {
		t.Errorf("Bounds() = %v", b)
	}
}

func TestPolygonTooFewPoints(t *testing.T) {
	got, err := Polygon{Pt(0, 0), Pt(1, 1)}.Contains(Pt(0.5, 0.5))
	if got || err != nil {
		t.Errorf("Contains() = %v, %v; want false, nil", got, err)
	}
}

func TestPolygonDegenerate(t *testing.T) {
	flat := Polygon{Pt(0, 5), Pt(10, 5), Pt(20, 5)}
	got, err := flat.Contains(Pt(5, 5))
	if got || !errors.Is(err, ErrDegenerateShape) {
		t.Errorf("Contains() = %v, %v; want false, ErrDegenerateShape", got, err)
	}

	nan := Polygon{Pt(0, 0), Pt(math.NaN(), 0), Pt(10, 10)}
	if _, err := nan.Contains(Pt(1, 1)); !errors.Is(err, ErrDegenerateShape) {
		t.Errorf("Contains() error = %v, want ErrDegenerateShape", err)
	}
}
