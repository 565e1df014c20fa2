package geo

import "testing"

func TestIntersectsShapes(t *testing.T) {
	sq := square(-0.005, 0.005, 0.01)
	tests := []struct {
		name string
		a, b Shape
		want bool
	}{
		{"circle reaches polygon", Circle{Center: Point{0, 0}, Radius: 1000}, sq, true},
		{"circle short of polygon", Circle{Center: Point{0, 0}, Radius: 400}, sq, false},
		{"circle inside polygon", Circle{Center: Point{0, 0.01}, Radius: 10}, sq, true},
		{"polygon and bbox", sq, NewBBox(0, 1, 0, 1), true},
		{"bbox and polygon apart", NewBBox(1, 2, 1, 2), sq, false},
		{"bbox and bbox", NewBBox(0, 1, 0, 1), NewBBox(1, 2, 1, 2), true},
		{"circle and circle", Circle{Center: Point{0, 0}, Radius: 600}, Circle{Center: Point{0, 0.01}, Radius: 600}, true},
		{"circles apart", Circle{Center: Point{0, 0}, Radius: 500}, Circle{Center: Point{0, 0.01}, Radius: 500}, false},
		{"bbox and circle", NewBBox(0, 1, 0, 1), Circle{Center: Point{-0.001, -0.001}, Radius: 200}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Intersects(tt.a, tt.b); got != tt.want {
				t.Errorf("Intersects(a, b) = %v, want %v", got, tt.want)
			}
			if got := Intersects(tt.b, tt.a); got != tt.want {
				t.Errorf("Intersects(b, a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCircleBBox(t *testing.T) {
	c := Circle{Center: Point{Lat: 10, Lon: 20}, Radius: 5000}
	b := c.BBox()
	for _, p := range []Point{{10, 20}, {10.04, 20}, {10, 20.04}} {
		if !b.ContainsPoint(p) {
			t.Errorf("bbox %+v misses %v", b, p)
		}
	}
	if b.ContainsPoint(Point{10.1, 20}) {
		t.Error("bbox too large")
	}
}

func TestBBoxPad(t *testing.T) {
	b := NewBBox(0, 1, 0, 1).Pad(0.5)
	if b.MinLat() != -0.5 || b.MaxLon() != 1.5 {
		t.Errorf("Pad() = [%v %v %v %v]", b.MinLat(), b.MaxLat(), b.MinLon(), b.MaxLon())
	}
	if !EmptyBBox().Pad(1).IsEmpty() {
		t.Error("padding an empty box must keep it empty")
	}
}
