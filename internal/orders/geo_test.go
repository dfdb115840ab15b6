package orders

import "testing"

func TestDistanceZero(t *testing.T) {
	c := CityCoordinates["Bandung"]
	if d := Distance(c.Lat, c.Lng, c.Lat, c.Lng); d != 0 {
		t.Fatalf("same point should be 0 km, got %d", d)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := CityCoordinates["Jakarta Selatan"]
	b := CityCoordinates["Surabaya"]
	d1 := Distance(a.Lat, a.Lng, b.Lat, b.Lng)
	d2 := Distance(b.Lat, b.Lng, a.Lat, a.Lng)
	if d1 != d2 {
		t.Fatalf("distance not symmetric: %d vs %d", d1, d2)
	}
}

func TestDistanceKnownPairs(t *testing.T) {
	js := CityCoordinates["Jakarta Selatan"]
	bogor := CityCoordinates["Bogor"]
	if d := Distance(js.Lat, js.Lng, bogor.Lat, bogor.Lng); d != 37 {
		t.Fatalf("Jakarta Selatan-Bogor: expected 37 km, got %d", d)
	}

	sby := CityCoordinates["Surabaya"]
	d := Distance(js.Lat, js.Lng, sby.Lat, sby.Lng)
	if d < 600 || d > 700 {
		t.Fatalf("Jakarta Selatan-Surabaya: expected ~668 km, got %d", d)
	}
}
