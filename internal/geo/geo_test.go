package geo

import (
	"math"
	"strings"
	"testing"
)

func TestHaversine_KnownDistances(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKm, tolerance      float64
	}{
		{"same point", 38.72, -9.14, 38.72, -9.14, 0, 0.001},
		{"lisbon to porto", 38.7223, -9.1393, 41.1579, -8.6291, 274, 5},
		{"lisbon to madrid", 38.7223, -9.1393, 40.4168, -3.7038, 502, 5},
		{"across equator", -1.0, 0, 1.0, 0, 222.4, 1},
	}

	for _, tc := range cases {
		got := Haversine(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
		if math.Abs(got-tc.wantKm) > tc.tolerance {
			t.Errorf("%s: expected ~%vkm, got %vkm", tc.name, tc.wantKm, got)
		}
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	d1 := Haversine(38.72, -9.14, 41.15, -8.61)
	d2 := Haversine(41.15, -8.61, 38.72, -9.14)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance must be symmetric: %v vs %v", d1, d2)
	}
}

func TestValidCoordinates(t *testing.T) {
	valid := [][2]float64{{0, 0}, {90, 180}, {-90, -180}, {38.72, -9.14}}
	for _, c := range valid {
		if !ValidCoordinates(c[0], c[1]) {
			t.Errorf("expected (%v, %v) valid", c[0], c[1])
		}
	}

	invalid := [][2]float64{{90.1, 0}, {-90.1, 0}, {0, 180.1}, {0, -180.1}}
	for _, c := range invalid {
		if ValidCoordinates(c[0], c[1]) {
			t.Errorf("expected (%v, %v) invalid", c[0], c[1])
		}
	}
}

func TestEncode_KnownHashes(t *testing.T) {
	// Reference values from the canonical geohash algorithm.
	cases := []struct {
		lat, lng  float64
		precision int
		want      string
	}{
		{57.64911, 10.40744, 11, "u4pruydqqvj"},
		{38.7223, -9.1393, 7, "eycs210"},
		{0, 0, 5, "s0000"},
	}

	for _, tc := range cases {
		if got := Encode(tc.lat, tc.lng, tc.precision); got != tc.want {
			t.Errorf("Encode(%v, %v, %d): expected %q, got %q", tc.lat, tc.lng, tc.precision, tc.want, got)
		}
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	points := [][2]float64{
		{38.7223, -9.1393},
		{-33.8688, 151.2093},
		{64.1466, -21.9426},
		{0, 0},
	}

	for _, p := range points {
		hash := Encode(p[0], p[1], 9)
		lat, lng := Decode(hash)

		// Precision 9 cells are under 5m across.
		if Haversine(p[0], p[1], lat, lng) > 0.01 {
			t.Errorf("round trip of (%v, %v) drifted to (%v, %v)", p[0], p[1], lat, lng)
		}
	}
}

func TestDecodeBox_ContainsEncodedPoint(t *testing.T) {
	lat, lng := 38.7223, -9.1393
	box := DecodeBox(Encode(lat, lng, 6))

	if lat < box.MinLat || lat > box.MaxLat || lng < box.MinLng || lng > box.MaxLng {
		t.Errorf("point (%v, %v) outside its own cell %+v", lat, lng, box)
	}
}

func TestPrecisionForRadius_ShrinksWithRadius(t *testing.T) {
	if p := PrecisionForRadius(2500); p != 1 {
		t.Errorf("expected precision 1 for 2500km, got %d", p)
	}
	small := PrecisionForRadius(1)
	large := PrecisionForRadius(100)
	if small <= large {
		t.Errorf("smaller radius must give finer precision: %d vs %d", small, large)
	}
}

func TestCoverRadius_IncludesCenterCell(t *testing.T) {
	lat, lng := 38.72, -9.14
	prefixes := CoverRadius(lat, lng, 5)

	center := Encode(lat, lng, PrecisionForRadius(5))
	found := false
	for _, p := range prefixes {
		if p == center {
			found = true
		}
	}
	if !found {
		t.Errorf("cover %v must include center cell %s", prefixes, center)
	}
	if len(prefixes) == 0 || len(prefixes) > 9 {
		t.Errorf("expected 1..9 prefixes, got %d", len(prefixes))
	}
}

func TestCoverRadius_CoversPointsInsideDisk(t *testing.T) {
	lat, lng := 38.72, -9.14
	radius := 5.0
	prefixes := CoverRadius(lat, lng, radius)
	precision := PrecisionForRadius(radius)

	// Points just inside the disk in each cardinal direction.
	offsets := [][2]float64{{0.04, 0}, {-0.04, 0}, {0, 0.05}, {0, -0.05}}
	for _, off := range offsets {
		pLat, pLng := lat+off[0], lng+off[1]
		hash := Encode(pLat, pLng, precision)

		covered := false
		for _, prefix := range prefixes {
			if strings.HasPrefix(hash, prefix) {
				covered = true
				break
			}
		}
		if !covered {
			t.Errorf("point (%v, %v) in cell %s not covered by %v", pLat, pLng, hash, prefixes)
		}
	}
}

func TestCoverRadius_AntimeridianWrap(t *testing.T) {
	// Near the date line the neighbor cells sit on the other side.
	prefixes := CoverRadius(0, 179.99, 5)
	if len(prefixes) == 0 {
		t.Fatal("expected non-empty cover at the antimeridian")
	}
	for _, p := range prefixes {
		box := DecodeBox(p)
		if box.MinLng < -180 || box.MaxLng > 180 {
			t.Errorf("prefix %s decodes outside valid longitude: %+v", p, box)
		}
	}
}
