// Package geo provides the geospatial primitives used by the location
// index and the dispatch engine: great-circle distance, geohash
// encoding/decoding, and geohash coverage of a search radius.
package geo

import "math"

// EarthRadiusKm is the mean earth radius used for great-circle math.
const EarthRadiusKm = 6371.0

const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// Haversine returns the great-circle distance in kilometers between two
// coordinates.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaPhi := toRadians(lat2 - lat1)
	deltaLambda := toRadians(lng2 - lng1)

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func toRadians(degree float64) float64 {
	return degree * math.Pi / 180
}

// ValidCoordinates reports whether lat/lng form a usable coordinate pair.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Box is a latitude/longitude bounding box.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Center returns the middle point of the box.
func (b Box) Center() (lat, lng float64) {
	return (b.MinLat + b.MaxLat) / 2, (b.MinLng + b.MaxLng) / 2
}

// Encode returns the geohash of the coordinate at the given precision
// (number of base32 characters).
func Encode(lat, lng float64, precision int) string {
	box := Box{MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180}
	hash := make([]byte, 0, precision)

	var idx int
	bit := 0
	even := true // geohash interleaving starts with longitude

	for len(hash) < precision {
		if even {
			mid := (box.MinLng + box.MaxLng) / 2
			if lng >= mid {
				idx = idx<<1 | 1
				box.MinLng = mid
			} else {
				idx <<= 1
				box.MaxLng = mid
			}
		} else {
			mid := (box.MinLat + box.MaxLat) / 2
			if lat >= mid {
				idx = idx<<1 | 1
				box.MinLat = mid
			} else {
				idx <<= 1
				box.MaxLat = mid
			}
		}
		even = !even

		bit++
		if bit == 5 {
			hash = append(hash, base32[idx])
			bit = 0
			idx = 0
		}
	}

	return string(hash)
}

// DecodeBox returns the bounding box of a geohash cell.
func DecodeBox(hash string) Box {
	box := Box{MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180}
	even := true

	for i := 0; i < len(hash); i++ {
		idx := indexOf(hash[i])
		if idx < 0 {
			continue
		}
		for bit := 4; bit >= 0; bit-- {
			set := idx>>bit&1 == 1
			if even {
				mid := (box.MinLng + box.MaxLng) / 2
				if set {
					box.MinLng = mid
				} else {
					box.MaxLng = mid
				}
			} else {
				mid := (box.MinLat + box.MaxLat) / 2
				if set {
					box.MinLat = mid
				} else {
					box.MaxLat = mid
				}
			}
			even = !even
		}
	}

	return box
}

// Decode returns the center coordinate of a geohash cell.
func Decode(hash string) (lat, lng float64) {
	return DecodeBox(hash).Center()
}

func indexOf(c byte) int {
	for i := 0; i < len(base32); i++ {
		if base32[i] == c {
			return i
		}
	}
	return -1
}

// PrecisionForRadius returns the coarsest geohash precision whose cell is
// still at least as large as the radius in both dimensions, so a cell and
// its eight neighbors fully cover a disk of that radius.
func PrecisionForRadius(radiusKm float64) int {
	// Minimum cell dimension (km) per precision; odd precisions are
	// square-ish, even ones are half as tall as they are wide.
	minDims := []float64{5000, 625, 156, 19.5, 4.9, 0.61, 0.153, 0.019}
	for p := len(minDims); p >= 1; p-- {
		if minDims[p-1] >= radiusKm {
			return p
		}
	}
	return 1
}

// CoverRadius returns the set of geohash prefixes whose cells jointly
// cover a disk of radiusKm around the coordinate. The prefixes over-cover
// the disk; candidates must be re-filtered by exact Haversine distance
// because geohash cells are square-ish and straddle the circle boundary
// asymmetrically.
func CoverRadius(lat, lng, radiusKm float64) []string {
	precision := PrecisionForRadius(radiusKm)
	center := Encode(lat, lng, precision)
	box := DecodeBox(center)

	latStep := box.MaxLat - box.MinLat
	lngStep := box.MaxLng - box.MinLng

	seen := make(map[string]struct{}, 9)
	prefixes := make([]string, 0, 9)
	for _, dLat := range []float64{-latStep, 0, latStep} {
		for _, dLng := range []float64{-lngStep, 0, lngStep} {
			nLat := lat + dLat
			nLng := lng + dLng
			if nLat < -90 || nLat > 90 {
				continue
			}
			// Longitude wraps around the antimeridian.
			if nLng < -180 {
				nLng += 360
			} else if nLng > 180 {
				nLng -= 360
			}
			h := Encode(nLat, nLng, precision)
			if _, ok := seen[h]; ok {
				continue
			}
			seen[h] = struct{}{}
			prefixes = append(prefixes, h)
		}
	}

	return prefixes
}
