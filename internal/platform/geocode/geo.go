package geocode

import "math"

// EarthRadiusMiles is the radius used for radius searches.
const EarthRadiusMiles = 3963.0

// DistanceMiles returns the great-circle distance between two points.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := rlat2 - rlat1
	dlng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return 2 * EarthRadiusMiles * math.Asin(math.Min(1, math.Sqrt(a)))
}

// Box is a latitude/longitude bounding box.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox returns a box that contains every point within radiusMiles of the
// center. Near the poles the longitude span widens to the full range.
func BoundingBox(lat, lng, radiusMiles float64) Box {
	dLat := radiusMiles / EarthRadiusMiles * 180 / math.Pi
	box := Box{
		MinLat: math.Max(-90, lat-dLat),
		MaxLat: math.Min(90, lat+dLat),
		MinLng: -180,
		MaxLng: 180,
	}
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat > 1e-6 && box.MinLat > -90 && box.MaxLat < 90 {
		dLng := dLat / cosLat
		if dLng < 180 {
			box.MinLng = lng - dLng
			box.MaxLng = lng + dLng
		}
	}
	return box
}

// Wraps reports whether the box crosses the antimeridian.
func (b Box) Wraps() bool {
	return b.MinLng < -180 || b.MaxLng > 180
}
