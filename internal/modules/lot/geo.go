package lot

import "math"

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two points, rounded to
// 10 m.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(earthRadiusKm*c*100) / 100
}

// boundingBox returns a box that contains every point within radiusKm of
// the center. It is only a prefilter; callers still check DistanceKm.
func boundingBox(lat, lng, radiusKm float64) (minLat, maxLat, minLng, maxLng float64) {
	dLat := radiusKm / earthRadiusKm * 180 / math.Pi
	minLat, maxLat = lat-dLat, lat+dLat

	cos := math.Cos(radians(lat))
	if cos < 1e-6 {
		return minLat, maxLat, -180, 180
	}
	dLng := dLat / cos
	return minLat, maxLat, lng - dLng, lng + dLng
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
