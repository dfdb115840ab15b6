package orders

import "math"

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Koordinat kota yang didukung untuk validasi radius pengiriman.
var CityCoordinates = map[string]Coordinate{
	"Jakarta Selatan": {Lat: -6.2608, Lng: 106.7818},
	"Jakarta Utara":   {Lat: -6.1385, Lng: 106.8634},
	"Jakarta Barat":   {Lat: -6.1683, Lng: 106.7595},
	"Surabaya":        {Lat: -7.2575, Lng: 112.7521},
	"Bandung":         {Lat: -6.9175, Lng: 107.6191},
	"Yogyakarta":      {Lat: -7.7956, Lng: 110.3695},
	"Tangerang":       {Lat: -6.1781, Lng: 106.6319},
	"Bogor":           {Lat: -6.5950, Lng: 106.8166},
	"Malang":          {Lat: -7.9666, Lng: 112.6326},
}

const earthRadiusKm = 6371

// Distance: jarak great-circle (Haversine) dalam km, dibulatkan ke km terdekat.
func Distance(lat1, lng1, lat2, lng2 float64) int {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return int(math.Round(earthRadiusKm * c))
}
