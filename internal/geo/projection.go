package geo

import "math"

// WGS 84 ellipsoid.
const (
	semiMajorAxis = 6378137.0
	flattening    = 1 / 298.257223563
)

var eccentricity = math.Sqrt(flattening * (2 - flattening))

// Projection converts between a coordinate reference system and WGS 84
// longitude/latitude in degrees.
type Projection interface {
	// ToWGS84 converts coordinates of this system to WGS 84 longitude/latitude.
	ToWGS84(x, y float64) (lon, lat float64)

	// FromWGS84 converts WGS 84 longitude/latitude to coordinates of this system.
	FromWGS84(lon, lat float64) (x, y float64)

	// EPSG returns the EPSG code of the system.
	EPSG() int

	// Geographic reports whether the axes are longitude/latitude in degrees.
	Geographic() bool
}

// Lookup returns the projection registered for an SRID.
func Lookup(srid int) (Projection, bool) {
	switch {
	case srid == 4326 || srid == 4269 || srid == 4258:
		return geographic{epsg: srid}, true
	case srid == 3857 || srid == 900913:
		return webMercator{epsg: srid}, true
	case srid == 3395:
		return worldMercator{}, true
	case srid >= 32601 && srid <= 32660:
		return newUTM(srid, srid-32600, false), true
	case srid >= 32701 && srid <= 32760:
		return newUTM(srid, srid-32700, true), true
	default:
		return nil, false
	}
}

// geographic covers WGS 84 and the datums that coincide with it within the
// precision this service stores (NAD83, ETRS89).
type geographic struct {
	epsg int
}

func (g geographic) ToWGS84(x, y float64) (float64, float64)     { return x, y }
func (g geographic) FromWGS84(lon, lat float64) (float64, float64) { return lon, lat }
func (g geographic) EPSG() int                                     { return g.epsg }
func (g geographic) Geographic() bool                              { return true }

// webMercator is the spherical pseudo-Mercator used by web maps.
type webMercator struct {
	epsg int
}

func (w webMercator) ToWGS84(x, y float64) (float64, float64) {
	lon := x / semiMajorAxis
	lat := 2*math.Atan(math.Exp(y/semiMajorAxis)) - math.Pi/2
	return degrees(lon), degrees(lat)
}

func (w webMercator) FromWGS84(lon, lat float64) (float64, float64) {
	x := semiMajorAxis * radians(lon)
	y := semiMajorAxis * math.Log(math.Tan(math.Pi/4+radians(lat)/2))
	return x, y
}

func (w webMercator) EPSG() int        { return w.epsg }
func (w webMercator) Geographic() bool { return false }

// worldMercator is the ellipsoidal Mercator projection (EPSG:3395).
type worldMercator struct{}

func (worldMercator) ToWGS84(x, y float64) (float64, float64) {
	t := math.Exp(-y / semiMajorAxis)
	phi := math.Pi/2 - 2*math.Atan(t)
	for i := 0; i < 15; i++ {
		es := eccentricity * math.Sin(phi)
		next := math.Pi/2 - 2*math.Atan(t*math.Pow((1-es)/(1+es), eccentricity/2))
		if math.Abs(next-phi) < 1e-14 {
			phi = next
			break
		}
		phi = next
	}
	return degrees(x / semiMajorAxis), degrees(phi)
}

func (worldMercator) FromWGS84(lon, lat float64) (float64, float64) {
	phi := radians(lat)
	es := eccentricity * math.Sin(phi)
	y := semiMajorAxis * math.Log(math.Tan(math.Pi/4+phi/2)*math.Pow((1-es)/(1+es), eccentricity/2))
	return semiMajorAxis * radians(lon), y
}

func (worldMercator) EPSG() int        { return 3395 }
func (worldMercator) Geographic() bool { return false }

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
