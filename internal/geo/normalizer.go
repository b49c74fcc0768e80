package geo

import (
	"fmt"
	"math"

	"geoplaces-api/internal/models"
)

// Normalizer converts coordinates given in any registered reference system
// into the service's canonical reference system.
type Normalizer struct {
	canonical Projection
}

// NewNormalizer creates a normalizer targeting canonicalSRID. The canonical
// system must be geographic so that stored points keep longitude/latitude axes.
func NewNormalizer(canonicalSRID int) (*Normalizer, error) {
	proj, ok := Lookup(canonicalSRID)
	if !ok {
		return nil, fmt.Errorf("geo: canonical %w: %d", models.ErrInvalidReferenceSystem, canonicalSRID)
	}
	if !proj.Geographic() {
		return nil, fmt.Errorf("geo: canonical SRID %d is not a geographic reference system", canonicalSRID)
	}
	return &Normalizer{canonical: proj}, nil
}

// CanonicalSRID returns the SRID every normalized point is expressed in.
func (n *Normalizer) CanonicalSRID() int {
	return n.canonical.EPSG()
}

// Normalize validates (longitude, latitude, srid) and returns the point in the
// canonical reference system. For projected systems longitude is the easting
// and latitude the northing; the bounds check runs on the geographic position.
func (n *Normalizer) Normalize(longitude, latitude float64, srid int) (models.Point, error) {
	proj, ok := Lookup(srid)
	if !ok {
		return models.Point{}, fmt.Errorf("geo: %w: %d", models.ErrInvalidReferenceSystem, srid)
	}

	if !finite(longitude) || !finite(latitude) {
		return models.Point{}, fmt.Errorf("geo: %w: coordinates must be finite", models.ErrOutOfRangeCoordinate)
	}

	lon, lat := proj.ToWGS84(longitude, latitude)
	if err := checkRange(lon, lat); err != nil {
		return models.Point{}, err
	}

	if srid == n.canonical.EPSG() {
		return models.Point{X: longitude, Y: latitude, SRID: srid}, nil
	}

	x, y := n.canonical.FromWGS84(lon, lat)
	return models.Point{X: x, Y: y, SRID: n.canonical.EPSG()}, nil
}

// ToWGS84 returns the WGS 84 longitude and latitude of p.
func (n *Normalizer) ToWGS84(p models.Point) (lon, lat float64, err error) {
	proj, ok := Lookup(p.SRID)
	if !ok {
		return 0, 0, fmt.Errorf("geo: %w: %d", models.ErrInvalidReferenceSystem, p.SRID)
	}
	lon, lat = proj.ToWGS84(p.X, p.Y)
	return lon, lat, nil
}

func checkRange(lon, lat float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("geo: %w: latitude %v not in [-90, 90]", models.ErrOutOfRangeCoordinate, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("geo: %w: longitude %v not in [-180, 180]", models.ErrOutOfRangeCoordinate, lon)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
