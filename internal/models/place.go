package models

// SRIDWGS84 is the EPSG code of geographic WGS 84 longitude/latitude.
const SRIDWGS84 = 4326

// Point is a single position in the coordinate system named by SRID.
// X holds the longitude (or easting), Y the latitude (or northing).
type Point struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	SRID int     `json:"srid"`
}

// Longitude returns the X axis of a geographic point.
func (p Point) Longitude() float64 { return p.X }

// Latitude returns the Y axis of a geographic point.
func (p Point) Latitude() float64 { return p.Y }

// Place is a named location persisted by the repository. Geom is always
// expressed in the service's canonical reference system.
type Place struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Geom        Point  `json:"geom"`
}

// ReferencePoint is the position a nearest-place query is measured from.
type ReferencePoint struct {
	Longitude float64
	Latitude  float64
	SRID      int
}

// PlaceWithDistance is a place annotated with its distance in meters to a
// reference point. It only lives for the duration of a single query.
type PlaceWithDistance struct {
	Place
	Distance float64 `json:"distance"`
}

// PlaceDraft carries the validated, normalized fields of a place to create.
type PlaceDraft struct {
	Name        string
	Description string
	Geom        Point
}

// PlaceUpdate lists the fields to change on an existing place. Nil fields are
// left untouched.
type PlaceUpdate struct {
	Name        *string
	Description *string
	Geom        *Point
}

// IsEmpty reports whether the update changes nothing.
func (u PlaceUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Geom == nil
}

// Apply returns a copy of p with the update's fields applied.
func (u PlaceUpdate) Apply(p Place) Place {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Geom != nil {
		p.Geom = *u.Geom
	}
	return p
}

// NearestQuery holds the raw query values of a nearest-place lookup. A nil
// field means the parameter was not supplied at all.
type NearestQuery struct {
	Latitude    *string
	Longitude   *string
	MaxDistance *string
}
