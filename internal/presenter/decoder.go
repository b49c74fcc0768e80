package presenter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"geoplaces-api/internal/models"
)

const maxNameLength = 255

// PlaceInput is the wire representation of a create or update request.
// Pointer fields distinguish "absent" from zero values.
type PlaceInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	SRID        *int     `json:"srid"`
}

// Normalizer converts input coordinates to the canonical reference system.
type Normalizer interface {
	Normalize(longitude, latitude float64, srid int) (models.Point, error)
	CanonicalSRID() int
}

// Decoder validates place inputs and normalizes their coordinates.
type Decoder struct {
	normalizer Normalizer
}

// NewDecoder creates a decoder normalizing through n.
func NewDecoder(n Normalizer) *Decoder {
	return &Decoder{normalizer: n}
}

// DecodeCreate validates a complete input and returns the place to create.
func (d *Decoder) DecodeCreate(in PlaceInput) (models.PlaceDraft, error) {
	if err := requireAll(in); err != nil {
		return models.PlaceDraft{}, err
	}
	name, err := cleanName(*in.Name)
	if err != nil {
		return models.PlaceDraft{}, err
	}
	description, err := cleanDescription(*in.Description)
	if err != nil {
		return models.PlaceDraft{}, err
	}

	geom, err := d.point(*in.Longitude, *in.Latitude, in.SRID)
	if err != nil {
		return models.PlaceDraft{}, err
	}

	return models.PlaceDraft{
		Name:        name,
		Description: description,
		Geom:        geom,
	}, nil
}

// DecodeReplace validates a full update: every field of a create is required.
func (d *Decoder) DecodeReplace(in PlaceInput) (models.PlaceUpdate, error) {
	draft, err := d.DecodeCreate(in)
	if err != nil {
		return models.PlaceUpdate{}, err
	}
	return models.PlaceUpdate{
		Name:        &draft.Name,
		Description: &draft.Description,
		Geom:        &draft.Geom,
	}, nil
}

// DecodePartial validates a partial update. Only supplied fields change; the
// geometry changes only when both latitude and longitude are supplied, and a
// lone coordinate or SRID leaves it untouched.
func (d *Decoder) DecodePartial(in PlaceInput) (models.PlaceUpdate, error) {
	var upd models.PlaceUpdate

	if in.Name != nil {
		name, err := cleanName(*in.Name)
		if err != nil {
			return models.PlaceUpdate{}, err
		}
		upd.Name = &name
	}
	if in.Description != nil {
		description, err := cleanDescription(*in.Description)
		if err != nil {
			return models.PlaceUpdate{}, err
		}
		upd.Description = &description
	}
	if in.Latitude != nil && in.Longitude != nil {
		geom, err := d.point(*in.Longitude, *in.Latitude, in.SRID)
		if err != nil {
			return models.PlaceUpdate{}, err
		}
		upd.Geom = &geom
	}

	return upd, nil
}

func (d *Decoder) point(lon, lat float64, srid *int) (models.Point, error) {
	s := d.normalizer.CanonicalSRID()
	if srid != nil {
		s = *srid
	}

	geom, err := d.normalizer.Normalize(lon, lat, s)
	if err != nil {
		return models.Point{}, fmt.Errorf("presenter: %w", err)
	}
	return geom, nil
}

func requireAll(in PlaceInput) error {
	switch {
	case in.Name == nil:
		return &models.ValidationError{Field: "name", Message: "This field is required."}
	case in.Description == nil:
		return &models.ValidationError{Field: "description", Message: "This field is required."}
	case in.Latitude == nil:
		return &models.ValidationError{Field: "latitude", Message: "This field is required."}
	case in.Longitude == nil:
		return &models.ValidationError{Field: "longitude", Message: "This field is required."}
	}
	return nil
}

// cleanName trims surrounding whitespace and checks the result is 1..255 characters.
func cleanName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", &models.ValidationError{Field: "name", Message: "This field may not be blank."}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", &models.ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("Ensure this field has no more than %d characters.", maxNameLength),
		}
	}
	return name, nil
}

func cleanDescription(raw string) (string, error) {
	description := strings.TrimSpace(raw)
	if description == "" {
		return "", &models.ValidationError{Field: "description", Message: "This field may not be blank."}
	}
	return description, nil
}
