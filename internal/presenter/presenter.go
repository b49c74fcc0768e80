// Package presenter maps between wire-level place records and the internal
// place models.
package presenter

import (
	"strings"

	"geoplaces-api/internal/models"
)

// summaryWords is how many words of a description list output keeps.
const summaryWords = 10

// Operation names the API operation a record is rendered for.
type Operation int

const (
	List Operation = iota
	Retrieve
	Create
	Update
	Delete
	FindNearest
)

func (op Operation) String() string {
	switch op {
	case List:
		return "list"
	case Retrieve:
		return "retrieve"
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case FindNearest:
		return "find_nearest"
	default:
		return "unknown"
	}
}

// PlaceRecord is the output representation of a place. Distance is only set
// for nearest-place results and is omitted from JSON otherwise.
type PlaceRecord struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Distance    *float64 `json:"distance,omitempty"`
}

// Renderer turns a place into its output record.
type Renderer func(models.Place) PlaceRecord

var renderers = map[Operation]Renderer{
	List:     renderSummary,
	Retrieve: renderDetail,
	Create:   renderDetail,
	Update:   renderDetail,
}

// rendererFor returns the renderer for op. Delete has no body and
// FindNearest renders through RenderNearest, so neither has a renderer.
func rendererFor(op Operation) (Renderer, bool) {
	r, ok := renderers[op]
	return r, ok
}

// Render renders p for op, falling back to the detail representation.
func Render(op Operation, p models.Place) PlaceRecord {
	if r, ok := rendererFor(op); ok {
		return r(p)
	}
	return renderDetail(p)
}

// RenderList renders places in their summary form.
func RenderList(places []models.Place) []PlaceRecord {
	records := make([]PlaceRecord, 0, len(places))
	for _, p := range places {
		records = append(records, Render(List, p))
	}
	return records
}

// RenderNearest renders a nearest-place result including its distance.
func RenderNearest(p models.PlaceWithDistance) PlaceRecord {
	record := renderDetail(p.Place)
	distance := p.Distance
	record.Distance = &distance
	return record
}

func renderDetail(p models.Place) PlaceRecord {
	return PlaceRecord{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Latitude:    p.Geom.Latitude(),
		Longitude:   p.Geom.Longitude(),
	}
}

func renderSummary(p models.Place) PlaceRecord {
	record := renderDetail(p)
	record.Description = Truncate(p.Description, summaryWords)
	return record
}

// Truncate keeps the first n whitespace-delimited words of s, joined by
// single spaces.
func Truncate(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
