package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"geoplaces-api/internal/metrics"
	"geoplaces-api/internal/models"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// NearestService contains the core business logic for nearest-place queries
type NearestService struct {
	repo DistanceRepository
	srid int
}

// DistanceRepository interface for dependency injection
type DistanceRepository interface {
	AnnotateDistances(ctx context.Context, ref models.ReferencePoint) ([]models.PlaceWithDistance, error)
}

// NewNearestService creates a new nearest-place service measuring from points
// in the canonical SRID
func NewNearestService(repo DistanceRepository, canonicalSRID int) *NearestService {
	return &NearestService{repo: repo, srid: canonicalSRID}
}

// FindNearest returns the place closest to the queried coordinates, optionally
// bounded by a maximum distance in meters. A nil result with a nil error means
// no place matched.
func (s *NearestService) FindNearest(ctx context.Context, q models.NearestQuery) (*models.PlaceWithDistance, error) {
	ctx, span := tracer.Start(ctx, "NearestService.FindNearest")
	defer span.End()

	if q.Latitude == nil || q.Longitude == nil {
		metrics.NearestQueries.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("service: %w", models.ErrMissingParameters)
	}

	lat, latErr := parseNumeral(*q.Latitude)
	lon, lonErr := parseNumeral(*q.Longitude)
	if latErr != nil || lonErr != nil {
		metrics.NearestQueries.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("service: %w", models.ErrInvalidParameters)
	}

	maxDistance, bounded, err := parseMaxDistance(q.MaxDistance)
	if err != nil {
		metrics.NearestQueries.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("service: %w", err)
	}

	ref := models.ReferencePoint{Longitude: lon, Latitude: lat, SRID: s.srid}
	span.SetAttributes(
		attribute.Float64("reference.longitude", lon),
		attribute.Float64("reference.latitude", lat),
		attribute.Bool("bounded", bounded),
	)

	annotated, err := s.repo.AnnotateDistances(ctx, ref)
	if err != nil {
		metrics.NearestQueries.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "annotate distances")
		return nil, fmt.Errorf("service: failed to annotate distances: %w", err)
	}

	var nearest *models.PlaceWithDistance
	for i := range annotated {
		candidate := annotated[i]
		if bounded && candidate.Distance > float64(maxDistance) {
			continue
		}
		if nearest == nil || candidate.Distance < nearest.Distance {
			nearest = &candidate
		}
	}

	if nearest == nil {
		metrics.NearestQueries.WithLabelValues("not_found").Inc()
		zerolog.Ctx(ctx).Debug().
			Float64("latitude", lat).
			Float64("longitude", lon).
			Int("candidates", len(annotated)).
			Msg("no nearest place found")
		return nil, nil
	}

	metrics.NearestQueries.WithLabelValues("found").Inc()
	return nearest, nil
}

// parseNumeral accepts any finite decimal numeral; range is not checked here.
func parseNumeral(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if unsigned := strings.TrimLeft(s, "+-"); strings.HasPrefix(unsigned, "0x") || strings.HasPrefix(unsigned, "0X") {
		return 0, fmt.Errorf("not a decimal numeral: %q", raw)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite numeral: %q", raw)
	}
	return v, nil
}

// parseMaxDistance treats an absent or empty value as unbounded.
func parseMaxDistance(raw *string) (int64, bool, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return 0, false, nil
	}

	v, err := strconv.ParseInt(strings.TrimSpace(*raw), 10, 64)
	if err != nil || v < 0 {
		return 0, false, models.ErrInvalidDistance
	}
	return v, true, nil
}
