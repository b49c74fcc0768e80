package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"geoplaces-api/internal/metrics"
	"geoplaces-api/internal/models"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("geoplaces-api/service")

// PlaceService contains the core business logic for place CRUD operations
type PlaceService struct {
	repo     PlaceRepository
	cache    PlaceCache
	events   EventPublisher
	cacheTTL time.Duration
	now      func() time.Time
}

// PlaceRepository interface for dependency injection
type PlaceRepository interface {
	Create(ctx context.Context, draft models.PlaceDraft) (*models.Place, error)
	Get(ctx context.Context, id int64) (*models.Place, error)
	List(ctx context.Context) ([]models.Place, error)
	Update(ctx context.Context, id int64, upd models.PlaceUpdate) (*models.Place, error)
	Delete(ctx context.Context, id int64) error
}

// PlaceCache stores rendered places by key. It may be nil.
type PlaceCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher announces place changes. It may be nil.
type EventPublisher interface {
	PublishPlaceEvent(ctx context.Context, event models.PlaceEvent) error
}

// NewPlaceService creates a new place service. cache and events are optional.
func NewPlaceService(repo PlaceRepository, cache PlaceCache, events EventPublisher, cacheTTL time.Duration) *PlaceService {
	return &PlaceService{
		repo:     repo,
		cache:    cache,
		events:   events,
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// List returns every place
func (s *PlaceService) List(ctx context.Context) ([]models.Place, error) {
	ctx, span := tracer.Start(ctx, "PlaceService.List")
	defer span.End()

	places, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list places: %w", err)
	}
	return places, nil
}

// Get returns a single place, reading through the cache when one is configured
func (s *PlaceService) Get(ctx context.Context, id int64) (*models.Place, error) {
	ctx, span := tracer.Start(ctx, "PlaceService.Get")
	defer span.End()

	key := cacheKey(id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key); err == nil {
			var place models.Place
			if err := json.Unmarshal(data, &place); err == nil {
				metrics.CacheHits.WithLabelValues("place_get").Inc()
				return &place, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("place_get").Inc()
	}

	place, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get place %d: %w", id, err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(place); err == nil {
			if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Int64("place_id", id).Msg("cache set failed")
			}
		}
	}

	return place, nil
}

// Create stores a new place
func (s *PlaceService) Create(ctx context.Context, draft models.PlaceDraft) (*models.Place, error) {
	ctx, span := tracer.Start(ctx, "PlaceService.Create")
	defer span.End()

	place, err := s.repo.Create(ctx, draft)
	if err != nil {
		s.countDuplicate(err)
		return nil, fmt.Errorf("service: failed to create place: %w", err)
	}

	metrics.PlaceWrites.WithLabelValues(models.PlaceCreated).Inc()
	zerolog.Ctx(ctx).Info().Int64("place_id", place.ID).Str("name", place.Name).Msg("place created")
	s.publish(ctx, models.PlaceCreated, *place)

	return place, nil
}

// Update changes the supplied fields of an existing place
func (s *PlaceService) Update(ctx context.Context, id int64, upd models.PlaceUpdate) (*models.Place, error) {
	ctx, span := tracer.Start(ctx, "PlaceService.Update")
	defer span.End()

	place, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		s.countDuplicate(err)
		return nil, fmt.Errorf("service: failed to update place %d: %w", id, err)
	}

	s.invalidate(ctx, id)
	metrics.PlaceWrites.WithLabelValues(models.PlaceUpdated).Inc()
	zerolog.Ctx(ctx).Info().Int64("place_id", id).Bool("moved", upd.Geom != nil).Msg("place updated")
	s.publish(ctx, models.PlaceUpdated, *place)

	return place, nil
}

// Delete removes a place
func (s *PlaceService) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "PlaceService.Delete")
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service: failed to delete place %d: %w", id, err)
	}

	s.invalidate(ctx, id)
	metrics.PlaceWrites.WithLabelValues(models.PlaceDeleted).Inc()
	zerolog.Ctx(ctx).Info().Int64("place_id", id).Msg("place deleted")
	s.publish(ctx, models.PlaceDeleted, models.Place{ID: id})

	return nil
}

func (s *PlaceService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Int64("place_id", id).Msg("cache invalidation failed")
	}
}

// publish is best effort: the write already happened.
func (s *PlaceService) publish(ctx context.Context, eventType string, place models.Place) {
	if s.events == nil {
		return
	}
	event := models.PlaceEvent{Type: eventType, Place: place, OccurredAt: s.now().UTC()}
	if err := s.events.PublishPlaceEvent(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event", eventType).Int64("place_id", place.ID).Msg("publish place event failed")
	}
}

func (s *PlaceService) countDuplicate(err error) {
	if errors.Is(err, models.ErrDuplicateGeometry) {
		metrics.DuplicateGeometryRejections.Inc()
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("places:id:%d", id)
}
