package service

import (
	"context"
	"time"

	"geoplaces-api/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockPlaceRepository is a mock implementation of the PlaceRepository interface
type MockPlaceRepository struct {
	mock.Mock
}

func (m *MockPlaceRepository) Create(ctx context.Context, draft models.PlaceDraft) (*models.Place, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(*models.Place), args.Error(1)
}

func (m *MockPlaceRepository) Get(ctx context.Context, id int64) (*models.Place, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Place), args.Error(1)
}

func (m *MockPlaceRepository) List(ctx context.Context) ([]models.Place, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Place), args.Error(1)
}

func (m *MockPlaceRepository) Update(ctx context.Context, id int64, upd models.PlaceUpdate) (*models.Place, error) {
	args := m.Called(ctx, id, upd)
	return args.Get(0).(*models.Place), args.Error(1)
}

func (m *MockPlaceRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockDistanceRepository is a mock implementation of the DistanceRepository interface
type MockDistanceRepository struct {
	mock.Mock
}

func (m *MockDistanceRepository) AnnotateDistances(ctx context.Context, ref models.ReferencePoint) ([]models.PlaceWithDistance, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).([]models.PlaceWithDistance), args.Error(1)
}

// MockPlaceCache is a mock implementation of the PlaceCache interface
type MockPlaceCache struct {
	mock.Mock
}

func (m *MockPlaceCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPlaceCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockPlaceCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of the EventPublisher interface
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishPlaceEvent(ctx context.Context, event models.PlaceEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
