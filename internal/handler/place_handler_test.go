package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"geoplaces-api/internal/geo"
	"geoplaces-api/internal/models"
	"geoplaces-api/internal/presenter"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPlaceService is a mock implementation of the PlaceService interface
type MockPlaceService struct {
	mock.Mock
}

func (m *MockPlaceService) List(ctx context.Context) ([]models.Place, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Place), args.Error(1)
}

func (m *MockPlaceService) Get(ctx context.Context, id int64) (*models.Place, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Place), args.Error(1)
}

func (m *MockPlaceService) Create(ctx context.Context, draft models.PlaceDraft) (*models.Place, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(*models.Place), args.Error(1)
}

func (m *MockPlaceService) Update(ctx context.Context, id int64, upd models.PlaceUpdate) (*models.Place, error) {
	args := m.Called(ctx, id, upd)
	return args.Get(0).(*models.Place), args.Error(1)
}

func (m *MockPlaceService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockNearestService is a mock implementation of the NearestService interface
type MockNearestService struct {
	mock.Mock
}

func (m *MockNearestService) FindNearest(ctx context.Context, q models.NearestQuery) (*models.PlaceWithDistance, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(*models.PlaceWithDistance), args.Error(1)
}

func newTestDecoder(t *testing.T) *presenter.Decoder {
	t.Helper()
	n, err := geo.NewNormalizer(models.SRIDWGS84)
	require.NoError(t, err)
	return presenter.NewDecoder(n)
}

func chernivtsi() *models.Place {
	return &models.Place{
		ID:          1,
		Name:        "Chernivtsi",
		Description: "Chernivtsi is a city in western Ukraine on the upper course of the Prut river",
		Geom:        models.Point{X: 25.9358, Y: 48.2921, SRID: models.SRIDWGS84},
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) interface{} {
	t.Helper()
	var body interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestPlaceHandler_FindNearest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	str := func(s string) *string { return &s }
	found := &models.PlaceWithDistance{Place: *chernivtsi(), Distance: 1234.5}

	tests := []struct {
		name           string
		rawQuery       string
		expectedQuery  models.NearestQuery
		mockResult     *models.PlaceWithDistance
		mockError      error
		expectedStatus int
		expectedBody   interface{}
	}{
		{
			name:           "missing parameters",
			rawQuery:       "",
			expectedQuery:  models.NearestQuery{},
			mockResult:     nil,
			mockError:      models.ErrMissingParameters,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "You have to provide latitude and longitude.",
		},
		{
			name:           "invalid parameters",
			rawQuery:       "latitude=fffefes&longitude=adfe3334&distance=10",
			expectedQuery:  models.NearestQuery{Latitude: str("fffefes"), Longitude: str("adfe3334"), MaxDistance: str("10")},
			mockResult:     nil,
			mockError:      models.ErrInvalidParameters,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "You have to provide valid latitude and longitude.",
		},
		{
			name:           "invalid distance",
			rawQuery:       "latitude=1&longitude=2&distance=-1",
			expectedQuery:  models.NearestQuery{Latitude: str("1"), Longitude: str("2"), MaxDistance: str("-1")},
			mockResult:     nil,
			mockError:      models.ErrInvalidDistance,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": msgInvalidDistance},
		},
		{
			name:           "no nearest point",
			rawQuery:       "latitude=49.5863&longitude=34.5514&distance=10",
			expectedQuery:  models.NearestQuery{Latitude: str("49.5863"), Longitude: str("34.5514"), MaxDistance: str("10")},
			mockResult:     nil,
			expectedStatus: http.StatusNotFound,
			expectedBody:   map[string]interface{}{"detail": "No nearest point found."},
		},
		{
			name:           "nearest point with distance",
			rawQuery:       "latitude=48.3&longitude=25.9",
			expectedQuery:  models.NearestQuery{Latitude: str("48.3"), Longitude: str("25.9")},
			mockResult:     found,
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"id":          float64(1),
				"name":        "Chernivtsi",
				"description": found.Description,
				"latitude":    48.2921,
				"longitude":   25.9358,
				"distance":    1234.5,
			},
		},
		{
			name:           "service error",
			rawQuery:       "latitude=1&longitude=2",
			expectedQuery:  models.NearestQuery{Latitude: str("1"), Longitude: str("2")},
			mockResult:     nil,
			mockError:      assert.AnError,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   map[string]interface{}{"error": "internal server error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockNearest := new(MockNearestService)
			handler := NewPlaceHandler(new(MockPlaceService), mockNearest, newTestDecoder(t))
			mockNearest.On("FindNearest", mock.Anything, tt.expectedQuery).Return(tt.mockResult, tt.mockError)

			// Create request
			req := httptest.NewRequest(http.MethodGet, "/api/geo/places/nearest", nil)
			req.URL.RawQuery = tt.rawQuery
			w := httptest.NewRecorder()

			// Create Gin context
			c, _ := gin.CreateTestContext(w)
			c.Request = req

			// Execute
			handler.FindNearest(c)

			// Assert
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, decodeBody(t, w))
			mockNearest.AssertExpectations(t)
		})
	}
}

func TestPlaceHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockPlaces := new(MockPlaceService)
	handler := NewPlaceHandler(mockPlaces, new(MockNearestService), newTestDecoder(t))
	mockPlaces.On("List", mock.Anything).Return([]models.Place{*chernivtsi()}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/geo/places", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{
		map[string]interface{}{
			"id":          float64(1),
			"name":        "Chernivtsi",
			"description": "Chernivtsi is a city in western Ukraine on the upper",
			"latitude":    48.2921,
			"longitude":   25.9358,
		},
	}, decodeBody(t, w))
}

func TestPlaceHandler_List_Empty(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mockPlaces := new(MockPlaceService)
	handler := NewPlaceHandler(mockPlaces, new(MockNearestService), newTestDecoder(t))
	mockPlaces.On("List", mock.Anything).Return([]models.Place{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/geo/places", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestPlaceHandler_Retrieve(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		id             string
		mockPlace      *models.Place
		mockError      error
		callsService   bool
		expectedStatus int
		expectedBody   interface{}
	}{
		{
			name:           "found",
			id:             "1",
			mockPlace:      chernivtsi(),
			callsService:   true,
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"id":          float64(1),
				"name":        "Chernivtsi",
				"description": chernivtsi().Description,
				"latitude":    48.2921,
				"longitude":   25.9358,
			},
		},
		{
			name:           "not found",
			id:             "42",
			mockPlace:      nil,
			mockError:      models.ErrNotFound,
			callsService:   true,
			expectedStatus: http.StatusNotFound,
			expectedBody:   map[string]interface{}{"detail": "Not found."},
		},
		{
			name:           "non numeric id",
			id:             "abc",
			expectedStatus: http.StatusNotFound,
			expectedBody:   map[string]interface{}{"detail": "Not found."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPlaces := new(MockPlaceService)
			handler := NewPlaceHandler(mockPlaces, new(MockNearestService), newTestDecoder(t))
			if tt.callsService {
				id := mustParseID(t, tt.id)
				mockPlaces.On("Get", mock.Anything, id).Return(tt.mockPlace, tt.mockError)
			}

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/geo/places/"+tt.id, nil)
			c.Params = gin.Params{{Key: "id", Value: tt.id}}

			handler.Retrieve(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, decodeBody(t, w))
			mockPlaces.AssertExpectations(t)
		})
	}
}

func TestPlaceHandler_Create(t *testing.T) {
	gin.SetMode(gin.TestMode)

	draft := models.PlaceDraft{
		Name:        "Chernivtsi",
		Description: chernivtsi().Description,
		Geom:        models.Point{X: 25.9358, Y: 48.2921, SRID: models.SRIDWGS84},
	}

	tests := []struct {
		name           string
		body           string
		mockPlace      *models.Place
		mockError      error
		callsService   bool
		expectedStatus int
		expectedBody   interface{}
	}{
		{
			name:           "created",
			body:           `{"name":"Chernivtsi","description":"` + draft.Description + `","latitude":48.2921,"longitude":25.9358}`,
			mockPlace:      chernivtsi(),
			callsService:   true,
			expectedStatus: http.StatusCreated,
			expectedBody: map[string]interface{}{
				"id":          float64(1),
				"name":        "Chernivtsi",
				"description": draft.Description,
				"latitude":    48.2921,
				"longitude":   25.9358,
			},
		},
		{
			name:           "duplicate geometry",
			body:           `{"name":"Chernivtsi","description":"` + draft.Description + `","latitude":48.2921,"longitude":25.9358,"srid":4326}`,
			mockPlace:      nil,
			mockError:      models.ErrDuplicateGeometry,
			callsService:   true,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "A place with the same coordinates already exists."},
		},
		{
			name:           "missing field",
			body:           `{"name":"Chernivtsi","latitude":48.2921,"longitude":25.9358}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "description: This field is required."},
		},
		{
			name:           "unknown srid",
			body:           `{"name":"Chernivtsi","description":"x","latitude":48.2921,"longitude":25.9358,"srid":1234}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": msgInvalidSRID},
		},
		{
			name:           "latitude out of range",
			body:           `{"name":"Chernivtsi","description":"x","latitude":91,"longitude":25.9358}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": msgOutOfRange},
		},
		{
			name:           "malformed body",
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "invalid request body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPlaces := new(MockPlaceService)
			handler := NewPlaceHandler(mockPlaces, new(MockNearestService), newTestDecoder(t))
			if tt.callsService {
				mockPlaces.On("Create", mock.Anything, draft).Return(tt.mockPlace, tt.mockError)
			}

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/api/geo/places", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			handler.Create(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, decodeBody(t, w))
			mockPlaces.AssertExpectations(t)
			if !tt.callsService {
				mockPlaces.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPlaceHandler_Update(t *testing.T) {
	gin.SetMode(gin.TestMode)

	name := "Belhorod"
	renamed := chernivtsi()
	renamed.Name = name

	tests := []struct {
		name           string
		method         string
		id             int64
		body           string
		mockCurrent    *models.Place
		mockGetError   error
		expectedUpdate *models.PlaceUpdate
		mockUpdated    *models.Place
		expectedStatus int
		expectedBody   interface{}
	}{
		{
			name:           "patch renames and ignores a lone latitude",
			method:         http.MethodPatch,
			id:             1,
			body:           `{"name":"Belhorod","latitude":50.6}`,
			mockCurrent:    chernivtsi(),
			expectedUpdate: &models.PlaceUpdate{Name: &name},
			mockUpdated:    renamed,
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"id":          float64(1),
				"name":        "Belhorod",
				"description": chernivtsi().Description,
				"latitude":    48.2921,
				"longitude":   25.9358,
			},
		},
		{
			name:           "absent place wins over an invalid body",
			method:         http.MethodPatch,
			id:             999,
			body:           `{"name":""}`,
			mockCurrent:    nil,
			mockGetError:   models.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   map[string]interface{}{"detail": "Not found."},
		},
		{
			name:           "absent place on put",
			method:         http.MethodPut,
			id:             999,
			body:           `{"name":"Belhorod"}`,
			mockCurrent:    nil,
			mockGetError:   models.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   map[string]interface{}{"detail": "Not found."},
		},
		{
			name:           "empty patch body leaves the place unchanged",
			method:         http.MethodPatch,
			id:             1,
			body:           ``,
			mockCurrent:    chernivtsi(),
			expectedStatus: http.StatusOK,
			expectedBody: map[string]interface{}{
				"id":          float64(1),
				"name":        "Chernivtsi",
				"description": chernivtsi().Description,
				"latitude":    48.2921,
				"longitude":   25.9358,
			},
		},
		{
			name:           "put requires every field",
			method:         http.MethodPut,
			id:             1,
			body:           `{"name":"Belhorod"}`,
			mockCurrent:    chernivtsi(),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "description: This field is required."},
		},
		{
			name:           "malformed body",
			method:         http.MethodPatch,
			id:             1,
			body:           `{"name":`,
			mockCurrent:    chernivtsi(),
			expectedStatus: http.StatusBadRequest,
			expectedBody:   map[string]interface{}{"error": "invalid request body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPlaces := new(MockPlaceService)
			handler := NewPlaceHandler(mockPlaces, new(MockNearestService), newTestDecoder(t))
			mockPlaces.On("Get", mock.Anything, tt.id).Return(tt.mockCurrent, tt.mockGetError)
			if tt.expectedUpdate != nil {
				mockPlaces.On("Update", mock.Anything, tt.id, *tt.expectedUpdate).Return(tt.mockUpdated, nil)
			}

			path := "/api/geo/places/" + strconv.FormatInt(tt.id, 10)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(tt.method, path, strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")
			c.Params = gin.Params{{Key: "id", Value: strconv.FormatInt(tt.id, 10)}}

			if tt.method == http.MethodPut {
				handler.Replace(c)
			} else {
				handler.PartialUpdate(c)
			}

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, decodeBody(t, w))
			mockPlaces.AssertExpectations(t)
			if tt.expectedUpdate == nil {
				mockPlaces.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestPlaceHandler_Delete(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{name: "deleted", expectedStatus: http.StatusNoContent},
		{name: "not found", mockError: models.ErrNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPlaces := new(MockPlaceService)
			handler := NewPlaceHandler(mockPlaces, new(MockNearestService), newTestDecoder(t))
			mockPlaces.On("Delete", mock.Anything, int64(5)).Return(tt.mockError)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodDelete, "/api/geo/places/5", nil)
			c.Params = gin.Params{{Key: "id", Value: "5"}}

			handler.Delete(c)
			c.Writer.WriteHeaderNow()

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockPlaces.AssertExpectations(t)
		})
	}
}

func mustParseID(t *testing.T, raw string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, json.Unmarshal([]byte(raw), &id))
	return id
}
