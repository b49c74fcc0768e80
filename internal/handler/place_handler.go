package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"geoplaces-api/internal/models"
	"geoplaces-api/internal/presenter"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	msgMissingCoordinates = "You have to provide latitude and longitude."
	msgInvalidCoordinates = "You have to provide valid latitude and longitude."
	msgNoNearestPoint     = "No nearest point found."
	msgNotFound           = "Not found."
	msgDuplicateGeometry  = "A place with the same coordinates already exists."
	msgInvalidDistance    = "Distance must be a non-negative integer number of meters."
	msgInvalidSRID        = "Unknown spatial reference system."
	msgOutOfRange         = "Latitude must be within [-90, 90] and longitude within [-180, 180]."
	msgInternal           = "internal server error"
)

// PlaceHandler handles place CRUD and nearest-place requests
type PlaceHandler struct {
	places  PlaceService
	nearest NearestService
	decoder PlaceDecoder
}

// PlaceService interface for dependency injection
type PlaceService interface {
	List(ctx context.Context) ([]models.Place, error)
	Get(ctx context.Context, id int64) (*models.Place, error)
	Create(ctx context.Context, draft models.PlaceDraft) (*models.Place, error)
	Update(ctx context.Context, id int64, upd models.PlaceUpdate) (*models.Place, error)
	Delete(ctx context.Context, id int64) error
}

// NearestService interface for dependency injection
type NearestService interface {
	FindNearest(ctx context.Context, q models.NearestQuery) (*models.PlaceWithDistance, error)
}

// PlaceDecoder turns request bodies into normalized place values
type PlaceDecoder interface {
	DecodeCreate(in presenter.PlaceInput) (models.PlaceDraft, error)
	DecodeReplace(in presenter.PlaceInput) (models.PlaceUpdate, error)
	DecodePartial(in presenter.PlaceInput) (models.PlaceUpdate, error)
}

// NewPlaceHandler creates a new place handler
func NewPlaceHandler(places PlaceService, nearest NearestService, decoder PlaceDecoder) *PlaceHandler {
	return &PlaceHandler{places: places, nearest: nearest, decoder: decoder}
}

// RegisterRoutes mounts the place routes under /api/geo/places
func RegisterRoutes(r gin.IRouter, h *PlaceHandler) {
	places := r.Group("/api/geo/places")
	places.GET("", h.List)
	places.POST("", h.Create)
	places.GET("/nearest", h.FindNearest)
	places.GET("/:id", h.Retrieve)
	places.PUT("/:id", h.Replace)
	places.PATCH("/:id", h.PartialUpdate)
	places.DELETE("/:id", h.Delete)
}

// List handles GET /api/geo/places requests
//
//	@Summary	List places
//	@Tags		places
//	@Produce	json
//	@Success	200	{array}	presenter.PlaceRecord
//	@Router		/api/geo/places [get]
func (h *PlaceHandler) List(c *gin.Context) {
	places, err := h.places.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.RenderList(places))
}

// Retrieve handles GET /api/geo/places/:id requests
//
//	@Summary	Get a place
//	@Tags		places
//	@Produce	json
//	@Param		id	path		int	true	"Place ID"
//	@Success	200	{object}	presenter.PlaceRecord
//	@Failure	404	{object}	map[string]string
//	@Router		/api/geo/places/{id} [get]
func (h *PlaceHandler) Retrieve(c *gin.Context) {
	id, ok := placeID(c)
	if !ok {
		return
	}

	place, err := h.places.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.Render(presenter.Retrieve, *place))
}

// Create handles POST /api/geo/places requests
//
//	@Summary	Create a place
//	@Tags		places
//	@Accept		json
//	@Produce	json
//	@Param		place	body		presenter.PlaceInput	true	"Place"
//	@Success	201		{object}	presenter.PlaceRecord
//	@Failure	400		{object}	map[string]string
//	@Router		/api/geo/places [post]
func (h *PlaceHandler) Create(c *gin.Context) {
	var in presenter.PlaceInput
	if !bindInput(c, &in) {
		return
	}

	draft, err := h.decoder.DecodeCreate(in)
	if err != nil {
		h.fail(c, err)
		return
	}

	place, err := h.places.Create(c.Request.Context(), draft)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, presenter.Render(presenter.Create, *place))
}

// Replace handles PUT /api/geo/places/:id requests
//
//	@Summary	Replace a place
//	@Tags		places
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"Place ID"
//	@Param		place	body		presenter.PlaceInput	true	"Place"
//	@Success	200		{object}	presenter.PlaceRecord
//	@Failure	400		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/geo/places/{id} [put]
func (h *PlaceHandler) Replace(c *gin.Context) {
	h.update(c, h.decoder.DecodeReplace)
}

// PartialUpdate handles PATCH /api/geo/places/:id requests
//
//	@Summary	Update some fields of a place
//	@Tags		places
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"Place ID"
//	@Param		place	body		presenter.PlaceInput	true	"Fields to change"
//	@Success	200		{object}	presenter.PlaceRecord
//	@Failure	400		{object}	map[string]string
//	@Failure	404		{object}	map[string]string
//	@Router		/api/geo/places/{id} [patch]
func (h *PlaceHandler) PartialUpdate(c *gin.Context) {
	h.update(c, h.decoder.DecodePartial)
}

func (h *PlaceHandler) update(c *gin.Context, decode func(presenter.PlaceInput) (models.PlaceUpdate, error)) {
	id, ok := placeID(c)
	if !ok {
		return
	}

	// The place must exist before its input is judged.
	current, err := h.places.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	var in presenter.PlaceInput
	if !bindOptionalInput(c, &in) {
		return
	}

	upd, err := decode(in)
	if err != nil {
		h.fail(c, err)
		return
	}

	if upd.IsEmpty() {
		c.JSON(http.StatusOK, presenter.Render(presenter.Update, *current))
		return
	}

	place, err := h.places.Update(c.Request.Context(), id, upd)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, presenter.Render(presenter.Update, *place))
}

// Delete handles DELETE /api/geo/places/:id requests
//
//	@Summary	Delete a place
//	@Tags		places
//	@Param		id	path	int	true	"Place ID"
//	@Success	204
//	@Failure	404	{object}	map[string]string
//	@Router		/api/geo/places/{id} [delete]
func (h *PlaceHandler) Delete(c *gin.Context) {
	id, ok := placeID(c)
	if !ok {
		return
	}

	if err := h.places.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// FindNearest handles GET /api/geo/places/nearest requests
//
//	@Summary	Find the place nearest to a point
//	@Tags		places
//	@Produce	json
//	@Param		latitude	query		number	true	"Reference latitude"
//	@Param		longitude	query		number	true	"Reference longitude"
//	@Param		distance	query		integer	false	"Maximum distance in meters"
//	@Success	200			{object}	presenter.PlaceRecord
//	@Failure	400			{string}	string
//	@Failure	404			{object}	map[string]string
//	@Router		/api/geo/places/nearest [get]
func (h *PlaceHandler) FindNearest(c *gin.Context) {
	q := models.NearestQuery{
		Latitude:    queryValue(c, "latitude"),
		Longitude:   queryValue(c, "longitude"),
		MaxDistance: queryValue(c, "distance"),
	}

	nearest, err := h.nearest.FindNearest(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}

	if nearest == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgNoNearestPoint})
		return
	}

	c.JSON(http.StatusOK, presenter.RenderNearest(*nearest))
}

// fail maps a service or decoder error onto its HTTP response.
func (h *PlaceHandler) fail(c *gin.Context, err error) {
	var validation *models.ValidationError

	switch {
	case errors.Is(err, models.ErrMissingParameters):
		c.JSON(http.StatusBadRequest, msgMissingCoordinates)
	case errors.Is(err, models.ErrInvalidParameters):
		c.JSON(http.StatusBadRequest, msgInvalidCoordinates)
	case errors.Is(err, models.ErrInvalidDistance):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidDistance})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": msgNotFound})
	case errors.Is(err, models.ErrDuplicateGeometry):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgDuplicateGeometry})
	case errors.Is(err, models.ErrInvalidReferenceSystem):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidSRID})
	case errors.Is(err, models.ErrOutOfRangeCoordinate):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgOutOfRange})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

// placeID parses the :id path parameter. Anything that is not an integer
// cannot name a place, so it is answered like a missing one.
func placeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": msgNotFound})
		return 0, false
	}
	return id, true
}

func bindInput(c *gin.Context, in *presenter.PlaceInput) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

// bindOptionalInput is bindInput for update bodies, where an empty body is an
// empty input.
func bindOptionalInput(c *gin.Context, in *presenter.PlaceInput) bool {
	err := c.ShouldBindJSON(in)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
	return false
}

func queryValue(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	return &v
}
