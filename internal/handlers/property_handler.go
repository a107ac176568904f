package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/hearth/api/internal/errors"
	"github.com/stwalsh4118/hearth/api/internal/filter"
	"github.com/stwalsh4118/hearth/api/internal/middleware"
	"github.com/stwalsh4118/hearth/api/internal/models"
	"github.com/stwalsh4118/hearth/api/internal/services"
)

// PropertyHandler handles stateless property reads.
type PropertyHandler struct {
	service services.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(service services.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		service: service,
	}
}

// SearchRequest represents the query parameters for the property search endpoint.
// Strict rejects a malformed priceRange instead of ignoring it.
type SearchRequest struct {
	MinPrice   *float64 `form:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice   *float64 `form:"maxPrice" binding:"omitempty,gte=0"`
	Location   string   `form:"location"`
	Type       string   `form:"type" binding:"omitempty,oneof=house apartment condo villa"`
	PriceRange string   `form:"priceRange"`
	Bedrooms   int      `form:"bedrooms" binding:"omitempty,gte=0,lte=20"`
	Bathrooms  int      `form:"bathrooms" binding:"omitempty,gte=0,lte=20"`
	Strict     bool     `form:"strict"`
}

// Criteria converts the request into filter criteria over the defaults.
func (r SearchRequest) Criteria() filter.Criteria {
	return filter.DefaultCriteria().Apply(filter.Patch{
		Location:     &r.Location,
		PropertyType: &r.Type,
		PriceRange:   &r.PriceRange,
		MinPrice:     r.MinPrice,
		MaxPrice:     r.MaxPrice,
		MinBedrooms:  &r.Bedrooms,
		MinBathrooms: &r.Bathrooms,
	})
}

// PropertyResponse wraps a single property.
type PropertyResponse struct {
	Property *models.Property `json:"property"`
}

// List handles GET /api/v1/properties.
func (h *PropertyHandler) List(c *gin.Context) {
	var req SearchRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.service.Search(c.Request.Context(), req.Criteria(), req.Strict)
	if err != nil {
		if errors.Is(err, filter.ErrInvalidPriceRange) {
			apierrors.BadRequest(c, "Invalid price range", map[string]interface{}{
				"priceRange": req.PriceRange,
			})
			return
		}
		apierrors.BadGateway(c, "Could not load properties", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get handles GET /api/v1/properties/:id.
// Sold and rented listings answer 410 with their status in the details.
func (h *PropertyHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	property, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		var unavailable *services.UnavailableError
		switch {
		case errors.Is(err, services.ErrPropertyNotFound):
			apierrors.NotFound(c, "Property not found")
		case errors.As(err, &unavailable):
			apierrors.Gone(c, "This property has been "+string(unavailable.Status)+".", map[string]interface{}{
				"status": string(unavailable.Status),
			})
		case errors.Is(err, services.ErrInvalidPropertyID):
			apierrors.BadRequest(c, "Invalid property id", nil)
		default:
			apierrors.BadGateway(c, "Could not load property", err)
		}
		return
	}

	c.JSON(http.StatusOK, PropertyResponse{Property: property})
}

// bindQuery binds query parameters into req, writing the error response on failure.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		writeBindError(c, err, "Invalid query parameters")
		return false
	}
	return true
}

// bindJSON binds the request body into req, writing the error response on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeBindError(c, err, "Invalid request body")
		return false
	}
	return true
}

func writeBindError(c *gin.Context, err error, message string) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apierrors.ValidationError(c, validationErrors)
		return
	}
	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Request binding failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	apierrors.BadRequest(c, message, nil)
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		apierrors.BadRequest(c, "Invalid property id", map[string]interface{}{
			name: c.Param(name),
		})
		return 0, false
	}
	return id, true
}
