package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/hearth/api/internal/backend"
	apierrors "github.com/stwalsh4118/hearth/api/internal/errors"
	"github.com/stwalsh4118/hearth/api/internal/middleware"
	"github.com/stwalsh4118/hearth/api/internal/models"
	"github.com/stwalsh4118/hearth/api/internal/services"
)

// SalesHandler handles the admin sales dashboard.
// Every route sits behind middleware.RequireAdmin.
type SalesHandler struct {
	properties services.PropertyService
	sales      services.SalesService
	now        func() time.Time
}

// NewSalesHandler creates a new SalesHandler instance.
func NewSalesHandler(properties services.PropertyService, sales services.SalesService) *SalesHandler {
	return &SalesHandler{
		properties: properties,
		sales:      sales,
		now:        time.Now,
	}
}

// AdminPropertiesRequest represents the query parameters for the admin property table.
type AdminPropertiesRequest struct {
	Filter string `form:"filter" binding:"omitempty,oneof=available sold all"`
}

// ReportRequest represents the query parameters for the report download.
type ReportRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=csv json"`
}

// AdminPropertiesResponse is the admin property table.
type AdminPropertiesResponse struct {
	Filter     string            `json:"filter"`
	Properties []models.Property `json:"properties"`
	Count      int               `json:"count"`
}

// SalesResponse is the current sale log.
type SalesResponse struct {
	Sales []models.SaleRecord `json:"sales"`
	Count int                 `json:"count"`
}

// SaleResponse wraps one sale record.
type SaleResponse struct {
	Sale *models.SaleRecord `json:"sale"`
}

// ChartResponse is the six-month sales chart.
type ChartResponse struct {
	Months []services.ChartPoint `json:"months"`
}

// upstreamContext forwards the admin's bearer token to the listing API.
func upstreamContext(c *gin.Context) context.Context {
	return backend.ContextWithToken(c.Request.Context(), middleware.GetToken(c))
}

// Properties handles GET /api/v1/admin/properties.
func (h *SalesHandler) Properties(c *gin.Context) {
	var req AdminPropertiesRequest
	if !bindQuery(c, &req) {
		return
	}
	if req.Filter == "" {
		req.Filter = string(services.ScopeAll)
	}

	properties, err := h.properties.ListForAdmin(upstreamContext(c), services.AdminScope(req.Filter))
	if err != nil {
		apierrors.BadGateway(c, "Could not load properties", err)
		return
	}

	c.JSON(http.StatusOK, AdminPropertiesResponse{
		Filter:     req.Filter,
		Properties: properties,
		Count:      len(properties),
	})
}

// MarkSold handles POST /api/v1/admin/properties/:id/sold.
func (h *SalesHandler) MarkSold(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	rec, err := h.sales.MarkSold(upstreamContext(c), id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPropertyNotFound):
			apierrors.NotFound(c, "Property not found")
		case errors.Is(err, backend.ErrForbidden):
			apierrors.Forbidden(c, backend.Message(err, "Not allowed to update this property"))
		case errors.Is(err, services.ErrBackendUnavailable):
			apierrors.BadGateway(c, backend.Message(err, "Failed to update property status"), err)
		default:
			apierrors.InternalServerError(c, "Failed to record sale", err)
		}
		return
	}

	c.JSON(http.StatusCreated, SaleResponse{Sale: rec})
}

// List handles GET /api/v1/admin/sales.
func (h *SalesHandler) List(c *gin.Context) {
	records, err := h.sales.List(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load sales", err)
		return
	}
	if records == nil {
		records = []models.SaleRecord{}
	}

	c.JSON(http.StatusOK, SalesResponse{Sales: records, Count: len(records)})
}

// Get handles GET /api/v1/admin/sales/:id.
func (h *SalesHandler) Get(c *gin.Context) {
	rec, err := h.sales.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrSaleNotFound) {
			apierrors.NotFound(c, "Sale record not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load sale record", err)
		return
	}

	c.JSON(http.StatusOK, SaleResponse{Sale: rec})
}

// Delete handles DELETE /api/v1/admin/sales/:id.
func (h *SalesHandler) Delete(c *gin.Context) {
	if err := h.sales.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrSaleNotFound) {
			apierrors.NotFound(c, "Sale record not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to delete sale record", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats handles GET /api/v1/admin/sales/stats.
func (h *SalesHandler) Stats(c *gin.Context) {
	stats, err := h.sales.Stats(c.Request.Context(), h.now())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to compute sales statistics", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Chart handles GET /api/v1/admin/sales/chart.
func (h *SalesHandler) Chart(c *gin.Context) {
	points, err := h.sales.Chart(upstreamContext(c), h.now())
	if err != nil {
		if errors.Is(err, services.ErrBackendUnavailable) {
			apierrors.BadGateway(c, "Could not load properties", err)
			return
		}
		apierrors.InternalServerError(c, "Failed to build sales chart", err)
		return
	}
	c.JSON(http.StatusOK, ChartResponse{Months: points})
}

// Report handles GET /api/v1/admin/sales/report?format=csv|json.
// The report downloads as an attachment; csv is the default.
func (h *SalesHandler) Report(c *gin.Context) {
	var req ReportRequest
	if !bindQuery(c, &req) {
		return
	}
	if req.Format == "" {
		req.Format = string(services.FormatCSV)
	}

	report, err := h.sales.Report(c.Request.Context(), services.ReportFormat(req.Format), h.now())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoSales):
			apierrors.UnprocessableEntity(c, "No sales data available to generate report")
		case errors.Is(err, services.ErrUnsupportedFormat):
			apierrors.BadRequest(c, "Report format must be csv or json", nil)
		default:
			apierrors.InternalServerError(c, "Failed to generate report", err)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.Filename))
	c.Data(http.StatusOK, report.ContentType, report.Body)
}
