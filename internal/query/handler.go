package query

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coyotlinden/opentsdb/internal/core/aggregate"
	httperr "github.com/coyotlinden/opentsdb/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the query API routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/api/v1/query", s.QueryHandler)
	r.GET("/api/v1/aggregators", s.AggregatorsHandler)
}

// QueryHandler handles POST /api/v1/query.
func (s *Service) QueryHandler(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.Execute(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, aggregate.ErrNotFound) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpUnknownAggregatorError,
				Message:   "Unsupported aggregator",
				Details:   err.Error(),
			})
			return
		}
		if errors.Is(err, ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidQueryError,
				Message:   "Invalid query",
				Details:   err.Error(),
			})
			return
		}

		slog.Error("Query execution failed", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to execute query",
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// AggregatorsHandler handles GET /api/v1/aggregators: the introspection
// surface for query validation and help text.
func (s *Service) AggregatorsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"aggregators": s.registry.Names()})
}
