package search

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gscgateway/internal/app/middleware"
	"gscgateway/internal/service/session"
	"gscgateway/pkg/logger"
	"gscgateway/pkg/validator"
)

type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, l logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  l,
	}
}

// SitesHandler lists the signed-in user's properties.
func (h *Handler) SitesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		artifact, ok := middleware.ArtifactFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		sites, err := h.service.Sites(c.Request.Context(), artifact)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, sites)
	}
}

// DataHandler returns the 10-day date series for a property.
func (h *Handler) DataHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		artifact, req, ok := h.bindSeries(c)
		if !ok {
			return
		}

		rows, err := h.service.DateSeries(c.Request.Context(), artifact, req.SiteURL, req.PageFilter)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// URLsHandler returns per-page totals ordered by clicks.
func (h *Handler) URLsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		artifact, req, ok := h.bindSeries(c)
		if !ok {
			return
		}

		rows, err := h.service.URLSeries(c.Request.Context(), artifact, req.SiteURL, req.PageFilter)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

// URLTimeSeriesHandler returns the date series of a single page.
func (h *Handler) URLTimeSeriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		artifact, ok := middleware.ArtifactFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		var req TimeSeriesRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			h.writeError(c, validator.ErrInvalidInput)
			return
		}
		req.SiteURL = validator.SanitizeString(req.SiteURL)
		req.PageURL = validator.SanitizeString(req.PageURL)

		if err := validator.ValidateSiteURL(req.SiteURL); err != nil {
			h.writeError(c, err)
			return
		}
		if err := validator.ValidatePageURL(req.PageURL); err != nil {
			h.writeError(c, err)
			return
		}

		rows, err := h.service.URLTimeSeries(c.Request.Context(), artifact, req.SiteURL, req.PageURL)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func (h *Handler) bindSeries(c *gin.Context) (*session.Artifact, SeriesRequest, bool) {
	var req SeriesRequest

	artifact, ok := middleware.ArtifactFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, req, false
	}

	if err := c.ShouldBindQuery(&req); err != nil {
		h.writeError(c, validator.ErrInvalidInput)
		return nil, req, false
	}
	req.SiteURL = validator.SanitizeString(req.SiteURL)
	req.PageFilter = validator.SanitizeString(req.PageFilter)

	if err := validator.ValidateSiteURL(req.SiteURL); err != nil {
		h.writeError(c, err)
		return nil, req, false
	}
	if err := validator.ValidatePageFilter(req.PageFilter); err != nil {
		h.writeError(c, err)
		return nil, req, false
	}
	return artifact, req, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, validator.ErrMissingField), errors.Is(err, validator.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUpstreamQuery):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		h.logger.Error(c.Request.Context(), "unexpected gateway error", logger.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
