package api

import (
	"errors"
	"net/http"

	"menuperf/internal/menuengine"
	"menuperf/internal/monitoring"
	"menuperf/internal/pos"

	"github.com/gin-gonic/gin"
)

// SyncProvider reconciles the trailing week of one provider's sales
func (s *Server) SyncProvider(c *gin.Context) {
	res, err := s.syncer.Sync(c.Request.Context(), restaurantID(c), c.Param("provider"))
	if err != nil {
		s.syncError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// SyncAll reconciles every active integration and reports each outcome
func (s *Server) SyncAll(c *gin.Context) {
	outcomes, err := s.syncer.SyncAll(c.Request.Context(), restaurantID(c))
	if err != nil {
		s.log.Error("sync all failed", "restaurant_id", restaurantID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load integrations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": outcomes})
}

// UploadExport reconciles a CSV or XLSX sales export sent as form file "file"
func (s *Server) UploadExport(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	res, err := s.syncer.SyncExport(c.Request.Context(), restaurantID(c), f, header.Filename)
	if err != nil {
		s.syncError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// MenuEngineering returns the classified menu with advice
func (s *Server) MenuEngineering(c *gin.Context) {
	report, err := s.reports.MenuEngineering(c.Request.Context(), restaurantID(c))
	if err != nil {
		s.log.Error("menu engineering failed", "restaurant_id", restaurantID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build menu engineering report"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// FoodCost returns every costed item with its status band
func (s *Server) FoodCost(c *gin.Context) {
	summary, err := s.reports.FoodCost(c.Request.Context(), restaurantID(c))
	if err != nil {
		s.log.Error("food cost failed", "restaurant_id", restaurantID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build food cost report"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) syncError(c *gin.Context, err error) {
	switch menuengine.Status(err) {
	case monitoring.SyncAuthError:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case monitoring.SyncBadRequest:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		var pe *pos.ProviderError
		if errors.As(err, &pe) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("sync failed", "restaurant_id", restaurantID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync failed"})
	}
}
