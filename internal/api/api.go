package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"empire-monitor/internal/models"
	"empire-monitor/internal/stats"
)

type APIHandler struct {
	db  *gorm.DB
	agg *stats.Aggregator
}

func SetupRoutes(r *gin.RouterGroup, db *gorm.DB, agg *stats.Aggregator) *APIHandler {
	handler := &APIHandler{db: db, agg: agg}

	r.GET("/stats", handler.GetStats)
	r.GET("/items/recent", handler.RecentItems)
	r.GET("/sales/recent", handler.RecentSales)
	r.GET("/bidders/top", handler.TopBidders)

	return handler
}

// GetStats reports the run counters plus persisted row totals.
func (h *APIHandler) GetStats(c *gin.Context) {
	var itemRows, snapshotRows, updateRows int64
	h.db.Model(&models.Item{}).Count(&itemRows)
	h.db.Model(&models.ItemSnapshot{}).Count(&snapshotRows)
	h.db.Model(&models.AuctionUpdate{}).Count(&updateRows)

	c.JSON(http.StatusOK, gin.H{
		"run": h.agg.Snapshot(),
		"persisted": gin.H{
			"items":           itemRows,
			"snapshots":       snapshotRows,
			"auction_updates": updateRows,
		},
	})
}

func (h *APIHandler) RecentItems(c *gin.Context) {
	var items []models.Item
	if err := h.db.Order("last_seen DESC").Limit(limitParam(c, 20)).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *APIHandler) RecentSales(c *gin.Context) {
	query := h.db.Order("deleted_at DESC").Limit(limitParam(c, 20))
	if saleType := c.Query("sale_type"); saleType != "" {
		query = query.Where("sale_type = ?", saleType)
	}

	var sales []models.DeletedItem
	if err := query.Find(&sales).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func (h *APIHandler) TopBidders(c *gin.Context) {
	var bidders []models.Bidder
	if err := h.db.Order("total_bids DESC").Limit(limitParam(c, 10)).Find(&bidders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bidders": bidders})
}

func limitParam(c *gin.Context, def int) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if err != nil || n < 1 || n > 500 {
		return def
	}
	return n
}
