package handlers

import (
	"net/http"
	"strconv"

	"preorder/internal/config"
	"preorder/internal/logger"
	"preorder/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type OfferHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	logger *logger.Logger
}

func NewOfferHandler(db *gorm.DB, cfg *config.Config, logger *logger.Logger) *OfferHandler {
	return &OfferHandler{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

func (h *OfferHandler) List(c *gin.Context) {
	var offers []models.Offer

	// Pagination
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	// Filters
	status := c.Query("status")
	search := c.Query("search")

	query := h.db.Table(h.cfg.OfferTable)

	if status != "" {
		query = query.Where("status = ?", status)
	}

	if search != "" {
		query = query.Where("internal_name LIKE ? OR container_name LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	if err := query.Order("internal_name").Offset(offset).Limit(limit).Find(&offers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": offers,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *OfferHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var offer models.Offer
	if err := h.db.Table(h.cfg.OfferTable).First(&offer, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Offer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offer"})
		return
	}

	var variants []models.Variant
	if err := h.db.Table(h.cfg.VariantTable).Where("offer_id = ?", id).Order("variant_id").Find(&variants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch offer variants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": offer, "variants": variants})
}

// ListBatch exposes the daily batch snapshot for run auditing.
func (h *OfferHandler) ListBatch(c *gin.Context) {
	var offers []models.Offer
	if err := h.db.Table(h.cfg.BatchOfferTable).Order("internal_name").Find(&offers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch batch offers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": offers})
}
