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

type VariantHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	logger *logger.Logger
}

func NewVariantHandler(db *gorm.DB, cfg *config.Config, logger *logger.Logger) *VariantHandler {
	return &VariantHandler{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

func (h *VariantHandler) List(c *gin.Context) {
	var variants []models.Variant

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset := (page - 1) * limit

	offerID := c.Query("offer_id")
	variantID := c.Query("variant_id")

	query := h.db.Table(h.cfg.VariantTable)

	if offerID != "" {
		query = query.Where("offer_id = ?", offerID)
	}

	if variantID != "" {
		query = query.Where("variant_id = ?", variantID)
	}

	var total int64
	query.Count(&total)

	if err := query.Order("variant_id").Offset(offset).Limit(limit).Find(&variants).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch variants"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": variants,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}
