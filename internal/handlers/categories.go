package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/socialhub-app/backend/internal/database"
	"github.com/socialhub-app/backend/internal/models"
	"github.com/socialhub-app/backend/internal/util"
	"gorm.io/gorm"
)

// CreateCategory creates a new post category
// POST /api/v1/categories
func (h *Handlers) CreateCategory(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required,min=1,max=50"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		util.RespondBadRequest(c, "category name is required")
		return
	}

	var existing models.Category
	err := database.DB.Where("LOWER(name) = LOWER(?)", name).First(&existing).Error
	if err == nil {
		util.RespondConflict(c, "category already exists")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		util.RespondInternalError(c, "failed to check category")
		return
	}

	category := models.Category{
		Name:        name,
		Description: req.Description,
	}
	if err := database.DB.Create(&category).Error; err != nil {
		util.RespondInternalError(c, "failed to create category")
		return
	}

	c.JSON(http.StatusCreated, category)
}

// ListCategories returns all categories
// GET /api/v1/categories
func (h *Handlers) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := database.DB.Order("name asc").Find(&categories).Error; err != nil {
		util.RespondInternalError(c, "failed to list categories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": categories})
}

// GetCategory returns a single category
// GET /api/v1/categories/:id
func (h *Handlers) GetCategory(c *gin.Context) {
	categoryID, ok := util.ParseUintParam(c, "id")
	if !ok {
		return
	}

	var category models.Category
	if err := database.DB.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondNotFound(c, "category")
			return
		}
		util.RespondInternalError(c, "failed to load category")
		return
	}

	c.JSON(http.StatusOK, category)
}
