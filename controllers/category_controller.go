package controllers

import (
	"net/http"

	"gin-catalog/dto"
	"gin-catalog/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ICategoryController interface {
	Catalog(ctx *gin.Context)
	FindAll(ctx *gin.Context)
	FindByName(ctx *gin.Context)
	Create(ctx *gin.Context)
	Update(ctx *gin.Context)
	Delete(ctx *gin.Context)
}

type CategoryController struct {
	service services.ICatalogService
	logger  *zap.Logger
}

func NewCategoryController(service services.ICatalogService, logger *zap.Logger) ICategoryController {
	return &CategoryController{service: service, logger: logger}
}

func (c *CategoryController) Catalog(ctx *gin.Context) {
	categories, err := c.service.ListCatalog(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.NewCatalogResponse(categories)})
}

func (c *CategoryController) FindAll(ctx *gin.Context) {
	categories, err := c.service.ListCategories(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.NewCategoryResponses(categories)})
}

func (c *CategoryController) FindByName(ctx *gin.Context) {
	category, err := c.service.GetCategory(ctx.Request.Context(), ctx.Param("category"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.NewCategoryWithItemsResponse(*category)})
}

func (c *CategoryController) Create(ctx *gin.Context) {
	var input dto.CategoryInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondInvalidInput(ctx, err)
		return
	}

	category, err := c.service.CreateCategory(ctx.Request.Context(), input.Label)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	c.logger.Info("category created", zap.String("category", category.Name))
	ctx.JSON(http.StatusCreated, gin.H{"data": dto.NewCategoryResponse(*category)})
}

func (c *CategoryController) Update(ctx *gin.Context) {
	var input dto.CategoryInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondInvalidInput(ctx, err)
		return
	}

	category, err := c.service.UpdateCategory(ctx.Request.Context(), ctx.Param("category"), input.Label)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.NewCategoryResponse(*category)})
}

func (c *CategoryController) Delete(ctx *gin.Context) {
	deleted, err := c.service.DeleteCategory(ctx.Request.Context(), ctx.Param("category"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	c.logger.Info("category deleted",
		zap.String("category", ctx.Param("category")),
		zap.Int64("deleted_items", deleted),
	)
	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted_items": deleted}})
}
