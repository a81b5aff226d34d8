package controllers

import (
	"net/http"

	"gin-catalog/authz"
	"gin-catalog/dto"
	"gin-catalog/middlewares"
	"gin-catalog/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type IItemController interface {
	FindAll(ctx *gin.Context)
	FindByCategory(ctx *gin.Context)
	FindByName(ctx *gin.Context)
	Create(ctx *gin.Context)
	CreateInCategory(ctx *gin.Context)
	Update(ctx *gin.Context)
	Delete(ctx *gin.Context)
}

type ItemController struct {
	service services.ICatalogService
	logger  *zap.Logger
}

func NewItemController(service services.ICatalogService, logger *zap.Logger) IItemController {
	return &ItemController{service: service, logger: logger}
}

func (c *ItemController) FindAll(ctx *gin.Context) {
	items, err := c.service.ListItems(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.NewItemResponses(items)})
}

func (c *ItemController) FindByCategory(ctx *gin.Context) {
	items, err := c.service.ListItemsByCategory(ctx.Request.Context(), ctx.Param("category"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.NewItemResponses(items)})
}

func (c *ItemController) FindByName(ctx *gin.Context) {
	item, err := c.service.GetItem(ctx.Request.Context(), ctx.Param("category"), ctx.Param("item"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.NewItemResponse(*item)})
}

func (c *ItemController) Create(ctx *gin.Context) {
	var input dto.CreateItemInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondInvalidInput(ctx, err)
		return
	}

	c.create(ctx, input)
}

// CreateInCategory creates an item in the category named by the path,
// ignoring any category_id in the body.
func (c *ItemController) CreateInCategory(ctx *gin.Context) {
	var input dto.CreateItemInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondInvalidInput(ctx, err)
		return
	}

	category, err := c.service.GetCategory(ctx.Request.Context(), ctx.Param("category"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}
	input.CategoryID = category.ID

	c.create(ctx, input)
}

func (c *ItemController) create(ctx *gin.Context, input dto.CreateItemInput) {
	principal := middlewares.CurrentPrincipal(ctx)
	if err := authz.Authorize(principal, authz.Create, authz.Item(0)); err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	newItem, err := c.service.CreateItem(ctx.Request.Context(), input, principal.ID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	c.logger.Info("item created", zap.String("item", newItem.Name), zap.Uint("user_id", principal.ID))
	ctx.JSON(http.StatusCreated, gin.H{"data": dto.NewItemResponse(*newItem)})
}

func (c *ItemController) Update(ctx *gin.Context) {
	if !c.authorizeOwner(ctx, authz.Update) {
		return
	}

	var input dto.UpdateItemInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondInvalidInput(ctx, err)
		return
	}

	updatedItem, err := c.service.UpdateItem(ctx.Request.Context(), ctx.Param("category"), ctx.Param("item"), input)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.NewItemResponse(*updatedItem)})
}

func (c *ItemController) Delete(ctx *gin.Context) {
	if !c.authorizeOwner(ctx, authz.Delete) {
		return
	}

	err := c.service.DeleteItem(ctx.Request.Context(), ctx.Param("category"), ctx.Param("item"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.Status(http.StatusOK)
}

// authorizeOwner loads the addressed item and checks that the current
// principal owns it. It writes the error response and returns false when
// the request must stop.
func (c *ItemController) authorizeOwner(ctx *gin.Context, op authz.Operation) bool {
	principal := middlewares.CurrentPrincipal(ctx)
	if principal == nil {
		respondError(ctx, c.logger, authz.Authorize(nil, op, authz.Item(0)))
		return false
	}

	item, err := c.service.GetItem(ctx.Request.Context(), ctx.Param("category"), ctx.Param("item"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return false
	}
	if err := authz.Authorize(principal, op, authz.Item(item.UserID)); err != nil {
		c.logger.Debug("item access denied",
			zap.Stringer("operation", op),
			zap.Uint("user_id", principal.ID),
			zap.Uint("owner_id", item.UserID),
		)
		respondError(ctx, c.logger, err)
		return false
	}
	return true
}
