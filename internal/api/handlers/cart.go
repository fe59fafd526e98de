package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/api/middleware"
	"github.com/modamarket/storefront/internal/cart"
	"github.com/modamarket/storefront/internal/service"
	"github.com/modamarket/storefront/pkg/errors"
)

// AddItemRequest adds a product to the session cart
type AddItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Size      *string `json:"size,omitempty"`
}

// UpdateItemRequest changes a line item's quantity and/or size
type UpdateItemRequest struct {
	Quantity *int    `json:"quantity,omitempty"`
	Size     *string `json:"size,omitempty"`
}

// HandleGetCart handles GET /v1/cart
func HandleGetCart(carts *cart.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.RequireSession(c)
		if !ok {
			return
		}

		store := carts.Get(c.Request.Context(), session)
		c.JSON(http.StatusOK, store.Snapshot())
	}
}

// HandleAddItem handles POST /v1/cart/items
func HandleAddItem(carts *cart.Manager, catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.RequireSession(c)
		if !ok {
			return
		}

		var req AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}

		product, err := catalog.GetProduct(c.Request.Context(), productID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			logger.Error("Failed to get product", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		store := carts.Get(c.Request.Context(), session)
		store.AddItem(c.Request.Context(), product, req.Quantity, req.Size)

		c.JSON(http.StatusOK, store.Snapshot())
	}
}

// HandleUpdateItem handles PATCH /v1/cart/items/:productId
func HandleUpdateItem(carts *cart.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.RequireSession(c)
		if !ok {
			return
		}

		productID, err := uuid.Parse(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}

		var req UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		store := carts.Get(c.Request.Context(), session)

		if req.Quantity != nil {
			if err := store.UpdateQuantity(c.Request.Context(), productID, *req.Quantity); err != nil {
				switch err.(type) {
				case *errors.ErrValidation:
					c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				case *errors.ErrNotFound:
					c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
				default:
					logger.Error("Failed to update quantity", zap.Error(err))
					c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				}
				return
			}
		}

		if req.Size != nil {
			if err := store.UpdateSize(c.Request.Context(), productID, *req.Size); err != nil {
				if _, ok := err.(*errors.ErrNotFound); ok {
					c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
					return
				}
				logger.Error("Failed to update size", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
		}

		c.JSON(http.StatusOK, store.Snapshot())
	}
}

// HandleRemoveItem handles DELETE /v1/cart/items/:productId
func HandleRemoveItem(carts *cart.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.RequireSession(c)
		if !ok {
			return
		}

		productID, err := uuid.Parse(c.Param("productId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}

		store := carts.Get(c.Request.Context(), session)
		store.RemoveItem(c.Request.Context(), productID)

		c.JSON(http.StatusOK, store.Snapshot())
	}
}

// HandleClearCart handles DELETE /v1/cart
func HandleClearCart(carts *cart.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.RequireSession(c)
		if !ok {
			return
		}

		store := carts.Get(c.Request.Context(), session)
		store.Clear(c.Request.Context())

		c.JSON(http.StatusOK, store.Snapshot())
	}
}
