package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/api/middleware"
	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/internal/service"
	"github.com/modamarket/storefront/pkg/errors"
)

// ProductRequest creates or replaces a listing
type ProductRequest struct {
	Name         string           `json:"name" binding:"required"`
	Price        decimal.Decimal  `json:"price" binding:"required"`
	Discount     *decimal.Decimal `json:"discount,omitempty"`
	Images       []string         `json:"images"`
	Category     string           `json:"category"`
	Description  string           `json:"description"`
	Sizes        []string         `json:"sizes"`
	FreeShipping bool             `json:"free_shipping"`
}

// UpdateStoreNameRequest renames the seller's store
type UpdateStoreNameRequest struct {
	StoreName string `json:"store_name" binding:"required"`
}

// ProductResponse is the public listing shape
type ProductResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Price        decimal.Decimal  `json:"price"`
	Discount     *decimal.Decimal `json:"discount,omitempty"`
	Images       []string         `json:"images"`
	Category     string           `json:"category"`
	Description  string           `json:"description"`
	Sizes        []string         `json:"sizes"`
	FreeShipping bool             `json:"free_shipping"`
	StoreName    string           `json:"store_name"`
	CreatedAt    string           `json:"created_at"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		Price:        p.Price,
		Discount:     p.Discount,
		Images:       p.Images,
		Category:     p.Category,
		Description:  p.Description,
		Sizes:        p.Sizes,
		FreeShipping: p.FreeShipping,
		StoreName:    p.StoreName,
		CreatedAt:    p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (r *ProductRequest) toDomain() *domain.Product {
	product := &domain.Product{
		Name:         r.Name,
		Price:        r.Price,
		Discount:     r.Discount,
		Images:       r.Images,
		Category:     r.Category,
		Description:  r.Description,
		Sizes:        r.Sizes,
		FreeShipping: r.FreeShipping,
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	if product.Sizes == nil {
		product.Sizes = []string{}
	}
	return product
}

func parsePagination(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// HandleListProducts handles GET /v1/products
func HandleListProducts(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := parsePagination(c)

		products, err := catalog.ListProducts(c.Request.Context(), limit, offset)
		if err != nil {
			logger.Error("Failed to list products", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products": productResponses(products),
			"limit":    limit,
			"offset":   offset,
		})
	}
}

// HandleGetProduct handles GET /v1/products/:id
func HandleGetProduct(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}

		product, err := catalog.GetProduct(c.Request.Context(), id)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			logger.Error("Failed to get product", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, toProductResponse(product))
	}
}

// HandleListStoreProducts handles GET /v1/stores/:name/products
func HandleListStoreProducts(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := parsePagination(c)

		products, err := catalog.ListStoreProducts(c.Request.Context(), c.Param("name"), limit, offset)
		if err != nil {
			logger.Error("Failed to list store products", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products": productResponses(products),
			"limit":    limit,
			"offset":   offset,
		})
	}
}

// HandleListAdminProducts handles GET /v1/admin/products
func HandleListAdminProducts(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := middleware.GetAdminFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit, offset := parsePagination(c)
		products, err := catalog.ListAdminProducts(c.Request.Context(), admin.ID, limit, offset)
		if err != nil {
			logger.Error("Failed to list admin products", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"products": productResponses(products),
			"limit":    limit,
			"offset":   offset,
		})
	}
}

// HandleCreateProduct handles POST /v1/admin/products
func HandleCreateProduct(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := middleware.GetAdminFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		product := req.toDomain()
		if err := catalog.CreateProduct(c.Request.Context(), admin, product); err != nil {
			if vErr, ok := err.(*errors.ErrValidation); ok {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": vErr.Error()})
				return
			}
			logger.Error("Failed to create product", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
			return
		}

		c.JSON(http.StatusCreated, toProductResponse(product))
	}
}

// HandleUpdateProduct handles PUT /v1/admin/products/:id
func HandleUpdateProduct(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := middleware.GetAdminFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}

		var req ProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		product := req.toDomain()
		product.ID = id

		if err := catalog.UpdateProduct(c.Request.Context(), admin, product); err != nil {
			switch err.(type) {
			case *errors.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			case *errors.ErrUnauthorized:
				c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			default:
				logger.Error("Failed to update product", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
			}
			return
		}

		c.JSON(http.StatusOK, toProductResponse(product))
	}
}

// HandleDeleteProduct handles DELETE /v1/admin/products/:id
func HandleDeleteProduct(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := middleware.GetAdminFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product ID"})
			return
		}

		if err := catalog.DeleteProduct(c.Request.Context(), admin, id); err != nil {
			switch err.(type) {
			case *errors.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			case *errors.ErrUnauthorized:
				c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			default:
				logger.Error("Failed to delete product", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete product"})
			}
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// HandleUpdateStoreName handles PUT /v1/admin/store-name
func HandleUpdateStoreName(catalog *service.CatalogService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := middleware.GetAdminFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req UpdateStoreNameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		if err := catalog.RenameStore(c.Request.Context(), admin, req.StoreName); err != nil {
			if vErr, ok := err.(*errors.ErrValidation); ok {
				c.JSON(http.StatusConflict, gin.H{"error": vErr.Error()})
				return
			}
			logger.Error("Failed to rename store", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rename store"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"store_name": admin.StoreName})
	}
}

func productResponses(products []*domain.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = toProductResponse(p)
	}
	return out
}
