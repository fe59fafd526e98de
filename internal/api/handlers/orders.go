package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/api/middleware"
	"github.com/modamarket/storefront/internal/domain"
	"github.com/modamarket/storefront/internal/service"
	"github.com/modamarket/storefront/pkg/errors"
)

// UpdateOrderStatusRequest applies a status transition to an order
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderResponse is the seller-facing order shape
type OrderResponse struct {
	ID              string                 `json:"id"`
	Customer        string                 `json:"customer"`
	Total           decimal.Decimal        `json:"total"`
	Status          domain.OrderStatus     `json:"status"`
	Date            string                 `json:"date"`
	CustomerDetails domain.CustomerDetails `json:"customer_details"`
	Items           []OrderItemResponse    `json:"items"`
}

type OrderItemResponse struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	AdminID   string          `json:"admin_id"`
	StoreName string          `json:"store_name"`
	Size      *string         `json:"size,omitempty"`
}

func toOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			Name:      item.Name,
			Quantity:  item.Quantity,
			Price:     item.Price,
			AdminID:   item.AdminID.String(),
			StoreName: item.StoreName,
			Size:      item.Size,
		}
	}

	return OrderResponse{
		ID:              order.ID.String(),
		Customer:        order.Customer,
		Total:           order.Total,
		Status:          order.Status,
		Date:            order.Date.Format("2006-01-02T15:04:05Z07:00"),
		CustomerDetails: order.CustomerDetails,
		Items:           items,
	}
}

// HandleListAdminOrders handles GET /v1/admin/orders
func HandleListAdminOrders(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := middleware.GetAdminFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit, offset := parsePagination(c)
		list, err := orders.ListForAdmin(c.Request.Context(), admin.ID, limit, offset)
		if err != nil {
			logger.Error("Failed to list admin orders", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]OrderResponse, len(list))
		for i, order := range list {
			responses[i] = toOrderResponse(order)
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": responses,
			"limit":  limit,
			"offset": offset,
		})
	}
}

// HandleGetAdminOrder handles GET /v1/admin/orders/:id
func HandleGetAdminOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := middleware.GetAdminFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		order, err := orders.Get(c.Request.Context(), orderID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotFound); ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			logger.Error("Failed to get order", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		// Narrow the item list to this seller's view
		items := order.Items[:0]
		for _, item := range order.Items {
			if item.AdminID == admin.ID {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		order.Items = items

		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}

// HandleUpdateOrderStatus handles POST /v1/admin/orders/:id/status
func HandleUpdateOrderStatus(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, ok := middleware.GetAdminFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		status := domain.OrderStatus(req.Status)
		if err := orders.UpdateStatus(c.Request.Context(), orderID, status); err != nil {
			switch err.(type) {
			case *errors.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			case *errors.ErrValidation:
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			case *errors.ErrInvalidStateTransition:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				logger.Error("Failed to update order status", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":     orderID.String(),
			"status": status,
		})
	}
}
