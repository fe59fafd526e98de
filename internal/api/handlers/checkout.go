package handlers

import (
	goerrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/modamarket/storefront/internal/api/middleware"
	"github.com/modamarket/storefront/internal/cart"
	"github.com/modamarket/storefront/internal/checkout"
	"github.com/modamarket/storefront/pkg/errors"
)

// CapturePaymentRequest carries the widget's approved payment order token
type CapturePaymentRequest struct {
	PaymentOrderID string `json:"payment_order_id" binding:"required"`
}

// HandleSubmitShipping handles POST /v1/checkout/shipping
func HandleSubmitShipping(checkouts *checkout.Manager, carts *cart.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.RequireSession(c)
		if !ok {
			return
		}

		var info checkout.ShippingInfo
		if err := c.ShouldBindJSON(&info); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		store := carts.Get(c.Request.Context(), session)
		if store.Len() == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
			return
		}

		orch := checkouts.Get(session, store)
		if err := orch.SubmitShipping(info); err != nil {
			if vErr, ok := err.(*errors.ErrValidation); ok {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error": "validation failed",
					"field": vErr.Field,
				})
				return
			}
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"state": orch.State()})
	}
}

// HandleCreatePaymentOrder handles POST /v1/checkout/payment/order
func HandleCreatePaymentOrder(checkouts *checkout.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.RequireSession(c)
		if !ok {
			return
		}

		orch, ok := checkouts.Current(session)
		if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "no checkout in progress"})
			return
		}

		id, err := orch.CreatePaymentOrder(c.Request.Context())
		if err != nil {
			if _, ok := err.(*errors.ErrInvalidStateTransition); ok {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			logger.Error("Failed to create payment order", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment service unavailable"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"payment_order_id": id,
			"state":            orch.State(),
		})
	}
}

// HandleCapturePayment handles POST /v1/checkout/payment/capture
func HandleCapturePayment(checkouts *checkout.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.RequireSession(c)
		if !ok {
			return
		}

		var req CapturePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		orch, ok := checkouts.Current(session)
		if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "no checkout in progress"})
			return
		}

		if err := orch.HandleApprove(c.Request.Context(), req.PaymentOrderID); err != nil {
			if goerrors.Is(err, checkout.ErrPaymentNotCompleted) {
				c.JSON(http.StatusPaymentRequired, gin.H{
					"error": "payment was not completed, please try again",
					"state": orch.State(),
				})
				return
			}
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		checkouts.Drop(session)
		c.JSON(http.StatusOK, gin.H{"state": checkout.StateCompleted})
	}
}

// HandleCancelPayment handles POST /v1/checkout/payment/cancel
func HandleCancelPayment(checkouts *checkout.Manager, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := middleware.RequireSession(c)
		if !ok {
			return
		}

		orch, ok := checkouts.Current(session)
		if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "no checkout in progress"})
			return
		}

		err := orch.HandleCancel()
		if err != nil && !goerrors.Is(err, checkout.ErrPaymentNotCompleted) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}

		// Cancellation keeps the attempt retryable
		c.JSON(http.StatusOK, gin.H{"state": orch.State()})
	}
}
