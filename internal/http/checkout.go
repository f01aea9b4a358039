package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/linkmarkhq/linkmark/internal/checkout"
)

// CheckoutCreator creates payment-provider checkouts.
type CheckoutCreator interface {
	CreateCheckout(ctx context.Context, variantID string) (*checkout.Checkout, error)
}

type CheckoutController struct {
	client CheckoutCreator
}

func NewCheckoutController(client CheckoutCreator) *CheckoutController {
	return &CheckoutController{client: client}
}

// CreateCheckout creates a checkout for a paid-plan variant.
// POST /api/checkout
func (cc *CheckoutController) CreateCheckout(c *gin.Context) {
	var req struct {
		VariantID string `json:"variantId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "variantId is required")
		return
	}

	result, err := cc.client.CreateCheckout(c.Request.Context(), req.VariantID)
	if err != nil {
		// Provider failures stay opaque to the caller.
		respondUpstreamError(c, err, "create checkout")
		return
	}

	c.JSON(http.StatusCreated, result)
}
