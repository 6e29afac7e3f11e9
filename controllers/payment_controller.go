package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/the-y0gi/Go-Apply-sub000/services"
)

type PaymentController struct {
	Payments *services.PaymentService
	Verifier *services.PaymentVerifier
}

type CreateOrderInput struct {
	ApplicationID string `json:"application_id" binding:"required"`
}

// POST /api/payments/order
func (ctl *PaymentController) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := ctl.Payments.CreateOrder(c.Request.Context(), c.GetString("user_id"), input.ApplicationID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_id": rec.OrderID,
		"amount":   rec.Amount,
		"currency": rec.Currency,
		"receipt":  rec.Receipt,
	})
}

type VerifyPaymentInput struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

// POST /api/payments/verify, the gateway callback. Amounts in the body are
// ignored; the verifier fetches the authoritative details itself.
func (ctl *PaymentController) Verify(c *gin.Context) {
	var input VerifyPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ctl.Verifier.Verify(c.Request.Context(), input.OrderID, input.PaymentID, input.Signature)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

type RefundInput struct {
	Amount int64  `json:"amount" binding:"required,min=1"`
	Reason string `json:"reason" binding:"required"`
}

// POST /api/admin/payments/:id/refund
func (ctl *PaymentController) Refund(c *gin.Context) {
	var input RefundInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := ctl.Payments.InitiateRefund(c.Request.Context(), c.Param("id"), input.Amount, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// GET /api/payments/history
func (ctl *PaymentController) History(c *gin.Context) {
	recs, err := ctl.Payments.History(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(recs), "data": recs})
}
