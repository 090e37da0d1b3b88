package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	paymentapp "github.com/biasharahub/backend/internal/application/payment"
	payoutapp "github.com/biasharahub/backend/internal/application/payout"
	"github.com/biasharahub/backend/internal/infrastructure/logger"
	"github.com/biasharahub/backend/internal/infrastructure/mpesa"
)

// CallbackHandler handles asynchronous M-Pesa callbacks. These endpoints are
// called by Daraja and carry no staff token; every response is a 200 ack, as
// Daraja retries any other status and the services behind these handlers are
// idempotent anyway.
type CallbackHandler struct {
	payments *paymentapp.Service
	payouts  *payoutapp.Service
}

// NewCallbackHandler creates a new CallbackHandler
func NewCallbackHandler(payments *paymentapp.Service, payouts *payoutapp.Service) *CallbackHandler {
	return &CallbackHandler{payments: payments, payouts: payouts}
}

// darajaAck is the acknowledgement format Daraja expects
func darajaAck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}

// HandleSTKCallback applies an STK push outcome to its payment
func (h *CallbackHandler) HandleSTKCallback(c *gin.Context) {
	ctx := c.Request.Context()

	var envelope mpesa.STKCallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		logger.L(ctx).Warn("malformed STK callback", zap.Error(err))
		darajaAck(c)
		return
	}

	cb := envelope.Body.StkCallback
	amount, _ := cb.Amount()
	result := paymentapp.CallbackResult{
		ExternalID:    cb.CheckoutRequestID,
		Success:       cb.Succeeded(),
		ReceiptNumber: cb.ReceiptNumber(),
		ResultDesc:    cb.ResultDesc,
		Amount:        amount,
	}

	if err := h.payments.ApplyCallback(ctx, result); err != nil {
		logger.L(ctx).Error("STK callback processing failed",
			zap.String("checkout_request_id", cb.CheckoutRequestID),
			zap.Error(err))
	}
	darajaAck(c)
}

// HandleB2CResult applies a B2C transfer outcome to its payout
func (h *CallbackHandler) HandleB2CResult(c *gin.Context) {
	ctx := c.Request.Context()

	var envelope mpesa.B2CResultEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		logger.L(ctx).Warn("malformed B2C result", zap.Error(err))
		darajaAck(c)
		return
	}

	result := envelope.Result
	err := h.payouts.HandleTransferResult(ctx, result.ConversationID,
		result.Succeeded(), result.ResultDesc)
	if err != nil {
		logger.L(ctx).Error("B2C result processing failed",
			zap.String("conversation_id", result.ConversationID),
			zap.Error(err))
	}
	darajaAck(c)
}

// HandleB2CTimeout records a transfer that Daraja gave up on. The payout is
// failed so its debit surfaces in manual reconciliation.
func (h *CallbackHandler) HandleB2CTimeout(c *gin.Context) {
	ctx := c.Request.Context()

	var envelope mpesa.B2CResultEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		logger.L(ctx).Warn("malformed B2C timeout", zap.Error(err))
		darajaAck(c)
		return
	}

	result := envelope.Result
	err := h.payouts.HandleTransferResult(ctx, result.ConversationID,
		false, "Transfer timed out")
	if err != nil {
		logger.L(ctx).Error("B2C timeout processing failed",
			zap.String("conversation_id", result.ConversationID),
			zap.Error(err))
	}
	darajaAck(c)
}
