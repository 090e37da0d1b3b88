package handler

import (
	"github.com/gin-gonic/gin"

	escrowapp "github.com/biasharahub/backend/internal/application/escrow"
)

// EscrowHandler handles delivery confirmations and disputes for held funds
type EscrowHandler struct {
	BaseHandler
	escrows *escrowapp.Service
}

// NewEscrowHandler creates a new EscrowHandler
func NewEscrowHandler(escrows *escrowapp.Service) *EscrowHandler {
	return &EscrowHandler{escrows: escrows}
}

// EscrowResolutionResponse reports whether this call resolved the hold.
// Resolved is false when the escrow was already released or refunded; the
// request is still acknowledged so buyers can tap confirm twice safely.
type EscrowResolutionResponse struct {
	Resolved bool `json:"resolved"`
}

// ConfirmDelivery releases held funds to the seller's wallet
func (h *EscrowHandler) ConfirmDelivery(c *gin.Context) {
	bookingID, ok := h.parseUUIDParam(c, "booking_id")
	if !ok {
		return
	}

	released, err := h.escrows.Release(c.Request.Context(), bookingID)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Success(c, EscrowResolutionResponse{Resolved: released})
}

// Dispute refunds held funds to the buyer
func (h *EscrowHandler) Dispute(c *gin.Context) {
	bookingID, ok := h.parseUUIDParam(c, "booking_id")
	if !ok {
		return
	}

	refunded, err := h.escrows.Refund(c.Request.Context(), bookingID)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Success(c, EscrowResolutionResponse{Resolved: refunded})
}
