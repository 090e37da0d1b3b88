package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	paymentapp "github.com/biasharahub/backend/internal/application/payment"
	domainpayment "github.com/biasharahub/backend/internal/domain/payment"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/biasharahub/backend/internal/infrastructure/mpesa"
	"github.com/biasharahub/backend/internal/interfaces/http/middleware"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	payments *paymentapp.Service
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *paymentapp.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// InitiateChargeRequest is the request body for starting a charge
type InitiateChargeRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
	Phone     string `json:"phone" binding:"required,msisdn"`
	Amount    string `json:"amount" binding:"required"`
}

// ConfirmPaymentRequest is the request body for manual confirmation
type ConfirmPaymentRequest struct {
	ReceiptNumber string `json:"receipt_number"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"booking_id"`
	Amount      string    `json:"amount"`
	Method      string    `json:"method"`
	Status      string    `json:"status"`
	ExternalID  string    `json:"external_id"`
	FailureDesc string    `json:"failure_desc,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPaymentResponse(p *domainpayment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID.String(),
		BookingID:   p.BookingID.String(),
		Amount:      p.Amount.StringFixed(2),
		Method:      p.Method.String(),
		Status:      p.Status.String(),
		ExternalID:  p.ExternalID,
		FailureDesc: p.FailureDesc,
		CreatedAt:   p.CreatedAt,
	}
}

// InitiateCharge starts an STK push charge for a booking
func (h *PaymentHandler) InitiateCharge(c *gin.Context) {
	var req InitiateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	bookingID, ok := h.parseUUID(c, req.BookingID, "booking_id")
	if !ok {
		return
	}
	amount, err := valueobject.NewMoneyKESFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}
	// binding already vetted the phone; normalize to the canonical 254 form
	phone, err := mpesa.NormalizeMSISDN(req.Phone)
	if err != nil {
		h.BadRequest(c, "Invalid phone number")
		return
	}

	p, err := h.payments.InitiateCharge(c.Request.Context(), bookingID, phone, amount)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Created(c, toPaymentResponse(p))
}

// Confirm settles a pending payment on staff authority
func (h *PaymentHandler) Confirm(c *gin.Context) {
	paymentID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.payments.ConfirmManually(c.Request.Context(), paymentID, req.ReceiptNumber); err != nil {
		h.Fail(c, err)
		return
	}
	h.Success(c, gin.H{"confirmed": true})
}

// ListByBooking returns the payments recorded for a booking
func (h *PaymentHandler) ListByBooking(c *gin.Context) {
	bookingID, ok := h.parseUUIDParam(c, "booking_id")
	if !ok {
		return
	}

	payments, err := h.payments.FindByBooking(c.Request.Context(), bookingID)
	if err != nil {
		h.Fail(c, err)
		return
	}

	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}
	h.Success(c, out)
}
