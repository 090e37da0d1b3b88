package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	payoutapp "github.com/biasharahub/backend/internal/application/payout"
	domainpayout "github.com/biasharahub/backend/internal/domain/payout"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/domain/shared/valueobject"
	"github.com/biasharahub/backend/internal/domain/tenant"
	"github.com/biasharahub/backend/internal/interfaces/http/dto"
)

// PayoutHandler handles payout API endpoints
type PayoutHandler struct {
	BaseHandler
	payouts *payoutapp.Service
}

// NewPayoutHandler creates a new PayoutHandler
func NewPayoutHandler(payouts *payoutapp.Service) *PayoutHandler {
	return &PayoutHandler{payouts: payouts}
}

// RequestPayoutRequest is the request body for a withdrawal
type RequestPayoutRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Method      string `json:"method" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// DefaultDestinationRequest is the request body for configuring auto-payout
type DefaultDestinationRequest struct {
	Method      string `json:"method" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// PayoutResponse represents a payout in API responses
type PayoutResponse struct {
	ID          string     `json:"id"`
	Amount      string     `json:"amount"`
	Method      string     `json:"method"`
	Destination string     `json:"destination"`
	Status      string     `json:"status"`
	ResultDesc  string     `json:"result_desc,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

func toPayoutResponse(p *domainpayout.Payout) PayoutResponse {
	return PayoutResponse{
		ID:          p.ID.String(),
		Amount:      p.Amount.StringFixed(2),
		Method:      p.Method.String(),
		Destination: p.DestinationMasked,
		Status:      p.Status.String(),
		ResultDesc:  p.ResultDesc,
		CreatedAt:   p.CreatedAt,
		ResolvedAt:  p.ResolvedAt,
	}
}

// Request withdraws from the tenant wallet
func (h *PayoutHandler) Request(c *gin.Context) {
	var req RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	amount, err := valueobject.NewMoneyKESFromString(req.Amount)
	if err != nil {
		h.BadRequest(c, "Invalid amount")
		return
	}

	p, err := h.payouts.Request(c.Request.Context(), amount,
		tenant.NormalizePayoutMethod(req.Method), req.Destination)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Created(c, toPayoutResponse(p))
}

// List returns the tenant's payouts, newest first
func (h *PayoutHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}
	req.Normalize()

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize

	payouts, err := h.payouts.List(c.Request.Context(), filter)
	if err != nil {
		h.Fail(c, err)
		return
	}

	out := make([]PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		out = append(out, toPayoutResponse(p))
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(out, req.Page, req.PageSize, len(out)))
}

// SetDefaultDestination configures where auto-payout sends released funds
func (h *PayoutHandler) SetDefaultDestination(c *gin.Context) {
	var req DefaultDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	err := h.payouts.SetDefaultDestination(c.Request.Context(),
		tenant.NormalizePayoutMethod(req.Method), req.Destination)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Success(c, gin.H{"updated": true})
}
