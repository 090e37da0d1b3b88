package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	walletapp "github.com/biasharahub/backend/internal/application/wallet"
	"github.com/biasharahub/backend/internal/domain/ledger"
	"github.com/biasharahub/backend/internal/domain/shared"
	"github.com/biasharahub/backend/internal/interfaces/http/dto"
)

// WalletHandler handles wallet API endpoints
type WalletHandler struct {
	BaseHandler
	wallet *walletapp.Service
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(wallet *walletapp.Service) *WalletHandler {
	return &WalletHandler{wallet: wallet}
}

// BalanceResponse represents the derived wallet balance
type BalanceResponse struct {
	Balance  string `json:"balance"`
	Currency string `json:"currency"`
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      string    `json:"amount"`
	Commission  string    `json:"commission,omitempty"`
	ReferenceID string    `json:"reference_id"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toLedgerEntryResponse(e *ledger.Entry) LedgerEntryResponse {
	resp := LedgerEntryResponse{
		ID:          e.ID.String(),
		Type:        string(e.Type),
		Amount:      e.Amount.StringFixed(2),
		ReferenceID: e.ReferenceID,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
	if e.CommissionAmount != nil {
		resp.Commission = e.CommissionAmount.StringFixed(2)
	}
	return resp
}

// Balance returns the tenant's wallet balance computed from the ledger
func (h *WalletHandler) Balance(c *gin.Context) {
	balance, err := h.wallet.Balance(c.Request.Context())
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Success(c, BalanceResponse{
		Balance:  balance.Amount().StringFixed(2),
		Currency: string(balance.Currency()),
	})
}

// Statement lists the tenant's ledger entries, newest first
func (h *WalletHandler) Statement(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}
	req.Normalize()

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize

	entries, err := h.wallet.Statement(c.Request.Context(), filter)
	if err != nil {
		h.Fail(c, err)
		return
	}

	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerEntryResponse(e))
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(out, req.Page, req.PageSize, len(out)))
}
