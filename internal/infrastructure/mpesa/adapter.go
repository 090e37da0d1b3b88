// Package mpesa implements the mobile-money gateway against Safaricom's
// Daraja API, with a stub mode for environments without credentials.
package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/biasharahub/backend/internal/domain/payment"
	"github.com/biasharahub/backend/internal/infrastructure/config"
	"github.com/biasharahub/backend/internal/infrastructure/logger"
)

const (
	oauthPath   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"
	b2cPath     = "/mpesa/b2c/v1/paymentrequest"

	timestampLayout = "20060102150405"

	// tokenEarlyRefresh is subtracted from the reported token lifetime so a
	// token is never used in its final seconds.
	tokenEarlyRefresh = 30 * time.Second
)

// DarajaAdapter implements payment.Gateway against the Daraja REST API
type DarajaAdapter struct {
	cfg        config.MpesaConfig
	httpClient *http.Client
	tokens     TokenCache
	now        func() time.Time
}

// NewDarajaAdapter creates the gateway adapter. A nil token cache falls back
// to a process-local one.
func NewDarajaAdapter(cfg config.MpesaConfig, tokens TokenCache) *DarajaAdapter {
	if tokens == nil {
		tokens = NewMemoryTokenCache()
	}
	return &DarajaAdapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		tokens:     tokens,
		now:        time.Now,
	}
}

// Charge initiates an STK push towards the customer's phone. When the
// gateway is disabled it returns a stub correlation ID instead of failing so
// payments can be settled manually by staff.
func (a *DarajaAdapter) Charge(ctx context.Context, req payment.ChargeRequest) (payment.ChargeResult, error) {
	if !a.cfg.Enabled {
		return payment.ChargeResult{ExternalID: a.stubID(), Stub: true}, nil
	}

	phone, err := NormalizeMSISDN(req.Phone)
	if err != nil {
		return payment.ChargeResult{}, err
	}

	ts := a.now().Format(timestampLayout)
	body := stkPushRequest{
		BusinessShortCode: a.cfg.ShortCode,
		Password:          a.password(ts),
		Timestamp:         ts,
		TransactionType:   "CustomerPayBillOnline",
		Amount:            req.Amount.Round(0).String(),
		PartyA:            phone,
		PartyB:            a.cfg.ShortCode,
		PhoneNumber:       phone,
		CallBackURL:       a.cfg.CallbackBaseURL + "/api/v1/callbacks/mpesa/stk",
		AccountReference:  req.AccountRef,
		TransactionDesc:   req.Description,
	}

	var resp stkPushResponse
	if err := a.post(ctx, stkPushPath, body, &resp); err != nil {
		return payment.ChargeResult{}, err
	}
	if resp.ResponseCode != "0" {
		return payment.ChargeResult{}, fmt.Errorf("mpesa: stk push rejected: %s", resp.ResponseDescription)
	}

	logger.L(ctx).Info("STK push accepted",
		zap.String("checkout_request_id", resp.CheckoutRequestID),
		zap.String("merchant_request_id", resp.MerchantRequestID),
	)
	return payment.ChargeResult{ExternalID: resp.CheckoutRequestID}, nil
}

// Transfer initiates a B2C payment to the destination phone
func (a *DarajaAdapter) Transfer(ctx context.Context, req payment.TransferRequest) (payment.TransferResult, error) {
	if !a.cfg.Enabled {
		return payment.TransferResult{ConversationID: a.stubID(), Stub: true}, nil
	}

	phone, err := NormalizeMSISDN(req.Phone)
	if err != nil {
		return payment.TransferResult{}, err
	}

	body := b2cRequest{
		InitiatorName:      a.cfg.InitiatorName,
		SecurityCredential: a.cfg.SecurityCredential,
		CommandID:          "BusinessPayment",
		Amount:             req.Amount.Round(0).String(),
		PartyA:             a.cfg.ShortCode,
		PartyB:             phone,
		Remarks:            req.Remarks,
		QueueTimeOutURL:    a.cfg.CallbackBaseURL + "/api/v1/callbacks/mpesa/b2c/timeout",
		ResultURL:          a.cfg.CallbackBaseURL + "/api/v1/callbacks/mpesa/b2c/result",
		Occasion:           req.Remarks,
	}

	var resp b2cResponse
	if err := a.post(ctx, b2cPath, body, &resp); err != nil {
		return payment.TransferResult{}, err
	}
	if resp.ResponseCode != "0" {
		return payment.TransferResult{}, fmt.Errorf("mpesa: b2c rejected: %s", resp.ResponseDescription)
	}

	logger.L(ctx).Info("B2C transfer accepted",
		zap.String("conversation_id", resp.ConversationID),
	)
	return payment.TransferResult{
		ConversationID:           resp.ConversationID,
		OriginatorConversationID: resp.OriginatorConversationID,
	}, nil
}

// post performs an authenticated JSON request against a Daraja endpoint
func (a *DarajaAdapter) post(ctx context.Context, path string, body any, out any) error {
	token, err := a.accessToken(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("mpesa: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("mpesa: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("mpesa: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("mpesa: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.ErrorMessage != "" {
			return fmt.Errorf("mpesa: api error %s: %s", apiErr.ErrorCode, apiErr.ErrorMessage)
		}
		return fmt.Errorf("mpesa: unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("mpesa: parse response: %w", err)
	}
	return nil
}

// accessToken returns a cached OAuth token or fetches a fresh one
func (a *DarajaAdapter) accessToken(ctx context.Context) (string, error) {
	if token, ok := a.tokens.Get(ctx); ok {
		return token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+oauthPath, nil)
	if err != nil {
		return "", fmt.Errorf("mpesa: build token request: %w", err)
	}
	req.SetBasicAuth(a.cfg.ConsumerKey, a.cfg.ConsumerSecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mpesa: token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mpesa: token request status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("mpesa: parse token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("mpesa: empty access token")
	}

	ttl := time.Hour
	if secs, err := strconv.Atoi(tr.ExpiresIn); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}
	if ttl > tokenEarlyRefresh {
		ttl -= tokenEarlyRefresh
	}
	a.tokens.Set(ctx, tr.AccessToken, ttl)

	return tr.AccessToken, nil
}

// password builds the STK push password: base64(shortcode + passkey + timestamp)
func (a *DarajaAdapter) password(timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(a.cfg.ShortCode + a.cfg.Passkey + timestamp))
}

// stubID generates a locally unique correlation ID for disabled-gateway mode
func (a *DarajaAdapter) stubID() string {
	return fmt.Sprintf("STUB-%d", a.now().UnixMilli())
}
