package mpesa

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// tokenResponse is the Daraja OAuth response. ExpiresIn arrives as a string.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// stkPushRequest is the STK push (Lipa na M-Pesa Online) request body
type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            string `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

// stkPushResponse is the synchronous STK push acknowledgement
type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

// b2cRequest is the Business To Customer payment request body
type b2cRequest struct {
	InitiatorName      string `json:"InitiatorName"`
	SecurityCredential string `json:"SecurityCredential"`
	CommandID          string `json:"CommandID"`
	Amount             string `json:"Amount"`
	PartyA             string `json:"PartyA"`
	PartyB             string `json:"PartyB"`
	Remarks            string `json:"Remarks"`
	QueueTimeOutURL    string `json:"QueueTimeOutURL"`
	ResultURL          string `json:"ResultURL"`
	Occasion           string `json:"Occasion"`
}

// b2cResponse is the synchronous B2C acknowledgement
type b2cResponse struct {
	ConversationID           string `json:"ConversationID"`
	OriginatorConversationID string `json:"OriginatorConversationID"`
	ResponseCode             string `json:"ResponseCode"`
	ResponseDescription      string `json:"ResponseDescription"`
}

// errorResponse is Daraja's error envelope
type errorResponse struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

// STKCallbackEnvelope is the asynchronous STK push result posted to the
// callback URL. CallbackMetadata is only present on success.
type STKCallbackEnvelope struct {
	Body struct {
		StkCallback STKCallback `json:"stkCallback"`
	} `json:"Body"`
}

// STKCallback is the callback payload inside the envelope
type STKCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item []CallbackItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

// CallbackItem is a single name/value pair in the callback metadata
type CallbackItem struct {
	Name  string          `json:"Name"`
	Value json.RawMessage `json:"Value"`
}

// ReceiptNumber extracts the MpesaReceiptNumber metadata item, if present
func (c STKCallback) ReceiptNumber() string {
	for _, item := range c.CallbackMetadata.Item {
		if item.Name == "MpesaReceiptNumber" {
			var s string
			if err := json.Unmarshal(item.Value, &s); err == nil {
				return s
			}
		}
	}
	return ""
}

// Amount extracts the Amount metadata item, the sum Daraja actually
// collected. The second return is false when the callback omits it.
func (c STKCallback) Amount() (decimal.Decimal, bool) {
	for _, item := range c.CallbackMetadata.Item {
		if item.Name == "Amount" {
			var d decimal.Decimal
			if err := json.Unmarshal(item.Value, &d); err == nil {
				return d, true
			}
		}
	}
	return decimal.Decimal{}, false
}

// Succeeded reports whether the charge settled
func (c STKCallback) Succeeded() bool {
	return c.ResultCode == 0
}

// B2CResultEnvelope is the asynchronous B2C result posted to the result URL
type B2CResultEnvelope struct {
	Result B2CResult `json:"Result"`
}

// B2CResult is the result payload inside the envelope
type B2CResult struct {
	ResultType               int    `json:"ResultType"`
	ResultCode               int    `json:"ResultCode"`
	ResultDesc               string `json:"ResultDesc"`
	OriginatorConversationID string `json:"OriginatorConversationID"`
	ConversationID           string `json:"ConversationID"`
	TransactionID            string `json:"TransactionID"`
}

// Succeeded reports whether the transfer settled
func (r B2CResult) Succeeded() bool {
	return r.ResultCode == 0
}
