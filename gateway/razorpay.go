package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/the-y0gi/Go-Apply-sub000/common"
	"github.com/the-y0gi/Go-Apply-sub000/config"
)

// Order is the gateway's reservation of a payment amount.
type Order struct {
	OrderID string
	Raw     map[string]interface{}
}

// PaymentDetails is the authoritative view of a payment fetched from the
// gateway. Callback bodies are never trusted for amounts or methods.
type PaymentDetails struct {
	PaymentID     string
	Amount        int64
	Currency      string
	Method        string
	MethodDetails string
}

// Client is the payment gateway contract consumed by the payment services.
type Client interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
	FetchPaymentDetails(ctx context.Context, paymentID string) (*PaymentDetails, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

type razorpayClient struct {
	cfg  config.RazorpayConfig
	http *http.Client
}

func NewRazorpayClient(cfg config.RazorpayConfig) Client {
	return &razorpayClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.HTTPTimeout},
	}
}

func (c *razorpayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	payload := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "encode order payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/orders", bytes.NewBuffer(body))
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "build order request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, common.Wrap(common.CodeGatewayUnavailable, "gateway create order failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		return nil, common.New(common.CodeGatewayUnavailable, fmt.Sprintf("gateway returned %d", res.StatusCode))
	}
	if res.StatusCode != http.StatusOK {
		return nil, common.New(common.CodeValidation, fmt.Sprintf("gateway rejected order: %d", res.StatusCode))
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, common.Wrap(common.CodeGatewayUnavailable, "decode order response", err)
	}

	id, _ := raw["id"].(string)
	if id == "" {
		return nil, common.New(common.CodeGatewayUnavailable, "gateway response missing order id")
	}
	return &Order{OrderID: id, Raw: raw}, nil
}

func (c *razorpayClient) FetchPaymentDetails(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/payments/"+paymentID, nil)
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "build payment request", err)
	}
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, common.Wrap(common.CodeGatewayUnavailable, "gateway fetch payment failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, common.New(common.CodeNotFound, "payment not found at gateway")
	}
	if res.StatusCode != http.StatusOK {
		return nil, common.New(common.CodeGatewayUnavailable, fmt.Sprintf("gateway returned %d", res.StatusCode))
	}

	var raw paymentJSON
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, common.Wrap(common.CodeGatewayUnavailable, "decode payment response", err)
	}

	return &PaymentDetails{
		PaymentID:     raw.ID,
		Amount:        raw.Amount,
		Currency:      raw.Currency,
		Method:        raw.Method,
		MethodDetails: raw.methodDetails(),
	}, nil
}

type paymentJSON struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Method   string `json:"method"`
	Bank     string `json:"bank"`
	Wallet   string `json:"wallet"`
	VPA      string `json:"vpa"`
	Card     *struct {
		Network string `json:"network"`
		Last4   string `json:"last4"`
	} `json:"card"`
}

// methodDetails keeps issuer/last4-level metadata only; raw card numbers
// never reach this process.
func (p paymentJSON) methodDetails() string {
	switch p.Method {
	case "card":
		if p.Card == nil {
			return ""
		}
		return fmt.Sprintf("%s ****%s", p.Card.Network, p.Card.Last4)
	case "netbanking":
		return p.Bank
	case "wallet":
		return p.Wallet
	case "upi":
		return p.VPA
	default:
		return ""
	}
}

// VerifySignature recomputes the keyed digest over "orderID|paymentID" and
// compares it in constant time against the caller-supplied signature.
func (c *razorpayClient) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(c.cfg.KeySecret, orderID, paymentID, signature)
}

func VerifySignature(secret, orderID, paymentID, signature string) bool {
	expected := Sign(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func Sign(secret, orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}
