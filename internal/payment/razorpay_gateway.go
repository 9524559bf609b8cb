package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"razorpay-gateway/internal/logger"

	"go.uber.org/zap"
)

const razorpayBaseURL = "https://api.razorpay.com/v1"

type razorpayGateway struct {
	keyID      string
	keySecret  string
	httpClient *http.Client
}

// ----------------- Constructor -----------------

func NewRazorpayGateway(keyID, keySecret string) Gateway {
	if keyID == "" || keySecret == "" {
		logger.L().Warn("Razorpay credentials are empty")
	}

	return &razorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ----------------- CreateOrder -----------------

func (g *razorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*CheckoutOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("receipt", req.Receipt),
		zap.Int64("amount", req.Amount),
		zap.String("currency", req.Currency),
	)

	capture := 0
	if req.AutoCapture {
		capture = 1
	}

	body := map[string]interface{}{
		"amount":          req.Amount,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"notes":           req.Notes,
		"payment_capture": capture,
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Error("Failed to marshal order request", zap.Error(err))
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", razorpayBaseURL+"/orders", bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}

	httpReq.SetBasicAuth(g.keyID, g.keySecret)
	httpReq.Header.Add("Content-Type", "application/json")

	log.Info("Sending order request to Razorpay")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		log.Error("Razorpay request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read razorpay response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("Razorpay returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, errors.New(remoteErrorMessage(bodyBytes))
	}

	var order CheckoutOrder
	if err := json.Unmarshal(bodyBytes, &order); err != nil {
		log.Error("Failed decoding Razorpay response", zap.Error(err))
		return nil, err
	}

	log.Info("Razorpay order created",
		zap.String("order_id", order.ID),
		zap.String("status", order.Status),
	)

	return &order, nil
}

// ----------------- CreateRefund -----------------

func (g *razorpayGateway) CreateRefund(ctx context.Context, paymentID string, amount int64) (*Refund, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("payment_id", paymentID),
		zap.Int64("amount", amount),
	)

	jsonBody, err := json.Marshal(map[string]interface{}{"amount": amount})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/payments/%s/refund", razorpayBaseURL, paymentID)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return nil, err
	}

	httpReq.SetBasicAuth(g.keyID, g.keySecret)
	httpReq.Header.Add("Content-Type", "application/json")

	log.Info("Sending refund request to Razorpay")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		log.Error("Razorpay request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return nil, fmt.Errorf("failed to read razorpay response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Error("Razorpay refund failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", bodyBytes),
		)
		return nil, errors.New(remoteErrorMessage(bodyBytes))
	}

	var refund Refund
	if err := json.Unmarshal(bodyBytes, &refund); err != nil {
		log.Error("Failed decoding Razorpay response", zap.Error(err))
		return nil, err
	}

	log.Info("Razorpay refund created",
		zap.String("refund_id", refund.ID),
		zap.String("status", refund.Status),
	)

	return &refund, nil
}

// ----------------- VerifyPaymentSignature -----------------

// VerifyPaymentSignature recomputes the HMAC-SHA256 of "orderID|paymentID"
// with the secret key and compares it to the supplied signature, per
// Razorpay's documented scheme. Purely local, no network call.
func (g *razorpayGateway) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(g.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errors.New("payment signature mismatch")
	}
	return nil
}

// remoteErrorMessage extracts the human-readable description from a Razorpay
// error body, falling back to the raw body.
func remoteErrorMessage(body []byte) string {
	var apiErr struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Description != "" {
		return apiErr.Error.Description
	}
	return fmt.Sprintf("razorpay error: %s", string(body))
}
