package checkout

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"razorpay-gateway/internal/logger"
	"razorpay-gateway/internal/metrics"
	"razorpay-gateway/internal/payment"

	"go.uber.org/zap"
)

// Handler exposes the adapter over HTTP: checkout creation for the host UI,
// the confirmation callback, and refunds for the host backend.
type Handler struct {
	provider payment.Provider
	repo     payment.Repository
}

func NewHandler(provider payment.Provider, repo payment.Repository) *Handler {
	return &Handler{
		provider: provider,
		repo:     repo,
	}
}

// CreateCheckout handles POST /checkout/{id}. It registers a remote order
// for the payment and returns the checkout parameters for the UI.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSONError(w, "invalid payment id", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetPayment(ctx, uint(id))
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			writeJSONError(w, "payment not found", http.StatusNotFound)
			return
		}
		log.Error("Failed to load payment", zap.Error(err))
		writeJSONError(w, "failed to load payment", http.StatusInternalServerError)
		return
	}

	params, err := h.observe("create_checkout", func() (*payment.CheckoutParams, error) {
		return h.provider.CreateCheckout(ctx, p)
	})
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": h.provider.Template(),
		"fields":   h.provider.FormFields(),
		"params":   params,
	})
}

// Callback handles POST /checkout/callback, the confirmation the checkout
// flow posts back after the payer completes payment.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	payload, err := payment.ParseConfirmation(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if payload.OrderID == "" {
		// Without an order id there is no record to correlate.
		writeJSONError(w, "Missing payment details", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetPaymentByOrderID(ctx, payload.OrderID)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			writeJSONError(w, "payment not found", http.StatusNotFound)
			return
		}
		log.Error("Failed to load payment", zap.Error(err))
		writeJSONError(w, "failed to load payment", http.StatusInternalServerError)
		return
	}

	_, err = h.observe("confirm_checkout", func() (*payment.CheckoutParams, error) {
		return nil, h.provider.ConfirmCheckout(ctx, p, payload)
	})
	if err != nil {
		var perr *payment.PaymentError
		if errors.As(err, &perr) {
			writeJSONError(w, perr.Message, http.StatusBadRequest)
			return
		}
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":         string(p.Status),
		"transaction_id": p.TransactionID,
	})
}

type refundRequest struct {
	PaymentID uint     `json:"payment_id"`
	Amount    *float64 `json:"amount,omitempty"`
}

// Refund handles POST /refunds. Guarded by auth middleware in the router.
func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	var req refundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetPayment(ctx, req.PaymentID)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			writeJSONError(w, "payment not found", http.StatusNotFound)
			return
		}
		log.Error("Failed to load payment", zap.Error(err))
		writeJSONError(w, "failed to load payment", http.StatusInternalServerError)
		return
	}

	_, err = h.observe("refund", func() (*payment.CheckoutParams, error) {
		return nil, h.provider.Refund(ctx, p, req.Amount)
	})
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(p.Status)})
}

// observe wraps an adapter operation with duration and outcome metrics.
func (h *Handler) observe(operation string, fn func() (*payment.CheckoutParams, error)) (*payment.CheckoutParams, error) {
	start := time.Now()
	result, err := fn()
	metrics.PaymentOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.PaymentOperations.WithLabelValues(operation, outcome).Inc()

	return result, err
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, map[string]string{"error": message})
}
