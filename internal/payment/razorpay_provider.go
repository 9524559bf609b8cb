package payment

import (
	"context"
	"strconv"

	"razorpay-gateway/internal/logger"

	"go.uber.org/zap"
)

type razorpayProvider struct {
	keyID   string
	gateway Gateway
	repo    Repository
}

// NewRazorpayProvider builds the adapter from the public key, the remote
// gateway and the persistence port.
func NewRazorpayProvider(keyID string, gateway Gateway, repo Repository) Provider {
	return &razorpayProvider{
		keyID:   keyID,
		gateway: gateway,
		repo:    repo,
	}
}

func (rp *razorpayProvider) CreateCheckout(ctx context.Context, p *Payment) (*CheckoutParams, error) {
	log := logger.FromCtx(ctx).With(
		zap.Uint("payment_id", p.ID),
		zap.Float64("total", p.Total),
		zap.String("currency", p.Currency),
	)

	amount := MinorUnits(p.Total)
	receipt := strconv.FormatUint(uint64(p.ID), 10)
	meta := p.Metadata()

	order, err := rp.gateway.CreateOrder(ctx, OrderRequest{
		Amount:      amount,
		Currency:    p.Currency,
		Receipt:     receipt,
		Notes:       meta.Map(),
		AutoCapture: true,
	})
	if err != nil {
		log.Error("Order creation failed", zap.Error(err))
		if terr := rp.repo.Transition(ctx, p, StatusError, err.Error()); terr != nil {
			log.Error("Failed to persist error status", zap.Error(terr))
		}
		return nil, newPaymentError(err.Error())
	}

	p.SetOrderID(order.ID)
	if err := rp.repo.SavePayment(ctx, p); err != nil {
		log.Error("Failed to persist order id", zap.Error(err))
		return nil, newPaymentError(err.Error())
	}

	log.Info("Checkout order created", zap.String("order_id", order.ID))

	name := p.BillingName()
	return &CheckoutParams{
		OrderID:     order.ID,
		KeyID:       rp.keyID,
		Amount:      amount,
		Currency:    p.Currency,
		Name:        name,
		Description: "Payment for Order " + receipt,
		Prefill: Prefill{
			Name:    name,
			Email:   p.BillingEmail,
			Contact: p.BillingPhone,
		},
		Notes: meta.JSON(),
		Theme: Theme{Color: defaultThemeColor},
	}, nil
}

func (rp *razorpayProvider) ConfirmCheckout(ctx context.Context, p *Payment, payload ConfirmationPayload) error {
	log := logger.FromCtx(ctx).With(
		zap.Uint("payment_id", p.ID),
		zap.String("order_id", payload.OrderID),
	)

	if payload.OrderID == "" || payload.PaymentID == "" || payload.Signature == "" {
		log.Warn("Confirmation payload incomplete")
		if terr := rp.repo.Transition(ctx, p, StatusRejected, msgMissingDetails); terr != nil {
			log.Error("Failed to persist rejected status", zap.Error(terr))
		}
		return newPaymentError(msgMissingDetails)
	}

	if err := rp.gateway.VerifyPaymentSignature(payload.OrderID, payload.PaymentID, payload.Signature); err != nil {
		log.Warn("Signature verification failed", zap.Error(err))
		if terr := rp.repo.Transition(ctx, p, StatusError, msgSignatureMismatch); terr != nil {
			log.Error("Failed to persist error status", zap.Error(terr))
		}
		return newPaymentError(msgSignatureMismatch)
	}

	p.TransactionID = payload.PaymentID
	p.CapturedAmount = p.Total
	if err := rp.repo.Transition(ctx, p, StatusConfirmed, ""); err != nil {
		log.Error("Failed to persist confirmed status", zap.Error(err))
		return newPaymentError(err.Error())
	}

	log.Info("Payment confirmed", zap.String("transaction_id", p.TransactionID))
	return nil
}

// Capture is a no-op: orders are created with payment_capture set, so the
// remote service captures on successful payment.
func (rp *razorpayProvider) Capture(ctx context.Context, p *Payment, amount *float64) error {
	return nil
}

func (rp *razorpayProvider) Refund(ctx context.Context, p *Payment, amount *float64) error {
	log := logger.FromCtx(ctx).With(
		zap.Uint("payment_id", p.ID),
		zap.String("transaction_id", p.TransactionID),
	)

	value := p.CapturedAmount
	if amount != nil {
		value = *amount
	} else if value == 0 {
		value = p.Total
	}

	if _, err := rp.gateway.CreateRefund(ctx, p.TransactionID, MinorUnits(value)); err != nil {
		log.Error("Refund failed", zap.Error(err))
		if terr := rp.repo.Transition(ctx, p, StatusError, err.Error()); terr != nil {
			log.Error("Failed to persist error status", zap.Error(terr))
		}
		return newPaymentError(err.Error())
	}

	if err := rp.repo.Transition(ctx, p, StatusRefunded, ""); err != nil {
		log.Error("Failed to persist refunded status", zap.Error(err))
		return newPaymentError(err.Error())
	}

	log.Info("Payment refunded", zap.Float64("amount", value))
	return nil
}

func (rp *razorpayProvider) Template() string {
	return templateName
}

func (rp *razorpayProvider) FormFields() []string {
	return formFields
}
