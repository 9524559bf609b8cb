package payment

import "context"

const (
	// templateName identifies the checkout view the host renders.
	templateName = "payments/razorpay.html"

	defaultThemeColor = "#F37254"
)

const (
	fieldOrderID   = "razorpay_order_id"
	fieldPaymentID = "razorpay_payment_id"
	fieldSignature = "razorpay_signature"
)

// formFields are the hidden inputs that round-trip the confirmation payload
// through the checkout UI back to the callback endpoint.
var formFields = []string{fieldOrderID, fieldPaymentID, fieldSignature}

// Provider is the payment-provider capability surface exposed to the host.
type Provider interface {
	// CreateCheckout registers a remote order for the payment and returns
	// the parameters the checkout UI needs.
	CreateCheckout(ctx context.Context, p *Payment) (*CheckoutParams, error)

	// ConfirmCheckout verifies the confirmation payload and settles the
	// payment record.
	ConfirmCheckout(ctx context.Context, p *Payment, payload ConfirmationPayload) error

	// Capture finalizes an authorization. A no-op here: orders are created
	// with auto-capture, so funds are captured on payment.
	Capture(ctx context.Context, p *Payment, amount *float64) error

	// Refund reverses a captured payment, fully when amount is nil.
	Refund(ctx context.Context, p *Payment, amount *float64) error

	Template() string
	FormFields() []string
}
