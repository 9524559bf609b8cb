package payment

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Status is the lifecycle state of a payment record. Transitions are
// one-directional per event: pending can become error, rejected or
// confirmed; confirmed can become refunded or error.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusRefunded  Status = "refunded"
	StatusError     Status = "error"
)

// AttrOrderID is the attribute key holding the remote order identifier.
// Once stored it is never rewritten outside CreateCheckout.
const AttrOrderID = "razorpay_order_id"

// Payment is the host-owned payment record. The adapter mutates it only
// through status transitions and the attribute bag; the host persists it.
type Payment struct {
	ID               uint
	Total            float64
	Currency         string
	BillingFirstName string
	BillingLastName  string
	BillingEmail     string
	BillingPhone     string
	Status           Status
	StatusReason     string
	TransactionID    string
	CapturedAmount   float64
	Attrs            map[string]string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (p *Payment) BillingName() string {
	return strings.TrimSpace(p.BillingFirstName + " " + p.BillingLastName)
}

func (p *Payment) OrderID() string {
	return p.Attrs[AttrOrderID]
}

func (p *Payment) SetOrderID(id string) {
	if p.Attrs == nil {
		p.Attrs = make(map[string]string)
	}
	p.Attrs[AttrOrderID] = id
}

func (p *Payment) Metadata() Metadata {
	return Metadata{Email: p.BillingEmail, Phone: p.BillingPhone}
}

// Metadata is the billing contact data attached to a checkout order. It has
// two renderings: a structured map for the order-creation call and a JSON
// string for the checkout UI payload.
type Metadata struct {
	Email string
	Phone string
}

func (m Metadata) Map() map[string]string {
	return map[string]string{
		"email": m.Email,
		"phone": m.Phone,
	}
}

func (m Metadata) JSON() string {
	b, err := json.Marshal(m.Map())
	if err != nil {
		return "{}"
	}
	return string(b)
}

// MinorUnits converts a major-unit total into the smallest currency unit.
// Assumes a two-decimal currency (e.g. INR paise); see DESIGN.md.
func MinorUnits(total float64) int64 {
	return int64(math.Round(total * 100))
}

// CheckoutOrder is the reserved payment intent returned by Razorpay.
type CheckoutOrder struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Status   string            `json:"status"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Refund is the refund record returned by Razorpay.
type Refund struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// CheckoutParams is everything the hosted checkout UI needs to open the
// payment widget. Derived per checkout attempt, never persisted.
type CheckoutParams struct {
	OrderID     string  `json:"razorpay_order_id"`
	KeyID       string  `json:"razorpay_key_id"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
	Prefill     Prefill `json:"prefill"`
	Notes       string  `json:"notes"`
	Theme       Theme   `json:"theme"`
}

type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

type Theme struct {
	Color string `json:"color"`
}

// ConfirmationPayload is the triple the checkout flow posts back after the
// payer completes payment. Consumed once.
type ConfirmationPayload struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}
