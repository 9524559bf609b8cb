package payment

import "context"

// OrderRequest is the body of the remote create-order call.
type OrderRequest struct {
	Amount      int64
	Currency    string
	Receipt     string
	Notes       map[string]string
	AutoCapture bool
}

// Gateway is the port to the remote payment-processing API.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*CheckoutOrder, error)
	CreateRefund(ctx context.Context, paymentID string, amount int64) (*Refund, error)
	VerifyPaymentSignature(orderID, paymentID, signature string) error
}
