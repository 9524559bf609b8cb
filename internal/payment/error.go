package payment

import "errors"

var ErrPaymentNotFound = errors.New("payment not found")

const (
	msgMissingDetails    = "Missing payment details"
	msgSignatureMismatch = "Signature verification failed"
)

// PaymentError is the single error type the adapter surfaces to the host.
// The message text distinguishes remote failures, validation failures and
// signature mismatches; the same text is persisted as the status reason.
type PaymentError struct {
	Message string
}

func (e *PaymentError) Error() string {
	return e.Message
}

func newPaymentError(msg string) *PaymentError {
	return &PaymentError{Message: msg}
}
