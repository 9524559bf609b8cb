package payment

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ParseConfirmation normalizes a checkout callback request into a
// ConfirmationPayload. The checkout UI posts form fields; API clients send
// a JSON body. The provider itself never inspects the transport shape.
func ParseConfirmation(r *http.Request) (ConfirmationPayload, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var payload ConfirmationPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return ConfirmationPayload{}, fmt.Errorf("invalid JSON payload: %w", err)
		}
		return payload, nil
	}

	if err := r.ParseForm(); err != nil {
		return ConfirmationPayload{}, fmt.Errorf("invalid form payload: %w", err)
	}

	// r.Form carries both POST body and query parameters.
	return ConfirmationPayload{
		OrderID:   r.Form.Get(fieldOrderID),
		PaymentID: r.Form.Get(fieldPaymentID),
		Signature: r.Form.Get(fieldSignature),
	}, nil
}
