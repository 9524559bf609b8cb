package payment

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfirmation(t *testing.T) {
	want := ConfirmationPayload{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: "deadbeef",
	}

	t.Run("JSONBody", func(t *testing.T) {
		body := `{
			"razorpay_order_id": "order_abc",
			"razorpay_payment_id": "pay_xyz",
			"razorpay_signature": "deadbeef"
		}`
		req := httptest.NewRequest("POST", "/checkout/callback", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		payload, err := ParseConfirmation(req)
		require.NoError(t, err)
		assert.Equal(t, want, payload)
	})

	t.Run("JSONBodyWithCharset", func(t *testing.T) {
		body := `{"razorpay_order_id": "order_abc", "razorpay_payment_id": "pay_xyz", "razorpay_signature": "deadbeef"}`
		req := httptest.NewRequest("POST", "/checkout/callback", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		payload, err := ParseConfirmation(req)
		require.NoError(t, err)
		assert.Equal(t, want, payload)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/checkout/callback", strings.NewReader(`{not json`))
		req.Header.Set("Content-Type", "application/json")

		_, err := ParseConfirmation(req)
		assert.Error(t, err)
	})

	t.Run("FormBody", func(t *testing.T) {
		form := url.Values{}
		form.Set("razorpay_order_id", "order_abc")
		form.Set("razorpay_payment_id", "pay_xyz")
		form.Set("razorpay_signature", "deadbeef")

		req := httptest.NewRequest("POST", "/checkout/callback", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		payload, err := ParseConfirmation(req)
		require.NoError(t, err)
		assert.Equal(t, want, payload)
	})

	t.Run("QueryParameters", func(t *testing.T) {
		req := httptest.NewRequest("GET",
			"/checkout/callback?razorpay_order_id=order_abc&razorpay_payment_id=pay_xyz&razorpay_signature=deadbeef",
			nil)

		payload, err := ParseConfirmation(req)
		require.NoError(t, err)
		assert.Equal(t, want, payload)
	})

	t.Run("MissingFieldsPassThrough", func(t *testing.T) {
		// Field validation belongs to ConfirmCheckout, not the parser.
		req := httptest.NewRequest("POST", "/checkout/callback", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		payload, err := ParseConfirmation(req)
		require.NoError(t, err)
		assert.Equal(t, ConfirmationPayload{}, payload)
	})
}
