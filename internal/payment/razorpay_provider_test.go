package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----------------- Fakes -----------------

type refundCall struct {
	paymentID string
	amount    int64
}

type fakeGateway struct {
	createOrderFn  func(ctx context.Context, req OrderRequest) (*CheckoutOrder, error)
	createRefundFn func(ctx context.Context, paymentID string, amount int64) (*Refund, error)
	verifyFn       func(orderID, paymentID, signature string) error

	orderCalls  []OrderRequest
	refundCalls []refundCall
	verifyCalls int
}

func (f *fakeGateway) CreateOrder(ctx context.Context, req OrderRequest) (*CheckoutOrder, error) {
	f.orderCalls = append(f.orderCalls, req)
	return f.createOrderFn(ctx, req)
}

func (f *fakeGateway) CreateRefund(ctx context.Context, paymentID string, amount int64) (*Refund, error) {
	f.refundCalls = append(f.refundCalls, refundCall{paymentID, amount})
	return f.createRefundFn(ctx, paymentID, amount)
}

func (f *fakeGateway) VerifyPaymentSignature(orderID, paymentID, signature string) error {
	f.verifyCalls++
	return f.verifyFn(orderID, paymentID, signature)
}

type memRepo struct {
	saves   int
	saveErr error
}

func (m *memRepo) GetPayment(ctx context.Context, id uint) (*Payment, error) {
	return nil, ErrPaymentNotFound
}

func (m *memRepo) GetPaymentByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	return nil, ErrPaymentNotFound
}

func (m *memRepo) SavePayment(ctx context.Context, p *Payment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	return nil
}

func (m *memRepo) Transition(ctx context.Context, p *Payment, status Status, reason string) error {
	p.Status = status
	p.StatusReason = reason
	return m.SavePayment(ctx, p)
}

func newTestPayment() *Payment {
	return &Payment{
		ID:               42,
		Total:            19.99,
		Currency:         "INR",
		BillingFirstName: "Asha",
		BillingLastName:  "Rao",
		BillingEmail:     "asha@example.com",
		BillingPhone:     "9876543210",
		Status:           StatusPending,
	}
}

// ----------------- CreateCheckout -----------------

func TestRazorpayProvider_CreateCheckout(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		gw := &fakeGateway{
			createOrderFn: func(ctx context.Context, req OrderRequest) (*CheckoutOrder, error) {
				return &CheckoutOrder{ID: "order_abc", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
			},
		}
		repo := &memRepo{}
		provider := NewRazorpayProvider("rzp_test_key", gw, repo)

		p := newTestPayment()
		params, err := provider.CreateCheckout(ctx, p)
		require.NoError(t, err)
		require.NotNil(t, params)

		// Minor-unit conversion is exact for two-decimal totals
		require.Len(t, gw.orderCalls, 1)
		sent := gw.orderCalls[0]
		assert.Equal(t, int64(1999), sent.Amount)
		assert.Equal(t, "INR", sent.Currency)
		assert.Equal(t, "42", sent.Receipt)
		assert.True(t, sent.AutoCapture)
		assert.Equal(t, map[string]string{"email": "asha@example.com", "phone": "9876543210"}, sent.Notes)

		// Order id stored and persisted before params are returned
		assert.Equal(t, "order_abc", p.OrderID())
		assert.Equal(t, 1, repo.saves)

		assert.Equal(t, "order_abc", params.OrderID)
		assert.Equal(t, "rzp_test_key", params.KeyID)
		assert.Equal(t, int64(1999), params.Amount)
		assert.Equal(t, "Asha Rao", params.Name)
		assert.Equal(t, "Payment for Order 42", params.Description)
		assert.Equal(t, Prefill{Name: "Asha Rao", Email: "asha@example.com", Contact: "9876543210"}, params.Prefill)
		assert.Equal(t, Theme{Color: "#F37254"}, params.Theme)

		// Notes travel as a JSON string in the UI payload
		var notes map[string]string
		require.NoError(t, json.Unmarshal([]byte(params.Notes), &notes))
		assert.Equal(t, sent.Notes, notes)
	})

	t.Run("MissingBillingContact", func(t *testing.T) {
		gw := &fakeGateway{
			createOrderFn: func(ctx context.Context, req OrderRequest) (*CheckoutOrder, error) {
				return &CheckoutOrder{ID: "order_abc"}, nil
			},
		}
		provider := NewRazorpayProvider("rzp_test_key", gw, &memRepo{})

		p := newTestPayment()
		p.BillingEmail = ""
		p.BillingPhone = ""

		_, err := provider.CreateCheckout(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"email": "", "phone": ""}, gw.orderCalls[0].Notes)
	})

	t.Run("RemoteFailure", func(t *testing.T) {
		gw := &fakeGateway{
			createOrderFn: func(ctx context.Context, req OrderRequest) (*CheckoutOrder, error) {
				return nil, errors.New("amount must be at least INR 1.00")
			},
		}
		repo := &memRepo{}
		provider := NewRazorpayProvider("rzp_test_key", gw, repo)

		p := newTestPayment()
		params, err := provider.CreateCheckout(ctx, p)
		assert.Nil(t, params)
		require.Error(t, err)

		var perr *PaymentError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "amount must be at least INR 1.00", perr.Message)

		assert.Equal(t, StatusError, p.Status)
		assert.Equal(t, "amount must be at least INR 1.00", p.StatusReason)
		assert.Empty(t, p.OrderID())
	})
}

// ----------------- ConfirmCheckout -----------------

func TestRazorpayProvider_ConfirmCheckout(t *testing.T) {
	ctx := context.Background()

	valid := ConfirmationPayload{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: "deadbeef",
	}

	t.Run("MissingFields", func(t *testing.T) {
		cases := map[string]ConfirmationPayload{
			"NoOrderID":   {PaymentID: "pay_xyz", Signature: "deadbeef"},
			"NoPaymentID": {OrderID: "order_abc", Signature: "deadbeef"},
			"NoSignature": {OrderID: "order_abc", PaymentID: "pay_xyz"},
		}

		for name, payload := range cases {
			t.Run(name, func(t *testing.T) {
				gw := &fakeGateway{verifyFn: func(_, _, _ string) error { return nil }}
				provider := NewRazorpayProvider("rzp_test_key", gw, &memRepo{})

				p := newTestPayment()
				err := provider.ConfirmCheckout(ctx, p, payload)

				var perr *PaymentError
				require.ErrorAs(t, err, &perr)
				assert.Equal(t, "Missing payment details", perr.Message)
				assert.Equal(t, StatusRejected, p.Status)
				assert.Equal(t, "Missing payment details", p.StatusReason)
				// No verification attempt for incomplete payloads
				assert.Zero(t, gw.verifyCalls)
			})
		}
	})

	t.Run("SignatureMismatch", func(t *testing.T) {
		gw := &fakeGateway{verifyFn: func(_, _, _ string) error {
			return errors.New("payment signature mismatch")
		}}
		provider := NewRazorpayProvider("rzp_test_key", gw, &memRepo{})

		p := newTestPayment()
		err := provider.ConfirmCheckout(ctx, p, valid)

		var perr *PaymentError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "Signature verification failed", perr.Message)
		assert.Equal(t, StatusError, p.Status)
		assert.Empty(t, p.TransactionID)
	})

	t.Run("Success", func(t *testing.T) {
		gw := &fakeGateway{verifyFn: func(_, _, _ string) error { return nil }}
		repo := &memRepo{}
		provider := NewRazorpayProvider("rzp_test_key", gw, repo)

		p := newTestPayment()
		err := provider.ConfirmCheckout(ctx, p, valid)
		require.NoError(t, err)

		assert.Equal(t, StatusConfirmed, p.Status)
		assert.Equal(t, "pay_xyz", p.TransactionID)
		assert.Equal(t, p.Total, p.CapturedAmount)
		// Persisted exactly once, after both fields are set
		assert.Equal(t, 1, repo.saves)
	})
}

// ----------------- Capture -----------------

func TestRazorpayProvider_Capture(t *testing.T) {
	gw := &fakeGateway{}
	repo := &memRepo{}
	provider := NewRazorpayProvider("rzp_test_key", gw, repo)

	p := newTestPayment()
	err := provider.Capture(context.Background(), p, nil)

	assert.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.Empty(t, gw.orderCalls)
	assert.Empty(t, gw.refundCalls)
	assert.Zero(t, repo.saves)
}

// ----------------- Refund -----------------

func TestRazorpayProvider_Refund(t *testing.T) {
	ctx := context.Background()

	okRefund := func(ctx context.Context, paymentID string, amount int64) (*Refund, error) {
		return &Refund{ID: "rfnd_001", PaymentID: paymentID, Amount: amount, Status: "processed"}, nil
	}

	t.Run("DefaultsToCapturedAmount", func(t *testing.T) {
		gw := &fakeGateway{createRefundFn: okRefund}
		provider := NewRazorpayProvider("rzp_test_key", gw, &memRepo{})

		p := newTestPayment()
		p.Status = StatusConfirmed
		p.TransactionID = "pay_xyz"
		p.CapturedAmount = 19.99

		err := provider.Refund(ctx, p, nil)
		require.NoError(t, err)

		require.Len(t, gw.refundCalls, 1)
		assert.Equal(t, refundCall{"pay_xyz", 1999}, gw.refundCalls[0])
		assert.Equal(t, StatusRefunded, p.Status)
	})

	t.Run("FallsBackToTotal", func(t *testing.T) {
		gw := &fakeGateway{createRefundFn: okRefund}
		provider := NewRazorpayProvider("rzp_test_key", gw, &memRepo{})

		p := newTestPayment()
		p.Status = StatusConfirmed
		p.TransactionID = "pay_xyz"
		p.CapturedAmount = 0

		err := provider.Refund(ctx, p, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1999), gw.refundCalls[0].amount)
	})

	t.Run("ExplicitPartialAmount", func(t *testing.T) {
		gw := &fakeGateway{createRefundFn: okRefund}
		provider := NewRazorpayProvider("rzp_test_key", gw, &memRepo{})

		p := newTestPayment()
		p.Status = StatusConfirmed
		p.TransactionID = "pay_xyz"
		p.CapturedAmount = 19.99

		amount := 5.00
		err := provider.Refund(ctx, p, &amount)
		require.NoError(t, err)
		assert.Equal(t, int64(500), gw.refundCalls[0].amount)
	})

	t.Run("RemoteFailure", func(t *testing.T) {
		gw := &fakeGateway{createRefundFn: func(ctx context.Context, paymentID string, amount int64) (*Refund, error) {
			return nil, errors.New("The payment has been fully refunded already")
		}}
		provider := NewRazorpayProvider("rzp_test_key", gw, &memRepo{})

		p := newTestPayment()
		p.Status = StatusConfirmed
		p.TransactionID = "pay_xyz"
		p.CapturedAmount = 19.99

		err := provider.Refund(ctx, p, nil)

		var perr *PaymentError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "The payment has been fully refunded already", perr.Message)
		assert.Equal(t, StatusError, p.Status)
		assert.Equal(t, "The payment has been fully refunded already", p.StatusReason)
	})
}

// ----------------- Template & form -----------------

func TestRazorpayProvider_TemplateAndFormFields(t *testing.T) {
	provider := NewRazorpayProvider("rzp_test_key", &fakeGateway{}, &memRepo{})

	assert.Equal(t, "payments/razorpay.html", provider.Template())
	assert.Equal(t, []string{
		"razorpay_order_id",
		"razorpay_payment_id",
		"razorpay_signature",
	}, provider.FormFields())
}

// ----------------- End to end -----------------

func TestRazorpayProvider_CheckoutLifecycle(t *testing.T) {
	ctx := context.Background()

	gw := &fakeGateway{
		createOrderFn: func(ctx context.Context, req OrderRequest) (*CheckoutOrder, error) {
			return &CheckoutOrder{ID: "order_abc", Amount: req.Amount, Currency: req.Currency}, nil
		},
		createRefundFn: func(ctx context.Context, paymentID string, amount int64) (*Refund, error) {
			return &Refund{ID: "rfnd_001", PaymentID: paymentID, Amount: amount}, nil
		},
		verifyFn: func(_, _, _ string) error { return nil },
	}
	repo := &memRepo{}
	provider := NewRazorpayProvider("rzp_test_key", gw, repo)

	p := newTestPayment()
	p.Total = 500.00

	params, err := provider.CreateCheckout(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), params.Amount)
	assert.Equal(t, "order_abc", p.OrderID())

	err = provider.ConfirmCheckout(ctx, p, ConfirmationPayload{
		OrderID:   "order_abc",
		PaymentID: "pay_xyz",
		Signature: "deadbeef",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, p.Status)
	assert.Equal(t, "pay_xyz", p.TransactionID)
	assert.Equal(t, 500.00, p.CapturedAmount)

	err = provider.Refund(ctx, p, nil)
	require.NoError(t, err)
	require.Len(t, gw.refundCalls, 1)
	assert.Equal(t, refundCall{"pay_xyz", 50000}, gw.refundCalls[0])
	assert.Equal(t, StatusRefunded, p.Status)
}
