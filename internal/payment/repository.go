package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// Repository is the persistence port for host-owned payment records. The
// adapter loads a record, mutates it, and writes it back; row creation is
// the host's job.
type Repository interface {
	GetPayment(ctx context.Context, id uint) (*Payment, error)
	GetPaymentByOrderID(ctx context.Context, orderID string) (*Payment, error)
	SavePayment(ctx context.Context, p *Payment) error
	Transition(ctx context.Context, p *Payment, status Status, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const paymentColumns = `id, total, currency,
		billing_first_name, billing_last_name, billing_email, billing_phone,
		status, status_reason, transaction_id, captured_amount, attrs,
		created_at, updated_at`

func (r *repository) GetPayment(ctx context.Context, id uint) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments WHERE id = $1
	`, id)

	return scanPayment(row)
}

func (r *repository) GetPaymentByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments WHERE attrs->>'razorpay_order_id' = $1
	`, orderID)

	return scanPayment(row)
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	attrs, err := json.Marshal(p.Attrs)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $1,
			status_reason = $2,
			transaction_id = $3,
			captured_amount = $4,
			attrs = $5,
			updated_at = now()
		WHERE id = $6
	`, string(p.Status), p.StatusReason, p.TransactionID, p.CapturedAmount, attrs, p.ID)
	return err
}

// Transition changes the record's status with a reason and persists in the
// same step, so the stored row is the durable record of what happened.
func (r *repository) Transition(ctx context.Context, p *Payment, status Status, reason string) error {
	p.Status = status
	p.StatusReason = reason
	return r.SavePayment(ctx, p)
}

func scanPayment(row *sql.Row) (*Payment, error) {
	var p Payment
	var attrs []byte

	err := row.Scan(
		&p.ID, &p.Total, &p.Currency,
		&p.BillingFirstName, &p.BillingLastName, &p.BillingEmail, &p.BillingPhone,
		&p.Status, &p.StatusReason, &p.TransactionID, &p.CapturedAmount, &attrs,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &p.Attrs); err != nil {
			return nil, err
		}
	}

	return &p, nil
}
