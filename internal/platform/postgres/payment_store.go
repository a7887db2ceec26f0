package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/teolgogo/quote-engine/internal/domain"
	"github.com/teolgogo/quote-engine/internal/platform/logger"
	"github.com/teolgogo/quote-engine/internal/store"
)

const paymentColumns = `id, customer_id, business_id, quote_response_id, amount, method, status,
	payment_key, order_id, order_name, receipt_url, cancel_reason, paid_at, canceled_at,
	created_at, updated_at`

// PostgresPaymentStore implements store.PaymentStore.
type PostgresPaymentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresPaymentStore creates a PostgresPaymentStore.
func NewPostgresPaymentStore(db store.DBTX, logger *slog.Logger) *PostgresPaymentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresPaymentStore{
		db:     db,
		logger: logger.With(slog.String("component", "payment_store")),
	}
}

var _ store.PaymentStore = (*PostgresPaymentStore)(nil)

// Create implements store.PaymentStore.Create
func (s *PostgresPaymentStore) Create(ctx context.Context, p *domain.Payment) error {
	if err := p.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		p.ID, p.CustomerID, p.BusinessID, p.QuoteResponseID, p.Amount, p.Method, p.Status,
		p.PaymentKey, p.OrderID, p.OrderName, p.ReceiptURL, p.CancelReason, p.PaidAt, p.CanceledAt,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create payment",
			slog.String("error", err.Error()),
			slog.String("order_id", p.OrderID))
		return MapError(err)
	}
	return nil
}

// GetByID implements store.PaymentStore.GetByID
func (s *PostgresPaymentStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
}

// GetForUpdate implements store.PaymentStore.GetForUpdate
func (s *PostgresPaymentStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	return s.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id)
}

// GetByOrderIDForUpdate implements store.PaymentStore.GetByOrderIDForUpdate
func (s *PostgresPaymentStore) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.Payment, error) {
	return s.get(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 FOR UPDATE`, orderID)
}

func (s *PostgresPaymentStore) get(ctx context.Context, query string, arg any) (*domain.Payment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		return nil, mapNotFound(err, store.ErrPaymentNotFound)
	}
	return p, nil
}

// Update implements store.PaymentStore.Update
func (s *PostgresPaymentStore) Update(ctx context.Context, p *domain.Payment) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $2, payment_key = $3, receipt_url = $4, cancel_reason = $5,
			paid_at = $6, canceled_at = $7, updated_at = $8
		WHERE id = $1`,
		p.ID, p.Status, p.PaymentKey, p.ReceiptURL, p.CancelReason, p.PaidAt, p.CanceledAt, p.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update payment",
			slog.String("error", err.Error()),
			slog.String("payment_id", p.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrPaymentNotFound)
}

// ListByQuoteResponse implements store.PaymentStore.ListByQuoteResponse
func (s *PostgresPaymentStore) ListByQuoteResponse(ctx context.Context, offerID uuid.UUID) ([]*domain.Payment, error) {
	return s.list(ctx, `WHERE quote_response_id = $1 ORDER BY created_at, id`, offerID)
}

// ListByCustomer implements store.PaymentStore.ListByCustomer
func (s *PostgresPaymentStore) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*domain.Payment, error) {
	return s.list(ctx, `WHERE customer_id = $1 ORDER BY created_at DESC, id`, customerID)
}

// ListByBusiness implements store.PaymentStore.ListByBusiness
func (s *PostgresPaymentStore) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]*domain.Payment, error) {
	return s.list(ctx, `WHERE business_id = $1 ORDER BY created_at DESC, id`, businessID)
}

func (s *PostgresPaymentStore) list(ctx context.Context, clause string, arg any) ([]*domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+paymentColumns+` FROM payments `+clause, arg)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var payments []*domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, MapError(err)
		}
		payments = append(payments, p)
	}
	return payments, MapError(rows.Err())
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		p                domain.Payment
		paidAt, canceled sql.NullTime
	)
	err := row.Scan(
		&p.ID, &p.CustomerID, &p.BusinessID, &p.QuoteResponseID, &p.Amount, &p.Method, &p.Status,
		&p.PaymentKey, &p.OrderID, &p.OrderName, &p.ReceiptURL, &p.CancelReason, &paidAt, &canceled,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.PaidAt = nullTime(paidAt)
	p.CanceledAt = nullTime(canceled)
	return &p, nil
}
