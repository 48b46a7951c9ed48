package postgres

import (
	"context"
	"time"

	"github.com/sgcpro/sgc/internal/model"
)

func (q queries) CreateTransactionType(ctx context.Context, tt *model.TransactionType) error {
	if tt.CreatedAt.IsZero() {
		tt.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO transaction_types (id, user_id, name, nature, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		tt.ID, tt.UserID, tt.Name, tt.Nature, tt.CreatedAt)
	return mapErr(err)
}

func (q queries) ListTransactionTypes(ctx context.Context, userID string) ([]*model.TransactionType, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_id, name, nature, created_at FROM transaction_types
		WHERE ($1 = '' OR user_id = $1) ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	types, _, err := scanAll(rows, false, scanTransactionType)
	return types, err
}

func (q queries) CreateTransaction(ctx context.Context, t *model.Transaction) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		t.ID, t.UserID, nullString(t.ClientID), nullString(t.PolicyID), nullString(t.TypeID),
		nullString(t.CompanyID), t.Description, t.Amount, t.PaidAmount, t.Date, t.TransactionDate,
		t.DueDate, t.Status, t.Nature, nullString(t.BrokerageID), nullString(t.ProducerID), t.CreatedAt,
	)
	return mapErr(err)
}

const selectTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND ($2 = '' OR user_id = $2)`

func (q queries) GetTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, selectTransaction, id, userID))
}

func (q queries) LockTransaction(ctx context.Context, userID, id string) (*model.Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, selectTransaction+forUpdate, id, userID))
}

func (q queries) ListTransactions(ctx context.Context, f model.TransactionFilter) ([]*model.Transaction, int, error) {
	w := &where{}
	w.eq("user_id", f.UserID)
	w.eq("policy_id", f.PolicyID)
	w.eq("client_id", f.ClientID)
	w.eq("type_id", f.TypeID)
	w.eq("nature", string(f.Nature))
	in(w, "status", f.Status)
	if !f.DateFrom.IsZero() {
		w.add("date >= " + w.arg(f.DateFrom))
	}
	if !f.DateTo.IsZero() {
		w.add("date <= " + w.arg(f.DateTo))
	}
	query := w.page(`SELECT COUNT(*) OVER() AS total_count, `+transactionColumns+
		` FROM transactions`+w.sql()+` ORDER BY date DESC NULLS LAST, created_at DESC`, f.Limit, f.Offset)
	rows, err := q.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return scanAll(rows, true, scanTransaction)
}

func (q queries) UpdateTransaction(ctx context.Context, t *model.Transaction) error {
	return execOne(ctx, q.db, `
		UPDATE transactions SET client_id = $3, policy_id = $4, type_id = $5, company_id = $6,
			description = $7, amount = $8, paid_amount = $9, date = $10, transaction_date = $11,
			due_date = $12, status = $13, nature = $14, brokerage_id = $15, producer_id = $16
		WHERE id = $1 AND user_id = $2`,
		t.ID, t.UserID, nullString(t.ClientID), nullString(t.PolicyID), nullString(t.TypeID),
		nullString(t.CompanyID), t.Description, t.Amount, t.PaidAmount, t.Date, t.TransactionDate,
		t.DueDate, t.Status, t.Nature, nullString(t.BrokerageID), nullString(t.ProducerID),
	)
}

func (q queries) DeleteTransaction(ctx context.Context, userID, id string) error {
	return execOne(ctx, q.db, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
}

func (q queries) CreatePayment(ctx context.Context, p *model.Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	// The owner check rides on the insert: no row is written for a
	// transaction that belongs to someone else.
	return execOne(ctx, q.db, `
		INSERT INTO transaction_payments (id, transaction_id, user_id, amount, description, payment_date, created_at)
		SELECT $1, t.id, $3, $4, $5, $6, $7 FROM transactions t WHERE t.id = $2 AND t.user_id = $3`,
		p.ID, p.TransactionID, p.UserID, p.Amount, p.Description, p.PaymentDate, p.CreatedAt,
	)
}

func (q queries) ListPayments(ctx context.Context, userID, transactionID string) ([]*model.Payment, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, transaction_id, user_id, amount, description, payment_date, created_at
		FROM transaction_payments WHERE transaction_id = $1 AND user_id = $2 ORDER BY created_at`,
		transactionID, userID)
	if err != nil {
		return nil, err
	}
	payments, _, err := scanAll(rows, false, scanPayment)
	return payments, err
}

func (q queries) CreateBillingEntry(ctx context.Context, e *model.BillingEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO faturamento (`+billingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, e.UserID, e.Description, e.Value, e.Date, e.Type,
		nullString(e.Category), e.Status, nullString(e.CostCenter), e.CreatedAt,
	)
	return mapErr(err)
}

func (q queries) GetBillingEntry(ctx context.Context, userID, id string) (*model.BillingEntry, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+billingColumns+` FROM faturamento WHERE id = $1 AND ($2 = '' OR user_id = $2)`, id, userID)
	return scanBillingEntry(row)
}

func (q queries) ListBillingEntries(ctx context.Context, f model.BillingFilter) ([]*model.BillingEntry, int, error) {
	w := &where{}
	w.eq("user_id", f.UserID)
	w.eq("type", string(f.Type))
	w.eq("status", string(f.Status))
	w.eq("category", f.Category)
	w.eq("cost_center", f.CostCenter)
	if !f.DateFrom.IsZero() {
		w.add("date >= " + w.arg(f.DateFrom))
	}
	if !f.DateTo.IsZero() {
		w.add("date <= " + w.arg(f.DateTo))
	}
	query := w.page(`SELECT COUNT(*) OVER() AS total_count, `+billingColumns+
		` FROM faturamento`+w.sql()+` ORDER BY date DESC, created_at DESC`, f.Limit, f.Offset)
	rows, err := q.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return scanAll(rows, true, scanBillingEntry)
}

func (q queries) UpdateBillingEntry(ctx context.Context, e *model.BillingEntry) error {
	return execOne(ctx, q.db, `
		UPDATE faturamento SET description = $3, value = $4, date = $5, type = $6,
			category = $7, status = $8, cost_center = $9
		WHERE id = $1 AND user_id = $2`,
		e.ID, e.UserID, e.Description, e.Value, e.Date, e.Type,
		nullString(e.Category), e.Status, nullString(e.CostCenter),
	)
}

func (q queries) DeleteBillingEntry(ctx context.Context, userID, id string) error {
	return execOne(ctx, q.db, `DELETE FROM faturamento WHERE id = $1 AND user_id = $2`, id, userID)
}
