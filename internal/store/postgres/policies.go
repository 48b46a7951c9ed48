package postgres

import (
	"context"
	"time"

	"github.com/sgcpro/sgc/internal/model"
)

func (q queries) CreatePolicy(ctx context.Context, p *model.Policy) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO apolices (`+policyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		p.ID, p.UserID, p.ClientID, nullString(p.PolicyNumber), nullString(p.CompanyID), nullString(p.Type),
		nullString(p.RamoID), nullString(p.InsuredAsset), p.PremiumValue, p.CommissionRate,
		p.StartDate, p.ExpirationDate, p.Status, nullString(string(p.RenewalStatus)), p.AutomaticRenewal,
		nullString(p.ProducerID), nullString(p.BrokerageID), nullString(p.DocumentKey), p.CreatedAt, p.UpdatedAt,
	)
	return mapErr(err)
}

const selectPolicy = `SELECT ` + policyColumns + ` FROM apolices WHERE id = $1 AND ($2 = '' OR user_id = $2)`

func (q queries) GetPolicy(ctx context.Context, userID, id string) (*model.Policy, error) {
	return scanPolicy(q.db.QueryRowContext(ctx, selectPolicy, id, userID))
}

func (q queries) LockPolicy(ctx context.Context, userID, id string) (*model.Policy, error) {
	return scanPolicy(q.db.QueryRowContext(ctx, selectPolicy+forUpdate, id, userID))
}

func (q queries) ListPolicies(ctx context.Context, f model.PolicyFilter) ([]*model.Policy, int, error) {
	w := &where{}
	w.eq("user_id", f.UserID)
	w.eq("client_id", f.ClientID)
	in(w, "status", f.Status)
	in(w, "insurance_company", f.CompanyIDs)
	in(w, "producer_id", f.ProducerIDs)
	if len(f.Ramos) > 0 {
		ramos := list(w, f.Ramos)
		w.add("(type IN (" + ramos + ") OR ramo_id IN (" + ramos + "))")
	}
	if f.Search != "" {
		p := w.arg("%" + f.Search + "%")
		w.add("(policy_number ILIKE " + p + " OR insured_asset ILIKE " + p + ")")
	}
	if f.CreatedFrom != nil {
		w.add("created_at >= " + w.arg(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		w.add("created_at < " + w.arg(*f.CreatedTo))
	}
	if !f.ExpiresFrom.IsZero() {
		w.add("expiration_date >= " + w.arg(f.ExpiresFrom))
	}
	if !f.ExpiresTo.IsZero() {
		w.add("expiration_date <= " + w.arg(f.ExpiresTo))
	}
	query := w.page(`SELECT COUNT(*) OVER() AS total_count, `+policyColumns+
		` FROM apolices`+w.sql()+` ORDER BY created_at DESC`, f.Limit, f.Offset)
	rows, err := q.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return scanAll(rows, true, scanPolicy)
}

func (q queries) UpdatePolicy(ctx context.Context, p *model.Policy) error {
	p.UpdatedAt = time.Now().UTC()
	return execOne(ctx, q.db, `
		UPDATE apolices SET client_id = $3, policy_number = $4, insurance_company = $5, type = $6,
			ramo_id = $7, insured_asset = $8, premium_value = $9, commission_rate = $10,
			start_date = $11, expiration_date = $12, status = $13, renewal_status = $14,
			automatic_renewal = $15, producer_id = $16, brokerage_id = $17, pdf_key = $18, updated_at = $19
		WHERE id = $1 AND user_id = $2`,
		p.ID, p.UserID, p.ClientID, nullString(p.PolicyNumber), nullString(p.CompanyID), nullString(p.Type),
		nullString(p.RamoID), nullString(p.InsuredAsset), p.PremiumValue, p.CommissionRate,
		p.StartDate, p.ExpirationDate, p.Status, nullString(string(p.RenewalStatus)), p.AutomaticRenewal,
		nullString(p.ProducerID), nullString(p.BrokerageID), nullString(p.DocumentKey), p.UpdatedAt,
	)
}

func (q queries) DeletePolicy(ctx context.Context, userID, id string) error {
	return execOne(ctx, q.db, `DELETE FROM apolices WHERE id = $1 AND user_id = $2`, id, userID)
}
