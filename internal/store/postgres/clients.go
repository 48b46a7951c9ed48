package postgres

import (
	"context"
	"time"

	"github.com/sgcpro/sgc/internal/model"
)

func (q queries) CreateClient(ctx context.Context, c *model.Client) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO clientes (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.UserID, c.Name, nullString(c.Email), nullString(c.Phone), nullString(c.CPFCNPJ),
		c.BirthDate, nullString(c.Address), c.Status, nullString(c.Observations), c.CreatedAt, c.UpdatedAt,
	)
	return mapErr(err)
}

func (q queries) GetClient(ctx context.Context, userID, id string) (*model.Client, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clientes WHERE id = $1 AND ($2 = '' OR user_id = $2)`, id, userID)
	return scanClient(row)
}

// clientWhere builds the shared filter of ListClients and ClientKPIs.
func clientWhere(f model.ClientFilter) *where {
	w := &where{}
	w.eq("c.user_id", f.UserID)
	w.eq("c.status", string(f.Status))
	if f.Search != "" {
		p := w.arg("%" + f.Search + "%")
		w.add("(c.name ILIKE " + p + " OR c.email ILIKE " + p + " OR c.phone ILIKE " + p + " OR c.cpf_cnpj ILIKE " + p + ")")
	}
	if f.CompanyID != "" || f.Ramo != "" {
		sub := "EXISTS (SELECT 1 FROM apolices p WHERE p.client_id = c.id"
		if f.CompanyID != "" {
			sub += " AND p.insurance_company = " + w.arg(f.CompanyID)
		}
		if f.Ramo != "" {
			r := w.arg(f.Ramo)
			sub += " AND (p.type = " + r + " OR p.ramo_id = " + r + ")"
		}
		w.add(sub + ")")
	}
	return w
}

func (q queries) ListClients(ctx context.Context, f model.ClientFilter) ([]*model.Client, int, error) {
	w := clientWhere(f)
	query := w.page(`SELECT COUNT(*) OVER() AS total_count, `+prefixed("c", clientColumns)+
		` FROM clientes c`+w.sql()+` ORDER BY LOWER(c.name)`, f.Limit, f.Offset)
	rows, err := q.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return scanAll(rows, true, scanClient)
}

func (q queries) UpdateClient(ctx context.Context, c *model.Client) error {
	c.UpdatedAt = time.Now().UTC()
	return execOne(ctx, q.db, `
		UPDATE clientes SET name = $3, email = $4, phone = $5, cpf_cnpj = $6, birth_date = $7,
			address = $8, status = $9, observations = $10, updated_at = $11
		WHERE id = $1 AND user_id = $2`,
		c.ID, c.UserID, c.Name, nullString(c.Email), nullString(c.Phone), nullString(c.CPFCNPJ),
		c.BirthDate, nullString(c.Address), c.Status, nullString(c.Observations), c.UpdatedAt,
	)
}

func (q queries) DeleteClient(ctx context.Context, userID, id string) error {
	return execOne(ctx, q.db, `DELETE FROM clientes WHERE id = $1 AND user_id = $2`, id, userID)
}

func (q queries) ClientKPIs(ctx context.Context, f model.ClientFilter, since time.Time) (*model.ClientKPIs, error) {
	w := clientWhere(f)
	sinceArg := w.arg(since)
	var k model.ClientKPIs
	err := q.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE c.status = 'Ativo'),
			COUNT(*) FILTER (WHERE c.created_at >= `+sinceArg+`),
			COUNT(*) FILTER (WHERE a.total IS NOT NULL),
			COALESCE(SUM(a.total), 0)
		FROM clientes c
		LEFT JOIN (
			SELECT client_id, SUM(premium_value) AS total
			FROM apolices WHERE status = 'Ativa' GROUP BY client_id
		) a ON a.client_id = c.id`+w.sql(),
		w.args...,
	).Scan(&k.TotalActive, &k.NewClientsLast30d, &k.ClientsWithPolicies, &k.TotalPoliciesValue)
	if err != nil {
		return nil, err
	}
	k.TotalPoliciesValue = model.RoundCents(k.TotalPoliciesValue)
	return &k, nil
}
