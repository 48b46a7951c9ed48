package postgres

import (
	"context"
	"time"

	"github.com/sgcpro/sgc/internal/model"
)

func (q queries) CreateProducer(ctx context.Context, p *model.Producer) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO producers (id, user_id, name, email, phone, cpf_cnpj, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.UserID, p.Name, nullString(p.Email), nullString(p.Phone), nullString(p.CPFCNPJ), p.CreatedAt)
	return mapErr(err)
}

func (q queries) ListProducers(ctx context.Context, userID string) ([]*model.Producer, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, user_id, name, email, phone, cpf_cnpj, created_at
		FROM producers WHERE ($1 = '' OR user_id = $1) ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	out, _, err := scanAll(rows, false, scanProducer)
	return out, err
}

func (q queries) UpdateProducer(ctx context.Context, p *model.Producer) error {
	return execOne(ctx, q.db, `
		UPDATE producers SET name = $3, email = $4, phone = $5, cpf_cnpj = $6
		WHERE id = $1 AND user_id = $2`,
		p.ID, p.UserID, p.Name, nullString(p.Email), nullString(p.Phone), nullString(p.CPFCNPJ))
}

func (q queries) DeleteProducer(ctx context.Context, userID, id string) error {
	return execOne(ctx, q.db, `DELETE FROM producers WHERE id = $1 AND user_id = $2`, id, userID)
}

func (q queries) CreateCompany(ctx context.Context, c *model.Company) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO companies (id, user_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		c.ID, c.UserID, c.Name, c.CreatedAt)
	return mapErr(err)
}

func (q queries) ListCompanies(ctx context.Context, userID string) ([]*model.Company, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, name, created_at FROM companies WHERE ($1 = '' OR user_id = $1) ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	out, _, err := scanAll(rows, false, scanCompany)
	return out, err
}

func (q queries) UpdateCompany(ctx context.Context, c *model.Company) error {
	return execOne(ctx, q.db,
		`UPDATE companies SET name = $3 WHERE id = $1 AND user_id = $2`, c.ID, c.UserID, c.Name)
}

// DeleteCompany fails with store.ErrConflict while a policy references the
// company (the foreign key has no cascade).
func (q queries) DeleteCompany(ctx context.Context, userID, id string) error {
	return execOne(ctx, q.db, `DELETE FROM companies WHERE id = $1 AND user_id = $2`, id, userID)
}

func (q queries) CreateRamo(ctx context.Context, r *model.Ramo) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO ramos (id, user_id, nome, created_at) VALUES ($1, $2, $3, $4)`,
		r.ID, r.UserID, r.Name, r.CreatedAt)
	return mapErr(err)
}

func (q queries) ListRamos(ctx context.Context, userID string) ([]*model.Ramo, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, user_id, nome, created_at FROM ramos WHERE ($1 = '' OR user_id = $1) ORDER BY nome`, userID)
	if err != nil {
		return nil, err
	}
	out, _, err := scanAll(rows, false, scanRamo)
	return out, err
}

func (q queries) UpdateRamo(ctx context.Context, r *model.Ramo) error {
	return execOne(ctx, q.db,
		`UPDATE ramos SET nome = $3 WHERE id = $1 AND user_id = $2`, r.ID, r.UserID, r.Name)
}

func (q queries) DeleteRamo(ctx context.Context, userID, id string) error {
	return execOne(ctx, q.db, `DELETE FROM ramos WHERE id = $1 AND user_id = $2`, id, userID)
}
