package postgres

import (
	"context"
	"time"

	"github.com/sgcpro/sgc/internal/model"
)

func (q queries) UpsertProfile(ctx context.Context, p *model.Profile) error {
	now := time.Now().UTC()
	p.UpdatedAt = now
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	return q.db.QueryRowContext(ctx, `
		INSERT INTO profiles (`+profileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			nome_completo = EXCLUDED.nome_completo,
			email = EXCLUDED.email,
			telefone = EXCLUDED.telefone,
			role = EXCLUDED.role,
			ativo = EXCLUDED.ativo,
			birthday_message_template = EXCLUDED.birthday_message_template,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at`,
		p.ID, p.FullName, p.Email, nullString(p.Phone), p.Role, p.Active,
		nullString(p.BirthdayMessageTemplate), p.CreatedAt, p.UpdatedAt,
	).Scan(&p.CreatedAt)
}

func (q queries) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	return scanProfile(q.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

func (q queries) ListProfiles(ctx context.Context, activeOnly bool) ([]*model.Profile, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE ativo OR NOT $1 ORDER BY id`, activeOnly)
	if err != nil {
		return nil, err
	}
	out, _, err := scanAll(rows, false, scanProfile)
	return out, err
}

func (q queries) CreateDailyMetric(ctx context.Context, m *model.DailyMetric) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO daily_metrics (`+metricColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		m.ID, m.UserID, m.Date, m.Consorcio, m.Saude, m.Auto, m.Residencial,
		m.Empresarial, m.Outros, m.NewPolicies, m.Renewals, m.LostPolicies, m.SyncStatus,
		nullTimePtr(m.SyncedAt), nullString(m.ErrorMessage), m.CreatedAt,
	)
	return mapErr(err)
}

func (q queries) ListDailyMetrics(ctx context.Context, f model.DailyMetricFilter) ([]*model.DailyMetric, error) {
	w := &where{}
	w.eq("user_id", f.UserID)
	w.eq("sync_status", string(f.SyncStatus))
	if !f.Date.IsZero() {
		w.add("date = " + w.arg(f.Date))
	}
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+metricColumns+` FROM daily_metrics`+w.sql()+` ORDER BY date, user_id`, w.args...)
	if err != nil {
		return nil, err
	}
	out, _, err := scanAll(rows, false, scanDailyMetric)
	return out, err
}

func (q queries) UpdateDailyMetricSync(ctx context.Context, id string, status model.SyncStatus, syncedAt *time.Time, errMsg string) error {
	return execOne(ctx, q.db, `
		UPDATE daily_metrics SET sync_status = $2, synced_at = $3, error_message = $4 WHERE id = $1`,
		id, status, nullTimePtr(syncedAt), nullString(errMsg))
}

func (q queries) CreateSheetsSyncLog(ctx context.Context, l *model.SheetsSyncLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO sheets_sync_logs (id, user_id, sync_date, status, message, execution_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID, l.UserID, l.SyncDate, l.Status, l.Message, l.ExecutionTimeMS, l.CreatedAt)
	return err
}

func (q queries) RecordEvent(ctx context.Context, e *model.Event) error {
	return q.db.QueryRowContext(ctx, `
		INSERT INTO events (topic, entity_id, actor, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.Topic, e.EntityID, e.Actor, jsonbBytes(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}

func (q queries) GetEvents(ctx context.Context, entityID string) ([]*model.Event, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, topic, entity_id, actor, payload, created_at
		FROM events WHERE entity_id = $1 ORDER BY created_at, id`, entityID)
	if err != nil {
		return nil, err
	}
	out, _, err := scanAll(rows, false, scanEvent)
	return out, err
}
