package postgres

import (
	"context"
	"time"

	"github.com/sgcpro/sgc/internal/model"
)

func (q queries) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		a.ID, a.UserID, nullString(a.ClientID), nullString(a.PolicyID), a.Title, a.Date, a.Time,
		a.Status, nullString(a.Notes), nullString(string(a.Priority)), nullString(a.RecurrenceRule),
		a.IsRecurring, nullString(a.ParentAppointmentID), a.CreatedAt,
	)
	return mapErr(err)
}

const selectAppointment = `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 AND ($2 = '' OR user_id = $2)`

func (q queries) GetAppointment(ctx context.Context, userID, id string) (*model.Appointment, error) {
	return scanAppointment(q.db.QueryRowContext(ctx, selectAppointment, id, userID))
}

func (q queries) LockAppointment(ctx context.Context, userID, id string) (*model.Appointment, error) {
	return scanAppointment(q.db.QueryRowContext(ctx, selectAppointment+forUpdate, id, userID))
}

func (q queries) ListAppointments(ctx context.Context, f model.AppointmentFilter) ([]*model.Appointment, int, error) {
	w := &where{}
	w.eq("user_id", f.UserID)
	w.eq("client_id", f.ClientID)
	w.eq("policy_id", f.PolicyID)
	w.eq("parent_appointment_id", f.ParentID)
	in(w, "status", f.Status)
	if !f.DateFrom.IsZero() {
		w.add("date >= " + w.arg(f.DateFrom))
	}
	if !f.DateTo.IsZero() {
		w.add("date <= " + w.arg(f.DateTo))
	}
	query := w.page(`SELECT COUNT(*) OVER() AS total_count, `+appointmentColumns+
		` FROM appointments`+w.sql()+` ORDER BY date, time`, f.Limit, f.Offset)
	rows, err := q.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return scanAll(rows, true, scanAppointment)
}

func (q queries) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	return execOne(ctx, q.db, `
		UPDATE appointments SET client_id = $3, policy_id = $4, title = $5, date = $6, time = $7,
			status = $8, notes = $9, priority = $10, recurrence_rule = $11, is_recurring = $12,
			parent_appointment_id = $13
		WHERE id = $1 AND user_id = $2`,
		a.ID, a.UserID, nullString(a.ClientID), nullString(a.PolicyID), a.Title, a.Date, a.Time,
		a.Status, nullString(a.Notes), nullString(string(a.Priority)), nullString(a.RecurrenceRule),
		a.IsRecurring, nullString(a.ParentAppointmentID),
	)
}

func (q queries) DeleteAppointment(ctx context.Context, userID, id string) error {
	return execOne(ctx, q.db, `DELETE FROM appointments WHERE id = $1 AND user_id = $2`, id, userID)
}

func (q queries) CreateClaim(ctx context.Context, c *model.Claim) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO sinistros (`+claimColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		c.ID, c.UserID, c.PolicyID, nullString(c.ClientID), c.OccurrenceDate, c.ClaimType, c.Description,
		nullString(c.Location), nullString(c.Circumstances), nullString(c.PoliceReportNumber),
		nullAmount(c.ClaimAmount), nullAmount(c.DeductibleAmount), c.Priority, c.Status,
		c.AnalysisDeadline, c.CreatedAt, c.UpdatedAt,
	)
	return mapErr(err)
}

func (q queries) GetClaim(ctx context.Context, userID, id string) (*model.Claim, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+claimColumns+` FROM sinistros WHERE id = $1 AND ($2 = '' OR user_id = $2)`, id, userID)
	return scanClaim(row)
}

func (q queries) ListClaims(ctx context.Context, f model.ClaimFilter) ([]*model.Claim, int, error) {
	w := &where{}
	w.eq("user_id", f.UserID)
	w.eq("policy_id", f.PolicyID)
	w.eq("client_id", f.ClientID)
	in(w, "status", f.Status)
	query := w.page(`SELECT COUNT(*) OVER() AS total_count, `+claimColumns+
		` FROM sinistros`+w.sql()+` ORDER BY created_at DESC`, f.Limit, f.Offset)
	rows, err := q.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, 0, err
	}
	return scanAll(rows, true, scanClaim)
}

func (q queries) UpdateClaim(ctx context.Context, c *model.Claim) error {
	c.UpdatedAt = time.Now().UTC()
	return execOne(ctx, q.db, `
		UPDATE sinistros SET policy_id = $3, client_id = $4, occurrence_date = $5, claim_type = $6,
			description = $7, location_occurrence = $8, circumstances = $9, police_report_number = $10,
			claim_amount = $11, deductible_amount = $12, priority = $13, status = $14,
			analysis_deadline = $15, updated_at = $16
		WHERE id = $1 AND user_id = $2`,
		c.ID, c.UserID, c.PolicyID, nullString(c.ClientID), c.OccurrenceDate, c.ClaimType, c.Description,
		nullString(c.Location), nullString(c.Circumstances), nullString(c.PoliceReportNumber),
		nullAmount(c.ClaimAmount), nullAmount(c.DeductibleAmount), c.Priority, c.Status,
		c.AnalysisDeadline, c.UpdatedAt,
	)
}

func (q queries) DeleteClaim(ctx context.Context, userID, id string) error {
	return execOne(ctx, q.db, `DELETE FROM sinistros WHERE id = $1 AND user_id = $2`, id, userID)
}
