package postgres

import (
	"database/sql"
	"time"

	"github.com/sgcpro/sgc/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// text scans a nullable text column into a plain string; NULL becomes "".
type text struct{ dst *string }

func (t text) Scan(src any) error {
	var ns sql.NullString
	if err := ns.Scan(src); err != nil {
		return err
	}
	*t.dst = ns.String
	return nil
}

// num scans a nullable numeric column into a float64; NULL becomes 0.
type num struct{ dst *float64 }

func (n num) Scan(src any) error {
	var nf sql.NullFloat64
	if err := nf.Scan(src); err != nil {
		return err
	}
	*n.dst = nf.Float64
	return nil
}

// scanAll collects every row of rows with scan. A leading total_count
// column is read when withTotal is set.
func scanAll[T any](rows *sql.Rows, withTotal bool, scan func(scannable, ...any) (*T, error)) ([]*T, int, error) {
	defer rows.Close()
	var (
		out   []*T
		total int
	)
	for rows.Next() {
		var extra []any
		if withTotal {
			extra = append(extra, &total)
		}
		item, err := scan(rows, extra...)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

const clientColumns = `id, user_id, name, email, phone, cpf_cnpj, birth_date, address,
	status, observations, created_at, updated_at`

func scanClient(row scannable, extra ...any) (*model.Client, error) {
	var c model.Client
	dest := append(extra,
		&c.ID, &c.UserID, &c.Name, text{&c.Email}, text{&c.Phone}, text{&c.CPFCNPJ},
		&c.BirthDate, text{&c.Address}, &c.Status, text{&c.Observations}, &c.CreatedAt, &c.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

const policyColumns = `id, user_id, client_id, policy_number, insurance_company, type, ramo_id,
	insured_asset, premium_value, commission_rate, start_date, expiration_date, status,
	renewal_status, automatic_renewal, producer_id, brokerage_id, pdf_key, created_at, updated_at`

func scanPolicy(row scannable, extra ...any) (*model.Policy, error) {
	var p model.Policy
	var renewal string
	dest := append(extra,
		&p.ID, &p.UserID, &p.ClientID, text{&p.PolicyNumber}, text{&p.CompanyID}, text{&p.Type},
		text{&p.RamoID}, text{&p.InsuredAsset}, &p.PremiumValue, &p.CommissionRate,
		&p.StartDate, &p.ExpirationDate, &p.Status, text{&renewal}, &p.AutomaticRenewal,
		text{&p.ProducerID}, text{&p.BrokerageID}, text{&p.DocumentKey}, &p.CreatedAt, &p.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.RenewalStatus = model.RenewalStatus(renewal)
	return &p, nil
}

const transactionColumns = `id, user_id, client_id, policy_id, type_id, company_id, description,
	amount, paid_amount, date, transaction_date, due_date, status, nature, brokerage_id,
	producer_id, created_at`

func scanTransaction(row scannable, extra ...any) (*model.Transaction, error) {
	var t model.Transaction
	dest := append(extra,
		&t.ID, &t.UserID, text{&t.ClientID}, text{&t.PolicyID}, text{&t.TypeID}, text{&t.CompanyID},
		&t.Description, &t.Amount, &t.PaidAmount, &t.Date, &t.TransactionDate, &t.DueDate,
		&t.Status, &t.Nature, text{&t.BrokerageID}, text{&t.ProducerID}, &t.CreatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTransactionType(row scannable, extra ...any) (*model.TransactionType, error) {
	var tt model.TransactionType
	if err := row.Scan(append(extra, &tt.ID, &tt.UserID, &tt.Name, &tt.Nature, &tt.CreatedAt)...); err != nil {
		return nil, err
	}
	return &tt, nil
}

func scanPayment(row scannable, extra ...any) (*model.Payment, error) {
	var p model.Payment
	dest := append(extra, &p.ID, &p.TransactionID, &p.UserID, &p.Amount, &p.Description, &p.PaymentDate, &p.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

const billingColumns = `id, user_id, description, value, date, type, category, status, cost_center, created_at`

func scanBillingEntry(row scannable, extra ...any) (*model.BillingEntry, error) {
	var e model.BillingEntry
	dest := append(extra,
		&e.ID, &e.UserID, &e.Description, &e.Value, &e.Date, &e.Type,
		text{&e.Category}, &e.Status, text{&e.CostCenter}, &e.CreatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &e, nil
}

const appointmentColumns = `id, user_id, client_id, policy_id, title, date, time, status, notes,
	priority, recurrence_rule, is_recurring, parent_appointment_id, created_at`

func scanAppointment(row scannable, extra ...any) (*model.Appointment, error) {
	var a model.Appointment
	var priority string
	dest := append(extra,
		&a.ID, &a.UserID, text{&a.ClientID}, text{&a.PolicyID}, &a.Title, &a.Date, &a.Time,
		&a.Status, text{&a.Notes}, text{&priority}, text{&a.RecurrenceRule}, &a.IsRecurring,
		text{&a.ParentAppointmentID}, &a.CreatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	a.Priority = model.Priority(priority)
	return &a, nil
}

const claimColumns = `id, user_id, policy_id, client_id, occurrence_date, claim_type, description,
	location_occurrence, circumstances, police_report_number, claim_amount, deductible_amount,
	priority, status, analysis_deadline, created_at, updated_at`

func scanClaim(row scannable, extra ...any) (*model.Claim, error) {
	var c model.Claim
	dest := append(extra,
		&c.ID, &c.UserID, &c.PolicyID, text{&c.ClientID}, &c.OccurrenceDate, &c.ClaimType,
		&c.Description, text{&c.Location}, text{&c.Circumstances}, text{&c.PoliceReportNumber},
		num{&c.ClaimAmount}, num{&c.DeductibleAmount}, &c.Priority, &c.Status, &c.AnalysisDeadline,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanProducer(row scannable, extra ...any) (*model.Producer, error) {
	var p model.Producer
	dest := append(extra, &p.ID, &p.UserID, &p.Name, text{&p.Email}, text{&p.Phone}, text{&p.CPFCNPJ}, &p.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanCompany(row scannable, extra ...any) (*model.Company, error) {
	var c model.Company
	if err := row.Scan(append(extra, &c.ID, &c.UserID, &c.Name, &c.CreatedAt)...); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanRamo(row scannable, extra ...any) (*model.Ramo, error) {
	var r model.Ramo
	if err := row.Scan(append(extra, &r.ID, &r.UserID, &r.Name, &r.CreatedAt)...); err != nil {
		return nil, err
	}
	return &r, nil
}

const profileColumns = `id, nome_completo, email, telefone, role, ativo, birthday_message_template, created_at, updated_at`

func scanProfile(row scannable, extra ...any) (*model.Profile, error) {
	var p model.Profile
	dest := append(extra,
		&p.ID, &p.FullName, &p.Email, text{&p.Phone}, &p.Role, &p.Active,
		text{&p.BirthdayMessageTemplate}, &p.CreatedAt, &p.UpdatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

const metricColumns = `id, user_id, date, consorcio_value, saude_value, auto_value, residencial_value,
	empresarial_value, outros_value, apolices_novas, renovacoes, apolices_perdidas, sync_status,
	synced_at, error_message, created_at`

func scanDailyMetric(row scannable, extra ...any) (*model.DailyMetric, error) {
	var m model.DailyMetric
	var syncedAt sql.NullTime
	dest := append(extra,
		&m.ID, &m.UserID, &m.Date, &m.Consorcio, &m.Saude, &m.Auto, &m.Residencial,
		&m.Empresarial, &m.Outros, &m.NewPolicies, &m.Renewals, &m.LostPolicies, &m.SyncStatus,
		&syncedAt, text{&m.ErrorMessage}, &m.CreatedAt,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if syncedAt.Valid {
		t := syncedAt.Time
		m.SyncedAt = &t
	}
	return &m, nil
}

func scanEvent(row scannable, extra ...any) (*model.Event, error) {
	var e model.Event
	var payload []byte
	if err := row.Scan(append(extra, &e.ID, &e.Topic, &e.EntityID, &e.Actor, &payload, &e.CreatedAt)...); err != nil {
		return nil, err
	}
	e.Payload = payload
	return &e, nil
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullAmount(v float64) sql.NullFloat64 {
	if v == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func jsonbBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
