package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/sgcpro/sgc/internal/events"
	"github.com/sgcpro/sgc/internal/idgen"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/recurrence"
	"github.com/sgcpro/sgc/internal/store"
)

// maxOccurrences bounds GET /v1/appointments/{id}/occurrences.
const maxOccurrences = 50

// appointmentInput is the body of POST and PATCH /v1/appointments.
type appointmentInput struct {
	ClientID       *string                  `json:"client_id"`
	PolicyID       *string                  `json:"policy_id"`
	Title          *string                  `json:"title"`
	Date           *model.Date              `json:"date"`
	Time           *string                  `json:"time"`
	Status         *model.AppointmentStatus `json:"status"`
	Notes          *string                  `json:"notes"`
	Priority       *model.Priority          `json:"priority"`
	RecurrenceRule *string                  `json:"recurrence_rule"`
}

func (in *appointmentInput) apply(a *model.Appointment) {
	setIf(&a.ClientID, in.ClientID)
	setIf(&a.PolicyID, in.PolicyID)
	setIf(&a.Title, in.Title)
	setIf(&a.Date, in.Date)
	setIf(&a.Time, in.Time)
	setIf(&a.Status, in.Status)
	setIf(&a.Notes, in.Notes)
	setIf(&a.Priority, in.Priority)
	setIf(&a.RecurrenceRule, in.RecurrenceRule)
	if in.RecurrenceRule != nil {
		a.IsRecurring = strings.TrimSpace(*in.RecurrenceRule) != ""
	}
}

// handleCreateAppointment handles POST /v1/appointments.
func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in appointmentInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	a := &model.Appointment{
		ID:       idgen.New(idgen.Appointment),
		UserID:   uid,
		Status:   model.AppointmentPending,
		Priority: model.PriorityNormal,
	}
	in.apply(a)
	if err := model.ValidateAppointment(a); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.CreateAppointment(r.Context(), a); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicAppointmentCreated, a.ID, uid, events.AppointmentChanged{Appointment: a})
	writeJSON(w, http.StatusCreated, a)
}

// appointmentFilter reads the agenda filters from the query.
func appointmentFilter(r *http.Request, uid string) (model.AppointmentFilter, error) {
	q := r.URL.Query()
	f := model.AppointmentFilter{
		UserID:   uid,
		ClientID: q.Get("client_id"),
		PolicyID: q.Get("policy_id"),
		ParentID: q.Get("parent_id"),
	}
	for _, v := range queryList(q, "status") {
		f.Status = append(f.Status, model.AppointmentStatus(v))
	}
	var err error
	if f.DateFrom, err = queryDate(q, "date_from"); err != nil {
		return f, err
	}
	if f.DateTo, err = queryDate(q, "date_to"); err != nil {
		return f, err
	}
	return f, nil
}

// handleListAppointments handles GET /v1/appointments.
func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	filter, err := appointmentFilter(r, uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if filter.Limit, filter.Offset, err = page(r.URL.Query()); err != nil {
		s.fail(w, r, err)
		return
	}
	items, total, err := s.store.ListAppointments(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": nonNil(items), "total": total})
}

// handleGetAppointment handles GET /v1/appointments/{id}.
func (s *Server) handleGetAppointment(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	a, err := s.store.GetAppointment(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleUpdateAppointment handles PATCH /v1/appointments/{id}. Completion
// goes through POST .../complete so that recurring series advance.
func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in appointmentInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if in.Status != nil && *in.Status == model.AppointmentDone {
		s.fail(w, r, inputError("use POST /v1/appointments/{id}/complete to complete an appointment"))
		return
	}
	a, err := s.store.GetAppointment(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	in.apply(a)
	if err := model.ValidateAppointment(a); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.UpdateAppointment(r.Context(), a); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicAppointmentUpdated, a.ID, uid, events.AppointmentChanged{Appointment: a})
	writeJSON(w, http.StatusOK, a)
}

// handleDeleteAppointment handles DELETE /v1/appointments/{id}.
func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.store.DeleteAppointment(r.Context(), uid, id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicAppointmentDeleted, id, uid, events.Deleted{ID: id})
	w.WriteHeader(http.StatusNoContent)
}

// seriesPosition returns the 1-based position of a in its series. The root
// is first; any other member is taken to be the latest of the series rows.
func seriesPosition(ctx context.Context, st store.Store, a *model.Appointment) (int, error) {
	root := a.SeriesRoot()
	if root == a.ID {
		return 1, nil
	}
	_, children, err := st.ListAppointments(ctx, model.AppointmentFilter{
		UserID:   a.UserID,
		ParentID: root,
		Limit:    1,
	})
	if err != nil {
		return 0, fmt.Errorf("count series of %s: %w", a.ID, err)
	}
	return children + 1, nil
}

// completion is the response of POST /v1/appointments/{id}/complete.
type completion struct {
	Appointment *model.Appointment `json:"appointment"`
	Next        *model.Appointment `json:"next_appointment"`
	NextDate    *model.Date        `json:"next_date"`
}

// handleCompleteAppointment handles POST /v1/appointments/{id}/complete.
// The appointment is marked Realizado and, when it recurs, the next
// occurrence is created in the same transaction.
func (s *Server) handleCompleteAppointment(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in struct {
		RecurrenceRule string `json:"recurrence_rule"`
	}
	// The body is optional.
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		s.fail(w, r, inputError("invalid JSON body"))
		return
	}
	in.RecurrenceRule = strings.TrimSpace(in.RecurrenceRule)
	if in.RecurrenceRule != "" {
		if _, err := recurrence.Parse(in.RecurrenceRule); err != nil {
			s.fail(w, r, inputError(err.Error()))
			return
		}
	}

	var res completion
	err := s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		a, err := tx.LockAppointment(r.Context(), uid, r.PathValue("id"))
		if err != nil {
			return err
		}
		if a.Status == model.AppointmentDone {
			return conflictError("appointment is already completed")
		}
		a.Status = model.AppointmentDone
		if in.RecurrenceRule != "" {
			a.RecurrenceRule = in.RecurrenceRule
			a.IsRecurring = true
		}
		if err := tx.UpdateAppointment(r.Context(), a); err != nil {
			return err
		}
		res.Appointment = a

		if a.RecurrenceRule == "" {
			return nil
		}
		rule, fallback := recurrence.ParseOrFallback(a.RecurrenceRule)
		if fallback {
			s.logger.Warn("unparseable recurrence rule, using yearly", "appointment", a.ID, "rule", a.RecurrenceRule)
		}
		base, err := a.StartsAt()
		if err != nil {
			return fmt.Errorf("appointment %s: %w", a.ID, err)
		}
		seq, err := seriesPosition(r.Context(), tx, a)
		if err != nil {
			return err
		}
		nextAt, ok := rule.NextFrom(base, seq)
		if !ok {
			return nil
		}

		priority := a.Priority
		if priority == "" {
			priority = model.PriorityNormal
		}
		next := &model.Appointment{
			ID:                  idgen.New(idgen.Appointment),
			UserID:              a.UserID,
			ClientID:            a.ClientID,
			PolicyID:            a.PolicyID,
			Title:               a.Title,
			Date:                model.DateOf(nextAt),
			Time:                a.Time,
			Status:              model.AppointmentPending,
			Notes:               a.Notes,
			Priority:            priority,
			RecurrenceRule:      a.RecurrenceRule,
			IsRecurring:         true,
			ParentAppointmentID: a.SeriesRoot(),
		}
		if err := tx.CreateAppointment(r.Context(), next); err != nil {
			return err
		}
		res.Next = next
		res.NextDate = &next.Date
		return nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	a := res.Appointment
	s.recordAndPublish(r.Context(), events.TopicAppointmentCompleted, a.ID, uid,
		events.AppointmentCompleted{Appointment: a, Next: res.Next})
	if res.Next != nil {
		s.recordAndPublish(r.Context(), events.TopicAppointmentCreated, res.Next.ID, uid,
			events.AppointmentChanged{Appointment: res.Next})
	}
	writeJSON(w, http.StatusOK, res)
}

// handleAppointmentOccurrences handles GET /v1/appointments/{id}/occurrences?n=5.
func (s *Server) handleAppointmentOccurrences(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	n, err := queryInt(r.URL.Query(), "n", 5)
	if err != nil || n < 1 || n > maxOccurrences {
		s.fail(w, r, inputError(fmt.Sprintf("n must be between 1 and %d", maxOccurrences)))
		return
	}
	a, err := s.store.GetAppointment(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := []time.Time{}
	if a.RecurrenceRule != "" {
		base, err := a.StartsAt()
		if err != nil {
			s.fail(w, r, err)
			return
		}
		seq, err := seriesPosition(r.Context(), s.store, a)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		rule, _ := recurrence.ParseOrFallback(a.RecurrenceRule)
		out = append(out, rule.Upcoming(base, seq, n)...)
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointment_id": a.ID, "occurrences": out})
}

// handleAppointmentsICS handles GET /v1/appointments/calendar.ics.
// Cancelled appointments are left out; only pending recurring ones carry
// their RRULE since completed occurrences already spawned a successor.
func (s *Server) handleAppointmentsICS(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	filter, err := appointmentFilter(r, uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if len(filter.Status) == 0 {
		filter.Status = []model.AppointmentStatus{model.AppointmentPending, model.AppointmentDone}
	}
	items, _, err := s.store.ListAppointments(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agenda.ics"`)
	_, _ = io.WriteString(w, buildCalendar(items, s.now()).Serialize())
}

// buildCalendar renders appointments as VEVENTs. Appointments without a
// time are all-day events; timed ones last an hour.
func buildCalendar(items []*model.Appointment, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//SGC Pro//Agenda//PT-BR")

	for _, a := range items {
		ev := cal.AddEvent(a.ID + "@sgc")
		ev.SetDtStampTime(stamp.UTC())
		ev.SetCreatedTime(a.CreatedAt.UTC())
		ev.SetSummary(a.Title)
		if a.Notes != "" {
			ev.SetDescription(a.Notes)
		}
		if start, err := a.StartsAt(); err == nil && a.Time != "" {
			ev.SetStartAt(start)
			ev.SetEndAt(start.Add(time.Hour))
		} else {
			ev.SetAllDayStartAt(a.Date.Time)
			ev.SetAllDayEndAt(a.Date.AddDays(1).Time)
		}
		if a.Status == model.AppointmentCancelled {
			ev.SetStatus(ical.ObjectStatusCancelled)
		} else {
			ev.SetStatus(ical.ObjectStatusConfirmed)
		}
		if a.Status == model.AppointmentPending && a.RecurrenceRule != "" {
			if rule, err := recurrence.Parse(a.RecurrenceRule); err == nil {
				ev.AddRrule(rule.String())
			}
		}
	}
	return cal
}

// claimInput is the body of POST and PATCH /v1/claims. Status changes go
// through POST /v1/claims/{id}/status.
type claimInput struct {
	PolicyID           *string              `json:"policy_id"`
	ClientID           *string              `json:"client_id"`
	OccurrenceDate     *model.Date          `json:"occurrence_date"`
	ClaimType          *model.ClaimType     `json:"claim_type"`
	Description        *string              `json:"description"`
	Location           *string              `json:"location_occurrence"`
	Circumstances      *string              `json:"circumstances"`
	PoliceReportNumber *string              `json:"police_report_number"`
	ClaimAmount        *float64             `json:"claim_amount"`
	DeductibleAmount   *float64             `json:"deductible_amount"`
	Priority           *model.ClaimPriority `json:"priority"`
	AnalysisDeadline   *model.Date          `json:"analysis_deadline"`
}

func (in *claimInput) apply(c *model.Claim) {
	setIf(&c.PolicyID, in.PolicyID)
	setIf(&c.ClientID, in.ClientID)
	setIf(&c.OccurrenceDate, in.OccurrenceDate)
	setIf(&c.ClaimType, in.ClaimType)
	setIf(&c.Description, in.Description)
	setIf(&c.Location, in.Location)
	setIf(&c.Circumstances, in.Circumstances)
	setIf(&c.PoliceReportNumber, in.PoliceReportNumber)
	setIf(&c.ClaimAmount, in.ClaimAmount)
	setIf(&c.DeductibleAmount, in.DeductibleAmount)
	setIf(&c.Priority, in.Priority)
	setIf(&c.AnalysisDeadline, in.AnalysisDeadline)
}

// fillClaimClient checks the policy of c and copies its client when c has none.
func (s *Server) fillClaimClient(ctx context.Context, c *model.Claim) error {
	if c.PolicyID == "" {
		return nil
	}
	p, err := s.store.GetPolicy(ctx, c.UserID, c.PolicyID)
	if errors.Is(err, store.ErrNotFound) {
		return inputError("policy " + c.PolicyID + " not found")
	}
	if err != nil {
		return err
	}
	if c.ClientID == "" {
		c.ClientID = p.ClientID
	}
	return nil
}

// handleCreateClaim handles POST /v1/claims.
func (s *Server) handleCreateClaim(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in claimInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	c := &model.Claim{
		ID:       idgen.New(idgen.Claim),
		UserID:   uid,
		Priority: model.ClaimPriorityMedium,
		Status:   model.ClaimOpen,
	}
	in.apply(c)
	if err := model.ValidateClaim(c, s.today()); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.fillClaimClient(r.Context(), c); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.CreateClaim(r.Context(), c); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicClaimCreated, c.ID, uid, events.ClaimChanged{Claim: c})
	writeJSON(w, http.StatusCreated, c)
}

// handleListClaims handles GET /v1/claims.
func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := model.ClaimFilter{UserID: uid, PolicyID: q.Get("policy_id"), ClientID: q.Get("client_id")}
	for _, v := range queryList(q, "status") {
		filter.Status = append(filter.Status, model.ClaimStatus(v))
	}
	var err error
	if filter.Limit, filter.Offset, err = page(q); err != nil {
		s.fail(w, r, err)
		return
	}
	claims, total, err := s.store.ListClaims(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"claims": nonNil(claims), "total": total})
}

// handleGetClaim handles GET /v1/claims/{id}.
func (s *Server) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	c, err := s.store.GetClaim(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleUpdateClaim handles PATCH /v1/claims/{id}.
func (s *Server) handleUpdateClaim(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in claimInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.store.GetClaim(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	in.apply(c)
	if err := model.ValidateClaim(c, s.today()); err != nil {
		s.fail(w, r, err)
		return
	}
	if in.PolicyID != nil {
		if err := s.fillClaimClient(r.Context(), c); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if err := s.store.UpdateClaim(r.Context(), c); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicClaimUpdated, c.ID, uid, events.ClaimChanged{Claim: c})
	writeJSON(w, http.StatusOK, c)
}

// handleDeleteClaim handles DELETE /v1/claims/{id}.
func (s *Server) handleDeleteClaim(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.store.DeleteClaim(r.Context(), uid, id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicClaimDeleted, id, uid, events.Deleted{ID: id})
	w.WriteHeader(http.StatusNoContent)
}

// handleClaimStatus handles POST /v1/claims/{id}/status.
func (s *Server) handleClaimStatus(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in struct {
		Status model.ClaimStatus `json:"status"`
	}
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if !in.Status.IsValid() {
		s.fail(w, r, inputError(fmt.Sprintf("invalid status %q", in.Status)))
		return
	}
	c, err := s.store.GetClaim(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	from := c.Status
	if !from.CanTransition(in.Status) {
		s.fail(w, r, conflictError(fmt.Sprintf("cannot move claim from %s to %s", from, in.Status)))
		return
	}
	c.Status = in.Status
	if err := s.store.UpdateClaim(r.Context(), c); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicClaimStatusChanged, c.ID, uid, events.ClaimStatusChanged{Claim: c, From: from})
	writeJSON(w, http.StatusOK, c)
}
