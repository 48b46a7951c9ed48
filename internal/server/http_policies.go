package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sgcpro/sgc/internal/blob"
	"github.com/sgcpro/sgc/internal/commission"
	"github.com/sgcpro/sgc/internal/dates"
	"github.com/sgcpro/sgc/internal/events"
	"github.com/sgcpro/sgc/internal/idgen"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

// maxDocumentSize bounds uploaded PDFs.
const maxDocumentSize = 20 << 20

// policyView is a policy with its computed renewal schedule.
type policyView struct {
	*model.Policy
	Renewal *model.RenewalInfo `json:"renewal"`
}

func (s *Server) policyView(p *model.Policy) policyView {
	return policyView{Policy: p, Renewal: p.Renewal(s.today())}
}

func (s *Server) policyViews(ps []*model.Policy) []policyView {
	out := make([]policyView, len(ps))
	for i, p := range ps {
		out[i] = s.policyView(p)
	}
	return out
}

// policyInput is the body of POST and PATCH /v1/policies.
type policyInput struct {
	ClientID         *string              `json:"client_id"`
	PolicyNumber     *string              `json:"policy_number"`
	CompanyID        *string              `json:"insurance_company"`
	Type             *string              `json:"type"`
	RamoID           *string              `json:"ramo_id"`
	InsuredAsset     *string              `json:"insured_asset"`
	PremiumValue     *float64             `json:"premium_value"`
	CommissionRate   *float64             `json:"commission_rate"`
	StartDate        *model.Date          `json:"start_date"`
	ExpirationDate   *model.Date          `json:"expiration_date"`
	Status           *model.PolicyStatus  `json:"status"`
	RenewalStatus    *model.RenewalStatus `json:"renewal_status"`
	AutomaticRenewal *bool                `json:"automatic_renewal"`
	ProducerID       *string              `json:"producer_id"`
	BrokerageID      *string              `json:"brokerage_id"`
}

func (in *policyInput) apply(p *model.Policy) {
	setIf(&p.ClientID, in.ClientID)
	setIf(&p.PolicyNumber, in.PolicyNumber)
	setIf(&p.CompanyID, in.CompanyID)
	setIf(&p.Type, in.Type)
	setIf(&p.RamoID, in.RamoID)
	setIf(&p.InsuredAsset, in.InsuredAsset)
	setIf(&p.PremiumValue, in.PremiumValue)
	setIf(&p.CommissionRate, in.CommissionRate)
	setIf(&p.StartDate, in.StartDate)
	setIf(&p.ExpirationDate, in.ExpirationDate)
	setIf(&p.Status, in.Status)
	setIf(&p.RenewalStatus, in.RenewalStatus)
	setIf(&p.AutomaticRenewal, in.AutomaticRenewal)
	setIf(&p.ProducerID, in.ProducerID)
	setIf(&p.BrokerageID, in.BrokerageID)
}

// checkPolicyRefs verifies that the client of p belongs to its owner.
func checkPolicyRefs(ctx context.Context, tx store.Store, p *model.Policy) error {
	if _, err := tx.GetClient(ctx, p.UserID, p.ClientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return inputError("client " + p.ClientID + " not found")
		}
		return err
	}
	return nil
}

// generateCommission creates the commission of an activated policy inside tx.
func (s *Server) generateCommission(ctx context.Context, tx store.Store, p *model.Policy) (*model.Transaction, error) {
	if err := commission.EnsureDefaultTypes(ctx, tx, p.UserID); err != nil {
		return nil, err
	}
	res, err := commission.Generate(ctx, tx, p, commission.Options{Today: s.today()})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("commission generated", "policy", p.ID, "status", res.Status, "reason", res.Reason)
	return res.Transaction, nil
}

// handleCreatePolicy handles POST /v1/policies. A policy created as Ativa
// gets its commission in the same transaction.
func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in policyInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	p := &model.Policy{ID: idgen.New(idgen.Policy), UserID: uid, Status: model.PolicyQuote}
	in.apply(p)
	if err := model.ValidatePolicy(p); err != nil {
		s.fail(w, r, err)
		return
	}

	var comm *model.Transaction
	err := s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		if err := checkPolicyRefs(r.Context(), tx, p); err != nil {
			return err
		}
		if err := tx.CreatePolicy(r.Context(), p); err != nil {
			return err
		}
		if p.Status != model.PolicyActive {
			return nil
		}
		var err error
		comm, err = s.generateCommission(r.Context(), tx, p)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicPolicyCreated, p.ID, uid, events.PolicyChanged{Policy: p})
	if p.Status == model.PolicyActive {
		s.recordAndPublish(r.Context(), events.TopicPolicyActivated, p.ID, uid, events.PolicyActivated{Policy: p, Commission: comm})
	}
	writeJSON(w, http.StatusCreated, s.policyView(p))
}

// handleListPolicies handles GET /v1/policies.
func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := model.PolicyFilter{
		UserID:      uid,
		ClientID:    q.Get("client_id"),
		CompanyIDs:  queryList(q, "seguradora"),
		Ramos:       queryList(q, "ramo"),
		ProducerIDs: queryList(q, "produtor"),
		Search:      q.Get("search"),
	}
	for _, v := range queryList(q, "status") {
		filter.Status = append(filter.Status, model.PolicyStatus(v))
	}
	days, err := queryInt(q, "expiring_within", -1)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if days >= 0 {
		today := s.today()
		filter.ExpiresFrom, filter.ExpiresTo = today, today.AddDays(days)
	}
	if filter.Limit, filter.Offset, err = page(q); err != nil {
		s.fail(w, r, err)
		return
	}

	policies, total, err := s.store.ListPolicies(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"policies": s.policyViews(policies),
		"total":    total,
	})
}

// handleExpiringPolicies handles GET /v1/policies/expiring?days=60.
func (s *Server) handleExpiringPolicies(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	days, err := queryInt(r.URL.Query(), "days", model.ExpiringWindowDays)
	if err != nil || days < 0 {
		s.fail(w, r, inputError("days must be a non-negative integer"))
		return
	}
	today := s.today()
	policies, total, err := s.store.ListPolicies(r.Context(), model.PolicyFilter{
		UserID:      uid,
		Status:      []model.PolicyStatus{model.PolicyActive},
		ExpiresFrom: today,
		ExpiresTo:   today.AddDays(days),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	type expiring struct {
		policyView
		DaysUntilExpiration int `json:"days_until_expiration"`
	}
	out := make([]expiring, len(policies))
	for i, p := range policies {
		out[i] = expiring{s.policyView(p), dates.DaysUntil(today, p.ExpirationDate)}
	}
	writeJSON(w, http.StatusOK, map[string]any{"policies": out, "total": total})
}

// handleGetPolicy handles GET /v1/policies/{id}.
func (s *Server) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, err := s.store.GetPolicy(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.policyView(p))
}

// handleUpdatePolicy handles PATCH /v1/policies/{id}. Moving a policy to
// Ativa generates its commission like POST .../activate does.
func (s *Server) handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in policyInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}

	var (
		p         *model.Policy
		comm      *model.Transaction
		activated bool
	)
	err := s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		var err error
		if p, err = tx.LockPolicy(r.Context(), uid, r.PathValue("id")); err != nil {
			return err
		}
		before := p.Status
		in.apply(p)
		if err := model.ValidatePolicy(p); err != nil {
			return err
		}
		if in.ClientID != nil {
			if err := checkPolicyRefs(r.Context(), tx, p); err != nil {
				return err
			}
		}
		if err := tx.UpdatePolicy(r.Context(), p); err != nil {
			return err
		}
		if before == model.PolicyActive || p.Status != model.PolicyActive {
			return nil
		}
		activated = true
		comm, err = s.generateCommission(r.Context(), tx, p)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicPolicyUpdated, p.ID, uid, events.PolicyChanged{Policy: p})
	if activated {
		s.recordAndPublish(r.Context(), events.TopicPolicyActivated, p.ID, uid, events.PolicyActivated{Policy: p, Commission: comm})
	}
	writeJSON(w, http.StatusOK, s.policyView(p))
}

// handleDeletePolicy handles DELETE /v1/policies/{id}.
func (s *Server) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.store.DeletePolicy(r.Context(), uid, id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicPolicyDeleted, id, uid, events.Deleted{ID: id})
	w.WriteHeader(http.StatusNoContent)
}

// handleActivatePolicy handles POST /v1/policies/{id}/activate.
func (s *Server) handleActivatePolicy(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var (
		p    *model.Policy
		comm *model.Transaction
	)
	err := s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		var err error
		if p, err = tx.LockPolicy(r.Context(), uid, r.PathValue("id")); err != nil {
			return err
		}
		switch p.Status {
		case model.PolicyCancelled, model.PolicyRenewed:
			return conflictError(fmt.Sprintf("cannot activate a policy in status %s", p.Status))
		}
		p.Status = model.PolicyActive
		if err := model.ValidatePolicy(p); err != nil {
			return err
		}
		if err := tx.UpdatePolicy(r.Context(), p); err != nil {
			return err
		}
		comm, err = s.generateCommission(r.Context(), tx, p)
		return err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicPolicyActivated, p.ID, uid, events.PolicyActivated{Policy: p, Commission: comm})
	writeJSON(w, http.StatusOK, map[string]any{
		"policy":     s.policyView(p),
		"commission": comm,
	})
}

// handleCancelPolicy handles POST /v1/policies/{id}/cancel.
func (s *Server) handleCancelPolicy(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, err := s.store.GetPolicy(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if p.Status == model.PolicyCancelled {
		s.fail(w, r, conflictError("policy is already cancelled"))
		return
	}
	p.Status = model.PolicyCancelled
	if err := s.store.UpdatePolicy(r.Context(), p); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicPolicyCancelled, p.ID, uid, events.PolicyChanged{Policy: p})
	writeJSON(w, http.StatusOK, s.policyView(p))
}

// handleRenewPolicy handles POST /v1/policies/{id}/renew. The policy is
// marked Renovada and a successor awaiting issue starts on its expiration.
func (s *Server) handleRenewPolicy(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var old, next *model.Policy
	err := s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		var err error
		if old, err = tx.LockPolicy(r.Context(), uid, r.PathValue("id")); err != nil {
			return err
		}
		if old.Status != model.PolicyActive {
			return conflictError(fmt.Sprintf("only %s policies can be renewed", model.PolicyActive))
		}
		if old.ExpirationDate.IsZero() {
			return conflictError("policy has no expiration date")
		}

		old.Status = model.PolicyRenewed
		old.RenewalStatus = model.RenewalRenewed
		if err := tx.UpdatePolicy(r.Context(), old); err != nil {
			return err
		}

		next = &model.Policy{
			ID:               idgen.New(idgen.Policy),
			UserID:           uid,
			ClientID:         old.ClientID,
			PolicyNumber:     old.PolicyNumber,
			CompanyID:        old.CompanyID,
			Type:             old.Type,
			RamoID:           old.RamoID,
			InsuredAsset:     old.InsuredAsset,
			PremiumValue:     old.PremiumValue,
			CommissionRate:   old.CommissionRate,
			StartDate:        old.ExpirationDate,
			ExpirationDate:   dates.AddYears(old.ExpirationDate, 1),
			Status:           model.PolicyAwaitingIssue,
			RenewalStatus:    model.RenewalRenewed,
			AutomaticRenewal: old.AutomaticRenewal,
			ProducerID:       old.ProducerID,
			BrokerageID:      old.BrokerageID,
		}
		return tx.CreatePolicy(r.Context(), next)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicPolicyRenewed, old.ID, uid, events.PolicyRenewed{Policy: old, Successor: next})
	writeJSON(w, http.StatusOK, map[string]any{
		"policy":    s.policyView(old),
		"successor": s.policyView(next),
	})
}

// documentKey is where the PDF of a policy is stored.
func documentKey(p *model.Policy) string {
	return "policies/" + p.UserID + "/" + p.ID + ".pdf"
}

// handlePutPolicyDocument handles PUT /v1/policies/{id}/document. The body
// is the PDF itself.
func (s *Server) handlePutPolicyDocument(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if s.blobs == nil {
		s.fail(w, r, fmt.Errorf("document storage %w", errNotConfigured))
		return
	}
	p, err := s.store.GetPolicy(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		s.fail(w, r, inputError("document too large or unreadable"))
		return
	}
	if len(data) == 0 {
		s.fail(w, r, inputError("document is empty"))
		return
	}

	key := documentKey(p)
	if err := s.blobs.Put(r.Context(), key, blob.Object{Data: data, ContentType: "application/pdf"}); err != nil {
		s.fail(w, r, fmt.Errorf("store document: %w", err))
		return
	}
	p.DocumentKey = key
	if err := s.store.UpdatePolicy(r.Context(), p); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicPolicyUpdated, p.ID, uid, events.PolicyChanged{Policy: p})
	writeJSON(w, http.StatusOK, s.policyView(p))
}

// handleGetPolicyDocument handles GET /v1/policies/{id}/document.
func (s *Server) handleGetPolicyDocument(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if s.blobs == nil {
		s.fail(w, r, fmt.Errorf("document storage %w", errNotConfigured))
		return
	}
	p, err := s.store.GetPolicy(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if p.DocumentKey == "" {
		writeError(w, http.StatusNotFound, "policy has no document")
		return
	}
	obj, err := s.blobs.Get(r.Context(), p.DocumentKey)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ct := obj.ContentType
	if ct == "" {
		ct = "application/pdf"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(obj.Data)
}
