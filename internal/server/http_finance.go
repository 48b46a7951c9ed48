package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sgcpro/sgc/internal/billing"
	"github.com/sgcpro/sgc/internal/events"
	"github.com/sgcpro/sgc/internal/idgen"
	"github.com/sgcpro/sgc/internal/locale"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/store"
)

// transactionView is a transaction with its display title.
type transactionView struct {
	*model.Transaction
	DisplayTitle string `json:"display_title"`
}

// displayNames resolves the names shown in transaction titles.
type displayNames struct {
	clients   map[string]string
	companies map[string]string
	ramos     map[string]string
	policies  map[string]*model.Policy
}

func (s *Server) loadDisplayNames(ctx context.Context, uid string) (*displayNames, error) {
	var (
		clients   []*model.Client
		companies []*model.Company
		ramos     []*model.Ramo
		policies  []*model.Policy
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		clients, _, err = s.store.ListClients(ctx, model.ClientFilter{UserID: uid})
		return err
	})
	g.Go(func() (err error) {
		companies, err = s.store.ListCompanies(ctx, uid)
		return err
	})
	g.Go(func() (err error) {
		ramos, err = s.store.ListRamos(ctx, uid)
		return err
	})
	g.Go(func() (err error) {
		policies, _, err = s.store.ListPolicies(ctx, model.PolicyFilter{UserID: uid})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load display names: %w", err)
	}

	d := &displayNames{
		clients:   make(map[string]string, len(clients)),
		companies: make(map[string]string, len(companies)),
		ramos:     make(map[string]string, len(ramos)),
		policies:  make(map[string]*model.Policy, len(policies)),
	}
	for _, c := range clients {
		d.clients[c.ID] = c.Name
	}
	for _, c := range companies {
		d.companies[c.ID] = c.Name
	}
	for _, r := range ramos {
		d.ramos[r.ID] = r.Name
	}
	for _, p := range policies {
		d.policies[p.ID] = p
	}
	return d, nil
}

func (d *displayNames) view(t *model.Transaction) transactionView {
	data := billing.DisplayData{
		Description: t.Description,
		ClientName:  d.clients[t.ClientID],
		CompanyName: d.companies[t.CompanyID],
	}
	if p := d.policies[t.PolicyID]; p != nil {
		data.PolicyNumber = p.PolicyNumber
		data.RamoName = p.Type
		if name, ok := d.ramos[p.RamoID]; ok {
			data.RamoName = name
		}
		if data.CompanyName == "" {
			data.CompanyName = d.companies[p.CompanyID]
		}
	}
	return transactionView{Transaction: t, DisplayTitle: billing.DisplayTitle(data)}
}

func (s *Server) transactionViews(ctx context.Context, uid string, ts ...*model.Transaction) ([]transactionView, error) {
	d, err := s.loadDisplayNames(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := make([]transactionView, len(ts))
	for i, t := range ts {
		out[i] = d.view(t)
	}
	return out, nil
}

// handleListTransactionTypes handles GET /v1/transaction-types.
func (s *Server) handleListTransactionTypes(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	types, err := s.store.ListTransactionTypes(r.Context(), uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transaction_types": nonNil(types)})
}

// handleCreateTransactionType handles POST /v1/transaction-types.
func (s *Server) handleCreateTransactionType(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in struct {
		Name   string           `json:"name"`
		Nature model.TypeNature `json:"nature"`
	}
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := model.ValidateName("name", in.Name); err != nil {
		s.fail(w, r, err)
		return
	}
	if !in.Nature.IsValid() {
		s.fail(w, r, inputError(fmt.Sprintf("invalid nature %q", in.Nature)))
		return
	}
	tt := &model.TransactionType{ID: idgen.New(idgen.TransactionType), UserID: uid, Name: strings.TrimSpace(in.Name), Nature: in.Nature}
	if err := s.store.CreateTransactionType(r.Context(), tt); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tt)
}

// transactionInput is the body of POST and PATCH /v1/transactions.
type transactionInput struct {
	ClientID        *string                  `json:"client_id"`
	PolicyID        *string                  `json:"policy_id"`
	TypeID          *string                  `json:"type_id"`
	CompanyID       *string                  `json:"company_id"`
	Description     *string                  `json:"description"`
	Amount          *float64                 `json:"amount"`
	Date            *model.Date              `json:"date"`
	TransactionDate *model.Date              `json:"transaction_date"`
	DueDate         *model.Date              `json:"due_date"`
	Status          *model.TransactionStatus `json:"status"`
	Nature          *model.Nature            `json:"nature"`
	BrokerageID     *string                  `json:"brokerage_id"`
	ProducerID      *string                  `json:"producer_id"`
}

func (in *transactionInput) apply(t *model.Transaction) {
	setIf(&t.ClientID, in.ClientID)
	setIf(&t.PolicyID, in.PolicyID)
	setIf(&t.TypeID, in.TypeID)
	setIf(&t.CompanyID, in.CompanyID)
	setIf(&t.Description, in.Description)
	setIf(&t.Amount, in.Amount)
	setIf(&t.Date, in.Date)
	setIf(&t.TransactionDate, in.TransactionDate)
	setIf(&t.DueDate, in.DueDate)
	setIf(&t.Status, in.Status)
	setIf(&t.Nature, in.Nature)
	setIf(&t.BrokerageID, in.BrokerageID)
	setIf(&t.ProducerID, in.ProducerID)
}

// handleCreateTransaction handles POST /v1/transactions.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in transactionInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	today := s.today()
	t := &model.Transaction{
		ID:              idgen.New(idgen.Transaction),
		UserID:          uid,
		Date:            today,
		TransactionDate: today,
		Status:          model.TxPending,
		Nature:          model.NatureIncome,
	}
	in.apply(t)
	if t.Status == model.TxPaid {
		t.PaidAmount = t.Amount
	}
	if err := model.ValidateTransaction(t); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.CreateTransaction(r.Context(), t); err != nil {
		s.fail(w, r, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicTransactionCreated, t.ID, uid, events.TransactionChanged{Transaction: t})
	s.writeTransaction(w, r, http.StatusCreated, uid, t)
}

func (s *Server) writeTransaction(w http.ResponseWriter, r *http.Request, status int, uid string, t *model.Transaction) {
	views, err := s.transactionViews(r.Context(), uid, t)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, status, views[0])
}

// handleListTransactions handles GET /v1/transactions.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := model.TransactionFilter{
		UserID:   uid,
		PolicyID: q.Get("policy_id"),
		ClientID: q.Get("client_id"),
		TypeID:   q.Get("type_id"),
		Nature:   model.Nature(q.Get("nature")),
	}
	for _, v := range queryList(q, "status") {
		filter.Status = append(filter.Status, model.TransactionStatus(v))
	}
	var err error
	if filter.DateFrom, err = queryDate(q, "date_from"); err != nil {
		s.fail(w, r, err)
		return
	}
	if filter.DateTo, err = queryDate(q, "date_to"); err != nil {
		s.fail(w, r, err)
		return
	}
	if filter.Limit, filter.Offset, err = page(q); err != nil {
		s.fail(w, r, err)
		return
	}

	txs, total, err := s.store.ListTransactions(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	views, err := s.transactionViews(r.Context(), uid, txs...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": views, "total": total})
}

// handleGetTransaction handles GET /v1/transactions/{id}.
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	t, err := s.store.GetTransaction(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeTransaction(w, r, http.StatusOK, uid, t)
}

// handleUpdateTransaction handles PATCH /v1/transactions/{id}. The paid
// amount only changes through payments.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in transactionInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.store.GetTransaction(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	in.apply(t)
	if err := model.ValidateTransaction(t); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.UpdateTransaction(r.Context(), t); err != nil {
		s.fail(w, r, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicTransactionUpdated, t.ID, uid, events.TransactionChanged{Transaction: t})
	s.writeTransaction(w, r, http.StatusOK, uid, t)
}

// handleDeleteTransaction handles DELETE /v1/transactions/{id}.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.store.DeleteTransaction(r.Context(), uid, id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicTransactionDeleted, id, uid, events.Deleted{ID: id})
	w.WriteHeader(http.StatusNoContent)
}

// handleCreatePayment handles POST /v1/transactions/{id}/payments. The
// payment and the new paid amount are written in one transaction.
func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in struct {
		Amount      float64    `json:"amount"`
		Description string     `json:"description"`
		PaymentDate model.Date `json:"payment_date"`
	}
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	amount := model.RoundCents(in.Amount)
	if amount <= 0 {
		s.fail(w, r, inputError("amount must be at least R$ 0,01"))
		return
	}

	var (
		p *model.Payment
		t *model.Transaction
	)
	err := s.store.RunInTransaction(r.Context(), func(tx store.Store) error {
		var err error
		if t, err = tx.LockTransaction(r.Context(), uid, r.PathValue("id")); err != nil {
			return err
		}
		if remaining := t.Remaining(); amount > remaining {
			return inputError(fmt.Sprintf("amount %s exceeds the remaining balance of %s",
				locale.BRL(amount), locale.BRL(remaining)))
		}

		p = &model.Payment{
			ID:            idgen.New(idgen.Payment),
			TransactionID: t.ID,
			UserID:        uid,
			Amount:        amount,
			Description:   strings.TrimSpace(in.Description),
			PaymentDate:   in.PaymentDate,
		}
		if p.Description == "" {
			p.Description = "Pagamento parcial de " + locale.BRL(amount)
		}
		if p.PaymentDate.IsZero() {
			p.PaymentDate = s.today()
		}
		if err := tx.CreatePayment(r.Context(), p); err != nil {
			return err
		}

		t.PaidAmount = model.RoundCents(t.PaidAmount + amount)
		if t.Remaining() <= 0 {
			t.Status = model.TxPaid
		} else {
			t.Status = model.TxPartialPaid
		}
		return tx.UpdateTransaction(r.Context(), t)
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicPaymentCreated, t.ID, uid, events.PaymentCreated{Payment: p, Transaction: t})
	views, err := s.transactionViews(r.Context(), uid, t)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"payment": p, "transaction": views[0]})
}

// handleListPayments handles GET /v1/transactions/{id}/payments.
func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	payments, err := s.store.ListPayments(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": nonNil(payments)})
}

// billingInput is the body of POST and PATCH /v1/billing.
type billingInput struct {
	Description *string            `json:"description"`
	Value       *float64           `json:"value"`
	Date        *model.Date        `json:"date"`
	Type        *model.EntryType   `json:"type"`
	Category    *string            `json:"category"`
	Status      *model.EntryStatus `json:"status"`
	CostCenter  *string            `json:"cost_center"`
}

func (in *billingInput) apply(e *model.BillingEntry) {
	setIf(&e.Description, in.Description)
	setIf(&e.Value, in.Value)
	setIf(&e.Date, in.Date)
	setIf(&e.Type, in.Type)
	setIf(&e.Category, in.Category)
	setIf(&e.Status, in.Status)
	setIf(&e.CostCenter, in.CostCenter)
}

// validateEntry checks e and that its category is in the chart of accounts.
func (s *Server) validateEntry(e *model.BillingEntry) error {
	if err := model.ValidateBillingEntry(e); err != nil {
		return err
	}
	if e.Category != "" && !s.chart.Has(e.Type, e.Category) {
		return inputError(fmt.Sprintf("category %q is not in the chart of accounts for %s", e.Category, e.Type))
	}
	return nil
}

// handleCreateBillingEntry handles POST /v1/billing.
func (s *Server) handleCreateBillingEntry(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in billingInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	e := &model.BillingEntry{ID: idgen.New(idgen.BillingEntry), UserID: uid, Date: s.today(), Status: model.EntryPending}
	in.apply(e)
	if err := s.validateEntry(e); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.CreateBillingEntry(r.Context(), e); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicBillingCreated, e.ID, uid, events.BillingChanged{Entry: e})
	writeJSON(w, http.StatusCreated, e)
}

// billingFilter reads the ledger filters from the query.
func billingFilter(r *http.Request, uid string) (model.BillingFilter, error) {
	q := r.URL.Query()
	f := model.BillingFilter{
		UserID:     uid,
		Type:       model.EntryType(q.Get("type")),
		Status:     model.EntryStatus(q.Get("status")),
		Category:   q.Get("category"),
		CostCenter: q.Get("cost_center"),
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

// handleListBillingEntries handles GET /v1/billing.
func (s *Server) handleListBillingEntries(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	filter, err := billingFilter(r, uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if filter.Limit, filter.Offset, err = page(r.URL.Query()); err != nil {
		s.fail(w, r, err)
		return
	}
	entries, total, err := s.store.ListBillingEntries(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": nonNil(entries), "total": total})
}

// handleBillingMetrics handles GET /v1/billing/metrics with the same
// filters as the list.
func (s *Server) handleBillingMetrics(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	filter, err := billingFilter(r, uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	entries, _, err := s.store.ListBillingEntries(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, billing.Compute(entries))
}

// handleChartOfAccounts handles GET /v1/billing/accounts.
func (s *Server) handleChartOfAccounts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.chart)
}

// handleGetBillingEntry handles GET /v1/billing/{id}.
func (s *Server) handleGetBillingEntry(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	e, err := s.store.GetBillingEntry(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// handleUpdateBillingEntry handles PATCH /v1/billing/{id}.
func (s *Server) handleUpdateBillingEntry(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in billingInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.store.GetBillingEntry(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	in.apply(e)
	if err := s.validateEntry(e); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.UpdateBillingEntry(r.Context(), e); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicBillingUpdated, e.ID, uid, events.BillingChanged{Entry: e})
	writeJSON(w, http.StatusOK, e)
}

// handleDeleteBillingEntry handles DELETE /v1/billing/{id}.
func (s *Server) handleDeleteBillingEntry(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.store.DeleteBillingEntry(r.Context(), uid, id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicBillingDeleted, id, uid, events.Deleted{ID: id})
	w.WriteHeader(http.StatusNoContent)
}
