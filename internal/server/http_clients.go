package server

import (
	"encoding/csv"
	"net/http"
	"strings"

	"github.com/sgcpro/sgc/internal/dates"
	"github.com/sgcpro/sgc/internal/dedup"
	"github.com/sgcpro/sgc/internal/events"
	"github.com/sgcpro/sgc/internal/idgen"
	"github.com/sgcpro/sgc/internal/locale"
	"github.com/sgcpro/sgc/internal/model"
)

// clientInput is the body of POST and PATCH /v1/clients. Nil fields are
// left unchanged on update.
type clientInput struct {
	Name         *string             `json:"name"`
	Email        *string             `json:"email"`
	Phone        *string             `json:"phone"`
	CPFCNPJ      *string             `json:"cpf_cnpj"`
	BirthDate    *model.Date         `json:"birth_date"`
	Address      *string             `json:"address"`
	Status       *model.ClientStatus `json:"status"`
	Observations *string             `json:"observations"`
}

func (in *clientInput) apply(c *model.Client) {
	setIf(&c.Name, in.Name)
	setIf(&c.Email, in.Email)
	setIf(&c.Phone, in.Phone)
	setIf(&c.CPFCNPJ, in.CPFCNPJ)
	setIf(&c.BirthDate, in.BirthDate)
	setIf(&c.Address, in.Address)
	setIf(&c.Status, in.Status)
	setIf(&c.Observations, in.Observations)
}

// setIf copies *src into dst when src is set.
func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// handleCreateClient handles POST /v1/clients.
func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in clientInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}

	c := &model.Client{ID: idgen.New(idgen.Client), UserID: uid, Status: model.ClientActive}
	in.apply(c)
	if err := model.ValidateClient(c); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.CreateClient(r.Context(), c); err != nil {
		s.fail(w, r, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicClientCreated, c.ID, uid, events.ClientChanged{Client: c})
	writeJSON(w, http.StatusCreated, c)
}

// handleListClients handles GET /v1/clients.
func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	filter, err := clientFilter(r, uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if filter.Limit, filter.Offset, err = page(r.URL.Query()); err != nil {
		s.fail(w, r, err)
		return
	}

	clients, total, err := s.store.ListClients(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"clients": nonNil(clients),
		"total":   total,
	})
}

// clientFilter reads the search, status, seguradora and ramo parameters.
// A status of "todos" means any status.
func clientFilter(r *http.Request, uid string) (model.ClientFilter, error) {
	q := r.URL.Query()
	f := model.ClientFilter{
		UserID:    uid,
		Search:    strings.TrimSpace(q.Get("search")),
		CompanyID: q.Get("seguradora"),
		Ramo:      q.Get("ramo"),
	}
	if v := q.Get("status"); v != "" && v != "todos" {
		f.Status = model.ClientStatus(v)
		if !f.Status.IsValid() {
			return f, inputError("invalid status " + v)
		}
	}
	return f, nil
}

// handleGetClient handles GET /v1/clients/{id}.
func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	c, err := s.store.GetClient(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleUpdateClient handles PATCH /v1/clients/{id}.
func (s *Server) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var in clientInput
	if err := decodeBody(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := s.store.GetClient(r.Context(), uid, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	in.apply(c)
	if err := model.ValidateClient(c); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.store.UpdateClient(r.Context(), c); err != nil {
		s.fail(w, r, err)
		return
	}

	s.recordAndPublish(r.Context(), events.TopicClientUpdated, c.ID, uid, events.ClientChanged{Client: c})
	writeJSON(w, http.StatusOK, c)
}

// handleDeleteClient handles DELETE /v1/clients/{id}.
func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := s.store.DeleteClient(r.Context(), uid, id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.recordAndPublish(r.Context(), events.TopicClientDeleted, id, uid, events.Deleted{ID: id})
	w.WriteHeader(http.StatusNoContent)
}

// handleClientDuplicates handles GET /v1/clients/duplicates.
func (s *Server) handleClientDuplicates(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	clients, _, err := s.store.ListClients(r.Context(), model.ClientFilter{UserID: uid})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rep := dedup.Find(clients)
	rep.Groups = nonNil(rep.Groups)
	writeJSON(w, http.StatusOK, rep)
}

// handleClientKPIs handles GET /v1/clients/kpis.
func (s *Server) handleClientKPIs(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	filter, err := clientFilter(r, uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	k, err := s.store.ClientKPIs(r.Context(), filter, s.now().AddDate(0, 0, -30))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, k)
}

// handleClientBirthdays handles GET /v1/clients/birthdays?scope=today|week.
func (s *Server) handleClientBirthdays(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	match := dates.IsBirthdayToday
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "today":
	case "week":
		match = dates.IsBirthdayThisWeek
	default:
		s.fail(w, r, inputError("scope must be today or week"))
		return
	}

	clients, _, err := s.store.ListClients(r.Context(), model.ClientFilter{UserID: uid, Status: model.ClientActive})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	today := s.today()
	var out []*model.Client
	for _, c := range clients {
		if match(c.BirthDate, today) {
			out = append(out, c)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": nonNil(out), "date": today})
}

var clientCSVHeader = []string{"Nome", "Email", "Telefone", "CPF/CNPJ", "Nascimento", "Endereço", "Status", "Observações"}

// handleExportClients handles GET /v1/clients/export.csv.
func (s *Server) handleExportClients(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	filter, err := clientFilter(r, uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	clients, _, err := s.store.ListClients(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="clientes.csv"`)
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	_ = cw.Write(clientCSVHeader)
	for _, c := range clients {
		_ = cw.Write([]string{
			c.Name, c.Email, c.Phone, c.CPFCNPJ, locale.Date(c.BirthDate),
			c.Address, string(c.Status), c.Observations,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.Warn("write clients csv", "error", err)
	}
}
