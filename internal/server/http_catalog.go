package server

import (
	"net/http"
	"strings"

	"github.com/sgcpro/sgc/internal/billing"
	"github.com/sgcpro/sgc/internal/idgen"
	"github.com/sgcpro/sgc/internal/model"
)

// handleListProducers handles GET /v1/producers.
func (s *Server) handleListProducers(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	items, err := s.store.ListProducers(r.Context(), uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"producers": nonNil(items)})
}

// decodeProducer reads and validates a producer body.
func decodeProducer(r *http.Request, p *model.Producer) error {
	if err := decodeBody(r, p); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := model.ValidateName("name", p.Name); err != nil {
		return err
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return inputError("invalid email " + p.Email)
	}
	return nil
}

// handleCreateProducer handles POST /v1/producers.
func (s *Server) handleCreateProducer(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var p model.Producer
	if err := decodeProducer(r, &p); err != nil {
		s.fail(w, r, err)
		return
	}
	p.ID, p.UserID = idgen.New(idgen.Producer), uid
	if err := s.store.CreateProducer(r.Context(), &p); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &p)
}

// handleUpdateProducer handles PUT /v1/producers/{id}.
func (s *Server) handleUpdateProducer(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var p model.Producer
	if err := decodeProducer(r, &p); err != nil {
		s.fail(w, r, err)
		return
	}
	p.ID, p.UserID = r.PathValue("id"), uid
	if err := s.store.UpdateProducer(r.Context(), &p); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &p)
}

// handleDeleteProducer handles DELETE /v1/producers/{id}.
func (s *Server) handleDeleteProducer(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteProducer(r.Context(), uid, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListCompanies handles GET /v1/companies.
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	items, err := s.store.ListCompanies(r.Context(), uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": nonNil(items)})
}

// handleCreateCompany handles POST /v1/companies.
func (s *Server) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var c model.Company
	if err := decodeBody(r, &c); err != nil {
		s.fail(w, r, err)
		return
	}
	c.Name = strings.TrimSpace(c.Name)
	if err := model.ValidateName("name", c.Name); err != nil {
		s.fail(w, r, err)
		return
	}
	c.ID, c.UserID = idgen.New(idgen.Company), uid
	if err := s.store.CreateCompany(r.Context(), &c); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &c)
}

// handleUpdateCompany handles PUT /v1/companies/{id}.
func (s *Server) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var c model.Company
	if err := decodeBody(r, &c); err != nil {
		s.fail(w, r, err)
		return
	}
	c.Name = strings.TrimSpace(c.Name)
	if err := model.ValidateName("name", c.Name); err != nil {
		s.fail(w, r, err)
		return
	}
	c.ID, c.UserID = r.PathValue("id"), uid
	if err := s.store.UpdateCompany(r.Context(), &c); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &c)
}

// handleDeleteCompany handles DELETE /v1/companies/{id}. A company still
// referenced by a policy gives 409.
func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteCompany(r.Context(), uid, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListRamos handles GET /v1/ramos.
func (s *Server) handleListRamos(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	items, err := s.store.ListRamos(r.Context(), uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ramos": nonNil(items)})
}

// handleCreateRamo handles POST /v1/ramos.
func (s *Server) handleCreateRamo(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var rm model.Ramo
	if err := decodeBody(r, &rm); err != nil {
		s.fail(w, r, err)
		return
	}
	rm.Name = strings.TrimSpace(rm.Name)
	if err := model.ValidateName("nome", rm.Name); err != nil {
		s.fail(w, r, err)
		return
	}
	rm.ID, rm.UserID = idgen.New(idgen.Ramo), uid
	if err := s.store.CreateRamo(r.Context(), &rm); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &rm)
}

// handleUpdateRamo handles PUT /v1/ramos/{id}.
func (s *Server) handleUpdateRamo(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var rm model.Ramo
	if err := decodeBody(r, &rm); err != nil {
		s.fail(w, r, err)
		return
	}
	rm.Name = strings.TrimSpace(rm.Name)
	if err := model.ValidateName("nome", rm.Name); err != nil {
		s.fail(w, r, err)
		return
	}
	rm.ID, rm.UserID = r.PathValue("id"), uid
	if err := s.store.UpdateRamo(r.Context(), &rm); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &rm)
}

// handleDeleteRamo handles DELETE /v1/ramos/{id}.
func (s *Server) handleDeleteRamo(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteRamo(r.Context(), uid, r.PathValue("id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ramoScore is one candidate of GET /v1/ramos/infer.
type ramoScore struct {
	ID    string  `json:"id"`
	Nome  string  `json:"nome"`
	Score float64 `json:"score"`
}

// handleInferRamo handles GET /v1/ramos/infer?description=.
func (s *Server) handleInferRamo(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	description := r.URL.Query().Get("description")
	ramos, err := s.store.ListRamos(r.Context(), uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	names := make([]string, len(ramos))
	scores := []ramoScore{}
	for i, rm := range ramos {
		names[i] = rm.Name
		if sc := billing.SimilarityScore(description, rm.Name); sc > 0 {
			scores = append(scores, ramoScore{ID: rm.ID, Nome: rm.Name, Score: sc})
		}
	}
	resp := map[string]any{"ramo": nil, "scores": scores}
	if name := billing.InferRamo(description, names); name != "" {
		for _, rm := range ramos {
			if rm.Name == name {
				resp["ramo"] = rm
				break
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetProfile handles GET /v1/profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	p, err := s.store.GetProfile(r.Context(), uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handlePutProfile handles PUT /v1/profile. Profiles drive the daily
// metrics: only active ones are consolidated.
func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var p model.Profile
	if err := decodeBody(r, &p); err != nil {
		s.fail(w, r, err)
		return
	}
	p.ID = uid
	if err := model.ValidateName("nome_completo", p.FullName); err != nil {
		s.fail(w, r, err)
		return
	}
	switch p.Role {
	case "":
		p.Role = model.RoleBroker
	case model.RoleAdmin, model.RoleBroker, model.RoleAssistant:
	default:
		s.fail(w, r, inputError("invalid role "+string(p.Role)))
		return
	}
	if err := s.store.UpsertProfile(r.Context(), &p); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &p)
}
