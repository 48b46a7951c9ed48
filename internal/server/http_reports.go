package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sgcpro/sgc/internal/blob"
	"github.com/sgcpro/sgc/internal/events"
	"github.com/sgcpro/sgc/internal/idgen"
	"github.com/sgcpro/sgc/internal/model"
	"github.com/sgcpro/sgc/internal/report"
)

// handleExtractQuote handles POST /v1/quotes/extract. The PDF comes either
// as the multipart field "file" or as a stored object named by {"key"}.
func (s *Server) handleExtractQuote(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if s.quotes == nil {
		s.fail(w, r, fmt.Errorf("quote extraction %w", errNotConfigured))
		return
	}

	id := idgen.New(idgen.Quote)
	var (
		pdf []byte
		key string
		err error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		pdf, err = readUpload(w, r)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if s.blobs != nil {
			key = "quotes/" + uid + "/" + id + ".pdf"
			if err := s.blobs.Put(r.Context(), key, blob.Object{Data: pdf, ContentType: "application/pdf"}); err != nil {
				s.fail(w, r, fmt.Errorf("store quote: %w", err))
				return
			}
		}
	} else {
		var in struct {
			Key string `json:"key"`
		}
		if err := decodeBody(r, &in); err != nil {
			s.fail(w, r, err)
			return
		}
		if s.blobs == nil {
			s.fail(w, r, fmt.Errorf("document storage %w", errNotConfigured))
			return
		}
		// Stored quotes are only readable by their owner.
		if !strings.HasPrefix(in.Key, "quotes/"+uid+"/") {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		obj, err := s.blobs.Get(r.Context(), in.Key)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		pdf, key = obj.Data, in.Key
	}

	res, err := s.quotes.Extract(r.Context(), uid, pdf)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res.DocumentKey = key
	s.recordAndPublish(r.Context(), events.TopicQuoteExtracted, id, uid, res)
	writeJSON(w, http.StatusOK, res)
}

// readUpload reads the multipart "file" field.
func readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentSize)
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, inputError("file is required")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, inputError("file too large or unreadable")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, inputError("file is not a PDF")
	}
	return data, nil
}

// reportFilter reads the report period and selections.
func reportFilter(r *http.Request) (report.Filter, error) {
	q := r.URL.Query()
	f := report.Filter{
		Companies: queryList(q, "seguradoras"),
		Ramos:     queryList(q, "ramos"),
		Producers: queryList(q, "produtores"),
	}
	for _, v := range queryList(q, "status") {
		f.Status = append(f.Status, model.PolicyStatus(v))
	}
	var err error
	if f.From, err = queryDate(q, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(q, "to"); err != nil {
		return f, err
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, inputError("to must not be before from")
	}
	return f, nil
}

// handlePolicyReport handles GET /v1/reports/policies?format=json|csv|pdf.
func (s *Server) handlePolicyReport(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	f, err := reportFilter(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "csv", "pdf":
	default:
		s.fail(w, r, inputError("format must be json, csv or pdf"))
		return
	}

	rep, err := report.BuildPolicies(r.Context(), s.store, uid, f)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	// Render into a buffer so a failure can still become a JSON error.
	var buf bytes.Buffer
	switch format {
	case "csv":
		err = report.WriteCSV(&buf, rep)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="apolices.csv"`)
	case "pdf":
		err = report.WritePDF(&buf, rep, s.now().In(s.loc))
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="apolices.pdf"`)
	default:
		err = json.NewEncoder(&buf).Encode(rep)
		w.Header().Set("Content-Type", "application/json")
	}
	if err != nil {
		w.Header().Del("Content-Disposition")
		s.fail(w, r, fmt.Errorf("render report: %w", err))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// handleReportMetadata handles GET /v1/reports/metadata.
func (s *Server) handleReportMetadata(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	md, err := report.BuildMetadata(r.Context(), s.store, uid)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}

// handleBillingReport handles GET /v1/reports/billing?from=&to=.
func (s *Server) handleBillingReport(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	f, err := reportFilter(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rep, err := report.BuildBilling(r.Context(), s.store, uid, f.From, f.To)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
