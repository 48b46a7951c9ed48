// Package quote extracts policy data from quote PDFs with Gemini and
// matches the extracted names against the broker's reference data.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sgcpro/sgc/internal/store"
)

// ErrNoJSON is returned when the model reply holds no JSON object.
var ErrNoJSON = errors.New("não foi possível extrair JSON da resposta")

// Extractor sends a PDF and a prompt to a language model and returns its
// text reply.
type Extractor interface {
	Extract(ctx context.Context, pdf []byte, prompt string) (string, error)
}

// Reference is the user's data offered to the model and used for matching.
type Reference struct {
	Ramos     []Item
	Companies []Item
	Clients   []Item
}

// promptClientLimit caps the client names listed in the prompt.
const promptClientLimit = 100

// LoadReference reads the ramos, companies and clients of userID
// concurrently.
func LoadReference(ctx context.Context, s store.Store, userID string) (*Reference, error) {
	ref := &Reference{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ramos, err := s.ListRamos(ctx, userID)
		if err != nil {
			return fmt.Errorf("erro ao buscar ramos: %w", err)
		}
		for _, r := range ramos {
			ref.Ramos = append(ref.Ramos, Item{ID: r.ID, Name: r.Name})
		}
		return nil
	})
	g.Go(func() error {
		companies, err := s.ListCompanies(ctx, userID)
		if err != nil {
			return fmt.Errorf("erro ao buscar seguradoras: %w", err)
		}
		for _, c := range companies {
			ref.Companies = append(ref.Companies, Item{ID: c.ID, Name: c.Name})
		}
		return nil
	})
	g.Go(func() error {
		clients, _, err := s.ListClients(ctx, clientFilter(userID))
		if err != nil {
			return fmt.Errorf("erro ao buscar clientes: %w", err)
		}
		for _, c := range clients {
			ref.Clients = append(ref.Clients, Item{ID: c.ID, Name: c.Name})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ref, nil
}

// Extracted is the JSON object the model is asked to produce.
type Extracted struct {
	ClientName            string   `json:"clientName,omitempty"`
	InsuredItem           string   `json:"insuredItem,omitempty"`
	InsurerName           string   `json:"insurerName,omitempty"`
	InsuranceLine         string   `json:"insuranceLine,omitempty"`
	PolicyNumber          string   `json:"policyNumber,omitempty"`
	PremiumValue          *float64 `json:"premiumValue"`
	CommissionPercentage  *float64 `json:"commissionPercentage"`
	ShouldGenerateRenewal bool     `json:"shouldGenerateRenewal"`
	StartDate             string   `json:"startDate,omitempty"`
}

// MatchingDetails reports how each name was matched.
type MatchingDetails struct {
	ClientMatch  Quality `json:"clientMatch"`
	InsurerMatch Quality `json:"insurerMatch"`
	RamoMatch    Quality `json:"ramoMatch"`
}

// Result is the extraction enriched with reference ids.
type Result struct {
	Extracted
	ClientID        string          `json:"clientId,omitempty"`
	InsurerID       string          `json:"insurerId,omitempty"`
	InsuranceLineID string          `json:"insuranceLineId,omitempty"`
	MatchingDetails MatchingDetails `json:"matchingDetails"`
	DocumentKey     string          `json:"documentKey,omitempty"`
}

// ParseReply decodes the JSON object embedded in a model reply, which may
// be wrapped in prose or a fenced code block.
func ParseReply(reply string) (*Extracted, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return nil, ErrNoJSON
	}
	var ext Extracted
	if err := json.Unmarshal([]byte(reply[start:end+1]), &ext); err != nil {
		return nil, fmt.Errorf("decode extracted data: %w", err)
	}
	return &ext, nil
}

// Match replaces extracted names with their canonical reference names and
// fills in the matched ids.
func Match(ext *Extracted, ref *Reference) *Result {
	res := &Result{Extracted: *ext}
	res.MatchingDetails = MatchingDetails{ClientMatch: MatchNone, InsurerMatch: MatchNone, RamoMatch: MatchNone}

	if ext.ClientName != "" {
		if it, q := FindBestMatch(ext.ClientName, ref.Clients); q != MatchNone {
			res.ClientID, res.ClientName = it.ID, it.Name
			res.MatchingDetails.ClientMatch = q
		}
	}
	if ext.InsurerName != "" {
		if it, q := FindBestMatch(ext.InsurerName, ref.Companies); q != MatchNone {
			res.InsurerID, res.InsurerName = it.ID, it.Name
			res.MatchingDetails.InsurerMatch = q
		}
	}
	if ext.InsuranceLine != "" {
		if it, q := FindBestMatch(ext.InsuranceLine, ref.Ramos); q != MatchNone {
			res.InsuranceLineID, res.InsuranceLine = it.ID, it.Name
			res.MatchingDetails.RamoMatch = q
		}
	}
	return res
}

// Service runs the whole extraction for a user.
type Service struct {
	Store     store.Store
	Extractor Extractor
	Logger    *slog.Logger
}

// Extract loads reference data, prompts the model with pdf and matches
// the reply.
func (s *Service) Extract(ctx context.Context, userID string, pdf []byte) (*Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ref, err := LoadReference(ctx, s.Store, userID)
	if err != nil {
		return nil, err
	}
	logger.Debug("quote reference loaded",
		"ramos", len(ref.Ramos), "companies", len(ref.Companies), "clients", len(ref.Clients))

	reply, err := s.Extractor.Extract(ctx, pdf, BuildPrompt(ref))
	if err != nil {
		return nil, fmt.Errorf("extract quote data: %w", err)
	}
	ext, err := ParseReply(reply)
	if err != nil {
		return nil, err
	}
	return Match(ext, ref), nil
}
