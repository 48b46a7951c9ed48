// Package dedup finds clients that are probably registered more than once.
package dedup

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sgcpro/sgc/internal/model"
)

// Confidence grades a duplicate group.
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

// Group is a set of clients that match each other.
type Group struct {
	Confidence Confidence      `json:"confidence"`
	Clients    []*model.Client `json:"clients"`
}

// Report summarises the duplicate groups. Counts are numbers of clients.
type Report struct {
	Count            int     `json:"count"`
	HighConfidence   int     `json:"high_confidence"`
	MediumConfidence int     `json:"medium_confidence"`
	LowConfidence    int     `json:"low_confidence"`
	Groups           []Group `json:"groups"`
}

// NormalizeName lowercases name, strips accents and punctuation, and
// collapses whitespace.
func NormalizeName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	stripped, _, err := transform.String(t, strings.ToLower(name))
	if err != nil {
		stripped = strings.ToLower(name)
	}
	var b strings.Builder
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Digits keeps only the ASCII digits of s.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

type key struct {
	name, email, phone, doc string
}

func keyOf(c *model.Client) key {
	return key{
		name:  NormalizeName(c.Name),
		email: strings.ToLower(strings.TrimSpace(c.Email)),
		phone: Digits(c.Phone),
		doc:   Digits(c.CPFCNPJ),
	}
}

func eqNonEmpty(a, b string) bool {
	return a != "" && a == b
}

func (k key) matches(o key) bool {
	return eqNonEmpty(k.name, o.name) || eqNonEmpty(k.email, o.email) ||
		eqNonEmpty(k.phone, o.phone) || eqNonEmpty(k.doc, o.doc)
}

// Find groups clients greedily in input order: each client not yet grouped
// collects every other ungrouped client it matches.
func Find(clients []*model.Client) *Report {
	keys := make([]key, len(clients))
	for i, c := range clients {
		keys[i] = keyOf(c)
	}

	report := &Report{Groups: []Group{}}
	processed := make([]bool, len(clients))
	for i, c := range clients {
		if processed[i] {
			continue
		}
		members := []*model.Client{c}
		for j := range clients {
			if j == i || processed[j] || !keys[i].matches(keys[j]) {
				continue
			}
			members = append(members, clients[j])
			processed[j] = true
		}
		if len(members) == 1 {
			continue
		}
		processed[i] = true

		g := Group{Confidence: confidence(members), Clients: members}
		report.Groups = append(report.Groups, g)
		n := len(members)
		report.Count += n
		switch g.Confidence {
		case High:
			report.HighConfidence += n
		case Medium:
			report.MediumConfidence += n
		default:
			report.LowConfidence += n
		}
	}
	return report
}

func confidence(members []*model.Client) Confidence {
	var docs, emails, phones int
	for _, c := range members {
		if c.CPFCNPJ != "" {
			docs++
		}
		if c.Email != "" {
			emails++
		}
		if c.Phone != "" {
			phones++
		}
	}
	switch {
	case docs > 1, emails > 1:
		return High
	case phones > 1:
		return Medium
	}
	return Low
}
