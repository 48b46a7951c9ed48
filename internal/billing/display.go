package billing

import (
	"strings"
)

// UnidentifiedClient is the placeholder name of imported transactions
// without a client.
const UnidentifiedClient = "Cliente não identificado"

// Standalone is shown for transactions with nothing better to display.
const Standalone = "Transação Avulsa"

// DisplayData is what a transaction title can be built from.
type DisplayData struct {
	Description  string
	PolicyNumber string
	ClientName   string
	RamoName     string
	CompanyName  string
}

// DisplayTitle picks the title of a transaction: the policy number, else
// client, ramo and company joined by " • ", else Standalone for a generic
// description, else the description itself.
func DisplayTitle(d DisplayData) string {
	if n := strings.TrimSpace(d.PolicyNumber); n != "" && n != "undefined" {
		return "Apólice: " + d.PolicyNumber
	}

	var parts []string
	if c := strings.TrimSpace(d.ClientName); c != "" && c != UnidentifiedClient {
		parts = append(parts, d.ClientName)
	}
	if strings.TrimSpace(d.RamoName) != "" {
		parts = append(parts, d.RamoName)
	}
	if strings.TrimSpace(d.CompanyName) != "" {
		parts = append(parts, d.CompanyName)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " • ")
	}

	if IsGenericDescription(d.Description) {
		return Standalone
	}
	return d.Description
}

// IsGenericDescription reports descriptions that carry no information:
// blank ones and those containing "undefined" or "---".
func IsGenericDescription(description string) bool {
	lower := strings.ToLower(strings.TrimSpace(description))
	return lower == "" || strings.Contains(lower, "undefined") || strings.Contains(lower, "---")
}
