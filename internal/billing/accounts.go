package billing

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/sgcpro/sgc/internal/model"
)

// ChartOfAccounts lists the ledger categories by entry type.
type ChartOfAccounts struct {
	Receita []string `yaml:"receita" json:"receita"`
	Despesa struct {
		Fixa     []string `yaml:"fixa" json:"fixa"`
		Variavel []string `yaml:"variavel" json:"variavel"`
	} `yaml:"despesa" json:"despesa"`
}

// DefaultChart returns the built-in chart of accounts.
func DefaultChart() *ChartOfAccounts {
	c := &ChartOfAccounts{
		Receita: []string{"Comissão", "Bonificação", "Outras Receitas"},
	}
	c.Despesa.Fixa = []string{"Aluguel", "Salários", "Pró-labore", "Software (CRM)", "Internet"}
	c.Despesa.Variavel = []string{"Marketing", "Comissões de Vendedores", "Impostos (Simples Nacional)", "Viagens"}
	return c
}

// LoadChart reads a chart of accounts from a YAML file. An empty path
// returns the default chart. Sections missing from the file keep their
// defaults.
func LoadChart(path string) (*ChartOfAccounts, error) {
	c := DefaultChart()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chart of accounts: %w", err)
	}
	var file ChartOfAccounts
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse chart of accounts: %w", err)
	}
	if len(file.Receita) > 0 {
		c.Receita = file.Receita
	}
	if len(file.Despesa.Fixa) > 0 {
		c.Despesa.Fixa = file.Despesa.Fixa
	}
	if len(file.Despesa.Variavel) > 0 {
		c.Despesa.Variavel = file.Despesa.Variavel
	}
	return c, nil
}

// Categories returns the categories of an entry type. Expenses list fixed
// costs before variable ones.
func (c *ChartOfAccounts) Categories(t model.EntryType) []string {
	if t == model.EntryIncome {
		return c.Receita
	}
	return slices.Concat(c.Despesa.Fixa, c.Despesa.Variavel)
}

// Has reports whether category belongs to the entry type.
func (c *ChartOfAccounts) Has(t model.EntryType, category string) bool {
	return slices.Contains(c.Categories(t), category)
}
