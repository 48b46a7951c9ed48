package quote

import (
	"strings"

	"github.com/sgcpro/sgc/internal/model"
)

func clientFilter(userID string) model.ClientFilter {
	return model.ClientFilter{UserID: userID, Limit: 1000}
}

func names(items []Item, limit int) string {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return strings.Join(out, ", ")
}

// BuildPrompt asks the model for the quote fields, listing the reference
// names it should reuse verbatim.
func BuildPrompt(ref *Reference) string {
	var b strings.Builder
	b.WriteString("Você é um especialista em análise de documentos de seguros. ")
	b.WriteString("Analise TODAS AS PÁGINAS desta apólice/orçamento e extraia os dados abaixo.\n\n")
	b.WriteString("**CONTEXTO DA BASE DE DADOS:**\n")
	b.WriteString("**Ramos Cadastrados:** " + names(ref.Ramos, 0) + "\n")
	b.WriteString("**Seguradoras Cadastradas:** " + names(ref.Companies, 0) + "\n")
	b.WriteString("**Clientes Cadastrados (primeiros 100):** " + names(ref.Clients, promptClientLimit) + "\n\n")
	b.WriteString(`**INSTRUÇÕES:**
1. Para seguradoras e ramos, retorne o nome EXATO da lista acima.
2. Para clientes, retorne o nome EXATO se encontrar na lista, senão o nome que está no documento.

**CAMPOS PARA EXTRAIR:**
1. clientName: nome completo do Segurado/Proponente, sem CPF/CNPJ.
2. insuredItem: bem segurado (ex.: "Honda Civic 2023 - Placa ABC1234").
3. insurerName: seguradora, nome EXATO da lista.
4. insuranceLine: ramo, nome EXATO da lista.
5. policyNumber: número da apólice; se não houver, do orçamento; se não houver, da proposta.
6. premiumValue: prêmio líquido como número sem formatação (ex.: 5848.43), ignorando IOF e taxas; null se ausente.
7. commissionPercentage: percentual de comissão como número sem % (ex.: 20); null se ausente.
8. shouldGenerateRenewal: true para "Seguro Novo" ou "Renovação", false para "Endosso".
9. startDate: início de vigência no formato YYYY-MM-DD (não use a data de emissão).

**FORMATO DE SAÍDA:**
Retorne APENAS um objeto JSON válido, sem explicações:
{
  "clientName": "string ou null",
  "insuredItem": "string ou null",
  "insurerName": "string ou null",
  "insuranceLine": "string ou null",
  "policyNumber": "string ou null",
  "premiumValue": number ou null,
  "commissionPercentage": number ou null,
  "shouldGenerateRenewal": boolean,
  "startDate": "YYYY-MM-DD ou null"
}`)
	return b.String()
}
