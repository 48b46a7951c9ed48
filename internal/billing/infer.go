package billing

import (
	"slices"
	"strings"
)

var ramoKeywords = []struct {
	ramo     string
	keywords []string
}{
	{"Auto", []string{"auto", "carro", "veículo", "veiculo", "automóvel", "automovel", "frota", "caminhão", "moto", "motocicleta"}},
	{"Residencial", []string{"residencial", "casa", "imóvel", "imovel", "apartamento", "residência", "residencia", "moradia", "lar"}},
	{"Empresarial", []string{"empresarial", "empresa", "comercial", "negócio", "negocio", "estabelecimento", "loja"}},
	{"Vida", []string{"vida", "morte", "invalidez", "funeral", "seguro de vida"}},
	{"Saúde", []string{"saúde", "saude", "plano", "médico", "medico", "hospitalar", "clínica", "clinica", "consulta"}},
	{"Consórcio", []string{"consórcio", "consorcio", "contemplação", "contemplacao", "lance"}},
	{"Outros", []string{"outro", "diversos", "geral"}},
}

// InferRamo suggests a ramo for a transaction description. Only ramos in
// available are considered, in a fixed priority order; "" means no match.
func InferRamo(description string, available []string) string {
	desc := strings.ToLower(strings.TrimSpace(description))
	if desc == "" {
		return ""
	}
	for _, rk := range ramoKeywords {
		if !slices.Contains(available, rk.ramo) {
			continue
		}
		for _, kw := range rk.keywords {
			if strings.Contains(desc, kw) {
				return rk.ramo
			}
		}
	}
	return ""
}

var relatedWords = map[string][]string{
	"auto":        {"carro", "veículo", "automóvel"},
	"residencial": {"casa", "imóvel", "moradia"},
	"vida":        {"morte", "funeral"},
	"saúde":       {"médico", "plano", "hospitalar"},
}

// SimilarityScore is 1 when description names the ramo, 0.7 when it holds
// a related word and 0 otherwise.
func SimilarityScore(description, ramo string) float64 {
	desc := strings.ToLower(description)
	r := strings.ToLower(ramo)
	if strings.Contains(desc, r) {
		return 1
	}
	for _, w := range relatedWords[r] {
		if strings.Contains(desc, w) {
			return 0.7
		}
	}
	return 0
}
