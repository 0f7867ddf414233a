package domain

import "strings"

const (
	SourceAnuncio        = "ANUNCIO"
	SourceIndicacao      = "INDICACAO"
	SourcePaginaParceira = "PAGINA_PARCEIRA"
	SourceInfluencer     = "INFLUENCER"
	SourceInstagram      = "INSTAGRAM"
	SourceOutro          = "OUTRO"
)

// Defaults applied when a webhook payload omits the field.
const (
	DefaultLeadName = "Lead sem Nome"
	DefaultPlan     = "INDEFINIDO"
)

var knownSources = map[string]struct{}{
	SourceAnuncio:        {},
	SourceIndicacao:      {},
	SourcePaginaParceira: {},
	SourceInfluencer:     {},
	SourceInstagram:      {},
	SourceOutro:          {},
}

// IsKnownSource reports whether the source is one of the catalog values.
func IsKnownSource(source string) bool {
	_, ok := knownSources[source]
	return ok
}

// ClassifySource maps free-text origin hints from webhook payloads onto the
// source catalog. An exact catalog value passes through unchanged; otherwise
// keyword matching decides, with earlier rules winning.
func ClassifySource(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return SourceOutro
	}

	if upper := strings.ToUpper(trimmed); IsKnownSource(upper) {
		return upper
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, "upboost"):
		return SourceAnuncio
	case strings.Contains(lower, "anuncio") || strings.Contains(lower, "anúncio") || strings.Contains(lower, "redes sociais"):
		return SourceAnuncio
	case strings.Contains(lower, "indica"):
		return SourceIndicacao
	case strings.Contains(lower, "parceira"):
		return SourcePaginaParceira
	case strings.Contains(lower, "influenc"):
		return SourceInfluencer
	case strings.Contains(lower, "instagram"):
		return SourceInstagram
	default:
		return SourceOutro
	}
}
