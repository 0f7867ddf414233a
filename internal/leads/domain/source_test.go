package domain

import "testing"

const classifyFmt = "ClassifySource(%q) = %q, want %q"

func TestClassifySource(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"", SourceOutro},
		{"   ", SourceOutro},
		{"INSTAGRAM", SourceInstagram},
		{"instagram", SourceInstagram},
		{"PAGINA_PARCEIRA", SourcePaginaParceira},
		{"Campanha UpBoost Julho", SourceAnuncio},
		{"anuncio facebook", SourceAnuncio},
		{"Redes Sociais", SourceAnuncio},
		{"indicação de cliente", SourceIndicacao},
		{"indicacao", SourceIndicacao},
		{"página parceira", SourcePaginaParceira},
		{"influencer X", SourceInfluencer},
		{"influenciadora", SourceInfluencer},
		{"veio pelo instagram", SourceInstagram},
		{"panfleto", SourceOutro},
	}

	for _, tc := range cases {
		if got := ClassifySource(tc.raw); got != tc.want {
			t.Errorf(classifyFmt, tc.raw, got, tc.want)
		}
	}
}

func TestClassifySourceKeywordPrecedence(t *testing.T) {
	// A hint matching several rules resolves to the earliest one.
	if got := ClassifySource("upboost instagram"); got != SourceAnuncio {
		t.Errorf(classifyFmt, "upboost instagram", got, SourceAnuncio)
	}
	if got := ClassifySource("indicacao via instagram"); got != SourceIndicacao {
		t.Errorf(classifyFmt, "indicacao via instagram", got, SourceIndicacao)
	}
}

func TestIsKnownSource(t *testing.T) {
	if !IsKnownSource(SourceAnuncio) {
		t.Error("expected ANUNCIO to be known")
	}
	if IsKnownSource("FACEBOOK") {
		t.Error("expected FACEBOOK to be unknown")
	}
}
