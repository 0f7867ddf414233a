package webhook

import (
	"strings"
)

// Contact holds the provider-agnostic fields extracted from a webhook payload.
type Contact struct {
	Name       string
	Phone      string
	Email      string
	SourceHint string
}

// Field alias lists, in priority order. Chat platforms rename fields across
// flow versions, so extraction is best effort over known labels.
var (
	nameAliases   = []string{"name", "nome", "fullName", "full_name"}
	phoneAliases  = []string{"phone", "phone_number", "telefone", "whatsapp", "celular"}
	emailAliases  = []string{"email", "e-mail"}
	sourceAliases = []string{"source", "origem", "utm_source", "campaign"}
)

// ExtractBotconversaContact pulls a contact out of a flat botconversa
// payload. A split first/last name pair is joined when no full name exists.
func ExtractBotconversaContact(data map[string]any) Contact {
	contact := Contact{
		Name:       firstString(data, nameAliases),
		Phone:      firstString(data, phoneAliases),
		Email:      firstString(data, emailAliases),
		SourceHint: firstString(data, sourceAliases),
	}

	if contact.Name == "" {
		first := stringValue(data["first_name"])
		last := stringValue(data["last_name"])
		contact.Name = strings.TrimSpace(first + " " + last)
	}

	return contact
}

// EvolutionPayload is the subset of the evolution API event envelope the
// ingester cares about.
type EvolutionPayload struct {
	Event    string `json:"event"`
	Instance string `json:"instance"`
	Data     struct {
		Key struct {
			RemoteJid string `json:"remoteJid"`
			FromMe    bool   `json:"fromMe"`
		} `json:"key"`
		PushName string `json:"pushName"`
	} `json:"data"`
}

// ExtractEvolutionContact pulls a contact out of an evolution message
// event. The phone lives in the JID before the @ separator.
func ExtractEvolutionContact(payload EvolutionPayload) Contact {
	jid := payload.Data.Key.RemoteJid
	if at := strings.IndexByte(jid, '@'); at >= 0 {
		jid = jid[:at]
	}
	return Contact{
		Name:  strings.TrimSpace(payload.Data.PushName),
		Phone: jid,
	}
}

func firstString(data map[string]any, aliases []string) string {
	for _, alias := range aliases {
		if value := stringValue(data[alias]); value != "" {
			return value
		}
	}
	return ""
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
