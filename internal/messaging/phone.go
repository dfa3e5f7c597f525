package messaging

import (
	"regexp"
	"strings"
)

// WhatsAppPrefix marks a Twilio address as a WhatsApp endpoint.
const WhatsAppPrefix = "whatsapp:"

var phoneDigitsRe = regexp.MustCompile(`\d+`)

// NormalizeE164 ensures the value begins with + and only contains digits afterward.
// A leading channel prefix such as "whatsapp:" is dropped.
func NormalizeE164(value string) string {
	value = StripChannelPrefix(value)
	if value == "" {
		return ""
	}
	digits := sanitizePhone(value)
	if digits == "" {
		return ""
	}
	return "+" + digits
}

// StripChannelPrefix removes a "whatsapp:" style prefix from a Twilio address.
func StripChannelPrefix(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.Index(value, ":"); idx >= 0 && !strings.ContainsAny(value[:idx], "+0123456789") {
		return strings.TrimSpace(value[idx+1:])
	}
	return value
}

// WhatsAppAddress formats a phone number as a Twilio WhatsApp address.
// Values that already carry the prefix are returned unchanged.
func WhatsAppAddress(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(value), WhatsAppPrefix) {
		return WhatsAppPrefix + StripChannelPrefix(value)
	}
	if e164 := NormalizeE164(value); e164 != "" {
		return WhatsAppPrefix + e164
	}
	return ""
}

func sanitizePhone(value string) string {
	if value == "" {
		return ""
	}
	return strings.Join(phoneDigitsRe.FindAllString(value, -1), "")
}
