package conversation

import (
	"regexp"
	"time"
)

// Two or more words, each an uppercase letter followed by lowercase letters.
var personNamePattern = regexp.MustCompile(`(?:^|[^\p{L}])(\p{Lu}\p{Ll}+(?:[ \t]+\p{Lu}\p{Ll}+)+)(?:[^\p{L}]|$)`)

// Exactly ten digits, not part of a longer run.
var phoneNumberPattern = regexp.MustCompile(`(?:^|\D)(\d{10})(?:\D|$)`)

// ExtractEntities runs a single deterministic pass over text. ref anchors
// relative expressions such as "tomorrow"; its location is the reference
// timezone handed to the parser. Extraction never fails: anything that does
// not parse is left absent.
func ExtractEntities(text string, ref time.Time, parser DateTimeParser) ExtractedEntities {
	return ExtractedEntities{
		PersonName:      extractPersonName(text),
		PhoneNumber:     extractPhoneNumber(text),
		AppointmentTime: extractAppointmentTime(text, ref, parser),
	}
}

func extractPersonName(text string) string {
	return firstSubmatch(personNamePattern, text)
}

func extractPhoneNumber(text string) string {
	return firstSubmatch(phoneNumberPattern, text)
}

func extractAppointmentTime(text string, ref time.Time, parser DateTimeParser) *time.Time {
	if parser == nil {
		return nil
	}
	at, ok := safeParse(parser, text, ref)
	if !ok {
		return nil
	}
	return &at
}

func firstSubmatch(re *regexp.Regexp, text string) string {
	match := re.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}
