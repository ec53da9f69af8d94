package export

import (
	"strings"
	"unicode"

	"github.com/AbbyGrylls/impetus9-backend/internal/model"
)

const externalPhoneDigits = 8

// CardID derives the contact identifier for a registration: a two-character
// lowercase prefix from the event name, then the captain's roll for INTERNAL
// registrations or "EXT" plus the last 8 digits of the captain's phone for
// EXTERNAL ones. Identifiers are not deduplicated across registrations.
func CardID(eventName string, reg model.Registration) string {
	prefix := eventPrefix(eventName)
	if reg.ParticipantType == model.ParticipantTypeInternal {
		return prefix + reg.CapRoll
	}
	digits := digitsOf(reg.CapPhone)
	if len(digits) > externalPhoneDigits {
		digits = digits[len(digits)-externalPhoneDigits:]
	}
	return prefix + "EXT" + digits
}

// eventPrefix returns the first two characters of the lowercased event name,
// or the whole name when shorter.
func eventPrefix(eventName string) string {
	runes := []rune(strings.ToLower(eventName))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return string(runes)
}

// digitsOf strips every non-digit character from s.
func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BuildVCards renders one text block of contact cards for the registrations.
// Each registration contributes a card for its captain under "<id>-1" and,
// when the first team member has a non-empty phone, a card for that member
// under "<id>-2".
func BuildVCards(eventName string, regs []model.Registration) string {
	var b strings.Builder
	for _, reg := range regs {
		id := CardID(eventName, reg)
		writeCard(&b, id+"-1", reg.CapPhone)
		if len(reg.Members) > 0 && strings.TrimSpace(reg.Members[0].Phone) != "" {
			writeCard(&b, id+"-2", reg.Members[0].Phone)
		}
	}
	return b.String()
}

func writeCard(b *strings.Builder, displayName, phone string) {
	b.WriteString("BEGIN:VCARD\n")
	b.WriteString("VERSION:3.0\n")
	b.WriteString("N:" + displayName + "\n")
	b.WriteString("FN:" + displayName + "\n")
	b.WriteString("TEL;TYPE=CELL:" + phone + "\n")
	b.WriteString("END:VCARD\n")
}
