package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Regions tried in order when a number carries no country code. Student
// contacts are local first, with US numbers accepted for families abroad.
var supportedRegions = []string{
	"IL",
	"US",
}

// NormalizePhone parses a contact number against the supported regions
// and returns it in E.164 form. Numbers that parse but are not dialable
// for any supported region normalize to "", same as unparseable input.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	for _, region := range supportedRegions {
		parsedNumber, err := phonenumbers.Parse(phone, region)
		if err != nil || !phonenumbers.IsValidNumber(parsedNumber) {
			continue
		}
		return phonenumbers.Format(parsedNumber, phonenumbers.E164)
	}
	return ""
}
